package domain

import "time"

// ISOTime is the timestamp layout stored throughout the dataset. It matches
// the millisecond-precision UTC form the original data was written in.
const ISOTime = "2006-01-02T15:04:05.000Z07:00"

// NowISO returns the current UTC time in the stored timestamp layout.
func NowISO() string {
	return time.Now().UTC().Format(ISOTime)
}

// ParseISO parses a stored timestamp, tolerating plain RFC 3339 variants.
func ParseISO(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Parse(ISOTime, s)
	}
	return t, nil
}
