// Package jalali converts between ISO-8601 timestamps and Jalali (Persian
// calendar) date strings. Conversion failures are reported as an empty
// string rather than an error, since callers render the result directly.
package jalali

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	ptime "github.com/yaa110/go-persian-calendar"

	"orderdesk/domain"
)

// Farsi and Arabic-Indic digits both occur in user input.
var digitReplacer = strings.NewReplacer(
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
	"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
)

var digitRuns = regexp.MustCompile(`\d+`)

// ToEnglishDigits rewrites Farsi and Arabic-Indic digits as ASCII digits.
func ToEnglishDigits(s string) string {
	return digitReplacer.Replace(s)
}

// ToJalali formats an ISO timestamp as a yyyy/MM/dd Jalali date. An empty or
// unparseable input yields "".
func ToJalali(isoTimestamp string) string {
	if isoTimestamp == "" {
		return ""
	}
	t, err := domain.ParseISO(isoTimestamp)
	if err != nil {
		return ""
	}
	return ptime.New(t.In(time.Local)).Format("yyyy/MM/dd")
}

// FromJalali parses a Jalali date string and returns the ISO timestamp of
// local midnight on that day, rendered in UTC. The parser accepts any string
// containing exactly three numeric runs in year, month, day order, with any
// separators and in any digit script. Anything else yields "".
func FromJalali(jalaliDate string) string {
	if jalaliDate == "" {
		return ""
	}
	normalized := ToEnglishDigits(strings.TrimSpace(jalaliDate))
	runs := digitRuns.FindAllString(normalized, -1)
	if len(runs) != 3 {
		return ""
	}
	year, errY := strconv.Atoi(runs[0])
	month, errM := strconv.Atoi(runs[1])
	day, errD := strconv.Atoi(runs[2])
	if errY != nil || errM != nil || errD != nil {
		return ""
	}
	if year < 1000 || month < 1 || month > 12 || day < 1 || day > 31 {
		return ""
	}
	t := ptime.Date(year, ptime.Month(month), day, 0, 0, 0, 0, time.Local)
	return t.Time().UTC().Format(domain.ISOTime)
}
