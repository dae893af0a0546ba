package jalali

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"orderdesk/domain"
)

func TestToEnglishDigits(t *testing.T) {
	assert.Equal(t, "1403/01/15", ToEnglishDigits("۱۴۰۳/۰۱/۱۵"))
	assert.Equal(t, "1403/01/15", ToEnglishDigits("١٤٠٣/٠١/١٥"))
	assert.Equal(t, "1403/01/15", ToEnglishDigits("1403/01/15"))
}

func TestToJalali(t *testing.T) {
	// 2024-03-20 is Nowruz, 1403/01/01. Noon local time keeps the date
	// stable in every timezone.
	nowruz := time.Date(2024, 3, 20, 12, 0, 0, 0, time.Local).Format(domain.ISOTime)
	assert.Equal(t, "1403/01/01", ToJalali(nowruz))
	assert.Equal(t, "", ToJalali(""))
	assert.Equal(t, "", ToJalali("not a date"))
}

func TestFromJalali(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"slash separated", "1403/01/01", "2024-03-20"},
		{"dash separated", "1403-01-01", "2024-03-20"},
		{"farsi digits", "۱۴۰۳/۰۱/۰۱", "2024-03-20"},
		{"surrounding whitespace", "  1403/01/01  ", "2024-03-20"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			iso := FromJalali(tc.input)
			assert.NotEmpty(t, iso)
			parsed, err := domain.ParseISO(iso)
			assert.NoError(t, err)
			assert.Equal(t, tc.want, parsed.Local().Format("2006-01-02"))
		})
	}
}

func TestFromJalaliRejectsMalformedInput(t *testing.T) {
	for _, input := range []string{
		"",
		"1403/01",
		"1403/01/01/05",
		"not a date",
		"999/01/01",
		"1403/13/01",
		"1403/00/01",
		"1403/01/32",
	} {
		assert.Equal(t, "", FromJalali(input), "input %q", input)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, date := range []string{"1403/01/01", "1402/12/29", "1403/07/15"} {
		iso := FromJalali(date)
		assert.NotEmpty(t, iso)
		assert.Equal(t, date, ToJalali(iso), "round trip for %s", date)
	}
}
