package format

import (
	"math"
	"strings"
	"time"
)

// SPSSEpoch is day zero of SPSS date values (the first day of the Gregorian
// calendar). Date variables store seconds elapsed since this instant.
var SPSSEpoch = time.Date(1582, time.October, 14, 0, 0, 0, 0, time.UTC)

const dateLayout = "02-01-2006"

var parseLayouts = []string{
	dateLayout,
	"2006-01-02",
	"01/02/2006",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

// SPSSSecondsToDate converts seconds since SPSSEpoch into dd-mm-yyyy.
// Non-finite input yields an empty string.
func SPSSSecondsToDate(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return ""
	}
	whole := math.Floor(seconds)
	nanos := int64((seconds - whole) * float64(time.Second))
	// seconds span centuries, past what time.Duration can hold
	t := time.Unix(SPSSEpoch.Unix()+int64(whole), nanos).UTC()
	return t.Format(dateLayout)
}

// FormatSPSSDate is SPSSSecondsToDate for an optional value
func FormatSPSSDate(seconds *float64) string {
	if seconds == nil {
		return ""
	}
	return SPSSSecondsToDate(*seconds)
}

// DateToSPSSSeconds converts a calendar instant into SPSS seconds
func DateToSPSSSeconds(t time.Time) float64 {
	return float64(t.UTC().Unix() - SPSSEpoch.Unix())
}

// ParseDate parses the date spellings accepted in data cells and returns
// SPSS seconds.
func ParseDate(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateToSPSSSeconds(t), true
		}
	}
	return 0, false
}
