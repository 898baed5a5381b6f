package format

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSPSSSecondsToDate(t *testing.T) {
	assert.Equal(t, "14-10-1582", SPSSSecondsToDate(0))
	assert.Equal(t, "15-10-1582", SPSSSecondsToDate(86400))

	modern := DateToSPSSSeconds(time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "05-03-2024", SPSSSecondsToDate(modern))
}

func TestSPSSSecondsToDate_NonFinite(t *testing.T) {
	assert.Equal(t, "", SPSSSecondsToDate(math.NaN()))
	assert.Equal(t, "", SPSSSecondsToDate(math.Inf(1)))
	assert.Equal(t, "", FormatSPSSDate(nil))
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"05-03-2024", "2024-03-05", "03/05/2024"} {
		secs, ok := ParseDate(in)
		require.True(t, ok, in)
		assert.Equal(t, "05-03-2024", SPSSSecondsToDate(secs), in)
	}

	_, ok := ParseDate("not a date")
	assert.False(t, ok)
}
