package engine

import (
	"testing"
	"time"

	"github.com/JaxylViernes/wp-seo-autopilot/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToUTCTimeOfDay(t *testing.T) {
	log := logger.NewForTesting()

	t.Run("UTC passes through", func(t *testing.T) {
		assert.Equal(t, "09:00", ToUTCTimeOfDay("09:00", "UTC", log))
	})

	t.Run("Tokyo morning is previous-day UTC", func(t *testing.T) {
		// Asia/Tokyo has no DST: always UTC+9
		assert.Equal(t, "00:00", ToUTCTimeOfDay("09:00", "Asia/Tokyo", log))
	})

	t.Run("wraps across midnight going east", func(t *testing.T) {
		assert.Equal(t, "16:00", ToUTCTimeOfDay("01:00", "Asia/Tokyo", log))
	})

	t.Run("non-hour offset", func(t *testing.T) {
		// Asia/Kolkata is UTC+5:30 year round
		assert.Equal(t, "03:30", ToUTCTimeOfDay("09:00", "Asia/Kolkata", log))
	})

	t.Run("unknown zone falls back to input", func(t *testing.T) {
		assert.Equal(t, "09:00", ToUTCTimeOfDay("09:00", "Not/AZone", log))
	})

	t.Run("malformed time falls back to input", func(t *testing.T) {
		assert.Equal(t, "9am", ToUTCTimeOfDay("9am", "UTC", log))
	})
}

func TestTimeOfDayRoundTrip(t *testing.T) {
	log := logger.NewForTesting()

	zones := []string{
		"UTC",
		"Asia/Tokyo",
		"America/New_York",
		"Europe/London",
		"Asia/Kolkata",
		"Pacific/Auckland",
		"Pacific/Kiritimati", // UTC+14, the far side of the date line
	}
	times := []string{"00:00", "00:30", "09:00", "12:00", "23:59"}

	for _, zone := range zones {
		for _, local := range times {
			utc := ToUTCTimeOfDay(local, zone, log)
			back := FromUTCTimeOfDay(utc, zone, log)
			assert.Equal(t, local, back, "round trip for %s in %s (via %s)", local, zone, utc)
		}
	}
}

func TestZoneOffsetMinutes(t *testing.T) {
	t.Run("matches stdlib offset", func(t *testing.T) {
		loc, err := time.LoadLocation("Asia/Tokyo")
		require.NoError(t, err)
		_, want := time.Now().In(loc).Zone()

		got, err := zoneOffsetMinutes("Asia/Tokyo")
		require.NoError(t, err)
		assert.Equal(t, want/60, got)
	})

	t.Run("rejects unknown zone", func(t *testing.T) {
		_, err := zoneOffsetMinutes("Mars/OlympusMons")
		assert.Error(t, err)
	})
}

func TestFormatTimeOfDay(t *testing.T) {
	assert.Equal(t, "00:00", formatTimeOfDay(0))
	assert.Equal(t, "23:59", formatTimeOfDay(-1))
	assert.Equal(t, "00:05", formatTimeOfDay(24*60+5))
	assert.Equal(t, "15:00", formatTimeOfDay(-9*60))
}
