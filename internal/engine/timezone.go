package engine

import (
	"fmt"
	"time"

	"github.com/JaxylViernes/wp-seo-autopilot/pkg/logger"
)

// ToUTCTimeOfDay converts a wall-clock "HH:MM" in the given IANA zone to the
// equivalent "HH:MM" in UTC, using the zone's offset for today's date so DST
// is honored. Day wraparound across the date line is folded back into a
// 24-hour clock. On any failure the input is returned unchanged, assumed to
// already be UTC, and the assumption is logged; a schedule must never be lost
// to a formatting error.
func ToUTCTimeOfDay(localTime, timezone string, log *logger.Logger) string {
	minutes, err := parseTimeOfDay(localTime)
	if err != nil {
		log.Warn("Malformed schedule time, assuming UTC",
			logger.String("local_time", localTime),
			logger.String("timezone", timezone),
			logger.Err(err),
		)
		return localTime
	}

	offset, err := zoneOffsetMinutes(timezone)
	if err != nil {
		log.Warn("Unrecognized timezone, assuming UTC",
			logger.String("local_time", localTime),
			logger.String("timezone", timezone),
			logger.Err(err),
		)
		return localTime
	}

	return formatTimeOfDay(minutes - offset)
}

// FromUTCTimeOfDay converts a UTC "HH:MM" back to the zone's wall-clock time
// using the inverse of today's offset. Same fallback behavior as
// ToUTCTimeOfDay.
func FromUTCTimeOfDay(utcTime, timezone string, log *logger.Logger) string {
	minutes, err := parseTimeOfDay(utcTime)
	if err != nil {
		log.Warn("Malformed schedule time, returning unchanged",
			logger.String("utc_time", utcTime),
			logger.String("timezone", timezone),
			logger.Err(err),
		)
		return utcTime
	}

	offset, err := zoneOffsetMinutes(timezone)
	if err != nil {
		log.Warn("Unrecognized timezone, returning unchanged",
			logger.String("utc_time", utcTime),
			logger.String("timezone", timezone),
			logger.Err(err),
		)
		return utcTime
	}

	return formatTimeOfDay(minutes + offset)
}

// zoneOffsetMinutes returns the zone's current offset from UTC in minutes,
// positive east of Greenwich. Non-hour offsets (UTC+9:30 and friends) come
// through intact.
func zoneOffsetMinutes(timezone string) (int, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return 0, err
	}

	_, offsetSeconds := time.Now().In(loc).Zone()
	return offsetSeconds / 60, nil
}

// parseTimeOfDay parses "HH:MM" into minutes since midnight
func parseTimeOfDay(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// formatTimeOfDay renders minutes since midnight as "HH:MM", folding values
// outside [0, 1440) back into a single day
func formatTimeOfDay(minutes int) string {
	minutes %= 24 * 60
	if minutes < 0 {
		minutes += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
