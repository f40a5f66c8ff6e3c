package engine

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/models"
)

// weeklyGap is the minimum elapsed time between runs of a weekly schedule
// that has no explicit weekday set. Slightly under seven days so a run that
// fired late in last week's window does not push this week's run out.
const weeklyGap = 6 * 24 * time.Hour

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// IsDue reports whether schedule should fire at nowUTC. The tolerance is the
// poll interval: a schedule is due from its configured UTC time of day until
// tolerance has elapsed, and at most once per window (suppressed via lastRun)
// so a poll interval shorter than the window cannot double-fire.
func IsDue(schedule *models.AutoSchedule, nowUTC time.Time, tolerance time.Duration) bool {
	if !schedule.IsActive || schedule.DeletedAt != nil {
		return false
	}
	if tolerance <= 0 {
		tolerance = time.Minute
	}
	nowUTC = nowUTC.UTC()

	if schedule.Frequency == models.FrequencyCustomCron {
		return cronDue(schedule, nowUTC, tolerance)
	}

	target, err := parseTimeOfDay(schedule.TimeOfDayUTC)
	if err != nil {
		return false
	}

	windowStart := windowStartFor(nowUTC, target)
	if nowUTC.Sub(windowStart) >= tolerance {
		return false
	}

	switch schedule.Frequency {
	case models.FrequencyCustomDays:
		if !weekdayAllowed(schedule.CustomDays, windowStart.Weekday()) {
			return false
		}
	case models.FrequencyWeekly:
		if len(schedule.CustomDays) > 0 {
			if !weekdayAllowed(schedule.CustomDays, windowStart.Weekday()) {
				return false
			}
		} else if schedule.LastRun != nil && nowUTC.Sub(*schedule.LastRun) < weeklyGap {
			return false
		}
	}

	return !ranSince(schedule.LastRun, windowStart)
}

// ValidateCronExpr checks a custom_cron expression at configuration time so
// a bad expression is rejected up front instead of silently never firing.
func ValidateCronExpr(expr string) error {
	_, err := cronParser.Parse(expr)
	return err
}

// windowStartFor returns the most recent occurrence of the given UTC
// time of day (in minutes past midnight) at or before now.
func windowStartFor(nowUTC time.Time, targetMinutes int) time.Time {
	year, month, day := nowUTC.Date()
	start := time.Date(year, month, day, targetMinutes/60, targetMinutes%60, 0, 0, time.UTC)
	if start.After(nowUTC) {
		start = start.Add(-24 * time.Hour)
	}
	return start
}

func weekdayAllowed(days models.IntList, weekday time.Weekday) bool {
	for _, d := range days {
		if d == int(weekday) {
			return true
		}
	}
	return false
}

func ranSince(lastRun *time.Time, windowStart time.Time) bool {
	return lastRun != nil && !lastRun.Before(windowStart)
}

// cronDue evaluates a custom_cron schedule: due when the expression's most
// recent firing time falls within the trailing tolerance window and the
// schedule has not already run for it.
func cronDue(schedule *models.AutoSchedule, nowUTC time.Time, tolerance time.Duration) bool {
	if schedule.CronExpr == nil || *schedule.CronExpr == "" {
		return false
	}
	spec, err := cronParser.Parse(*schedule.CronExpr)
	if err != nil {
		return false
	}

	ref := nowUTC.Add(-tolerance)
	next := spec.Next(ref)
	if next.After(nowUTC) {
		return false
	}
	return !ranSince(schedule.LastRun, next)
}
