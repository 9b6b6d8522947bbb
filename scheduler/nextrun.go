package scheduler

import (
	"fmt"
	"time"

	"feedsyncd/models"
)

// ComputeNextRun returns the next scheduled run for a feed, strictly
// after now. The strictly-after rule prevents an immediate re-trigger
// in the same tick that just fired. All boundary math happens in loc;
// 6h/12h boundaries are anchored to midnight of that location.
func ComputeNextRun(freq models.ScheduleFrequency, timeOfDay string, dayOfWeek int, now time.Time, loc *time.Location) (time.Time, error) {
	now = now.In(loc)

	switch freq {
	case models.FrequencyHourly:
		top := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, loc)
		return top.Add(time.Hour), nil

	case models.FrequencyEvery6Hours:
		return nextBoundary(now, 6, loc), nil

	case models.FrequencyEvery12Hours:
		return nextBoundary(now, 12, loc), nil

	case models.FrequencyDaily:
		h, m, s, err := parseTimeOfDay(timeOfDay)
		if err != nil {
			return time.Time{}, err
		}
		candidate := time.Date(now.Year(), now.Month(), now.Day(), h, m, s, 0, loc)
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		return candidate, nil

	case models.FrequencyWeekly:
		h, m, s, err := parseTimeOfDay(timeOfDay)
		if err != nil {
			return time.Time{}, err
		}
		if dayOfWeek < 0 || dayOfWeek > 6 {
			return time.Time{}, fmt.Errorf("invalid day of week %d", dayOfWeek)
		}
		days := (dayOfWeek - int(now.Weekday()) + 7) % 7
		candidate := time.Date(now.Year(), now.Month(), now.Day(), h, m, s, 0, loc).AddDate(0, 0, days)
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 7)
		}
		return candidate, nil

	default:
		return time.Time{}, fmt.Errorf("unknown schedule frequency %q", freq)
	}
}

// nextBoundary finds the next midnight-anchored boundary (every
// stepHours hours) strictly after now, rolling to the next day if
// needed.
func nextBoundary(now time.Time, stepHours int, loc *time.Location) time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	for h := stepHours; h <= 24; h += stepHours {
		candidate := midnight.Add(time.Duration(h) * time.Hour)
		if candidate.After(now) {
			return candidate
		}
	}
	return midnight.AddDate(0, 0, 1)
}

// parseTimeOfDay accepts "HH:MM:SS" or "HH:MM"; empty means midnight.
func parseTimeOfDay(s string) (h, m, sec int, err error) {
	if s == "" {
		return 0, 0, 0, nil
	}
	if t, perr := time.Parse("15:04:05", s); perr == nil {
		return t.Hour(), t.Minute(), t.Second(), nil
	}
	if t, perr := time.Parse("15:04", s); perr == nil {
		return t.Hour(), t.Minute(), 0, nil
	}
	return 0, 0, 0, fmt.Errorf("invalid schedule time %q", s)
}
