package forecast

import "time"

// FutureDates returns the horizon dates strictly after the last point of s.
// A history made only of weekdays is treated as a trading-day calendar and its
// forecast skips weekends too.
func FutureDates(s Series, horizon int) []time.Time {
	if len(s) == 0 || horizon < 1 {
		return nil
	}
	return futureDates(s[len(s)-1].Date, tradingDaysOnly(s), horizon)
}

func futureDates(last time.Time, skipWeekends bool, horizon int) []time.Time {
	out := make([]time.Time, 0, horizon)
	d := last
	for len(out) < horizon {
		d = d.AddDate(0, 0, 1)
		if skipWeekends && isWeekend(d) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func tradingDaysOnly(s Series) bool {
	for _, p := range s {
		if isWeekend(p.Date) {
			return false
		}
	}
	return true
}

func isWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
