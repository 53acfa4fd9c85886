package economy

import "time"

// PeriodType is an accounting window for balances. Lifetime balances never
// reset; the other periods resolve to a concrete bucket-start instant via
// BucketStart and rotate when the bucket changes.
type PeriodType int

const (
	PeriodLifetime PeriodType = iota
	PeriodDaily
	PeriodWeekly
	PeriodMonthly
)

// Periods lists every period type, lifetime first.
var Periods = []PeriodType{PeriodLifetime, PeriodDaily, PeriodWeekly, PeriodMonthly}

func (p PeriodType) String() string {
	switch p {
	case PeriodLifetime:
		return "lifetime"
	case PeriodDaily:
		return "daily"
	case PeriodWeekly:
		return "weekly"
	case PeriodMonthly:
		return "monthly"
	default:
		return "unknown"
	}
}

// ParsePeriodType maps a config/storage string back to its PeriodType.
func ParsePeriodType(s string) (PeriodType, bool) {
	switch s {
	case "lifetime":
		return PeriodLifetime, true
	case "daily":
		return PeriodDaily, true
	case "weekly":
		return PeriodWeekly, true
	case "monthly":
		return PeriodMonthly, true
	}
	return PeriodLifetime, false
}

// BucketStart resolves the start instant of the bucket containing now in the
// given zone. Daily buckets start at midnight, weekly buckets on the most
// recent Monday (or today if today is Monday), monthly buckets on the 1st.
// The second return is false for PeriodLifetime, which has no bucket.
//
// The function is pure in (p, zone, now) so period logic is testable without
// touching the wall clock.
func (p PeriodType) BucketStart(zone *time.Location, now time.Time) (time.Time, bool) {
	local := now.In(zone)

	switch p {
	case PeriodDaily:
		return startOfDay(local), true
	case PeriodWeekly:
		days := int(local.Weekday()-time.Monday+7) % 7
		return startOfDay(local.AddDate(0, 0, -days)), true
	case PeriodMonthly:
		return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, zone), true
	default:
		return time.Time{}, false
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
