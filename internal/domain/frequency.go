package domain

// FrequencyPeriod is the period a visit count is expressed against.
type FrequencyPeriod string

const (
	PeriodWeekly    FrequencyPeriod = "weekly"
	PeriodMonthly   FrequencyPeriod = "monthly"
	PeriodQuarterly FrequencyPeriod = "quarterly"
	PeriodYearly    FrequencyPeriod = "yearly"
)

// MaxVisitsPerYear caps the annual visit frequency.
const MaxVisitsPerYear = 365

// Valid reports whether p is a known period.
func (p FrequencyPeriod) Valid() bool {
	switch p {
	case PeriodWeekly, PeriodMonthly, PeriodQuarterly, PeriodYearly:
		return true
	}
	return false
}

// MaxTimesForPeriod returns the largest number of visits that fit in one period.
func MaxTimesForPeriod(period FrequencyPeriod) int {
	switch period {
	case PeriodWeekly:
		return 7
	case PeriodMonthly:
		return 31
	case PeriodQuarterly:
		return 90
	default:
		return 365
	}
}

// VisitsPerYear converts a per-period count into an annual count.
func VisitsPerYear(period FrequencyPeriod, times int) int {
	switch period {
	case PeriodWeekly:
		return times * 52
	case PeriodMonthly:
		return times * 12
	case PeriodQuarterly:
		return times * 4
	default:
		return times
	}
}
