package calculation

import "github.com/rgehrsitz/encounters/internal/domain"

// DefaultSweepFrequencies covers yearly, quarterly, monthly and weekly visits.
var DefaultSweepFrequencies = []int{1, 4, 12, 52}

// SweepFrequencies runs the engine once per visit frequency for the same
// pair. Each run is seeded from its own frequency, so every row matches a
// standalone Simulate call.
func (se *SurvivalEngine) SweepFrequencies(a, b Subject, frequencies []int) []domain.FrequencySweepPoint {
	if len(frequencies) == 0 {
		frequencies = DefaultSweepFrequencies
	}

	points := make([]domain.FrequencySweepPoint, 0, len(frequencies))
	for _, visits := range frequencies {
		result := se.Simulate(a, b, visits)
		points = append(points, domain.FrequencySweepPoint{
			VisitsPerYear:      visits,
			ExpectedVisits:     result.ExpectedVisits,
			Range:              result.ExpectedVisitsRange,
			YearsWithBothAlive: result.YearsWithBothAlive,
		})
	}
	return points
}
