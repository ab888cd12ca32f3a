package calculation

import (
	"sort"
	"sync"

	"github.com/rgehrsitz/encounters/internal/domain"
	"github.com/rgehrsitz/encounters/internal/lifetable"
)

const (
	// DefaultTrials is the number of Monte Carlo trials per calculation.
	DefaultTrials = 10000

	// DefaultProbabilityThreshold truncates the survival curve once the
	// joint probability falls below it.
	DefaultProbabilityThreshold = 0.0001
)

// SimulationConfig holds the tunables of the survival engine.
type SimulationConfig struct {
	Trials               int
	Workers              int // >1 splits trials across goroutines
	ProbabilityThreshold float64
	DataSource           string
}

// DefaultSimulationConfig returns the reference configuration.
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		Trials:               DefaultTrials,
		Workers:              1,
		ProbabilityThreshold: DefaultProbabilityThreshold,
		DataSource:           domain.DefaultDataSource,
	}
}

// Subject is one person as the engine sees them: a current age and the
// life table that applies to them.
type Subject struct {
	Age   int
	Table *domain.LifeTable
}

// SurvivalEngine estimates encounters between two people from their life
// tables. It holds no per-call state and is safe for concurrent use.
type SurvivalEngine struct {
	config SimulationConfig
	Logger Logger
}

// NewSurvivalEngine creates an engine with the default configuration.
func NewSurvivalEngine() *SurvivalEngine {
	return NewSurvivalEngineWithConfig(DefaultSimulationConfig())
}

// NewSurvivalEngineWithConfig creates an engine with cfg, replacing zero
// or invalid values with defaults.
func NewSurvivalEngineWithConfig(cfg SimulationConfig) *SurvivalEngine {
	def := DefaultSimulationConfig()
	if cfg.Trials <= 0 {
		cfg.Trials = def.Trials
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.ProbabilityThreshold <= 0 {
		cfg.ProbabilityThreshold = def.ProbabilityThreshold
	}
	if cfg.DataSource == "" {
		cfg.DataSource = def.DataSource
	}
	return &SurvivalEngine{config: cfg, Logger: NopLogger{}}
}

// SetLogger sets the logger; nil restores the no-op logger.
func (se *SurvivalEngine) SetLogger(l Logger) {
	if l == nil {
		se.Logger = NopLogger{}
		return
	}
	se.Logger = l
}

// Config returns the effective configuration.
func (se *SurvivalEngine) Config() SimulationConfig {
	return se.config
}

// Simulate computes the deterministic joint survival curve and the Monte
// Carlo encounter distribution for a and b. Identical inputs always give
// identical results. Missing table data is treated as certain death.
func (se *SurvivalEngine) Simulate(a, b Subject, visitsPerYear int) *domain.CalculationResult {
	if visitsPerYear < 0 {
		se.Logger.Warnf("negative visits per year %d treated as 0", visitsPerYear)
		visitsPerYear = 0
	}

	idxA := lifetable.NewIndex(a.Table)
	idxB := lifetable.NewIndex(b.Table)
	seed := simulationSeed(a.Age, b.Age, visitsPerYear)

	se.Logger.Debugf("simulate: ageA=%d ageB=%d visits=%d trials=%d workers=%d seed=%d",
		a.Age, b.Age, visitsPerYear, se.config.Trials, se.config.Workers, seed)

	curve := se.survivalCurve(idxA, a.Age, idxB, b.Age)
	years := se.runTrials(idxA, a.Age, idxB, b.Age, seed)

	visits := make([]int, len(years))
	for i, y := range years {
		visits[i] = y * visitsPerYear
	}
	sort.Ints(visits)
	sort.Ints(years)

	visitRange := domain.VisitRange{
		P25: percentileInt(visits, 0.25),
		P50: percentileInt(visits, 0.5),
		P75: percentileInt(visits, 0.75),
	}

	result := &domain.CalculationResult{
		ExpectedVisits:      visitRange.P50,
		ExpectedVisitsRange: visitRange,
		YearsWithBothAlive: domain.YearsRange{
			Expected: meanInt(years),
			Min:      percentileInt(years, 0.1),
			Max:      percentileInt(years, 0.9),
		},
		YearByYearSurvival: curve,
		Assumptions: domain.Assumptions{
			YouLifeExpectancy:  idxA.ResidualLifeExpectancy(float64(a.Age)),
			ThemLifeExpectancy: idxB.ResidualLifeExpectancy(float64(b.Age)),
			DataSource:         se.config.DataSource,
			DataYear:           dataYear(a.Table, b.Table),
			Trials:             len(years),
			Seed:               seed,
		},
	}

	se.Logger.Debugf("simulate: median=%d p25=%d p75=%d years=%.2f curve=%d points",
		visitRange.P50, visitRange.P25, visitRange.P75, result.YearsWithBothAlive.Expected, len(curve))

	return result
}

// survivalCurve walks year offsets until the younger person reaches the
// end of the table, stopping early once joint survival is negligible.
func (se *SurvivalEngine) survivalCurve(idxA *lifetable.Index, ageA int, idxB *lifetable.Index, ageB int) []domain.SurvivalPoint {
	horizon := min(domain.MaxTableAge-ageA, domain.MaxTableAge-ageB)
	if horizon < 0 {
		horizon = 0
	}

	curve := make([]domain.SurvivalPoint, 0, horizon+1)
	for t := 0; t <= horizon; t++ {
		youAlive := idxA.SurvivalProbability(float64(ageA), t)
		themAlive := idxB.SurvivalProbability(float64(ageB), t)
		bothAlive := youAlive * themAlive

		if bothAlive < se.config.ProbabilityThreshold && t > 0 {
			break
		}

		curve = append(curve, domain.SurvivalPoint{
			Year:      t,
			YouAlive:  youAlive,
			ThemAlive: themAlive,
			BothAlive: bothAlive,
		})
	}
	return curve
}

// runTrials returns the years both people are alive in each trial.
// With more than one worker the trials are cut into contiguous chunks,
// each with its own stream and its own slice range.
func (se *SurvivalEngine) runTrials(idxA *lifetable.Index, ageA int, idxB *lifetable.Index, ageB int, seed uint32) []int {
	trials := se.config.Trials
	years := make([]int, trials)

	workers := se.config.Workers
	if workers > trials {
		workers = trials
	}
	if workers <= 1 {
		runChunk(years, idxA, ageA, idxB, ageB, newStream(seed))
		return years
	}

	chunkSize := (trials + workers - 1) / workers
	var wg sync.WaitGroup
	for chunk := 0; chunk*chunkSize < trials; chunk++ {
		start := chunk * chunkSize
		end := min(start+chunkSize, trials)
		wg.Add(1)
		go func(out []int, s *stream) {
			defer wg.Done()
			runChunk(out, idxA, ageA, idxB, ageB, s)
		}(years[start:end], newStream(chunkSeed(seed, chunk)))
	}
	wg.Wait()

	return years
}

func runChunk(out []int, idxA *lifetable.Index, ageA int, idxB *lifetable.Index, ageB int, s *stream) {
	for i := range out {
		deathA := sampleDeathYear(idxA, ageA, s)
		deathB := sampleDeathYear(idxB, ageB, s)
		out[i] = min(deathA, deathB)
	}
}

// sampleDeathYear draws the number of whole years until death by walking
// the table forward from age and comparing a uniform draw with qx each
// year. A missing entry means death in that year; reaching the end of the
// table means death at the edge.
func sampleDeathYear(idx *lifetable.Index, age int, s *stream) int {
	maxYears := domain.MaxTableAge - age
	if maxYears < 0 {
		return 0
	}

	for t := 0; t < maxYears; t++ {
		entry, ok := idx.Entry(age + t)
		if !ok {
			return t
		}
		if s.Float64() < entry.Qx {
			return t
		}
	}
	return maxYears
}

func dataYear(tables ...*domain.LifeTable) int {
	for _, t := range tables {
		if t != nil && t.Year > 0 {
			return t.Year
		}
	}
	return domain.DefaultDataYear
}
