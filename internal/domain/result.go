package domain

// DefaultDataSource labels the demographic source of the bundled life tables.
const DefaultDataSource = "UN World Population Prospects 2024"

// DefaultDataYear is reported when a table carries no year.
const DefaultDataYear = 2024

// SurvivalPoint is one year of the deterministic survival curve.
// BothAlive is always YouAlive * ThemAlive.
type SurvivalPoint struct {
	Year      int     `json:"year"`
	YouAlive  float64 `json:"youAlive"`
	ThemAlive float64 `json:"themAlive"`
	BothAlive float64 `json:"bothAlive"`
}

// VisitRange holds visit-count percentiles from the Monte Carlo trials.
type VisitRange struct {
	P25 int `json:"p25"`
	P50 int `json:"p50"`
	P75 int `json:"p75"`
}

// YearsRange summarises the simulated years with both people alive.
// Min and Max are the 10th and 90th percentiles.
type YearsRange struct {
	Expected float64 `json:"expected"`
	Min      int     `json:"min"`
	Max      int     `json:"max"`
}

// Assumptions records what the calculation was based on.
type Assumptions struct {
	YouLifeExpectancy  float64 `json:"youLifeExpectancy"`
	ThemLifeExpectancy float64 `json:"themLifeExpectancy"`
	DataSource         string  `json:"dataSource"`
	DataYear           int     `json:"dataYear"`
	Trials             int     `json:"trials"`
	Seed               uint32  `json:"seed"`
}

// CalculationResult is the output of one encounter simulation.
type CalculationResult struct {
	ExpectedVisits      int             `json:"expectedVisits"` // Monte Carlo median
	ExpectedVisitsRange VisitRange      `json:"expectedVisitsRange"`
	YearsWithBothAlive  YearsRange      `json:"yearsWithBothAlive"`
	YearByYearSurvival  []SurvivalPoint `json:"yearByYearSurvival"`
	Assumptions         Assumptions     `json:"assumptions"`
}

// EncounterReport pairs a request with its result for presentation.
type EncounterReport struct {
	Input            RelationshipInput  `json:"input"`
	Result           *CalculationResult `json:"result"`
	TimeAlreadySpent float64            `json:"timeAlreadySpent"`
}

// NewEncounterReport builds the report for input and result.
func NewEncounterReport(input RelationshipInput, result *CalculationResult) *EncounterReport {
	return &EncounterReport{
		Input:            input,
		Result:           result,
		TimeAlreadySpent: TimeAlreadySpent(input.You.Age, input.RelationType),
	}
}

// FrequencySweepPoint is one row of a visit-frequency sensitivity table.
type FrequencySweepPoint struct {
	VisitsPerYear      int        `json:"visitsPerYear"`
	ExpectedVisits     int        `json:"expectedVisits"`
	Range              VisitRange `json:"range"`
	YearsWithBothAlive YearsRange `json:"yearsWithBothAlive"`
}

// FrequencySweep is the result of running one pair across several
// visit frequencies.
type FrequencySweep struct {
	Input  RelationshipInput     `json:"input"`
	Points []FrequencySweepPoint `json:"points"`
}
