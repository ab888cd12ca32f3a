package domain

import "fmt"

// MaxTableAge is the oldest age covered by the published life tables.
const MaxTableAge = 100

// Sex selects the male or female life table for a country.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// Valid reports whether s is one of the supported sexes.
func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale
}

// LifeTableEntry holds the mortality statistics for one integer age.
type LifeTableEntry struct {
	Age int     `yaml:"age" json:"age"`
	Qx  float64 `yaml:"qx" json:"qx"` // Probability of death between age x and x+1
	Lx  float64 `yaml:"lx" json:"lx"` // Survivors to age x out of the initial cohort
	Ex  float64 `yaml:"ex" json:"ex"` // Residual life expectancy at age x
}

// LifeTable is a per-country, per-sex period life table. Entries are
// ordered by ascending age. Tables are read-only once loaded.
type LifeTable struct {
	Country string           `yaml:"country" json:"country"`
	Sex     Sex              `yaml:"sex" json:"sex"`
	Year    int              `yaml:"year" json:"year"`
	Entries []LifeTableEntry `yaml:"entries" json:"entries"`
}

// Key returns the storage key of the table, e.g. "CHL_female".
func (lt *LifeTable) Key() string {
	return TableKey(lt.Country, lt.Sex)
}

// TableKey builds the canonical "<ISO3>_<sex>" identifier used for file
// names and cache keys.
func TableKey(country string, sex Sex) string {
	return fmt.Sprintf("%s_%s", country, sex)
}
