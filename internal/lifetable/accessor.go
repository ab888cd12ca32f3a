// Package lifetable provides lookups against period life tables.
//
// Lookups never fail: an age the table does not cover is treated as
// "no further data", which yields zero life expectancy and zero survival.
package lifetable

import (
	"math"

	"github.com/rgehrsitz/encounters/internal/domain"
)

// ResidualLifeExpectancy returns ex at floor(age), or 0 when the table has
// no entry for that age. Fractional ages are truncated, never interpolated.
func ResidualLifeExpectancy(table *domain.LifeTable, age float64) float64 {
	entry, ok := find(table, floorAge(age))
	if !ok {
		return 0
	}
	return entry.Ex
}

// SurvivalProbability returns the probability that a person aged
// currentAge is still alive yearsAhead years from now, computed as
// lx(floor(currentAge)+yearsAhead) / lx(floor(currentAge)). It returns 0
// when either age is missing from the table.
func SurvivalProbability(table *domain.LifeTable, currentAge float64, yearsAhead int) float64 {
	age := floorAge(currentAge)
	current, ok := find(table, age)
	if !ok {
		return 0
	}
	if yearsAhead == 0 {
		return 1
	}
	future, ok := find(table, age+yearsAhead)
	if !ok {
		return 0
	}
	return ratio(future.Lx, current.Lx)
}

// ratio guards the lx quotient against an exhausted cohort.
func ratio(future, current float64) float64 {
	if current <= 0 {
		return 0
	}
	return future / current
}

func find(table *domain.LifeTable, age int) (domain.LifeTableEntry, bool) {
	if table == nil {
		return domain.LifeTableEntry{}, false
	}
	for _, e := range table.Entries {
		if e.Age == age {
			return e, true
		}
	}
	return domain.LifeTableEntry{}, false
}

func floorAge(age float64) int {
	return int(math.Floor(age))
}
