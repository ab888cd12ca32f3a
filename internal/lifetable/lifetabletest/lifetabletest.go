// Package lifetabletest builds synthetic life tables for tests.
package lifetabletest

import (
	"math"

	"github.com/rgehrsitz/encounters/internal/domain"
)

// Radix is the cohort size at age 0.
const Radix = 100000.0

// FromQx builds a complete table for ages 0..len(qx)-1, deriving lx from
// the radix and ex with the usual mid-year approximation.
func FromQx(country string, sex domain.Sex, qx []float64) *domain.LifeTable {
	entries := make([]domain.LifeTableEntry, len(qx))
	lx := Radix
	for age, q := range qx {
		entries[age] = domain.LifeTableEntry{Age: age, Qx: q, Lx: lx}
		lx *= 1 - q
	}

	// ex(x) = sum of person-years lived above x divided by lx.
	var tail float64
	for age := len(entries) - 1; age >= 0; age-- {
		e := &entries[age]
		next := e.Lx * (1 - e.Qx)
		tail += (e.Lx + next) / 2
		if e.Lx > 0 {
			e.Ex = tail / e.Lx
		}
	}

	return &domain.LifeTable{Country: country, Sex: sex, Year: domain.DefaultDataYear, Entries: entries}
}

// GompertzQx returns Gompertz-Makeham style death probabilities for ages
// 0..MaxTableAge with certain death in the final year.
func GompertzQx(sex domain.Sex) []float64 {
	a, b := 0.00005, 0.095
	if sex == domain.SexFemale {
		a = 0.00003
	}
	qx := make([]float64, domain.MaxTableAge+1)
	for age := range qx {
		q := 0.0005 + a*math.Exp(b*float64(age))
		if age == 0 {
			q = 0.005
		}
		qx[age] = math.Min(q, 1)
	}
	qx[domain.MaxTableAge] = 1
	return qx
}

// Gompertz returns a plausible full-coverage table.
func Gompertz(country string, sex domain.Sex) *domain.LifeTable {
	return FromQx(country, sex, GompertzQx(sex))
}

// ZeroMortality returns a Gompertz table in which nobody dies between
// ages from and to inclusive.
func ZeroMortality(country string, sex domain.Sex, from, to int) *domain.LifeTable {
	qx := GompertzQx(sex)
	for age := from; age <= to && age < len(qx); age++ {
		qx[age] = 0
	}
	return FromQx(country, sex, qx)
}

// Truncated returns a Gompertz table covering only ages 0..maxAge.
func Truncated(country string, sex domain.Sex, maxAge int) *domain.LifeTable {
	return FromQx(country, sex, GompertzQx(sex)[:maxAge+1])
}
