package lifetable

import "github.com/rgehrsitz/encounters/internal/domain"

// Index is a by-age view of a life table with constant-time lookups.
// It answers every query exactly as the linear accessors do; on duplicate
// ages the first entry wins.
type Index struct {
	table   *domain.LifeTable
	entries map[int]domain.LifeTableEntry
}

// NewIndex builds an index over table. A nil table yields an empty index.
func NewIndex(table *domain.LifeTable) *Index {
	idx := &Index{table: table, entries: make(map[int]domain.LifeTableEntry)}
	if table == nil {
		return idx
	}
	for _, e := range table.Entries {
		if _, seen := idx.entries[e.Age]; !seen {
			idx.entries[e.Age] = e
		}
	}
	return idx
}

// Table returns the indexed table.
func (idx *Index) Table() *domain.LifeTable {
	return idx.table
}

// Entry returns the entry for an integer age.
func (idx *Index) Entry(age int) (domain.LifeTableEntry, bool) {
	e, ok := idx.entries[age]
	return e, ok
}

// ResidualLifeExpectancy is the indexed form of the package-level function.
func (idx *Index) ResidualLifeExpectancy(age float64) float64 {
	e, ok := idx.entries[floorAge(age)]
	if !ok {
		return 0
	}
	return e.Ex
}

// SurvivalProbability is the indexed form of the package-level function.
func (idx *Index) SurvivalProbability(currentAge float64, yearsAhead int) float64 {
	age := floorAge(currentAge)
	current, ok := idx.entries[age]
	if !ok {
		return 0
	}
	if yearsAhead == 0 {
		return 1
	}
	future, ok := idx.entries[age+yearsAhead]
	if !ok {
		return 0
	}
	return ratio(future.Lx, current.Lx)
}
