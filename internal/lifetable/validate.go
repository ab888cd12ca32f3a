package lifetable

import (
	"fmt"
	"math"

	"github.com/rgehrsitz/encounters/internal/domain"
)

// Validate checks that a table is structurally sound: at least one entry,
// strictly ascending ages within 0..MaxTableAge, qx in [0,1], finite
// non-negative lx and ex, and lx non-increasing with age. Gaps between
// ages are allowed.
func Validate(table *domain.LifeTable) error {
	if table == nil {
		return fmt.Errorf("life table is nil")
	}
	if !table.Sex.Valid() {
		return fmt.Errorf("invalid sex %q", table.Sex)
	}
	if len(table.Entries) == 0 {
		return fmt.Errorf("life table %s has no entries", table.Key())
	}

	prev := domain.LifeTableEntry{Age: -1, Lx: math.Inf(1)}
	for i, e := range table.Entries {
		if e.Age < 0 || e.Age > domain.MaxTableAge {
			return fmt.Errorf("entry %d: age %d outside 0..%d", i, e.Age, domain.MaxTableAge)
		}
		if e.Age <= prev.Age {
			return fmt.Errorf("entry %d: age %d not ascending after %d", i, e.Age, prev.Age)
		}
		if !finite(e.Qx) || e.Qx < 0 || e.Qx > 1 {
			return fmt.Errorf("entry %d (age %d): qx %v outside [0,1]", i, e.Age, e.Qx)
		}
		if !finite(e.Lx) || e.Lx < 0 {
			return fmt.Errorf("entry %d (age %d): lx %v must be non-negative", i, e.Age, e.Lx)
		}
		if e.Lx > prev.Lx {
			return fmt.Errorf("entry %d (age %d): lx %v increases from %v", i, e.Age, e.Lx, prev.Lx)
		}
		if !finite(e.Ex) || e.Ex < 0 {
			return fmt.Errorf("entry %d (age %d): ex %v must be non-negative", i, e.Age, e.Ex)
		}
		prev = e
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
