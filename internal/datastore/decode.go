package datastore

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/rgehrsitz/encounters/internal/domain"
	"github.com/rgehrsitz/encounters/internal/lifetable"
)

// Decode parses a life table JSON document and validates its structure.
// Any failure is reported as ErrMalformed.
func Decode(data []byte) (*domain.LifeTable, error) {
	table, err := decodeRaw(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return table, nil
}

func decodeRaw(data []byte) (*domain.LifeTable, error) {
	var table domain.LifeTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, err
	}
	if err := lifetable.Validate(&table); err != nil {
		return nil, err
	}
	return &table, nil
}

// Encode renders a table in the wire format read by Decode.
func Encode(table *domain.LifeTable) ([]byte, error) {
	return json.Marshal(table)
}

// decodeFor decodes data expected to hold the (country, sex) table.
func decodeFor(data []byte, country string, sex domain.Sex) (*domain.LifeTable, error) {
	table, err := decodeRaw(data)
	if err != nil {
		return nil, newDataError(ErrMalformed, country, sex, err)
	}
	if table.Country != country || table.Sex != sex {
		return nil, newDataError(ErrMalformed, country, sex,
			fmt.Errorf("document holds %s", table.Key()))
	}
	return table, nil
}
