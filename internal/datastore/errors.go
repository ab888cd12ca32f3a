package datastore

import (
	"errors"
	"fmt"

	"github.com/rgehrsitz/encounters/internal/domain"
)

// Failure kinds, matched with errors.Is.
var (
	ErrNotAvailable = errors.New("life table data not available")
	ErrNetwork      = errors.New("network error")
	ErrMalformed    = errors.New("malformed life table")
)

// DataError reports a failed life table load.
type DataError struct {
	Kind    error // ErrNotAvailable, ErrNetwork or ErrMalformed
	Country string
	Sex     domain.Sex
	Err     error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("life table %s: %v: %v", domain.TableKey(e.Country, e.Sex), e.Kind, e.Err)
	}
	return fmt.Sprintf("life table %s: %v", domain.TableKey(e.Country, e.Sex), e.Kind)
}

func (e *DataError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newDataError(kind error, country string, sex domain.Sex, err error) error {
	return &DataError{Kind: kind, Country: country, Sex: sex, Err: err}
}
