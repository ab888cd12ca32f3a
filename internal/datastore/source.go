// Package datastore loads life tables from files, HTTP endpoints and a
// SQLite database. Every failure is a *DataError whose kind tells callers
// whether the data is missing, unreachable or malformed.
package datastore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rgehrsitz/encounters/internal/domain"
)

// Source provides life tables by ISO 3166-1 alpha-3 country code and sex.
type Source interface {
	LifeTable(ctx context.Context, country string, sex domain.Sex) (*domain.LifeTable, error)
}

// normalize canonicalises a lookup key and rejects malformed ones.
func normalize(country string, sex domain.Sex) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(country))
	if len(code) != 3 {
		return code, newDataError(ErrNotAvailable, code, sex, fmt.Errorf("invalid country code %q", country))
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return code, newDataError(ErrNotAvailable, code, sex, fmt.Errorf("invalid country code %q", country))
		}
	}
	if !sex.Valid() {
		return code, newDataError(ErrNotAvailable, code, sex, fmt.Errorf("invalid sex %q", sex))
	}
	return code, nil
}

// Chain tries each source in order and returns the first table found.
// Only ErrNotAvailable falls through to the next source.
type Chain []Source

func (c Chain) LifeTable(ctx context.Context, country string, sex domain.Sex) (*domain.LifeTable, error) {
	var lastErr error = newDataError(ErrNotAvailable, country, sex, errors.New("no sources configured"))
	for _, src := range c {
		table, err := src.LifeTable(ctx, country, sex)
		if err == nil {
			return table, nil
		}
		if !errors.Is(err, ErrNotAvailable) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// CachedSource memoises successful loads of an underlying source.
// Tables are immutable, so cached values are shared between callers.
type CachedSource struct {
	next  Source
	cache sync.Map
}

// NewCachedSource wraps next with an in-memory cache.
func NewCachedSource(next Source) *CachedSource {
	return &CachedSource{next: next}
}

func (c *CachedSource) LifeTable(ctx context.Context, country string, sex domain.Sex) (*domain.LifeTable, error) {
	code, err := normalize(country, sex)
	if err != nil {
		return nil, err
	}
	key := domain.TableKey(code, sex)
	if v, ok := c.cache.Load(key); ok {
		return v.(*domain.LifeTable), nil
	}
	table, err := c.next.LifeTable(ctx, code, sex)
	if err != nil {
		return nil, err
	}
	c.cache.Store(key, table)
	return table, nil
}

// Pair loads both people's tables.
func Pair(ctx context.Context, src Source, you, them domain.PersonInput) (*domain.LifeTable, *domain.LifeTable, error) {
	yours, err := src.LifeTable(ctx, you.Country, you.Sex)
	if err != nil {
		return nil, nil, err
	}
	theirs, err := src.LifeTable(ctx, them.Country, them.Sex)
	if err != nil {
		return nil, nil, err
	}
	return yours, theirs, nil
}
