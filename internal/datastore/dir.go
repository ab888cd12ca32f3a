package datastore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rgehrsitz/encounters/internal/domain"
)

// DirSource reads "<ISO3>_<sex>.json" documents from a directory.
type DirSource struct {
	Root string
}

// NewDirSource returns a source rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{Root: dir}
}

// Path returns the file a table is read from.
func (d *DirSource) Path(country string, sex domain.Sex) string {
	return filepath.Join(d.Root, domain.TableKey(country, sex)+".json")
}

func (d *DirSource) LifeTable(ctx context.Context, country string, sex domain.Sex) (*domain.LifeTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	code, err := normalize(country, sex)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(d.Path(code, sex))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, newDataError(ErrNotAvailable, code, sex, nil)
		}
		return nil, newDataError(ErrNotAvailable, code, sex, err)
	}
	return decodeFor(data, code, sex)
}

// LoadDir decodes every table document in dir. Files that do not end in
// .json are ignored.
func LoadDir(dir string) ([]*domain.LifeTable, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	tables := make([]*domain.LifeTable, 0, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		table, err := Decode(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		tables = append(tables, table)
	}
	return tables, nil
}
