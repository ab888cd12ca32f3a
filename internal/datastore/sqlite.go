package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rgehrsitz/encounters/internal/domain"
	"github.com/rgehrsitz/encounters/internal/lifetable"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS life_tables (
	country TEXT NOT NULL,
	sex     TEXT NOT NULL,
	year    INTEGER NOT NULL,
	PRIMARY KEY (country, sex)
);
CREATE TABLE IF NOT EXISTS life_table_entries (
	country TEXT NOT NULL,
	sex     TEXT NOT NULL,
	age     INTEGER NOT NULL,
	qx      REAL NOT NULL,
	lx      REAL NOT NULL,
	ex      REAL NOT NULL,
	PRIMARY KEY (country, sex, age),
	FOREIGN KEY (country, sex) REFERENCES life_tables (country, sex) ON DELETE CASCADE
);
`

// TableInfo summarises a stored table.
type TableInfo struct {
	Country string     `json:"country"`
	Sex     domain.Sex `json:"sex"`
	Year    int        `json:"year"`
	Ages    int        `json:"ages"`
}

// SQLiteStore keeps imported life tables in a SQLite database.
type SQLiteStore struct {
	sqlDB *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{sqlDB: sqlDB}, nil
}

// Close releases the SQLite connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Put validates and stores a table, replacing any previous version.
func (s *SQLiteStore) Put(ctx context.Context, table *domain.LifeTable) (err error) {
	if err := lifetable.Validate(table); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	code, err := normalize(table.Country, table.Sex)
	if err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM life_table_entries WHERE country = ? AND sex = ?`, code, string(table.Sex)); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `
INSERT INTO life_tables (country, sex, year) VALUES (?, ?, ?)
ON CONFLICT (country, sex) DO UPDATE SET year = excluded.year`,
		code, string(table.Sex), table.Year); err != nil {
		return fmt.Errorf("upsert table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO life_table_entries (country, sex, age, qx, lx, ex) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare entry insert: %w", err)
	}
	defer stmt.Close()
	for _, e := range table.Entries {
		if _, err = stmt.ExecContext(ctx, code, string(table.Sex), e.Age, e.Qx, e.Lx, e.Ex); err != nil {
			return fmt.Errorf("insert age %d: %w", e.Age, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LifeTable reads a stored table.
func (s *SQLiteStore) LifeTable(ctx context.Context, country string, sex domain.Sex) (*domain.LifeTable, error) {
	code, err := normalize(country, sex)
	if err != nil {
		return nil, err
	}

	table := &domain.LifeTable{Country: code, Sex: sex}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT year FROM life_tables WHERE country = ? AND sex = ?`, code, string(sex))
	if err := row.Scan(&table.Year); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, newDataError(ErrNotAvailable, code, sex, nil)
		}
		return nil, fmt.Errorf("read table %s: %w", domain.TableKey(code, sex), err)
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT age, qx, lx, ex FROM life_table_entries
WHERE country = ? AND sex = ?
ORDER BY age`, code, string(sex))
	if err != nil {
		return nil, fmt.Errorf("read entries %s: %w", domain.TableKey(code, sex), err)
	}
	defer rows.Close()
	for rows.Next() {
		var e domain.LifeTableEntry
		if err := rows.Scan(&e.Age, &e.Qx, &e.Lx, &e.Ex); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		table.Entries = append(table.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	if len(table.Entries) == 0 {
		return nil, newDataError(ErrMalformed, code, sex, errors.New("table has no entries"))
	}
	return table, nil
}

// List returns the stored tables ordered by country and sex.
func (s *SQLiteStore) List(ctx context.Context) ([]TableInfo, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT t.country, t.sex, t.year, COUNT(e.age)
FROM life_tables t
LEFT JOIN life_table_entries e ON e.country = t.country AND e.sex = t.sex
GROUP BY t.country, t.sex, t.year
ORDER BY t.country, t.sex`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var infos []TableInfo
	for rows.Next() {
		var info TableInfo
		var sex string
		if err := rows.Scan(&info.Country, &sex, &info.Year, &info.Ages); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		info.Sex = domain.Sex(sex)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}
