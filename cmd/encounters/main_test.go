package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/encounters/internal/datastore"
	"github.com/rgehrsitz/encounters/internal/domain"
	"github.com/rgehrsitz/encounters/internal/service"
)

const tablesDir = "testdata/life-tables"

// run executes the CLI with args and returns what it wrote to stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ENCOUNTERS_DATA_DIR", "")
	t.Setenv("ENCOUNTERS_TABLE_URL", "")
	t.Setenv("ENCOUNTERS_DB_PATH", "")

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := newRootCmd()
	assert.Equal(t, "encounters", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	expected := []string{"calculate", "validate", "sweep", "tables", "serve", "version"}
	registered := map[string]bool{}
	for _, c := range cmd.Commands() {
		registered[c.Name()] = true
	}
	for _, name := range expected {
		assert.True(t, registered[name], "command %s should be registered", name)
	}

	for _, flag := range []string{"data-dir", "table-url", "db", "trials", "workers", "log-level", "debug"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestRootCommand_Help(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "calculate")
}

func TestRootCommand_InvalidCommand(t *testing.T) {
	_, err := run(t, "invalid-command")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "encounters dev (commit none, built unknown)"))
}

func TestValidate(t *testing.T) {
	out, err := run(t, "validate", "testdata/scenario.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "is valid (12 visits per year)")

	_, err = run(t, "validate", "testdata/invalid_scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "older than you")

	_, err = run(t, "validate", "testdata/does_not_exist.yaml")
	assert.Error(t, err)
}

func TestCalculate_JSON(t *testing.T) {
	out, err := run(t, "calculate", "testdata/scenario.yaml", "--data-dir", tablesDir, "--format", "json", "--trials", "2000")
	require.NoError(t, err)

	var report domain.EncounterReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.NotNil(t, report.Result)
	res := report.Result
	assert.Equal(t, 12, report.Input.VisitsPerYear)
	assert.Equal(t, 2000, res.Assumptions.Trials)
	assert.Equal(t, 2024, res.Assumptions.DataYear)
	assert.Equal(t, domain.DefaultDataSource, res.Assumptions.DataSource)
	assert.Greater(t, res.ExpectedVisits, 0)
	assert.LessOrEqual(t, res.ExpectedVisitsRange.P25, res.ExpectedVisits)
	assert.LessOrEqual(t, res.ExpectedVisits, res.ExpectedVisitsRange.P75)
	assert.Equal(t, 0, res.ExpectedVisits%12, "visits are whole years times the frequency")
	require.NotEmpty(t, res.YearByYearSurvival)
	assert.Equal(t, 1.0, res.YearByYearSurvival[0].BothAlive)
}

func TestCalculate_Deterministic(t *testing.T) {
	args := []string{"calculate", "testdata/scenario.yaml", "--data-dir", tablesDir, "--format", "json", "--trials", "1000"}
	first, err := run(t, args...)
	require.NoError(t, err)
	second, err := run(t, args...)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	parallel, err := run(t, append(args, "--workers", "4")...)
	require.NoError(t, err)
	again, err := run(t, append(args, "--workers", "4")...)
	require.NoError(t, err)
	assert.Equal(t, parallel, again)
}

func TestCalculate_Formats(t *testing.T) {
	out, err := run(t, "calculate", "testdata/scenario.yaml", "--data-dir", tablesDir, "--trials", "500")
	require.NoError(t, err)
	assert.Contains(t, out, "Expected encounters:")

	out, err = run(t, "calculate", "testdata/scenario.yaml", "--data-dir", tablesDir, "--trials", "500", "-f", "csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "ExpectedVisits,P25,P50,P75"))

	_, err = run(t, "calculate", "testdata/scenario.yaml", "--data-dir", tablesDir, "-f", "html")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestCalculate_Errors(t *testing.T) {
	_, err := run(t, "calculate", "testdata/missing_country.yaml", "--data-dir", tablesDir)
	assert.ErrorIs(t, err, datastore.ErrNotAvailable)

	_, err = run(t, "calculate", "testdata/invalid_scenario.yaml", "--data-dir", tablesDir)
	assert.Error(t, err)

	_, err = run(t, "calculate", "testdata/scenario.yaml", "--data-dir", tablesDir, "--trials", "-5")
	assert.Error(t, err)

	_, err = run(t, "calculate", "testdata/scenario.yaml", "--data-dir", tablesDir, "--log-level", "loud")
	assert.Error(t, err)

	_, err = run(t, "calculate", "testdata/scenario.yaml", "--db", filepath.Join(t.TempDir(), "missing", "tables.db"))
	assert.ErrorContains(t, err, "sqlite")
}

func TestSweep(t *testing.T) {
	out, err := run(t, "sweep", "testdata/scenario.yaml", "--data-dir", tablesDir, "--trials", "500", "--visits", "1, 12,52", "-f", "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "1,"))
	assert.True(t, strings.HasPrefix(lines[2], "12,"))
	assert.True(t, strings.HasPrefix(lines[3], "52,"))

	_, err = run(t, "sweep", "testdata/scenario.yaml", "--data-dir", tablesDir, "--visits", "1,x")
	assert.Error(t, err)

	_, err = run(t, "sweep", "testdata/scenario.yaml", "--data-dir", tablesDir, "--visits", "1000")
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestParseFrequencies(t *testing.T) {
	got, err := parseFrequencies("1, 4,,12 ,52")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 12, 52}, got)

	got, err = parseFrequencies("")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTables(t *testing.T) {
	db := filepath.Join(t.TempDir(), "tables.db")

	out, err := run(t, "tables", "import", tablesDir, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "imported CHL_female (101 ages, 2024)")
	assert.Contains(t, out, "2 tables imported")

	out, err = run(t, "tables", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "COUNTRY")
	assert.Contains(t, out, "CHL      female  2024  101")
	assert.Contains(t, out, "CHL      male    2024  101")

	out, err = run(t, "tables", "show", "chl", "Male", "--db", db)
	require.NoError(t, err)
	table, err := datastore.Decode([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, "CHL", table.Country)
	assert.Equal(t, domain.SexMale, table.Sex)

	// Calculations read from the database when no directory is given.
	out, err = run(t, "calculate", "testdata/scenario.yaml", "--db", db, "--trials", "500", "-f", "console-lite")
	require.NoError(t, err)
	assert.Contains(t, out, "Expected encounters:")

	_, err = run(t, "tables", "list")
	assert.Error(t, err)
}
