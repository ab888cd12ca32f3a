package integration

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/rgehrsitz/encounters/internal/calculation"
	"github.com/rgehrsitz/encounters/internal/config"
	"github.com/rgehrsitz/encounters/internal/datastore"
	"github.com/rgehrsitz/encounters/internal/domain"
	"github.com/rgehrsitz/encounters/internal/lifetable/lifetabletest"
	"github.com/rgehrsitz/encounters/internal/output"
	"github.com/rgehrsitz/encounters/internal/service"
)

var scenarios = []string{
	"../testdata/mother_weekly.yaml",
	"../testdata/friends.yaml",
}

// environment holds the same tables exposed through every source kind.
type environment struct {
	dir   string
	store *datastore.SQLiteStore
	http  *datastore.HTTPSource
}

func setupTestEnvironment(t *testing.T) *environment {
	t.Helper()
	dir := t.TempDir()
	store, err := datastore.OpenSQLite(filepath.Join(dir, "tables.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	tablesDir := filepath.Join(dir, "life-tables")
	require.NoError(t, os.MkdirAll(tablesDir, 0o755))
	for _, sex := range []domain.Sex{domain.SexFemale, domain.SexMale} {
		table := lifetabletest.Gompertz("CHL", sex)
		data, err := datastore.Encode(table)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(tablesDir, table.Key()+".json"), data, 0o644))
		require.NoError(t, store.Put(context.Background(), table))
	}

	// Serve the directory over HTTP.
	ln := fasthttputil.NewInmemoryListener()
	fs := &fasthttp.FS{Root: tablesDir, PathRewrite: fasthttp.NewPathSlashesStripper(1)}
	srv := &fasthttp.Server{Handler: fs.NewRequestHandler()}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = srv.Shutdown() })

	httpSrc := datastore.NewHTTPSource("http://tables.test/tables", time.Second)
	httpSrc.Client.Dial = func(string) (net.Conn, error) { return ln.Dial() }

	return &environment{dir: tablesDir, store: store, http: httpSrc}
}

func (e *environment) sources() map[string]datastore.Source {
	return map[string]datastore.Source{
		"dir":    datastore.NewDirSource(e.dir),
		"sqlite": e.store,
		"http":   e.http,
		"chain":  datastore.NewCachedSource(datastore.Chain{e.store, datastore.NewDirSource(e.dir), e.http}),
	}
}

// TestIntegrationSuite runs every scenario through every source.
func TestIntegrationSuite(t *testing.T) {
	env := setupTestEnvironment(t)

	t.Run("Sources_Agree", func(t *testing.T) { testSourcesAgree(t, env) })
	t.Run("Output_Generation", func(t *testing.T) { testOutputGeneration(t, env) })
	t.Run("Sweep_Consistency", func(t *testing.T) { testSweepConsistency(t, env) })
	t.Run("Error_Handling", func(t *testing.T) { testErrorHandling(t, env) })
}

func loadScenario(t *testing.T, path string) *domain.RelationshipInput {
	t.Helper()
	input, err := config.NewInputParser().LoadFromFile(path)
	require.NoError(t, err)
	return input
}

func testSourcesAgree(t *testing.T, env *environment) {
	engine := calculation.NewSurvivalEngineWithConfig(calculation.SimulationConfig{Trials: 2000})
	for _, path := range scenarios {
		var reference *domain.EncounterReport
		for name, src := range env.sources() {
			report, err := service.New(src, engine).Calculate(context.Background(), loadScenario(t, path))
			require.NoError(t, err, "%s via %s", path, name)
			if reference == nil {
				reference = report
				continue
			}
			assert.Equal(t, reference.Result, report.Result, "%s via %s", path, name)
		}
	}
}

func testOutputGeneration(t *testing.T, env *environment) {
	svc := service.New(datastore.NewDirSource(env.dir), calculation.NewSurvivalEngineWithConfig(calculation.SimulationConfig{Trials: 1000}))
	report, err := svc.Calculate(context.Background(), loadScenario(t, scenarios[0]))
	require.NoError(t, err)
	assert.Equal(t, 52, report.Input.VisitsPerYear)

	for _, name := range output.AvailableFormatterNames() {
		data, err := output.GetFormatterByName(name).Format(report)
		require.NoError(t, err, name)
		assert.NotEmpty(t, data, name)
	}
}

func testSweepConsistency(t *testing.T, env *environment) {
	svc := service.New(datastore.NewDirSource(env.dir), calculation.NewSurvivalEngineWithConfig(calculation.SimulationConfig{Trials: 1000}))
	input := loadScenario(t, scenarios[1])

	sweep, err := svc.Sweep(context.Background(), input, []int{6, 12})
	require.NoError(t, err)
	require.Len(t, sweep.Points, 2)

	report, err := svc.Calculate(context.Background(), loadScenario(t, scenarios[1]))
	require.NoError(t, err)
	assert.Equal(t, report.Result.ExpectedVisitsRange, sweep.Points[0].Range)
	assert.Equal(t, report.Result.YearsWithBothAlive, sweep.Points[0].YearsWithBothAlive)
}

func testErrorHandling(t *testing.T, env *environment) {
	for name, src := range env.sources() {
		svc := service.New(src, nil)
		input := loadScenario(t, scenarios[1])
		input.Them.Country = "ARG"
		_, err := svc.Calculate(context.Background(), input)
		assert.ErrorIs(t, err, datastore.ErrNotAvailable, name)
	}
}
