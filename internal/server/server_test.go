package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rgehrsitz/encounters/internal/calculation"
	"github.com/rgehrsitz/encounters/internal/datastore"
	"github.com/rgehrsitz/encounters/internal/domain"
	"github.com/rgehrsitz/encounters/internal/lifetable/lifetabletest"
	"github.com/rgehrsitz/encounters/internal/service"
)

// fakeSource serves Gompertz tables for CHL and fails with err for
// every other country when err is set.
type fakeSource struct {
	err error
}

func (f fakeSource) LifeTable(_ context.Context, country string, sex domain.Sex) (*domain.LifeTable, error) {
	if country == "CHL" {
		return lifetabletest.Gompertz(country, sex), nil
	}
	if f.err != nil {
		return nil, f.err
	}
	return nil, &datastore.DataError{Kind: datastore.ErrNotAvailable, Country: country, Sex: sex}
}

type testClient struct {
	client *fasthttp.Client
}

func startServer(t *testing.T, src datastore.Source, logger *zap.Logger) *testClient {
	t.Helper()
	svc := service.New(src, calculation.NewSurvivalEngineWithConfig(calculation.SimulationConfig{Trials: 2000}))
	s := New(svc, logger, time.Second)

	ln := fasthttputil.NewInmemoryListener()
	go func() { _ = s.srv.Serve(ln) }()
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

	return &testClient{client: &fasthttp.Client{
		Dial: func(string) (net.Conn, error) { return ln.Dial() },
	}}
}

func (c *testClient) do(t *testing.T, method, path, body string) (int, []byte) {
	t.Helper()
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI("http://encounters.test" + path)
	req.Header.SetMethod(method)
	if body != "" {
		req.Header.SetContentType("application/json")
		req.SetBodyString(body)
	}
	require.NoError(t, c.client.DoTimeout(req, resp, 5*time.Second))
	return resp.StatusCode(), append([]byte(nil), resp.Body()...)
}

const validBody = `{
	"you": {"age": 35, "sex": "female", "country": "CHL"},
	"them": {"age": 65, "sex": "male", "country": "CHL"},
	"relationType": "father",
	"visitsPerYear": 12
}`

func TestHealthz(t *testing.T) {
	c := startServer(t, fakeSource{}, nil)

	status, body := c.do(t, fasthttp.MethodGet, "/healthz", "")
	assert.Equal(t, fasthttp.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	status, _ = c.do(t, fasthttp.MethodPost, "/healthz", "")
	assert.Equal(t, fasthttp.StatusMethodNotAllowed, status)
}

func TestEncounters_OK(t *testing.T) {
	c := startServer(t, fakeSource{}, nil)

	status, body := c.do(t, fasthttp.MethodPost, "/api/v1/encounters", validBody)
	require.Equal(t, fasthttp.StatusOK, status, string(body))

	var report domain.EncounterReport
	require.NoError(t, json.Unmarshal(body, &report))
	require.NotNil(t, report.Result)
	assert.Equal(t, 12, report.Input.VisitsPerYear)
	assert.Equal(t, 2000, report.Result.Assumptions.Trials)
	assert.NotEmpty(t, report.Result.YearByYearSurvival)
	assert.LessOrEqual(t, report.Result.ExpectedVisitsRange.P25, report.Result.ExpectedVisits)
	assert.LessOrEqual(t, report.Result.ExpectedVisits, report.Result.ExpectedVisitsRange.P75)

	// Identical requests give identical answers.
	_, again := c.do(t, fasthttp.MethodPost, "/api/v1/encounters", validBody)
	assert.Equal(t, body, again)
}

func TestEncounters_Errors(t *testing.T) {
	tests := []struct {
		name   string
		src    datastore.Source
		method string
		body   string
		status int
	}{
		{"wrong method", fakeSource{}, fasthttp.MethodGet, "", fasthttp.StatusMethodNotAllowed},
		{"bad json", fakeSource{}, fasthttp.MethodPost, `{"you":`, fasthttp.StatusBadRequest},
		{"validation", fakeSource{}, fasthttp.MethodPost,
			`{"you":{"age":35,"sex":"female","country":"CHL"},"them":{"age":165,"sex":"male","country":"CHL"},"visitsPerYear":12}`,
			fasthttp.StatusBadRequest},
		{"not available", fakeSource{}, fasthttp.MethodPost,
			`{"you":{"age":35,"sex":"female","country":"CHL"},"them":{"age":65,"sex":"male","country":"ARG"},"visitsPerYear":12}`,
			fasthttp.StatusNotFound},
		{"malformed table", fakeSource{err: &datastore.DataError{Kind: datastore.ErrMalformed}}, fasthttp.MethodPost,
			`{"you":{"age":35,"sex":"female","country":"CHL"},"them":{"age":65,"sex":"male","country":"ARG"},"visitsPerYear":12}`,
			fasthttp.StatusUnprocessableEntity},
		{"network", fakeSource{err: &datastore.DataError{Kind: datastore.ErrNetwork, Err: errors.New("refused")}}, fasthttp.MethodPost,
			`{"you":{"age":35,"sex":"female","country":"CHL"},"them":{"age":65,"sex":"male","country":"ARG"},"visitsPerYear":12}`,
			fasthttp.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := startServer(t, tt.src, nil)
			status, body := c.do(t, tt.method, "/api/v1/encounters", tt.body)
			assert.Equal(t, tt.status, status)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(body, &resp))
			assert.Equal(t, tt.status, resp.Status)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestUnknownPath(t *testing.T) {
	c := startServer(t, fakeSource{}, nil)
	status, _ := c.do(t, fasthttp.MethodGet, "/nope", "")
	assert.Equal(t, fasthttp.StatusNotFound, status)
}

func TestRequestLogging(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	c := startServer(t, fakeSource{}, zap.New(core))

	c.do(t, fasthttp.MethodGet, "/healthz", "")

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/healthz", fields["path"])
	assert.EqualValues(t, fasthttp.StatusOK, fields["status"])
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: bad", service.ErrInvalidInput), fasthttp.StatusBadRequest},
		{&datastore.DataError{Kind: datastore.ErrNotAvailable}, fasthttp.StatusNotFound},
		{&datastore.DataError{Kind: datastore.ErrMalformed}, fasthttp.StatusUnprocessableEntity},
		{&datastore.DataError{Kind: datastore.ErrNetwork}, fasthttp.StatusBadGateway},
		{context.DeadlineExceeded, fasthttp.StatusGatewayTimeout},
		{errors.New("boom"), fasthttp.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
