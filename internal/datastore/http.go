package datastore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rgehrsitz/encounters/internal/domain"
	"github.com/valyala/fasthttp"
)

// DefaultFetchTimeout bounds a single table download.
const DefaultFetchTimeout = 5 * time.Second

// HTTPSource fetches "<BaseURL>/<ISO3>_<sex>.json" documents.
type HTTPSource struct {
	BaseURL string
	Timeout time.Duration
	Client  *fasthttp.Client
}

// NewHTTPSource returns a source for baseURL using a default client.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Timeout: timeout,
		Client: &fasthttp.Client{
			Name:                "encounters",
			MaxIdleConnDuration: 30 * time.Second,
		},
	}
}

// URL returns the address a table is fetched from.
func (h *HTTPSource) URL(country string, sex domain.Sex) string {
	return fmt.Sprintf("%s/%s.json", h.BaseURL, domain.TableKey(country, sex))
}

func (h *HTTPSource) LifeTable(ctx context.Context, country string, sex domain.Sex) (*domain.LifeTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	code, err := normalize(country, sex)
	if err != nil {
		return nil, err
	}

	timeout := h.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(h.URL(code, sex))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	if err := h.Client.DoTimeout(req, resp, timeout); err != nil {
		return nil, newDataError(ErrNetwork, code, sex, err)
	}

	status := resp.StatusCode()
	switch {
	case status == fasthttp.StatusNotFound:
		return nil, newDataError(ErrNotAvailable, code, sex, nil)
	case status < 200 || status > 299:
		return nil, newDataError(ErrNotAvailable, code, sex, fmt.Errorf("unexpected status %d", status))
	}
	return decodeFor(resp.Body(), code, sex)
}
