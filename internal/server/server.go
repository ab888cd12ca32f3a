// Package server exposes the encounter calculation over HTTP.
package server

import (
	"context"
	"errors"
	"time"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/rgehrsitz/encounters/internal/datastore"
	"github.com/rgehrsitz/encounters/internal/domain"
	"github.com/rgehrsitz/encounters/internal/service"
)

const (
	pathHealth     = "/healthz"
	pathEncounters = "/api/v1/encounters"

	// DefaultRequestTimeout bounds table loading and simulation per request.
	DefaultRequestTimeout = 10 * time.Second
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Server serves the encounter API.
type Server struct {
	svc     *service.Service
	logger  *zap.Logger
	timeout time.Duration
	srv     *fasthttp.Server
}

// New creates a server. A nil logger disables request logging.
func New(svc *service.Service, logger *zap.Logger, timeout time.Duration) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	s := &Server{svc: svc, logger: logger, timeout: timeout}
	s.srv = &fasthttp.Server{
		Handler:            s.Handler(),
		Name:               "encounters",
		ReadTimeout:        timeout,
		WriteTimeout:       timeout,
		MaxRequestBodySize: 64 << 10,
	}
	return s
}

// ListenAndServe blocks serving requests on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("server starting", zap.String("addr", addr))
	return s.srv.ListenAndServe(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.ShutdownWithContext(ctx)
}

// Handler returns the routed, logged request handler.
func (s *Server) Handler() fasthttp.RequestHandler {
	return s.withLogging(s.route)
}

func (s *Server) route(ctx *fasthttp.RequestCtx) {
	switch string(ctx.Path()) {
	case pathHealth:
		if !ctx.IsGet() && !ctx.IsHead() {
			writeError(ctx, fasthttp.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"})
	case pathEncounters:
		if !ctx.IsPost() {
			writeError(ctx, fasthttp.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handleEncounters(ctx)
	default:
		writeError(ctx, fasthttp.StatusNotFound, "not found")
	}
}

func (s *Server) handleEncounters(ctx *fasthttp.RequestCtx) {
	var input domain.RelationshipInput
	if err := json.Unmarshal(ctx.PostBody(), &input); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	report, err := s.svc.Calculate(reqCtx, &input)
	if err != nil {
		status := statusFor(err)
		if status >= fasthttp.StatusInternalServerError {
			s.logger.Error("calculation failed", zap.Error(err))
		}
		writeError(ctx, status, err.Error())
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, report)
}

// statusFor maps a calculation error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return fasthttp.StatusBadRequest
	case errors.Is(err, datastore.ErrNotAvailable):
		return fasthttp.StatusNotFound
	case errors.Is(err, datastore.ErrMalformed):
		return fasthttp.StatusUnprocessableEntity
	case errors.Is(err, datastore.ErrNetwork):
		return fasthttp.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return fasthttp.StatusGatewayTimeout
	default:
		return fasthttp.StatusInternalServerError
	}
}

func (s *Server) withLogging(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		next(ctx)
		s.logger.Info("request",
			zap.ByteString("method", ctx.Method()),
			zap.ByteString("path", ctx.Path()),
			zap.Int("status", ctx.Response.StatusCode()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, "encode response: "+err.Error())
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	body, _ := json.Marshal(ErrorResponse{Status: status, Message: message})
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}
