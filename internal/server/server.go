package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tournevent/carrierkit/internal/telemetry"
	"github.com/tournevent/carrierkit/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// maxBodySize bounds the shipment document accepted by the execute
// endpoint.
const maxBodySize = 1 << 20

// Server is the HTTP server exposing the registered carriers.
type Server struct {
	port     int
	registry *shipper.Registry
	logger   *otelzap.Logger
	metrics  *telemetry.Metrics
	gatherer prometheus.Gatherer
}

// Config holds server configuration.
type Config struct {
	Port int

	// Registerer and Gatherer default to the Prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// New creates a new server instance.
func New(cfg Config, registry *shipper.Registry, logger *otelzap.Logger) *Server {
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	return &Server{
		port:     cfg.Port,
		registry: registry,
		logger:   logger,
		metrics:  telemetry.NewMetrics(cfg.Registerer),
		gatherer: gatherer,
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /carriers", s.handleCarriers)
	mux.HandleFunc("GET /carriers/{carrier}/schema", s.handleSchema)
	mux.HandleFunc("POST /carriers/{carrier}/{action}", s.handleExecute)

	return mux
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port), zap.Strings("carriers", s.registry.Names()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type carrierInfo struct {
	Name    string   `json:"name"`
	Actions []string `json:"actions"`
}

func (s *Server) handleCarriers(w http.ResponseWriter, r *http.Request) {
	carriers := s.registry.All()
	out := make([]carrierInfo, 0, len(carriers))
	for _, c := range carriers {
		out = append(out, carrierInfo{Name: c.Name(), Actions: c.Actions()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	c, err := s.registry.Get(r.PathValue("carrier"))
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, c.Schema().Describe())
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name, action := r.PathValue("carrier"), r.PathValue("action")

	c, err := s.registry.Get(name)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	var raw map[string]any
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: errorBody{
			Kind:    "invalid_json",
			Message: "Invalid JSON: " + err.Error(),
		}})
		return
	}

	start := time.Now()
	result, err := c.Execute(ctx, raw, action)
	s.metrics.RecordExecution(name, action, shipper.Kind(err), time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, shipper.ErrCarrier) || errors.Is(err, shipper.ErrDecode) {
			s.metrics.RecordError(name, shipper.Kind(err))
		}
		s.writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Kind      string       `json:"kind"`
	Message   string       `json:"message"`
	Code      string       `json:"code,omitempty"`
	Retryable bool         `json:"retryable,omitempty"`
	Fields    []fieldError `json:"fields,omitempty"`
}

type fieldError struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// statusFor maps the error taxonomy to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shipper.ErrCarrierNotFound):
		return http.StatusNotFound
	case errors.Is(err, shipper.ErrValidation), errors.Is(err, shipper.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, shipper.ErrCarrier):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFor(err)
	body := errorBody{
		Kind:      shipper.Kind(err),
		Message:   err.Error(),
		Retryable: shipper.IsRetryable(err),
	}

	var ce *shipper.CarrierError
	if errors.As(err, &ce) {
		body.Code = ce.Code
		body.Message = ce.Message
	}
	for _, ve := range validationErrors(err) {
		body.Fields = append(body.Fields, fieldError{Path: ve.Path, Reason: ve.Reason})
	}

	if status >= http.StatusInternalServerError {
		s.logger.Ctx(ctx).Error("Request failed", zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: body})
}

// validationErrors flattens the joined errors returned by Normalize.
func validationErrors(err error) []*shipper.ValidationError {
	var ve *shipper.ValidationError
	if errors.As(err, &ve) {
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			var out []*shipper.ValidationError
			for _, e := range joined.Unwrap() {
				out = append(out, validationErrors(e)...)
			}
			return out
		}
		return []*shipper.ValidationError{ve}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
