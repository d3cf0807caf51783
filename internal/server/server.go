package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/margin-pricing/internal/engine"
	"github.com/iwvelando/margin-pricing/pkg/constants"
	"github.com/iwvelando/margin-pricing/pkg/margins"
	"go.uber.org/zap"
)

type contextKey string

const requestIDKey contextKey = "requestID"

type handler struct {
	logger      *zap.Logger
	engine      *engine.Engine
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler that serves the pricing API.
func NewHandler(logger *zap.Logger, eng *engine.Engine, maxBodySize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, engine: eng, maxBodySize: maxBodySize, version: trimmedVersion}

	mux := http.NewServeMux()

	// Pricing operations: price, classify, simulate-discount
	mux.HandleFunc("/api/pricing", h.handlePricing)

	// Margin table endpoints
	mux.HandleFunc("/api/ranges/default", h.handleDefaultRanges)
	mux.HandleFunc("/api/ranges/validate", h.handleValidateRanges)
	mux.HandleFunc("/api/tenants", h.handleTenants)

	// Version endpoint for client metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	return withRequestID(mux)
}

// Run serves handler on cfg.Address until ctx is cancelled, then shuts down
// gracefully within cfg.ShutdownTimeout.
func Run(ctx context.Context, logger *zap.Logger, cfg Config, handler http.Handler) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening",
			zap.String("op", "server.Run"),
			zap.String("address", cfg.Address),
			zap.Int64("maxBodySize", int64(cfg.MaxBodySize)),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	logger.Info("shutting down http server", zap.String("op", "server.Run"))
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(constants.RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(constants.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey).(string)
	return id
}

type defaultRangesResponse struct {
	Version string                `json:"version"`
	Ranges  []margins.MarginRange `json:"ranges"`
}

type validateRangesRequest struct {
	Ranges []margins.MarginRange `json:"ranges"`
}

type validateRangesResponse struct {
	Valid  bool `json:"valid"`
	Ranges int  `json:"ranges"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Index *int   `json:"index,omitempty"`
}

func (h *handler) handlePricing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	op := "server.handlePricing"
	start := time.Now()

	var req engine.Request
	if status, err := h.decodeBody(w, r, &req); err != nil {
		h.respondErrorWithOp(w, r, status, err, op)
		return
	}

	if h.engine == nil {
		h.respondErrorWithOp(w, r, http.StatusServiceUnavailable, errors.New("pricing engine is not configured"), op)
		return
	}

	resp, err := h.engine.Run(req)
	if err != nil {
		h.respondErrorWithOp(w, r, statusForError(err), err, op)
		return
	}

	h.logger.Info("pricing request completed",
		zap.String("op", op),
		zap.String("requestID", requestID(r)),
		zap.String("operation", resp.Operation),
		zap.String("tableSource", resp.TableSource),
		zap.Duration("duration", time.Since(start)),
	)

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleDefaultRanges(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, defaultRangesResponse{
		Version: margins.DefaultRangesVersion,
		Ranges:  margins.DefaultTable.Ranges(),
	})
}

func (h *handler) handleValidateRanges(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	op := "server.handleValidateRanges"

	var req validateRangesRequest
	if status, err := h.decodeBody(w, r, &req); err != nil {
		h.respondErrorWithOp(w, r, status, err, op)
		return
	}

	table, err := margins.NewTable(req.Ranges)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err, op)
		return
	}

	h.writeJSON(w, http.StatusOK, validateRangesResponse{Valid: true, Ranges: table.Len()})
}

func (h *handler) handleTenants(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	tenants := []engine.Tenant{}
	if h.engine != nil {
		tenants = h.engine.Tenants()
	}
	h.writeJSON(w, http.StatusOK, map[string][]engine.Tenant{"tenants": tenants})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version":       h.version,
		"rangesVersion": margins.DefaultRangesVersion,
	})
}

// decodeBody reads one JSON object from the size-limited request body. The
// returned status applies when err is non-nil.
func (h *handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) (int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds limit of %d bytes", h.maxBodySize)
		}
		return http.StatusBadRequest, fmt.Errorf("failed to decode request: %w", err)
	}
	return http.StatusOK, nil
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, engine.ErrUnknownTenant):
		return http.StatusNotFound
	case engine.IsClientError(err):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, r *http.Request, status int, err error, op string) {
	fields := []zap.Field{
		zap.String("op", op),
		zap.String("requestID", requestID(r)),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("pricing request failed", fields...)
	} else {
		h.logger.Info("pricing request rejected", fields...)
	}

	body := errorResponse{Error: err.Error()}
	var tableErr *margins.TableError
	if errors.As(err, &tableErr) {
		body.Kind = tableErr.Kind.String()
		if tableErr.Index >= 0 {
			index := tableErr.Index
			body.Index = &index
		}
	}
	h.writeJSON(w, status, body)
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
