package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Error messages returned to callers
const (
	msgInvalidEndpoint = "Invalid endpoint"
	msgUnexpected      = "Unexpected error"
)

// MonitorFetcher looks up live departures for one boarding point
type MonitorFetcher interface {
	Monitor(ctx context.Context, rbl string) (json.RawMessage, error)
}

// errorBody is the structured failure shape, always sent with HTTP 200
type errorBody struct {
	Error   bool        `json:"error"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Handler serves the relay endpoints
type Handler struct {
	fetcher MonitorFetcher
	log     *zap.Logger
}

// NewHandler creates a new relay handler
func NewHandler(fetcher MonitorFetcher, log *zap.Logger) *Handler {
	return &Handler{fetcher: fetcher, log: log}
}

// Router builds the chi router with middleware and routes
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger(h.log))
	r.Use(chimiddleware.Recoverer)
	r.Use(permissiveCORS())

	r.Get("/monitor", h.GetMonitor)

	// Legacy health check endpoint
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Options("/*", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.NotFound(h.invalidEndpoint)
	r.MethodNotAllowed(h.invalidEndpoint)

	return r
}

// GetMonitor handles GET /monitor?rbl=<boarding point id>
func (h *Handler) GetMonitor(w http.ResponseWriter, r *http.Request) {
	rbl := strings.TrimSpace(r.URL.Query().Get("rbl"))
	if rbl == "" {
		h.invalidEndpoint(w, r)
		return
	}

	body, err := h.fetcher.Monitor(r.Context(), rbl)
	if err != nil {
		h.log.Warn("monitor lookup failed",
			zap.String("rbl", rbl),
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeError(w, errorMessage(err))
		return
	}

	h.log.Debug("monitor lookup succeeded", zap.String("rbl", rbl), zap.Int("bytes", len(body)))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (h *Handler) invalidEndpoint(w http.ResponseWriter, r *http.Request) {
	writeError(w, msgInvalidEndpoint)
}

// errorMessage maps upstream failures to the caller-facing message
func errorMessage(err error) string {
	var fetchErr *RemoteFetchError
	var formatErr *RemoteFormatError
	switch {
	case errors.As(err, &fetchErr):
		return fetchErr.Error()
	case errors.As(err, &formatErr):
		return formatErr.Error()
	default:
		return msgUnexpected + ": " + err.Error()
	}
}

func writeError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(errorBody{
		Error:   true,
		Message: message,
		Data:    nil,
	})
}
