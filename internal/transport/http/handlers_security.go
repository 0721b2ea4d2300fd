package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"votecast/internal/anomaly"
	"votecast/internal/audit"
	dErrors "votecast/pkg/domain-errors"
	"votecast/pkg/platform/httputil"
	"votecast/pkg/requestcontext"
)

const (
	defaultLogLimit = 100
	maxLogLimit     = 500
)

// AnomalyService scans the vote ledger for suspicious patterns.
type AnomalyService interface {
	Scan(ctx context.Context) ([]anomaly.Alert, error)
}

// AuditLog reads back recorded security events.
type AuditLog interface {
	ListRecent(ctx context.Context, limit int) ([]audit.Event, error)
	ListByKind(ctx context.Context, kind audit.Kind, limit int) ([]audit.Event, error)
}

// SecurityHandler wires the admin-only review endpoints.
type SecurityHandler struct {
	anomalies AnomalyService
	logs      AuditLog
	logger    *slog.Logger
}

func NewSecurityHandler(anomalies AnomalyService, logs AuditLog, logger *slog.Logger) *SecurityHandler {
	return &SecurityHandler{
		anomalies: anomalies,
		logs:      logs,
		logger:    logger,
	}
}

// Register mounts the security endpoints. The router guards these with the
// admin middleware.
func (h *SecurityHandler) Register(r chi.Router) {
	r.Get("/security/alerts", h.handleAlerts)
	r.Get("/security/logs", h.handleLogs)
}

type alertsResponse struct {
	Alerts []anomaly.Alert `json:"alerts"`
}

func (h *SecurityHandler) handleAlerts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	alerts, err := h.anomalies.Scan(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "anomaly scan failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, alertsResponse{Alerts: alerts})
}

type logsResponse struct {
	Events []audit.Event `json:"events"`
}

func (h *SecurityHandler) handleLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultLogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "limit must be a positive integer"))
			return
		}
		limit = min(parsed, maxLogLimit)
	}

	var (
		events []audit.Event
		err    error
	)
	if raw := r.URL.Query().Get("kind"); raw != "" {
		kind := audit.Kind(raw)
		if !kind.IsValid() {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "unknown log kind"))
			return
		}
		events, err = h.logs.ListByKind(ctx, kind, limit)
	} else {
		events, err = h.logs.ListRecent(ctx, limit)
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, logsResponse{Events: events})
}
