package httptransport

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"votecast/internal/anomaly"
	"votecast/internal/audit"
	"votecast/internal/transport/http/mocks"
	dErrors "votecast/pkg/domain-errors"
	"votecast/pkg/testutil"
)

//go:generate mockgen -source=handlers_security.go -destination=mocks/security-mocks.go -package=mocks
type SecurityHandlerSuite struct {
	suite.Suite
}

func TestSecurityHandlerSuite(t *testing.T) {
	suite.Run(t, new(SecurityHandlerSuite))
}

func (s *SecurityHandlerSuite) newHandler(t *testing.T) (*mocks.MockAnomalyService, *mocks.MockAuditLog, *chi.Mux) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	anomalies := mocks.NewMockAnomalyService(ctrl)
	logs := mocks.NewMockAuditLog(ctrl)
	handler := NewSecurityHandler(anomalies, logs, logger)
	r := chi.NewRouter()
	handler.Register(r)
	return anomalies, logs, r
}

func (s *SecurityHandlerSuite) TestAlerts() {
	s.T().Run("returns the scan result", func(t *testing.T) {
		anomalies, _, router := s.newHandler(t)
		anomalies.EXPECT().Scan(gomock.Any()).Return([]anomaly.Alert{
			{
				Kind:     anomaly.KindRapidVoting,
				Subject:  "3f1f9c2e-55aa-4f06-9c70-0b9a54d2f6c1",
				Message:  "6 votes inside the window",
				Severity: anomaly.SeverityHigh,
			},
		}, nil)

		rec := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/security/alerts", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		body := testutil.DecodeResponse[alertsResponse](t, rec)
		assert.Len(t, body.Alerts, 1)
		assert.Equal(t, anomaly.KindRapidVoting, body.Alerts[0].Kind)
	})

	s.T().Run("empty scan yields an empty list", func(t *testing.T) {
		anomalies, _, router := s.newHandler(t)
		anomalies.EXPECT().Scan(gomock.Any()).Return(nil, nil)

		rec := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/security/alerts", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"alerts":null}`, rec.Body.String())
	})

	s.T().Run("scan failure surfaces as internal", func(t *testing.T) {
		anomalies, _, router := s.newHandler(t)
		anomalies.EXPECT().Scan(gomock.Any()).
			Return(nil, dErrors.Wrap(errors.New("boom"), dErrors.CodeInternal, "scan failed"))

		rec := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/security/alerts", nil))

		testutil.AssertErrorResponse(t, rec, http.StatusInternalServerError, "internal")
		assert.NotContains(t, rec.Body.String(), "boom")
	})
}

func (s *SecurityHandlerSuite) TestLogs() {
	s.T().Run("lists recent events with the default limit", func(t *testing.T) {
		_, logs, router := s.newHandler(t)
		logs.EXPECT().ListRecent(gomock.Any(), defaultLogLimit).Return([]audit.Event{
			{Kind: audit.KindVote, Message: "vote accepted"},
		}, nil)

		rec := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/security/logs", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		body := testutil.DecodeResponse[logsResponse](t, rec)
		assert.Len(t, body.Events, 1)
		assert.Equal(t, audit.KindVote, body.Events[0].Kind)
	})

	s.T().Run("filters by kind", func(t *testing.T) {
		_, logs, router := s.newHandler(t)
		logs.EXPECT().ListByKind(gomock.Any(), audit.KindRateLimit, 10).Return(nil, nil)

		rec := testutil.DoRequest(router,
			testutil.NewJSONRequest(t, http.MethodGet, "/security/logs?kind=rate_limit&limit=10", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	s.T().Run("caps an oversized limit", func(t *testing.T) {
		_, logs, router := s.newHandler(t)
		logs.EXPECT().ListRecent(gomock.Any(), maxLogLimit).Return(nil, nil)

		rec := testutil.DoRequest(router,
			testutil.NewJSONRequest(t, http.MethodGet, "/security/logs?limit=9999", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	s.T().Run("rejects a malformed limit", func(t *testing.T) {
		_, logs, router := s.newHandler(t)
		logs.EXPECT().ListRecent(gomock.Any(), gomock.Any()).Times(0)

		rec := testutil.DoRequest(router,
			testutil.NewJSONRequest(t, http.MethodGet, "/security/logs?limit=lots", nil))

		testutil.AssertErrorResponse(t, rec, http.StatusBadRequest, "invalid_input")
	})

	s.T().Run("rejects an unknown kind", func(t *testing.T) {
		_, logs, router := s.newHandler(t)
		logs.EXPECT().ListByKind(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		rec := testutil.DoRequest(router,
			testutil.NewJSONRequest(t, http.MethodGet, "/security/logs?kind=gossip", nil))

		testutil.AssertErrorResponse(t, rec, http.StatusBadRequest, "invalid_input")
	})
}
