package httptransport

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"votecast/internal/ledger"
	"votecast/internal/transport/http/mocks"
	id "votecast/pkg/domain"
	dErrors "votecast/pkg/domain-errors"
	"votecast/pkg/testutil"
)

//go:generate mockgen -source=handlers_ballot.go -destination=mocks/ballot-mocks.go -package=mocks
type BallotHandlerSuite struct {
	suite.Suite
}

func TestBallotHandlerSuite(t *testing.T) {
	suite.Run(t, new(BallotHandlerSuite))
}

func (s *BallotHandlerSuite) newHandler(t *testing.T) (*mocks.MockLedgerService, *chi.Mux) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	votes := mocks.NewMockLedgerService(ctrl)
	handler := NewBallotHandler(votes, logger)
	r := chi.NewRouter()
	handler.Register(r)
	handler.RegisterPublic(r)
	return votes, r
}

func (s *BallotHandlerSuite) doRequest(t *testing.T, router *chi.Mux, method, path, body string, principalID id.PrincipalID) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if !principalID.IsZero() {
		req = testutil.AsPrincipal(req, principalID.String())
	}
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	raw, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return rr.Code, decoded
}

func (s *BallotHandlerSuite) TestHandler_Eligibility() {
	principalID := id.NewPrincipalID()
	ballotID := id.NewBallotID()

	s.T().Run("eligible principal - 200", func(t *testing.T) {
		votes, router := s.newHandler(t)
		votes.EXPECT().
			CheckEligibility(gomock.Any(), principalID, ballotID).
			Return(ledger.Eligibility{Eligible: true}, nil)

		status, body := s.doRequest(t, router, http.MethodGet,
			"/ballots/"+ballotID.String()+"/eligibility", "", principalID)

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, true, body["eligible"])
		assert.NotContains(t, body, "reason")
	})

	s.T().Run("ineligible principal carries reason - 200", func(t *testing.T) {
		votes, router := s.newHandler(t)
		votes.EXPECT().
			CheckEligibility(gomock.Any(), principalID, ballotID).
			Return(ledger.Eligibility{Reason: ledger.ReasonAlreadyVoted}, nil)

		status, body := s.doRequest(t, router, http.MethodGet,
			"/ballots/"+ballotID.String()+"/eligibility", "", principalID)

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, false, body["eligible"])
		assert.Equal(t, string(ledger.ReasonAlreadyVoted), body["reason"])
	})

	s.T().Run("returns 400 on malformed ballot id", func(t *testing.T) {
		votes, router := s.newHandler(t)
		votes.EXPECT().CheckEligibility(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		status, body := s.doRequest(t, router, http.MethodGet,
			"/ballots/not-a-uuid/eligibility", "", principalID)

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, string(dErrors.CodeInvalidInput), body["error"])
	})
}

func (s *BallotHandlerSuite) TestHandler_CastVote() {
	principalID := id.NewPrincipalID()
	ballotID := id.NewBallotID()

	s.T().Run("vote accepted - 201", func(t *testing.T) {
		votes, router := s.newHandler(t)
		record := &ledger.VoteRecord{
			VoterID:  principalID,
			BallotID: ballotID,
			Option:   "option-a",
			CastAt:   time.Now(),
			Origin:   "192.0.2.9",
		}
		votes.EXPECT().
			CastVote(gomock.Any(), principalID, ballotID, "option-a").
			Return(record, nil)

		status, body := s.doRequest(t, router, http.MethodPost,
			"/ballots/"+ballotID.String()+"/votes", `{"option":"option-a"}`, principalID)

		assert.Equal(t, http.StatusCreated, status)
		assert.Equal(t, "option-a", body["option"])
		assert.Equal(t, principalID.String(), body["voter_id"])
	})

	s.T().Run("denied vote - 403 with reason", func(t *testing.T) {
		votes, router := s.newHandler(t)
		votes.EXPECT().
			CastVote(gomock.Any(), principalID, ballotID, "option-a").
			Return(nil, dErrors.New(dErrors.CodeEligibility, "already voted on this ballot"))

		status, body := s.doRequest(t, router, http.MethodPost,
			"/ballots/"+ballotID.String()+"/votes", `{"option":"option-a"}`, principalID)

		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, string(dErrors.CodeEligibility), body["error"])
		assert.Equal(t, "already voted on this ballot", body["error_description"])
	})

	s.T().Run("rate limited vote - 429", func(t *testing.T) {
		votes, router := s.newHandler(t)
		votes.EXPECT().
			CastVote(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeRateLimited, "vote rate limit reached"))

		status, body := s.doRequest(t, router, http.MethodPost,
			"/ballots/"+ballotID.String()+"/votes", `{"option":"option-a"}`, principalID)

		assert.Equal(t, http.StatusTooManyRequests, status)
		assert.Equal(t, string(dErrors.CodeRateLimited), body["error"])
	})

	s.T().Run("returns 400 on invalid body", func(t *testing.T) {
		votes, router := s.newHandler(t)
		votes.EXPECT().CastVote(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		status, body := s.doRequest(t, router, http.MethodPost,
			"/ballots/"+ballotID.String()+"/votes", "{bad-json", principalID)

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, string(dErrors.CodeInvalidInput), body["error"])
	})
}

func (s *BallotHandlerSuite) TestHandler_Tally() {
	ballotID := id.NewBallotID()

	s.T().Run("tally readable without principal - 200", func(t *testing.T) {
		votes, router := s.newHandler(t)
		votes.EXPECT().
			Tally(gomock.Any(), ballotID).
			Return(map[string]int{"option-a": 3, "option-b": 1}, nil)

		status, body := s.doRequest(t, router, http.MethodGet,
			"/ballots/"+ballotID.String()+"/tally", "", id.PrincipalID{})

		assert.Equal(t, http.StatusOK, status)
		counts, ok := body["counts"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(3), counts["option-a"])
		assert.Equal(t, float64(1), counts["option-b"])
	})
}
