package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"votecast/internal/ledger"
	id "votecast/pkg/domain"
	"votecast/pkg/platform/httputil"
	"votecast/pkg/requestcontext"
)

// LedgerService exposes the vote ledger operations.
type LedgerService interface {
	CheckEligibility(ctx context.Context, principalID id.PrincipalID, ballotID id.BallotID) (ledger.Eligibility, error)
	CastVote(ctx context.Context, principalID id.PrincipalID, ballotID id.BallotID, option string) (*ledger.VoteRecord, error)
	Tally(ctx context.Context, ballotID id.BallotID) (map[string]int, error)
}

// BallotHandler wires voting endpoints to the ledger service.
type BallotHandler struct {
	votes  LedgerService
	logger *slog.Logger
}

func NewBallotHandler(votes LedgerService, logger *slog.Logger) *BallotHandler {
	return &BallotHandler{votes: votes, logger: logger}
}

// Register mounts the authenticated voting endpoints.
func (h *BallotHandler) Register(r chi.Router) {
	r.Get("/ballots/{ballotID}/eligibility", h.handleEligibility)
	r.Post("/ballots/{ballotID}/votes", h.handleCastVote)
}

// RegisterPublic mounts the endpoints that need no authentication. Tallies
// are aggregate counts only and carry no voter identities.
func (h *BallotHandler) RegisterPublic(r chi.Router) {
	r.Get("/ballots/{ballotID}/tally", h.handleTally)
}

func (h *BallotHandler) handleEligibility(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ballotID, err := id.ParseBallotID(chi.URLParam(r, "ballotID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	eligibility, err := h.votes.CheckEligibility(ctx, requestcontext.PrincipalID(ctx), ballotID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, eligibility)
}

type castVoteRequest struct {
	Option string `json:"option"`
}

func (h *BallotHandler) handleCastVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ballotID, err := id.ParseBallotID(chi.URLParam(r, "ballotID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req castVoteRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	principalID := requestcontext.PrincipalID(ctx)
	record, err := h.votes.CastVote(ctx, principalID, ballotID, req.Option)
	if err != nil {
		h.logger.InfoContext(ctx, "vote rejected",
			"request_id", requestcontext.RequestID(ctx),
			"principal_id", principalID.String(),
			"ballot_id", ballotID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, record)
}

type tallyResponse struct {
	BallotID id.BallotID    `json:"ballot_id"`
	Counts   map[string]int `json:"counts"`
}

func (h *BallotHandler) handleTally(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ballotID, err := id.ParseBallotID(chi.URLParam(r, "ballotID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	counts, err := h.votes.Tally(ctx, ballotID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tallyResponse{BallotID: ballotID, Counts: counts})
}
