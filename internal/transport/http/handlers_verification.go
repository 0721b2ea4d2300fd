package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"votecast/internal/credential"
	"votecast/internal/verification"
	id "votecast/pkg/domain"
	dErrors "votecast/pkg/domain-errors"
	"votecast/pkg/platform/httputil"
	"votecast/pkg/requestcontext"
)

// VerificationService drives verification sessions through the factor order.
type VerificationService interface {
	StartSession(ctx context.Context, principalID id.PrincipalID) (*verification.Session, error)
	Get(ctx context.Context, sessionID id.SessionID) (*verification.Session, error)
	RecordOutcome(ctx context.Context, sessionID id.SessionID, kind verification.FactorKind, status verification.FactorStatus, evidence []byte) (*verification.Session, error)
	RecordAborted(ctx context.Context, sessionID id.SessionID) (*verification.Session, error)
	Skip(ctx context.Context, sessionID id.SessionID) (*verification.Session, error)
	Finalize(ctx context.Context, sessionID id.SessionID) (verification.Result, error)
}

// CredentialService performs the individual factor ceremonies.
type CredentialService interface {
	Register(ctx context.Context, principalID id.PrincipalID, displayName string) (*credential.Record, error)
	Authenticate(ctx context.Context, principalID id.PrincipalID) (*credential.Evidence, error)
	CaptureLikeness(ctx context.Context) (*credential.ImageEvidence, error)
	SubmitDocument(ctx context.Context, documentNumber string, image credential.ImageEvidence) (*credential.DocumentEvidence, error)
}

// VerificationHandler wires session and ceremony endpoints. Factor attempts
// check the session's expected step, then run the ceremony and record the
// outcome afterwards, so the session state always reflects what actually
// happened on the device.
type VerificationHandler struct {
	sessions    VerificationService
	credentials CredentialService
	logger      *slog.Logger
}

func NewVerificationHandler(sessions VerificationService, credentials CredentialService, logger *slog.Logger) *VerificationHandler {
	return &VerificationHandler{
		sessions:    sessions,
		credentials: credentials,
		logger:      logger,
	}
}

// Register mounts verification endpoints. All routes require authentication.
func (h *VerificationHandler) Register(r chi.Router) {
	r.Post("/credentials", h.handleRegisterCredential)
	r.Post("/verification/sessions", h.handleStartSession)
	r.Get("/verification/sessions/{sessionID}", h.handleGetSession)
	r.Post("/verification/sessions/{sessionID}/factors/{factor}", h.handleFactorAttempt)
	r.Post("/verification/sessions/{sessionID}/abort", h.handleAbort)
	r.Post("/verification/sessions/{sessionID}/skip", h.handleSkip)
	r.Post("/verification/sessions/{sessionID}/finalize", h.handleFinalize)
}

type registerCredentialRequest struct {
	DisplayName string `json:"display_name"`
}

func (h *VerificationHandler) handleRegisterCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principalID := requestcontext.PrincipalID(ctx)

	var req registerCredentialRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if req.DisplayName == "" {
		req.DisplayName = "primary credential"
	}

	record, err := h.credentials.Register(ctx, principalID, req.DisplayName)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, record)
}

func (h *VerificationHandler) handleStartSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, err := h.sessions.StartSession(ctx, requestcontext.PrincipalID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, session)
}

func (h *VerificationHandler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, err := h.ownedSession(ctx, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, session)
}

type documentRequest struct {
	DocumentNumber string `json:"document_number"`
	Image          []byte `json:"image"`
}

// factorAttemptResponse carries the updated session plus the ceremony detail
// for non-passing attempts.
type factorAttemptResponse struct {
	Session *verification.Session `json:"session"`
	Detail  string                `json:"detail,omitempty"`
}

func (h *VerificationHandler) handleFactorAttempt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, err := h.ownedSession(ctx, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	kind := verification.FactorKind(chi.URLParam(r, "factor"))
	if !kind.IsValid() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "unknown verification factor"))
		return
	}
	// An attempt the session would reject must not burn a ceremony, e.g.
	// increment the credential usage counter. RecordOutcome re-validates
	// under the store lock either way.
	if err := session.ExpectsFactor(kind); err != nil {
		httputil.WriteError(w, err)
		return
	}

	evidence, ceremonyErr := h.runCeremony(ctx, r, session, kind)
	switch {
	case ceremonyErr == nil:
		updated, err := h.sessions.RecordOutcome(ctx, session.ID, kind, verification.StatusPass, evidence)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, factorAttemptResponse{Session: updated})

	case ceremonyAborted(ceremonyErr):
		updated, err := h.sessions.RecordAborted(ctx, session.ID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, factorAttemptResponse{
			Session: updated,
			Detail:  ceremonyErr.Error(),
		})

	case dErrors.HasCode(ceremonyErr, dErrors.CodeCeremony):
		updated, err := h.sessions.RecordOutcome(ctx, session.ID, kind, verification.StatusFail, nil)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		h.logger.InfoContext(ctx, "verification factor failed",
			"request_id", requestcontext.RequestID(ctx),
			"session_id", session.ID.String(),
			"factor", string(kind),
			"error", ceremonyErr,
		)
		httputil.WriteJSON(w, http.StatusOK, factorAttemptResponse{
			Session: updated,
			Detail:  ceremonyErr.Error(),
		})

	default:
		// Invalid input or infrastructure failure: nothing is recorded on
		// the session, the attempt never happened.
		httputil.WriteError(w, ceremonyErr)
	}
}

func (h *VerificationHandler) handleAbort(w http.ResponseWriter, r *http.Request) {
	h.applySessionOp(w, r, h.sessions.RecordAborted)
}

func (h *VerificationHandler) handleSkip(w http.ResponseWriter, r *http.Request) {
	h.applySessionOp(w, r, h.sessions.Skip)
}

func (h *VerificationHandler) handleFinalize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, err := h.ownedSession(ctx, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.sessions.Finalize(ctx, session.ID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// runCeremony performs the device-facing part of a factor attempt and returns
// the evidence payload to record.
func (h *VerificationHandler) runCeremony(ctx context.Context, r *http.Request, session *verification.Session, kind verification.FactorKind) ([]byte, error) {
	switch kind {
	case verification.FactorPossession:
		evidence, err := h.credentials.Authenticate(ctx, session.PrincipalID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(evidence)

	case verification.FactorLikeness:
		image, err := h.credentials.CaptureLikeness(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(image)

	default:
		var req documentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid request body")
		}
		evidence, err := h.credentials.SubmitDocument(ctx, req.DocumentNumber, credential.ImageEvidence{Data: req.Image})
		if err != nil {
			return nil, err
		}
		return json.Marshal(evidence)
	}
}

func (h *VerificationHandler) applySessionOp(w http.ResponseWriter, r *http.Request, op func(context.Context, id.SessionID) (*verification.Session, error)) {
	ctx := r.Context()
	session, err := h.ownedSession(ctx, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	updated, err := op(ctx, session.ID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}

// ownedSession resolves the session from the URL and enforces that it belongs
// to the authenticated principal. Foreign sessions read as not found so their
// existence never leaks.
func (h *VerificationHandler) ownedSession(ctx context.Context, r *http.Request) (*verification.Session, error) {
	sessionID, err := id.ParseSessionID(chi.URLParam(r, "sessionID"))
	if err != nil {
		return nil, err
	}
	session, err := h.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.PrincipalID != requestcontext.PrincipalID(ctx) {
		return nil, dErrors.New(dErrors.CodeNotFound, "verification session not found")
	}
	return session, nil
}

func ceremonyAborted(err error) bool {
	return errors.Is(err, credential.ErrCeremonyAborted) || errors.Is(err, context.Canceled)
}
