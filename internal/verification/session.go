package verification

import (
	"time"

	id "votecast/pkg/domain"
	dErrors "votecast/pkg/domain-errors"
)

// FactorKind is one independent verification mechanism.
type FactorKind string

const (
	FactorPossession FactorKind = "possession"
	FactorLikeness   FactorKind = "likeness"
	FactorDocument   FactorKind = "document"
)

// factorOrder fixes the sequence factors are attempted in.
var factorOrder = [...]FactorKind{FactorPossession, FactorLikeness, FactorDocument}

// IsValid checks if the factor kind is one of the supported enum values.
func (k FactorKind) IsValid() bool {
	switch k {
	case FactorPossession, FactorLikeness, FactorDocument:
		return true
	}
	return false
}

// FactorStatus records how a factor attempt ended. Skipped and not-attempted
// are distinct: a skip is a deliberate caller decision recorded for audit; a
// not-attempted factor was aborted mid-ceremony and does not count against
// retry limits.
type FactorStatus string

const (
	StatusPass         FactorStatus = "pass"
	StatusFail         FactorStatus = "fail"
	StatusSkipped      FactorStatus = "skipped"
	StatusNotAttempted FactorStatus = "not_attempted"
)

// FactorResult is the immutable outcome of one factor attempt. Evidence is
// opaque; its format is owned by the factor that produced it.
type FactorResult struct {
	Kind       FactorKind   `json:"kind"`
	Status     FactorStatus `json:"status"`
	Evidence   []byte       `json:"evidence,omitempty"`
	CapturedAt time.Time    `json:"captured_at"`
}

// Step is the orchestrator's state machine position. A session begins at the
// possession step (Idle exists only before StartSession) and walks the factor
// order; Complete is terminal.
type Step string

const (
	StepPossession Step = "factor_possession"
	StepLikeness   Step = "factor_likeness"
	StepDocument   Step = "factor_document"
	StepComplete   Step = "complete"
)

func stepFor(kind FactorKind) Step {
	switch kind {
	case FactorPossession:
		return StepPossession
	case FactorLikeness:
		return StepLikeness
	default:
		return StepDocument
	}
}

func (s Step) factor() (FactorKind, bool) {
	switch s {
	case StepPossession:
		return FactorPossession, true
	case StepLikeness:
		return FactorLikeness, true
	case StepDocument:
		return FactorDocument, true
	}
	return "", false
}

// Result is the terminal payload of a session.
type Result struct {
	FullyVerified bool `json:"fully_verified"`
	PassedCount   int  `json:"passed_count"`
}

// Session tracks one verification attempt for one principal. The
// orchestrator is its sole writer; terminal sessions are retained unchanged
// as audit records.
type Session struct {
	ID          id.SessionID                `json:"id"`
	PrincipalID id.PrincipalID              `json:"principal_id"`
	Results     map[FactorKind]FactorResult `json:"results"`
	CurrentStep Step                        `json:"current_step"`
	// Finalized is distinct from reaching Complete: passing the last factor
	// completes the step walk, but only Finalize settles the session. The
	// orchestrator keys its one-shot side effects on this flag.
	Finalized bool      `json:"finalized"`
	StartedAt time.Time `json:"started_at"`
}

// NewSession starts a verification session at the first factor.
func NewSession(principalID id.PrincipalID, now time.Time) *Session {
	return &Session{
		ID:          id.NewSessionID(),
		PrincipalID: principalID,
		Results:     make(map[FactorKind]FactorResult),
		CurrentStep: StepPossession,
		StartedAt:   now,
	}
}

// IsTerminal reports whether the session has reached Complete.
func (s *Session) IsTerminal() bool { return s.CurrentStep == StepComplete }

// ExpectsFactor checks that the session's current step accepts kind. It
// mutates nothing, so callers can reject an out-of-order attempt before
// spending a ceremony on it.
func (s *Session) ExpectsFactor(kind FactorKind) error {
	if s.IsTerminal() {
		return dErrors.New(dErrors.CodeInvalidState, "verification session already complete")
	}
	current, _ := s.CurrentStep.factor()
	if kind != current {
		return dErrors.New(dErrors.CodeInvalidState,
			"session expects factor "+string(current)+", got "+string(kind))
	}
	return nil
}

// RecordOutcome applies a pass/fail outcome for a factor. Only the factor
// matching the current step may be recorded. A pass advances to the next
// factor (or Complete); a fail keeps the session at the same step so the
// caller may retry or skip.
func (s *Session) RecordOutcome(kind FactorKind, status FactorStatus, evidence []byte, now time.Time) error {
	if err := s.ExpectsFactor(kind); err != nil {
		return err
	}
	if status != StatusPass && status != StatusFail {
		return dErrors.New(dErrors.CodeInvalidInput, "factor outcome must be pass or fail")
	}

	s.Results[kind] = FactorResult{Kind: kind, Status: status, Evidence: evidence, CapturedAt: now}
	if status == StatusPass {
		s.advance()
	}
	return nil
}

// RecordAborted marks the current factor as not attempted. The session stays
// at the same step; an abort is not a failure and costs no retries.
func (s *Session) RecordAborted(now time.Time) error {
	if s.IsTerminal() {
		return dErrors.New(dErrors.CodeInvalidState, "verification session already complete")
	}
	current, _ := s.CurrentStep.factor()
	s.Results[current] = FactorResult{Kind: current, Status: StatusNotAttempted, CapturedAt: now}
	return nil
}

// Skip jumps from any factor step directly to Complete, carrying a partial
// result. Every factor without a recorded pass/fail is marked skipped so no
// verification data is silently dropped.
func (s *Session) Skip(now time.Time) error {
	if s.IsTerminal() {
		return dErrors.New(dErrors.CodeInvalidState, "verification session already complete")
	}
	for _, kind := range factorOrder {
		result, attempted := s.Results[kind]
		if !attempted || result.Status == StatusNotAttempted {
			s.Results[kind] = FactorResult{Kind: kind, Status: StatusSkipped, CapturedAt: now}
		}
	}
	s.CurrentStep = StepComplete
	return nil
}

// Finalize settles the session and returns the terminal result, completing
// the step walk first if needed. Finalizing an already-finalized session
// returns the identical result and mutates nothing further.
func (s *Session) Finalize(now time.Time) Result {
	if !s.IsTerminal() {
		_ = s.Skip(now)
	}
	s.Finalized = true
	return s.Result()
}

// Result computes the terminal payload from the recorded factors.
func (s *Session) Result() Result {
	passed := 0
	for _, kind := range factorOrder {
		if s.Results[kind].Status == StatusPass {
			passed++
		}
	}
	return Result{
		FullyVerified: passed == len(factorOrder),
		PassedCount:   passed,
	}
}

// advance moves to the next factor step, or Complete after the last one.
func (s *Session) advance() {
	current, _ := s.CurrentStep.factor()
	for i, kind := range factorOrder {
		if kind == current {
			if i == len(factorOrder)-1 {
				s.CurrentStep = StepComplete
			} else {
				s.CurrentStep = stepFor(factorOrder[i+1])
			}
			return
		}
	}
}
