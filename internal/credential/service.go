package credential

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"votecast/internal/platform/config"
	id "votecast/pkg/domain"
	dErrors "votecast/pkg/domain-errors"
	"votecast/pkg/requestcontext"
)

// MaxDocumentImageBytes caps uploaded document images, matching the original
// upload form's limit.
const MaxDocumentImageBytes = 5 << 20

var documentNumberPattern = regexp.MustCompile(`^\d{12}$`)

// Service performs the individual verification factors: possession
// credential ceremonies, likeness capture, and document checks. It persists
// credential records but never writes vote or security log entries itself;
// the orchestrator and its callers own those side effects.
type Service struct {
	store   Store
	authn   Authenticator
	camera  Camera
	matcher Matcher
	timeout config.VerifierConfig
	logger  *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithAuthenticator overrides the possession ceremony implementation.
func WithAuthenticator(authn Authenticator) Option {
	return func(s *Service) { s.authn = authn }
}

// WithCamera overrides the capture device.
func WithCamera(camera Camera) Option {
	return func(s *Service) { s.camera = camera }
}

// WithMatcher overrides the accept/reject decision function. Tests use this
// to force deterministic outcomes.
func WithMatcher(matcher Matcher) Option {
	return func(s *Service) { s.matcher = matcher }
}

func New(store Store, cfg config.VerifierConfig, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("credential store is required")
	}
	if cfg.CeremonyTimeout <= 0 {
		cfg.CeremonyTimeout = config.DefaultCeremonyTimeout
	}
	svc := &Service{
		store:   store,
		authn:   SimulatedAuthenticator{},
		camera:  SimulatedCamera{},
		matcher: NewStochasticMatcher(cfg.LikenessPassRate, cfg.DocumentPassRate),
		timeout: cfg,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Register runs the credential creation ceremony and persists the resulting
// record. The ceremony is bounded by the configured timeout.
func (s *Service) Register(ctx context.Context, principalID id.PrincipalID, displayName string) (*Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout.CeremonyTimeout)
	defer cancel()

	publicKey, err := s.authn.CreateCredential(ctx, principalID, displayName)
	if err != nil {
		return nil, s.ceremonyError(err, "credential registration")
	}

	record := &Record{
		ID:          id.NewCredentialID(),
		PrincipalID: principalID,
		PublicKey:   publicKey,
		CreatedAt:   requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, record); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store credential")
	}
	return record, nil
}

// Authenticate proves possession of a previously registered credential and
// returns the resulting evidence. The credential's usage counter advances on
// success.
func (s *Service) Authenticate(ctx context.Context, principalID id.PrincipalID) (*Evidence, error) {
	records, err := s.store.ListByPrincipal(ctx, principalID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load credentials")
	}
	if len(records) == 0 {
		return nil, dErrors.Wrap(ErrNoCredential, dErrors.CodeNotFound,
			"no credential registered: complete registration first")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout.CeremonyTimeout)
	defer cancel()

	record := records[0]
	token, err := s.authn.ProveCredential(ctx, record)
	if err != nil {
		return nil, s.ceremonyError(err, "possession proof")
	}

	if _, err := s.store.IncrementUsage(ctx, record.ID); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update credential usage")
	}

	return &Evidence{
		CredentialID: record.ID,
		Token:        token,
		CapturedAt:   requestcontext.Now(ctx),
	}, nil
}

// CaptureLikeness takes a still image and runs the likeness match against it.
func (s *Service) CaptureLikeness(ctx context.Context) (*ImageEvidence, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout.CeremonyTimeout)
	defer cancel()

	image, err := s.camera.Capture(ctx)
	if err != nil {
		return nil, s.ceremonyError(err, "likeness capture")
	}
	image.CapturedAt = requestcontext.Now(ctx)

	if !s.matcher.MatchLikeness(image) {
		return nil, dErrors.New(dErrors.CodeCeremony, "likeness verification failed")
	}
	return &image, nil
}

// SubmitDocument validates a 12-digit document identifier plus an attached
// image and runs the document match. Spaces in the identifier are tolerated,
// matching the original entry form's grouping.
func (s *Service) SubmitDocument(ctx context.Context, documentNumber string, image ImageEvidence) (*DocumentEvidence, error) {
	cleaned := strings.ReplaceAll(documentNumber, " ", "")
	if !documentNumberPattern.MatchString(cleaned) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "document number must be exactly 12 digits")
	}
	if image.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "document image is required")
	}
	if len(image.Data) > MaxDocumentImageBytes {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "document image exceeds 5MB limit")
	}

	if !s.matcher.MatchDocument(cleaned, image) {
		return nil, dErrors.New(dErrors.CodeCeremony, "document verification failed")
	}

	token, err := randomToken("doc")
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue document evidence")
	}
	return &DocumentEvidence{
		MaskedNumber: MaskDocumentNumber(cleaned),
		Token:        token,
		CapturedAt:   requestcontext.Now(ctx),
	}, nil
}

// ceremonyError translates ceremony and sensor failures into coded domain
// errors, preserving the specific reason.
func (s *Service) ceremonyError(err error, operation string) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeCeremony, operation+" timed out")
	case errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeCeremony, operation+" aborted")
	case errors.Is(err, ErrUnsupportedPlatform):
		return dErrors.Wrap(err, dErrors.CodeCeremony, "possession factor unavailable on this device")
	case errors.Is(err, ErrCeremonyAborted):
		return dErrors.Wrap(err, dErrors.CodeCeremony, operation+" aborted by user")
	case errors.Is(err, ErrSensorUnavailable):
		return dErrors.Wrap(err, dErrors.CodeCeremony, "camera unavailable")
	case errors.Is(err, ErrCaptureFailed):
		return dErrors.Wrap(err, dErrors.CodeCeremony, "image capture failed")
	default:
		return dErrors.Wrap(err, dErrors.CodeCeremony, operation+" failed")
	}
}
