package config

import (
	"os"
	"strconv"
	"time"

	"votecast/pkg/platform/strings"
)

// Server captures process-level configuration. FromEnv builds it from
// environment variables so main stays lean; every knob has a development
// default and tests construct Server values directly.
type Server struct {
	Addr          string
	JWTSigningKey string

	// PostgresDSN enables the Postgres-backed stores when non-empty;
	// otherwise the in-memory stores are used.
	PostgresDSN string
	// RedisURL enables the Redis attempt-guard store when non-empty.
	RedisURL string
	// KafkaBrokers enables the Kafka security-audit sink when non-empty.
	KafkaBrokers []string
	AuditTopic   string

	// SeedDemo creates a demo voter and admin at startup. Existing
	// principals are left alone, so it is safe across restarts.
	SeedDemo bool

	Eligibility EligibilityConfig
	Verifier    VerifierConfig
	Attempts    AttemptConfig
}

// EligibilityConfig holds the vote ledger policy knobs.
type EligibilityConfig struct {
	// VoteCap is the maximum number of votes a principal may cast within
	// VoteWindow before further casts are rate limited.
	VoteCap    int
	VoteWindow time.Duration
	// MinVerifiedFactors is the minimum count of passed verification factors
	// required to vote, on top of the principal's verified flag. The original
	// prototype was inconsistent here (sometimes required biometrics,
	// sometimes allowed skip), so the policy is an explicit setting: 0 keeps
	// the legacy flag-only behavior, 3 demands full verification.
	MinVerifiedFactors int
}

// VerifierConfig holds the credential verifier's simulation knobs. The pass
// rates model real biometric/document matching until live integrations exist;
// tests override the decision function entirely.
type VerifierConfig struct {
	LikenessPassRate float64
	DocumentPassRate float64
	CeremonyTimeout  time.Duration
}

// AttemptConfig holds the login attempt guard policy.
type AttemptConfig struct {
	MaxFailures int
	Window      time.Duration
}

// DefaultLikenessPassRate and DefaultDocumentPassRate mirror the acceptance
// rates of the matching placeholders in the original capture flows.
const (
	DefaultLikenessPassRate = 0.90
	DefaultDocumentPassRate = 0.85

	// DefaultCeremonyTimeout bounds external verification ceremonies
	// (possession proof, camera capture) so no core operation blocks
	// indefinitely.
	DefaultCeremonyTimeout = 60 * time.Second

	DefaultVoteCap            = 5
	DefaultVoteWindow         = time.Hour
	DefaultMinVerifiedFactors = 0

	DefaultMaxFailures   = 3
	DefaultAttemptWindow = 15 * time.Minute
)

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("VOTECAST_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("VOTECAST_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	brokers := strings.SplitAndTrim(os.Getenv("VOTECAST_KAFKA_BROKERS"))
	topic := os.Getenv("VOTECAST_AUDIT_TOPIC")
	if topic == "" {
		topic = "votecast.security-audit"
	}

	return Server{
		Addr:          addr,
		JWTSigningKey: jwtSigningKey,
		PostgresDSN:   os.Getenv("VOTECAST_POSTGRES_DSN"),
		RedisURL:      os.Getenv("VOTECAST_REDIS_URL"),
		KafkaBrokers:  brokers,
		AuditTopic:    topic,
		SeedDemo:      envBool("VOTECAST_SEED_DEMO", false),
		Eligibility: EligibilityConfig{
			VoteCap:            envInt("VOTECAST_VOTE_CAP", DefaultVoteCap),
			VoteWindow:         envDuration("VOTECAST_VOTE_WINDOW", DefaultVoteWindow),
			MinVerifiedFactors: envInt("VOTECAST_MIN_VERIFIED_FACTORS", DefaultMinVerifiedFactors),
		},
		Verifier: VerifierConfig{
			LikenessPassRate: envFloat("VOTECAST_LIKENESS_PASS_RATE", DefaultLikenessPassRate),
			DocumentPassRate: envFloat("VOTECAST_DOCUMENT_PASS_RATE", DefaultDocumentPassRate),
			CeremonyTimeout:  envDuration("VOTECAST_CEREMONY_TIMEOUT", DefaultCeremonyTimeout),
		},
		Attempts: AttemptConfig{
			MaxFailures: envInt("VOTECAST_MAX_LOGIN_FAILURES", DefaultMaxFailures),
			Window:      envDuration("VOTECAST_LOGIN_FAILURE_WINDOW", DefaultAttemptWindow),
		},
	}
}

func envInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			return v
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if v, err := time.ParseDuration(raw); err == nil {
			return v
		}
	}
	return fallback
}
