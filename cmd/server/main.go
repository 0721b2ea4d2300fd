package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"votecast/internal/anomaly"
	"votecast/internal/attempt"
	"votecast/internal/audit"
	"votecast/internal/auth"
	"votecast/internal/auth/token"
	"votecast/internal/credential"
	"votecast/internal/identity"
	"votecast/internal/ledger"
	ledgermetrics "votecast/internal/ledger/metrics"
	"votecast/internal/platform/config"
	"votecast/internal/platform/httpserver"
	"votecast/internal/platform/logger"
	"votecast/internal/platform/metrics"
	"votecast/internal/platform/postgres"
	"votecast/internal/platform/redis"
	httptransport "votecast/internal/transport/http"
	"votecast/internal/verification"
	verificationmetrics "votecast/internal/verification/metrics"
	dErrors "votecast/pkg/domain-errors"
)

// main wires stores, services, and the HTTP router, then runs the server and
// the audit worker until a shutdown signal arrives. Business logic lives in
// the internal service packages; main only chooses implementations based on
// configuration.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appMetrics := metrics.New()

	// Store selection: Postgres when a DSN is configured, in-memory
	// otherwise. Verification sessions are short-lived and always live in
	// memory.
	var (
		identityStore   identity.Store
		credentialStore credential.Store
		voteStore       ledger.Store
		auditStore      audit.Store
	)
	if cfg.PostgresDSN != "" {
		db, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.CreateSchema(db); err != nil {
			return err
		}
		identityStore = identity.NewPostgresStore(db)
		credentialStore = credential.NewPostgresStore(db)
		voteStore = ledger.NewPostgresStore(db)
		auditStore = audit.NewPostgresStore(db)
		log.Info("using postgres stores")
	} else {
		identityStore = identity.NewInMemoryStore()
		credentialStore = credential.NewInMemoryStore()
		voteStore = ledger.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
		log.Info("using in-memory stores")
	}

	// Audit pipeline: services emit into a buffered channel, the worker
	// persists in the background, and an optional Kafka sink tees events to
	// external consumers.
	inbox := make(chan audit.Event, 1024)
	worker := audit.NewWorker(auditStore, inbox)
	var emitter audit.Emitter = audit.NewAsyncEmitter(inbox)
	if len(cfg.KafkaBrokers) > 0 {
		sink, err := audit.NewKafkaSink(ctx, cfg.KafkaBrokers, cfg.AuditTopic, emitter, log)
		if err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := sink.Close(closeCtx); err != nil {
				log.Warn("kafka sink close failed", "error", err)
			}
		}()
		emitter = sink
		log.Info("kafka audit sink enabled", "topic", cfg.AuditTopic)
	}
	publisher := audit.NewPublisher(auditStore)

	var attemptStore attempt.Store
	redisClient, err := redis.New(cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		attemptStore = attempt.NewRedisStore(redisClient, cfg.Attempts.Window)
		log.Info("using redis attempt store")
	} else {
		attemptStore = attempt.NewInMemoryStore(cfg.Attempts.Window)
	}

	identities, err := identity.New(identityStore,
		identity.WithLogger(log),
		identity.WithAuditEmitter(emitter),
		identity.WithMetrics(appMetrics),
	)
	if err != nil {
		return err
	}

	credentials, err := credential.New(credentialStore, cfg.Verifier,
		credential.WithLogger(log),
	)
	if err != nil {
		return err
	}

	sessions, err := verification.New(verification.NewInMemoryStore(), identities,
		verification.WithLogger(log),
		verification.WithAuditEmitter(emitter),
		verification.WithMetrics(verificationmetrics.New()),
	)
	if err != nil {
		return err
	}

	votes, err := ledger.New(voteStore, identities, sessions, cfg.Eligibility,
		ledger.WithLogger(log),
		ledger.WithAuditEmitter(emitter),
		ledger.WithMetrics(ledgermetrics.New()),
	)
	if err != nil {
		return err
	}

	anomalies, err := anomaly.New(voteStore,
		anomaly.WithLogger(log),
		anomaly.WithAuditEmitter(emitter),
	)
	if err != nil {
		return err
	}

	guard, err := attempt.New(attemptStore, cfg.Attempts,
		attempt.WithLogger(log),
		attempt.WithAuditEmitter(emitter),
	)
	if err != nil {
		return err
	}

	if cfg.SeedDemo {
		if err := seedDemo(ctx, identities, log); err != nil {
			return err
		}
	}

	tokens := token.NewService(cfg.JWTSigningKey)
	logins, err := auth.New(identities, guard, tokens,
		auth.WithLogger(log),
		auth.WithAuditEmitter(emitter),
		auth.WithMetrics(appMetrics),
	)
	if err != nil {
		return err
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:         httptransport.NewAuthHandler(identities, logins, log),
		Verification: httptransport.NewVerificationHandler(sessions, credentials, log),
		Ballots:      httptransport.NewBallotHandler(votes, log),
		Security:     httptransport.NewSecurityHandler(anomalies, publisher, log),
		Tokens:       tokens,
		Roles:        identities,
		Logger:       log,
	})

	srv := httpserver.New(cfg.Addr, router)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		log.Info("starting votecast", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

// seedDemo creates the demo principals the local frontend expects. Conflicts
// mean an earlier run already seeded them.
func seedDemo(ctx context.Context, identities *identity.Service, log *slog.Logger) error {
	seed := func(register func() error, handle string) error {
		err := register()
		switch {
		case err == nil:
			log.Info("seeded demo principal", "handle", handle)
		case dErrors.HasCode(err, dErrors.CodeConflict):
		default:
			return err
		}
		return nil
	}

	if err := seed(func() error {
		_, err := identities.RegisterAdmin(ctx, "admin@votecast.dev", "Demo Admin", "admin-demo-password")
		return err
	}, "admin@votecast.dev"); err != nil {
		return err
	}
	return seed(func() error {
		_, err := identities.Register(ctx, "voter@votecast.dev", "Demo Voter", "voter-demo-password")
		return err
	}, "voter@votecast.dev")
}
