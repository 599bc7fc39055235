// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the context services.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	assignmenthandler "talentgate/internal/assignment/handler"
	assignmentmetrics "talentgate/internal/assignment/metrics"
	assignmentservice "talentgate/internal/assignment/service"
	candidatehandler "talentgate/internal/candidate/handler"
	candidatemetrics "talentgate/internal/candidate/metrics"
	candidateservice "talentgate/internal/candidate/service"
	candidatestore "talentgate/internal/candidate/store"
	"talentgate/internal/catalog"
	evaluationhandler "talentgate/internal/evaluation/handler"
	evaluationmetrics "talentgate/internal/evaluation/metrics"
	"talentgate/internal/evaluation/oracle"
	"talentgate/internal/evaluation/policy"
	evaluationservice "talentgate/internal/evaluation/service"
	evaluationstore "talentgate/internal/evaluation/store"
	httpapi "talentgate/internal/http"
	interviewerhandler "talentgate/internal/interviewer/handler"
	interviewerservice "talentgate/internal/interviewer/service"
	interviewerstore "talentgate/internal/interviewer/store"
	"talentgate/internal/platform/config"
	"talentgate/internal/platform/httpserver"
	"talentgate/internal/platform/kafka"
	"talentgate/internal/platform/logger"
	platformredis "talentgate/internal/platform/redis"
	"talentgate/pkg/platform/audit"
	auditmemory "talentgate/pkg/platform/audit/store/memory"
	auditpostgres "talentgate/pkg/platform/audit/store/postgres"
	auditworker "talentgate/pkg/platform/audit/worker"
	"talentgate/pkg/platform/middleware/auth"
)

const auditInboxSize = 256

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.FromEnv()
	log := logger.New()

	// Candidate, interviewer and result stores. An empty Postgres URL selects
	// the in-memory implementations, which is enough for local development.
	var (
		candidates   candidateservice.CandidateStore
		interviewers interviewerservice.InterviewerStore
		results      evaluationservice.ResultStore
	)
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.New(ctx, cfg.Postgres.URL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		candidates = candidatestore.NewPostgres(pool)
		interviewers = interviewerstore.NewPostgres(pool)
		results = evaluationstore.NewPostgres(pool)
		log.Info("using postgres stores")
	} else {
		candidates = candidatestore.NewMemory()
		interviewers = interviewerstore.NewMemory()
		results = evaluationstore.NewMemory()
		log.Info("using in-memory stores")
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Audit trail: services publish to an in-process channel; a worker drains
	// it into the outbox store. Kafka, when configured, receives a copy of
	// every event for downstream consumers.
	auditStore, err := buildAuditStore(cfg, log)
	if err != nil {
		return err
	}
	auditInbox := make(chan audit.Event, auditInboxSize)
	publishers := []audit.Publisher{auditworker.NewChannelPublisher(auditInbox, log)}

	producer, err := kafka.NewProducer(cfg.Kafka, log)
	if err != nil {
		return fmt.Errorf("connect kafka: %w", err)
	}
	if producer != nil {
		defer producer.Close()
		publishers = append(publishers, producer)
	}
	auditPublisher := audit.NewFanout(publishers...)

	rounds, err := buildCatalog(cfg, redisClient, log)
	if err != nil {
		return err
	}

	var retryPolicy policy.Provider
	if redisClient != nil {
		retryPolicy = policy.NewRedisOverride(redisClient.Client, cfg.Retry.FreezingPeriod(), log)
	} else {
		retryPolicy = policy.NewStatic(cfg.Retry.FreezingPeriod())
	}

	candidateSvc, err := candidateservice.New(candidates, rounds,
		candidateservice.WithLogger(log),
		candidateservice.WithAuditPublisher(auditPublisher),
		candidateservice.WithMetrics(candidatemetrics.New()),
	)
	if err != nil {
		return fmt.Errorf("build candidate service: %w", err)
	}

	interviewerSvc, err := interviewerservice.New(interviewers,
		interviewerservice.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("build interviewer service: %w", err)
	}

	evaluationOpts := []evaluationservice.Option{
		evaluationservice.WithLogger(log),
		evaluationservice.WithAuditPublisher(auditPublisher),
		evaluationservice.WithMetrics(evaluationmetrics.New()),
	}
	if client := oracle.NewClient(cfg.Oracle, log); client != nil {
		evaluationOpts = append(evaluationOpts, evaluationservice.WithOracle(client))
	} else {
		log.Warn("evaluation oracle not configured, free-form rounds will use fallback scoring")
	}
	evaluationSvc, err := evaluationservice.New(results, candidates, rounds, retryPolicy, evaluationOpts...)
	if err != nil {
		return fmt.Errorf("build evaluation service: %w", err)
	}

	assignmentSvc, err := assignmentservice.New(candidates, interviewers, rounds,
		assignmentservice.WithLogger(log),
		assignmentservice.WithAuditPublisher(auditPublisher),
		assignmentservice.WithMetrics(assignmentmetrics.New()),
	)
	if err != nil {
		return fmt.Errorf("build assignment service: %w", err)
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:    log,
		Validator: auth.NewValidator(cfg.Server.JWTSigningKey),
		Handlers: []httpapi.Registrar{
			candidatehandler.New(candidateSvc, log),
			interviewerhandler.New(interviewerSvc, log),
			evaluationhandler.New(evaluationSvc, log),
			assignmenthandler.New(assignmentSvc, log),
		},
		Health: func() error {
			if redisClient == nil {
				return nil
			}
			healthCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Health(healthCtx)
		},
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return auditworker.New(auditStore, auditInbox, log).Run(gctx)
	})

	g.Go(func() error {
		log.Info("starting talentgate", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("shutdown complete")
	return nil
}

func buildAuditStore(cfg config.Config, log *slog.Logger) (audit.Store, error) {
	if cfg.Postgres.URL == "" {
		return auditmemory.New(), nil
	}
	db, err := auditpostgres.Open(cfg.Postgres.URL)
	if err != nil {
		return nil, fmt.Errorf("open audit store: %w", err)
	}
	log.Info("audit outbox backed by postgres")
	return auditpostgres.New(db), nil
}

func buildCatalog(cfg config.Config, redisClient *platformredis.Client, log *slog.Logger) (catalog.Catalog, error) {
	var base catalog.Catalog
	if cfg.Catalog.Path != "" {
		static, err := catalog.LoadFile(cfg.Catalog.Path)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		base = static
	} else {
		log.Warn("no catalog snapshot configured, round lookups will come back empty")
		base = catalog.NewStatic()
	}
	if redisClient != nil {
		return catalog.NewRedisCache(base, redisClient.Client, cfg.Catalog.CacheTTL, log), nil
	}
	return base, nil
}
