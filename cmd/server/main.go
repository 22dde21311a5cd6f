package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"vitalis/internal/audit"
	auditkafka "vitalis/internal/audit/kafka"
	"vitalis/internal/identity"
	"vitalis/internal/ledger"
	ledgermetrics "vitalis/internal/ledger/metrics"
	"vitalis/internal/memorial"
	"vitalis/internal/platform/config"
	"vitalis/internal/platform/httpserver"
	"vitalis/internal/platform/logger"
	"vitalis/internal/platform/postgres"
	platformredis "vitalis/internal/platform/redis"
	"vitalis/internal/proof"
	"vitalis/internal/record"
	"vitalis/internal/roles"
	httptransport "vitalis/internal/transport/http"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.PostgresURL)
	if err != nil {
		log.Error("postgres connection failed", "err", err)
		os.Exit(1)
	}

	var (
		roleStore     roles.Store
		identityStore identity.Store
		proofStore    proof.Store
		recordStore   record.Store
		memorialStore memorial.Store
		auditStore    audit.Store
	)
	if db != nil {
		if err := postgres.EnsureSchema(ctx, db,
			roles.Schema, identity.Schema, proof.Schema,
			record.Schema, memorial.Schema, audit.Schema); err != nil {
			log.Error("schema migration failed", "err", err)
			os.Exit(1)
		}
		roleStore = roles.NewPostgres(db)
		identityStore = identity.NewPostgres(db)
		proofStore = proof.NewPostgres(db)
		recordStore = record.NewPostgres(db)
		memorialStore = memorial.NewPostgres(db)
		auditStore = audit.NewPostgres(db)
		log.Info("using postgres stores")
	} else {
		roleStore = roles.NewInMemoryStore()
		identityStore = identity.NewInMemoryStore()
		proofStore = proof.NewInMemoryStore()
		recordStore = record.NewInMemoryStore()
		memorialStore = memorial.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
		log.Info("using in-memory stores")
	}

	if rdb, err := platformredis.New(cfg.Redis()); err != nil {
		log.Error("redis connection failed", "err", err)
		os.Exit(1)
	} else if rdb != nil {
		defer rdb.Close()
		proofStore = proof.NewRedis(rdb.Client)
		log.Info("using redis proof-dedup store")
	}

	var sink audit.Sink
	kafkaSink, err := auditkafka.New(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		log.Error("kafka connection failed", "err", err)
		os.Exit(1)
	}
	if kafkaSink != nil {
		defer kafkaSink.Close()
		sink = kafkaSink
		log.Info("audit events will be published to kafka", "topic", cfg.KafkaTopic)
	}

	publisher := audit.NewPublisher(256, log)
	worker := audit.NewWorker(auditStore, sink, publisher.Events(), log)

	svc := ledger.New(ledger.Params{
		Roles:     roles.NewRegistry(roleStore),
		Identity:  identity.NewRegistry(identityStore),
		Proofs:    proofStore,
		Records:   recordStore,
		Memorials: memorialStore,
		AuditLog:  auditStore,
		Publisher: publisher,
		Metrics:   ledgermetrics.New(prometheus.DefaultRegisterer),
		Logger:    log,
		DB:        db,
	})

	if cfg.BootstrapPath != "" {
		grants, err := roles.LoadBootstrap(cfg.BootstrapPath)
		if err != nil {
			log.Error("bootstrap load failed", "err", err)
			os.Exit(1)
		}
		if err := svc.Bootstrap(ctx, grants); err != nil {
			log.Error("bootstrap failed", "err", err)
			os.Exit(1)
		}
		log.Info("bootstrap grants applied", "file", cfg.BootstrapPath)
	} else {
		log.Warn("no bootstrap file configured; mutating calls need pre-existing role grants")
	}

	handler := httptransport.NewHandler(svc, log)
	router := httptransport.NewRouter(handler, httptransport.RouterConfig{
		JWTSigningKey:     cfg.JWTSigningKey,
		TrustCallerHeader: cfg.TrustCallerHeader,
	}, log)
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting vitalis", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "err", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
