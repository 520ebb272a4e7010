package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	claimMetrics "protekt/internal/claim/metrics"
	claimService "protekt/internal/claim/service"
	claimStore "protekt/internal/claim/store"
	customerMetrics "protekt/internal/customer/metrics"
	customerService "protekt/internal/customer/service"
	customerStore "protekt/internal/customer/store"
	"protekt/internal/eligibility"
	"protekt/internal/filestore"
	fileStore "protekt/internal/filestore/store"
	loanStore "protekt/internal/loan/store"
	memberStore "protekt/internal/member/store"
	"protekt/internal/platform/config"
	"protekt/internal/platform/events"
	"protekt/internal/platform/httpserver"
	"protekt/internal/platform/kafka"
	"protekt/internal/platform/postgres"
	policyMetrics "protekt/internal/policy/metrics"
	policyService "protekt/internal/policy/service"
	policyStore "protekt/internal/policy/store"
	productStore "protekt/internal/product/store"
	"protekt/pkg/platform/tx"
)

// app holds the wired services and the resources they own.
type app struct {
	Policies    *policyService.Service
	Customers   *customerService.Service
	Eligibility *eligibility.Service
	Claims      *claimService.Service

	backend   string
	db        *sql.DB
	publisher *kafka.Publisher
}

// Storage ports shared by more than one service.
type (
	policyStorage interface {
		policyService.PolicyStore
		eligibility.PolicyLookup
	}
	customerStorage interface {
		customerService.Store
		eligibility.CustomerLookup
	}
	memberStorage interface {
		customerService.MemberFinder
		eligibility.MemberLookup
	}
	loanStorage interface {
		policyService.LoanFinder
		eligibility.LoanLookup
	}
)

// stores groups one implementation of every persistence port.
type stores struct {
	products  policyService.ProductFinder
	policies  policyStorage
	customers customerStorage
	members   memberStorage
	loans     loanStorage
	files     customerService.FileRecords
	claims    claimService.Store
	runner    tx.Runner
}

func buildApp(ctx context.Context, cfg config.Config, log *slog.Logger, reg prometheus.Registerer) (*app, error) {
	a := &app{}

	var st stores
	if cfg.Database.URL != "" {
		db, err := postgres.Open(ctx, cfg.Database.URL, cfg.Database.MaxOpenConns)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		a.db = db
		a.backend = "postgres"
		st = postgresStores(db, cfg)
	} else {
		a.backend = "memory"
		st = memoryStores()
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	storage, err := objectStorage(ctx, cfg.Storage, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		if err := kafka.EnsureTopic(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, 3, 1); err != nil {
			log.Warn("could not ensure event topic", "topic", cfg.Kafka.Topic, "error", err)
		}
		p, err := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.publisher = p
		publisher = p
	}

	a.Policies = policyService.New(st.policies, st.loans, st.customers, st.products, st.runner,
		policyService.WithLogger(log.With("module", "policy")),
		policyService.WithMetrics(policyMetrics.New(reg)),
		policyService.WithPublisher(publisher),
	)
	a.Customers = customerService.New(st.customers, st.files, st.members, storage, st.runner,
		customerService.WithLogger(log.With("module", "customer")),
		customerService.WithMetrics(customerMetrics.New(reg)),
		customerService.WithPublisher(publisher),
		customerService.WithDocumentURLTTL(cfg.Storage.DocumentURLTTL),
	)
	a.Eligibility = eligibility.New(st.members, st.customers, st.loans, st.policies,
		eligibility.WithLogger(log.With("module", "eligibility")),
		eligibility.WithMetrics(eligibility.NewMetrics(reg)),
	)
	a.Claims = claimService.New(st.claims, st.files, st.policies, st.members, storage, st.runner,
		claimService.WithLogger(log.With("module", "claim")),
		claimService.WithMetrics(claimMetrics.New(reg)),
		claimService.WithPublisher(publisher),
	)
	return a, nil
}

func postgresStores(db *sql.DB, cfg config.Config) stores {
	return stores{
		products:  productStore.NewPostgres(db),
		policies:  policyStore.NewPostgres(db),
		customers: customerStore.NewPostgres(db),
		members:   memberStore.NewPostgres(db),
		loans:     loanStore.NewPostgres(db),
		files:     fileStore.NewPostgres(db),
		claims:    claimStore.NewPostgres(db),
		runner:    tx.NewSQLRunner(db, tx.WithTimeout(cfg.Database.TxTimeout)),
	}
}

func memoryStores() stores {
	policies := policyStore.NewInMemory()
	customers := customerStore.NewInMemory()
	files := fileStore.NewInMemory()
	claims := claimStore.NewInMemory()
	return stores{
		products:  productStore.NewInMemory(),
		policies:  policies,
		customers: customers,
		members:   memberStore.NewInMemory(),
		loans:     loanStore.NewInMemory(),
		files:     files,
		claims:    claims,
		runner:    tx.NewMemoryRunner(policies, customers, files, claims),
	}
}

func objectStorage(ctx context.Context, cfg config.Storage, log *slog.Logger) (filestore.Storage, error) {
	if cfg.Bucket == "" {
		log.Warn("S3_BUCKET not set, using in-memory object storage")
		return filestore.NewInMemory(), nil
	}
	s3, err := filestore.NewS3(ctx, filestore.S3Config{
		Bucket:          cfg.Bucket,
		Region:          cfg.Region,
		Endpoint:        cfg.Endpoint,
		BasePath:        cfg.BasePath,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
	}, filestore.WithLogger(log.With("module", "filestore")))
	if err != nil {
		return nil, fmt.Errorf("object storage: %w", err)
	}
	return s3, nil
}

func (a *app) healthChecks() map[string]httpserver.HealthCheck {
	checks := map[string]httpserver.HealthCheck{}
	if a.db != nil {
		checks["database"] = a.db.PingContext
	}
	if a.publisher != nil {
		checks["kafka"] = a.publisher.Ping
	}
	return checks
}

func (a *app) Close() {
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
