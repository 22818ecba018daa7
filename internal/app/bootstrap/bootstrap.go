package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	collectibleregistry "scorpion/contexts/marketplace/collectible-registry"
	registrymemory "scorpion/contexts/marketplace/collectible-registry/adapters/memory"
	registrypostgres "scorpion/contexts/marketplace/collectible-registry/adapters/postgres"
	registryapp "scorpion/contexts/marketplace/collectible-registry/application"
	markettrading "scorpion/contexts/marketplace/market-trading"
	tradingmemory "scorpion/contexts/marketplace/market-trading/adapters/memory"
	tradingpostgres "scorpion/contexts/marketplace/market-trading/adapters/postgres"
	workerapp "scorpion/contexts/marketplace/market-trading/application/workers"
	tradingports "scorpion/contexts/marketplace/market-trading/ports"
	tierpricing "scorpion/contexts/marketplace/tier-pricing"
	pricingmemory "scorpion/contexts/marketplace/tier-pricing/adapters/memory"
	pricingpostgres "scorpion/contexts/marketplace/tier-pricing/adapters/postgres"
	pricingapp "scorpion/contexts/marketplace/tier-pricing/application"
	"scorpion/internal/platform/config"
	"scorpion/internal/platform/db"
	"scorpion/internal/platform/httpserver"
	"scorpion/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	outboxRelay  workerapp.OutboxRelay
	enableRelay  bool
	pollInterval time.Duration
	logger       *slog.Logger
}

// Marketplace is the fully wired module set. The registry and pricing
// services plug into market-trading through the gateway adapters below, so
// the contexts never import each other.
type Marketplace struct {
	Registry collectibleregistry.Module
	Pricing  tierpricing.Module
	Trading  markettrading.Module
}

// registryGateway adapts the collectible registry service to the settlement
// engine's collaborator port.
type registryGateway struct {
	service registryapp.Service
}

func (g registryGateway) Issue(ctx context.Context, actorUserID string, metadataRef string) (uint64, error) {
	item, err := g.service.Issue(ctx, actorUserID, metadataRef)
	if err != nil {
		return 0, err
	}
	return item.ID, nil
}

func (g registryGateway) HolderOf(ctx context.Context, collectibleID uint64) (string, error) {
	return g.service.HolderOf(ctx, collectibleID)
}

func (g registryGateway) Transfer(ctx context.Context, actorUserID string, collectibleID uint64, to string) error {
	_, err := g.service.Transfer(ctx, actorUserID, collectibleID, to)
	return err
}

func (g registryGateway) ResolveMetadata(ctx context.Context, collectibleID uint64) (string, error) {
	return g.service.ResolveMetadata(ctx, collectibleID)
}

type pricingGateway struct {
	service pricingapp.Service
}

func (g pricingGateway) PriceFor(ctx context.Context, collectibleID uint64) (tradingports.Amount, error) {
	price, err := g.service.PriceFor(ctx, collectibleID)
	if err != nil {
		return 0, err
	}
	return tradingports.Amount(price), nil
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN, cfg.DBPingTimeout)
	if err != nil {
		return nil, err
	}

	registryRepo := registrypostgres.NewRepository(pg.DB, logger)
	registryModule := collectibleregistry.NewModule(collectibleregistry.Dependencies{
		Repository: registryRepo,
		Clock:      registrypostgres.SystemClock{},
		Owner:      cfg.OwnerAccount,
		Logger:     logger,
	})

	pricingRepo := pricingpostgres.NewRepository(pg.DB, logger)
	pricingModule := tierpricing.NewModule(tierpricing.Dependencies{
		Repository: pricingRepo,
		Owner:      cfg.OwnerAccount,
		Logger:     logger,
	})

	tradingRepo := tradingpostgres.NewRepository(pg.DB, logger)
	tradingModule := markettrading.NewModule(markettrading.Dependencies{
		Ledger:          tradingRepo,
		Wallets:         tradingRepo,
		Config:          tradingRepo,
		Registry:        registryGateway{service: registryModule.Service},
		Pricing:         pricingGateway{service: pricingModule.Service},
		Idempotency:     tradingRepo,
		Guard:           tradingRepo,
		Outbox:          tradingRepo,
		Clock:           tradingpostgres.SystemClock{},
		IDGenerator:     tradingpostgres.UUIDGenerator{},
		Owner:           cfg.OwnerAccount,
		OperatorAccount: cfg.OperatorAccount,
		IdempotencyTTL:  7 * 24 * time.Hour,
		Logger:          logger,
	})

	if err := seedOperator(registryModule.Service, cfg.OwnerAccount, cfg.OperatorAccount); err != nil {
		_ = pg.Close()
		return nil, err
	}

	server := httpserver.New(registryModule, pricingModule, tradingModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN, cfg.DBPingTimeout)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(logger)
	tradingRepo := tradingpostgres.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		outboxRelay: workerapp.OutboxRelay{
			Outbox:    tradingRepo,
			Publisher: bus,
			Topic:     messaging.TopicMarketEvents,
			BatchSize: cfg.OutboxBatchSize,
			Logger:    logger,
		},
		enableRelay:  cfg.EnableOutboxRelay,
		pollInterval: 2 * time.Second,
		logger:       logger,
	}, nil
}

// BuildInMemoryMarketplace wires all three modules against memory stores.
// Used by the test suites and local runs without postgres.
func BuildInMemoryMarketplace(logger *slog.Logger, owner string, operator string) (Marketplace, error) {
	if owner == "" {
		owner = collectibleregistry.DefaultOwner
	}
	if operator == "" {
		operator = markettrading.DefaultOperatorAccount
	}

	registryStore := registrymemory.NewStore()
	registryModule := collectibleregistry.NewModule(collectibleregistry.Dependencies{
		Repository: registryStore,
		Clock:      registryStore,
		Owner:      owner,
		Logger:     logger,
	})
	registryModule.Store = registryStore

	pricingStore := pricingmemory.NewStore()
	pricingModule := tierpricing.NewModule(tierpricing.Dependencies{
		Repository: pricingStore,
		Owner:      owner,
		Logger:     logger,
	})
	pricingModule.Store = pricingStore

	tradingStore := tradingmemory.NewStore()
	tradingModule := markettrading.NewModule(markettrading.Dependencies{
		Ledger:          tradingStore,
		Wallets:         tradingStore,
		Config:          tradingStore,
		Registry:        registryGateway{service: registryModule.Service},
		Pricing:         pricingGateway{service: pricingModule.Service},
		Idempotency:     tradingStore,
		Guard:           tradingStore,
		Outbox:          tradingStore,
		Clock:           tradingStore,
		IDGenerator:     tradingStore,
		Owner:           owner,
		OperatorAccount: operator,
		IdempotencyTTL:  7 * 24 * time.Hour,
		Logger:          logger,
	})
	tradingModule.Store = tradingStore

	if err := seedOperator(registryModule.Service, owner, operator); err != nil {
		return Marketplace{}, err
	}

	return Marketplace{
		Registry: registryModule,
		Pricing:  pricingModule,
		Trading:  tradingModule,
	}, nil
}

// seedOperator authorizes the market identity as registry operator so
// settlement can move collectibles it does not hold. Safe to repeat.
func seedOperator(registry registryapp.Service, owner string, operator string) error {
	return registry.SetOperator(context.Background(), owner, operator)
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
		"relay_enabled", w.enableRelay,
	)

	for {
		if w.enableRelay {
			if err := w.outboxRelay.RunOnce(ctx); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
