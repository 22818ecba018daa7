package markettrading

import (
	"log/slog"
	"time"

	httpadapter "scorpion/contexts/marketplace/market-trading/adapters/http"
	"scorpion/contexts/marketplace/market-trading/adapters/memory"
	"scorpion/contexts/marketplace/market-trading/application"
	"scorpion/contexts/marketplace/market-trading/ports"
)

const (
	DefaultOwner = "owner"
	// DefaultOperatorAccount is the registry identity the settlement
	// engine transfers collectibles through.
	DefaultOperatorAccount = "market"
)

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Ledger          ports.Ledger
	Wallets         ports.WalletLedger
	Config          ports.ConfigStore
	Registry        ports.Registry
	Pricing         ports.PriceOracle
	Idempotency     ports.IdempotencyStore
	Guard           ports.SettlementGuard
	Outbox          ports.OutboxWriter
	Clock           ports.Clock
	IDGenerator     ports.IDGenerator
	Owner           string
	OperatorAccount string
	IdempotencyTTL  time.Duration
	Logger          *slog.Logger
}

func NewModule(deps Dependencies) Module {
	owner := deps.Owner
	if owner == "" {
		owner = DefaultOwner
	}
	operator := deps.OperatorAccount
	if operator == "" {
		operator = DefaultOperatorAccount
	}
	service := application.Service{
		Ledger:          deps.Ledger,
		Wallets:         deps.Wallets,
		Config:          deps.Config,
		Registry:        deps.Registry,
		Pricing:         deps.Pricing,
		Idempotency:     deps.Idempotency,
		Guard:           deps.Guard,
		Outbox:          deps.Outbox,
		Clock:           deps.Clock,
		IDGen:           deps.IDGenerator,
		Owner:           owner,
		OperatorAccount: operator,
		IdempotencyTTL:  deps.IdempotencyTTL,
		Logger:          deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
	}
}

// NewInMemoryModule wires every port except the cross-module collaborators to
// one memory store. Registry and pricing come from the sibling modules.
func NewInMemoryModule(logger *slog.Logger, registry ports.Registry, pricing ports.PriceOracle) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Ledger:         store,
		Wallets:        store,
		Config:         store,
		Registry:       registry,
		Pricing:        pricing,
		Idempotency:    store,
		Guard:          store,
		Outbox:         store,
		Clock:          store,
		IDGenerator:    store,
		IdempotencyTTL: 7 * 24 * time.Hour,
		Logger:         logger,
	})
	module.Store = store
	return module
}
