package tierpricing

import (
	"log/slog"

	httpadapter "scorpion/contexts/marketplace/tier-pricing/adapters/http"
	"scorpion/contexts/marketplace/tier-pricing/adapters/memory"
	"scorpion/contexts/marketplace/tier-pricing/application"
	"scorpion/contexts/marketplace/tier-pricing/ports"
)

const DefaultOwner = "owner"

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Repository ports.Repository
	Owner      string
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	owner := deps.Owner
	if owner == "" {
		owner = DefaultOwner
	}
	service := application.Service{
		Repo:   deps.Repository,
		Owner:  owner,
		Logger: deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository: store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
