package collectibleregistry

import (
	"log/slog"

	httpadapter "scorpion/contexts/marketplace/collectible-registry/adapters/http"
	"scorpion/contexts/marketplace/collectible-registry/adapters/memory"
	"scorpion/contexts/marketplace/collectible-registry/application"
	"scorpion/contexts/marketplace/collectible-registry/ports"
)

const DefaultOwner = "owner"

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Repository ports.Repository
	Clock      ports.Clock
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
		Clock:  deps.Clock,
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
		Clock:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
