package ports

import (
	"context"
	"time"
)

const (
	CollectionName   = "MonProfile"
	CollectionSymbol = "MF"
)

type Collectible struct {
	ID          uint64
	MetadataRef string
	Holder      string
	IssuedAt    time.Time
}

// Settings are the registry-wide administrative singletons.
type Settings struct {
	// BaseURI prefixes every metadata ref when composing a full URL.
	BaseURI string
	// Operator is the account allowed to transfer any collectible on
	// behalf of its holder. The trading module settles sales through it.
	Operator string
}

type Clock interface {
	Now() time.Time
}

type Repository interface {
	// InsertCollectible allocates the next sequential id, starting at 1.
	InsertCollectible(ctx context.Context, metadataRef string, holder string, now time.Time) (Collectible, error)
	GetCollectible(ctx context.Context, id uint64) (Collectible, error)
	UpdateHolder(ctx context.Context, id uint64, to string) (Collectible, error)
	TotalIssued(ctx context.Context) (uint64, error)
	GetSettings(ctx context.Context) (Settings, error)
	PutSettings(ctx context.Context, settings Settings) error
}
