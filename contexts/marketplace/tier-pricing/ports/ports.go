package ports

import (
	"context"
	"time"
)

// Amount is a price in minor currency units of the payment token.
type Amount int64

// Tier is a scarcity band. Tier 1 is the most common, higher tiers are rarer.
type Tier int

type TierRange struct {
	StartID uint64
	EndID   uint64
	Tier    Tier
}

// Covers reports whether id falls inside the range, bounds inclusive.
func (r TierRange) Covers(id uint64) bool {
	return id >= r.StartID && id <= r.EndID
}

type Clock interface {
	Now() time.Time
}

type Repository interface {
	// AppendRanges adds disjoint range blocks to the table. The repository
	// rejects the whole batch when any block overlaps an accepted range.
	AppendRanges(ctx context.Context, ranges []TierRange) error
	// ReplacePrices installs the positional tier price list: tier N costs
	// prices[N-1]. Replacing is an administrative override.
	ReplacePrices(ctx context.Context, prices []Amount) error
	PriceFor(ctx context.Context, id uint64) (Amount, error)
	Ranges(ctx context.Context) ([]TierRange, error)
	Prices(ctx context.Context) ([]Amount, error)
}
