package application

import (
	"context"
	"log/slog"
	"strings"

	domainerrors "scorpion/contexts/marketplace/tier-pricing/domain/errors"
	"scorpion/contexts/marketplace/tier-pricing/ports"
)

type Service struct {
	Repo   ports.Repository
	Owner  string
	Logger *slog.Logger
}

// Configure appends disjoint tier-range blocks. The setup sequence calls this
// several times, one rarity band at a time.
func (s Service) Configure(ctx context.Context, actorUserID string, ranges []ports.TierRange) error {
	if err := s.requireOwner(actorUserID); err != nil {
		return err
	}
	if len(ranges) == 0 {
		return domainerrors.ErrInvalidRequest
	}
	if err := s.Repo.AppendRanges(ctx, ranges); err != nil {
		return err
	}
	resolveLogger(s.Logger).Info("tier ranges configured",
		"event", "tier_ranges_configured",
		"module", "marketplace/tier-pricing",
		"layer", "application",
		"range_count", len(ranges),
	)
	return nil
}

// SetPrices installs the positional tier price list, tier 1 first.
func (s Service) SetPrices(ctx context.Context, actorUserID string, prices []ports.Amount) error {
	if err := s.requireOwner(actorUserID); err != nil {
		return err
	}
	if len(prices) == 0 {
		return domainerrors.ErrInvalidRequest
	}
	for _, price := range prices {
		if price <= 0 {
			return domainerrors.ErrInvalidPrice
		}
	}
	if err := s.Repo.ReplacePrices(ctx, prices); err != nil {
		return err
	}
	resolveLogger(s.Logger).Info("tier prices configured",
		"event", "tier_prices_configured",
		"module", "marketplace/tier-pricing",
		"layer", "application",
		"tier_count", len(prices),
	)
	return nil
}

func (s Service) PriceFor(ctx context.Context, id uint64) (ports.Amount, error) {
	if id == 0 {
		return 0, domainerrors.ErrInvalidRequest
	}
	return s.Repo.PriceFor(ctx, id)
}

func (s Service) Ranges(ctx context.Context) ([]ports.TierRange, error) {
	return s.Repo.Ranges(ctx)
}

func (s Service) Prices(ctx context.Context) ([]ports.Amount, error) {
	return s.Repo.Prices(ctx)
}

func (s Service) requireOwner(actorUserID string) error {
	if strings.TrimSpace(actorUserID) == "" || actorUserID != s.Owner {
		return domainerrors.ErrNotOwner
	}
	return nil
}
