package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainerrors "scorpion/contexts/marketplace/tier-pricing/domain/errors"
	"scorpion/contexts/marketplace/tier-pricing/domain/services"
	"scorpion/contexts/marketplace/tier-pricing/ports"
)

type Store struct {
	mu sync.RWMutex

	// ranges stays sorted by StartID so lookups can binary search.
	ranges []ports.TierRange
	prices []ports.Amount
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) AppendRanges(ctx context.Context, ranges []ports.TierRange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := services.ValidateRanges(s.ranges, ranges, len(s.prices)); err != nil {
		return err
	}
	s.ranges = append(s.ranges, ranges...)
	sort.Slice(s.ranges, func(i, j int) bool {
		return s.ranges[i].StartID < s.ranges[j].StartID
	})
	return nil
}

func (s *Store) ReplacePrices(ctx context.Context, prices []ports.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.ranges {
		if int(r.Tier) > len(prices) {
			return domainerrors.ErrUnpricedTier
		}
	}
	s.prices = append([]ports.Amount(nil), prices...)
	return nil
}

func (s *Store) PriceFor(ctx context.Context, id uint64) (ports.Amount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tier, ok := services.LookupTier(s.ranges, id)
	if !ok {
		return 0, domainerrors.ErrUnpricedItem
	}
	if int(tier) > len(s.prices) {
		return 0, domainerrors.ErrUnpricedTier
	}
	return s.prices[tier-1], nil
}

func (s *Store) Ranges(ctx context.Context) ([]ports.TierRange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ports.TierRange(nil), s.ranges...), nil
}

func (s *Store) Prices(ctx context.Context) ([]ports.Amount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ports.Amount(nil), s.prices...), nil
}
