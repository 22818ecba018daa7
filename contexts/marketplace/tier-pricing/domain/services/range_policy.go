package services

import (
	"sort"

	domainerrors "scorpion/contexts/marketplace/tier-pricing/domain/errors"
	"scorpion/contexts/marketplace/tier-pricing/ports"
)

// ValidateRanges checks an incoming batch of tier ranges against the already
// accepted table. Every range must be well-formed, name a priced tier, and
// stay disjoint from both the accepted ranges and the rest of the batch.
func ValidateRanges(existing []ports.TierRange, incoming []ports.TierRange, pricedTiers int) error {
	if len(incoming) == 0 {
		return domainerrors.ErrInvalidRequest
	}

	merged := make([]ports.TierRange, 0, len(existing)+len(incoming))
	merged = append(merged, existing...)
	for _, r := range incoming {
		if r.StartID == 0 || r.StartID > r.EndID {
			return domainerrors.ErrInvalidRange
		}
		if r.Tier < 1 || int(r.Tier) > pricedTiers {
			return domainerrors.ErrUnpricedTier
		}
		merged = append(merged, r)
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].StartID < merged[j].StartID
	})
	for i := 1; i < len(merged); i++ {
		if merged[i].StartID <= merged[i-1].EndID {
			return domainerrors.ErrInvalidRange
		}
	}
	return nil
}

// LookupTier finds the tier covering id inside a table kept sorted by StartID.
func LookupTier(sorted []ports.TierRange, id uint64) (ports.Tier, bool) {
	idx := sort.Search(len(sorted), func(i int) bool {
		return sorted[i].EndID >= id
	})
	if idx < len(sorted) && sorted[idx].Covers(id) {
		return sorted[idx].Tier, true
	}
	return 0, false
}
