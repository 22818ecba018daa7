package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	domainerrors "scorpion/contexts/marketplace/market-trading/domain/errors"
	"scorpion/contexts/marketplace/market-trading/ports"
)

type Store struct {
	mu sync.RWMutex

	itemsByID      map[uint64]ports.MarketItem
	balances       map[string]ports.Amount
	config         ports.MarketConfig
	idempotency    map[string]ports.IdempotencyRecord
	outbox         []ports.OutboxMessage
	settlementBusy map[uint64]bool
	nextItemID     uint64
	sequence       uint64
}

func NewStore() *Store {
	return &Store{
		itemsByID:      make(map[uint64]ports.MarketItem),
		balances:       make(map[string]ports.Amount),
		idempotency:    make(map[string]ports.IdempotencyRecord),
		settlementBusy: make(map[uint64]bool),
		nextItemID:     1,
	}
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequence++
	return fmt.Sprintf("mkt_%06d", s.sequence), nil
}

func (s *Store) InsertItem(ctx context.Context, item ports.MarketItem) (ports.MarketItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item.ItemID = s.nextItemID
	item.Sold = false
	item.ListedAt = item.ListedAt.UTC()
	s.itemsByID[item.ItemID] = item
	s.nextItemID++
	return item, nil
}

func (s *Store) GetItem(ctx context.Context, itemID uint64) (ports.MarketItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.itemsByID[itemID]
	if !ok {
		return ports.MarketItem{}, domainerrors.ErrUnknownListing
	}
	return item, nil
}

func (s *Store) FetchActive(ctx context.Context) ([]ports.MarketItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]ports.MarketItem, 0, len(s.itemsByID))
	for _, item := range s.itemsByID {
		if !item.Sold {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ItemID < items[j].ItemID
	})
	return items, nil
}

func (s *Store) MarkSold(ctx context.Context, itemID uint64, buyer string, now time.Time) (ports.MarketItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.itemsByID[itemID]
	if !ok {
		return ports.MarketItem{}, domainerrors.ErrUnknownListing
	}
	if item.Sold {
		return ports.MarketItem{}, domainerrors.ErrAlreadySold
	}
	item.Owner = buyer
	item.Sold = true
	item.SoldAt = now.UTC()
	s.itemsByID[itemID] = item
	return item, nil
}

func (s *Store) Credit(ctx context.Context, account string, amount ports.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[account] += amount
	return nil
}

func (s *Store) Debit(ctx context.Context, account string, amount ports.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.balances[account] < amount {
		return domainerrors.ErrInsufficientFunds
	}
	s.balances[account] -= amount
	return nil
}

func (s *Store) BalanceOf(ctx context.Context, account string) (ports.Amount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[account], nil
}

func (s *Store) GetConfig(ctx context.Context) (ports.MarketConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config, nil
}

func (s *Store) PutConfig(ctx context.Context, config ports.MarketConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = config
	return nil
}

func (s *Store) Acquire(itemID uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settlementBusy[itemID] {
		return false
	}
	s.settlementBusy[itemID] = true
	return true
}

func (s *Store) Release(itemID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.settlementBusy, itemID)
}

func (s *Store) GetRecord(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.idempotency[key]
	if !ok || now.After(record.ExpiresAt) {
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) PutRecord(ctx context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idempotency[record.Key] = record
	return nil
}

func (s *Store) AppendOutbox(ctx context.Context, message ports.OutboxMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outbox = append(s.outbox, message)
	return nil
}

func (s *Store) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]ports.OutboxMessage, 0, limit)
	for _, message := range s.outbox {
		if message.Status != "pending" {
			continue
		}
		items = append(items, message)
		if limit > 0 && len(items) == limit {
			break
		}
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(ctx context.Context, id string) error {
	return s.setOutboxStatus(id, "published", false)
}

func (s *Store) MarkOutboxFailed(ctx context.Context, id string) error {
	return s.setOutboxStatus(id, "failed", true)
}

func (s *Store) setOutboxStatus(id string, status string, bumpRetry bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.outbox {
		if s.outbox[i].ID != id {
			continue
		}
		s.outbox[i].Status = status
		if bumpRetry {
			s.outbox[i].RetryCount++
		}
		return nil
	}
	return domainerrors.ErrInvalidRequest
}
