package memory

import (
	"context"
	"math"
	"sync"
	"time"

	domainerrors "scorpion/contexts/marketplace/collectible-registry/domain/errors"
	"scorpion/contexts/marketplace/collectible-registry/ports"
)

type Store struct {
	mu sync.RWMutex

	collectiblesByID map[uint64]ports.Collectible
	settings         ports.Settings
	nextID           uint64
}

func NewStore() *Store {
	return &Store{
		collectiblesByID: make(map[uint64]ports.Collectible),
		nextID:           1,
	}
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) InsertCollectible(ctx context.Context, metadataRef string, holder string, now time.Time) (ports.Collectible, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nextID == math.MaxUint64 {
		return ports.Collectible{}, domainerrors.ErrCapacityExceeded
	}
	item := ports.Collectible{
		ID:          s.nextID,
		MetadataRef: metadataRef,
		Holder:      holder,
		IssuedAt:    now.UTC(),
	}
	s.collectiblesByID[item.ID] = item
	s.nextID++
	return item, nil
}

func (s *Store) GetCollectible(ctx context.Context, id uint64) (ports.Collectible, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.collectiblesByID[id]
	if !ok {
		return ports.Collectible{}, domainerrors.ErrUnknownItem
	}
	return item, nil
}

func (s *Store) UpdateHolder(ctx context.Context, id uint64, to string) (ports.Collectible, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.collectiblesByID[id]
	if !ok {
		return ports.Collectible{}, domainerrors.ErrUnknownItem
	}
	item.Holder = to
	s.collectiblesByID[id] = item
	return item, nil
}

func (s *Store) TotalIssued(ctx context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextID - 1, nil
}

func (s *Store) GetSettings(ctx context.Context) (ports.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, nil
}

func (s *Store) PutSettings(ctx context.Context, settings ports.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return nil
}
