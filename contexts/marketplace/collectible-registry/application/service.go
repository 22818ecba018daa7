package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	domainerrors "scorpion/contexts/marketplace/collectible-registry/domain/errors"
	"scorpion/contexts/marketplace/collectible-registry/ports"
)

type Service struct {
	Repo   ports.Repository
	Clock  ports.Clock
	Owner  string
	Logger *slog.Logger
}

// Issue mints the next collectible and assigns it to the caller.
func (s Service) Issue(ctx context.Context, actorUserID string, metadataRef string) (ports.Collectible, error) {
	actorUserID = strings.TrimSpace(actorUserID)
	metadataRef = strings.TrimSpace(metadataRef)
	if actorUserID == "" || metadataRef == "" {
		return ports.Collectible{}, domainerrors.ErrInvalidRequest
	}

	item, err := s.Repo.InsertCollectible(ctx, metadataRef, actorUserID, s.now())
	if err != nil {
		return ports.Collectible{}, err
	}
	resolveLogger(s.Logger).Info("collectible issued",
		"event", "collectible_issued",
		"module", "marketplace/collectible-registry",
		"layer", "application",
		"collectible_id", item.ID,
		"holder", item.Holder,
	)
	return item, nil
}

func (s Service) ResolveMetadata(ctx context.Context, id uint64) (string, error) {
	item, err := s.Repo.GetCollectible(ctx, id)
	if err != nil {
		return "", err
	}
	return item.MetadataRef, nil
}

// MetadataURL composes the configured base URI with the stored ref.
func (s Service) MetadataURL(ctx context.Context, id uint64) (string, error) {
	item, err := s.Repo.GetCollectible(ctx, id)
	if err != nil {
		return "", err
	}
	settings, err := s.Repo.GetSettings(ctx)
	if err != nil {
		return "", err
	}
	return settings.BaseURI + item.MetadataRef, nil
}

func (s Service) HolderOf(ctx context.Context, id uint64) (string, error) {
	item, err := s.Repo.GetCollectible(ctx, id)
	if err != nil {
		return "", err
	}
	return item.Holder, nil
}

func (s Service) Get(ctx context.Context, id uint64) (ports.Collectible, error) {
	return s.Repo.GetCollectible(ctx, id)
}

func (s Service) TotalIssued(ctx context.Context) (uint64, error) {
	return s.Repo.TotalIssued(ctx)
}

// Transfer reassigns the holder. Only the current holder or the approved
// operator account may move a collectible.
func (s Service) Transfer(ctx context.Context, actorUserID string, id uint64, to string) (ports.Collectible, error) {
	actorUserID = strings.TrimSpace(actorUserID)
	to = strings.TrimSpace(to)
	if actorUserID == "" || to == "" {
		return ports.Collectible{}, domainerrors.ErrInvalidRequest
	}

	item, err := s.Repo.GetCollectible(ctx, id)
	if err != nil {
		return ports.Collectible{}, err
	}
	settings, err := s.Repo.GetSettings(ctx)
	if err != nil {
		return ports.Collectible{}, err
	}
	if actorUserID != item.Holder && (settings.Operator == "" || actorUserID != settings.Operator) {
		return ports.Collectible{}, domainerrors.ErrNotHolder
	}

	updated, err := s.Repo.UpdateHolder(ctx, id, to)
	if err != nil {
		return ports.Collectible{}, err
	}
	resolveLogger(s.Logger).Info("collectible transferred",
		"event", "collectible_transferred",
		"module", "marketplace/collectible-registry",
		"layer", "application",
		"collectible_id", id,
		"from", item.Holder,
		"to", to,
	)
	return updated, nil
}

func (s Service) SetBaseURI(ctx context.Context, actorUserID string, baseURI string) error {
	if err := s.requireOwner(actorUserID); err != nil {
		return err
	}
	settings, err := s.Repo.GetSettings(ctx)
	if err != nil {
		return err
	}
	settings.BaseURI = strings.TrimSpace(baseURI)
	return s.Repo.PutSettings(ctx, settings)
}

func (s Service) SetOperator(ctx context.Context, actorUserID string, operator string) error {
	if err := s.requireOwner(actorUserID); err != nil {
		return err
	}
	operator = strings.TrimSpace(operator)
	if operator == "" {
		return domainerrors.ErrInvalidRequest
	}
	settings, err := s.Repo.GetSettings(ctx)
	if err != nil {
		return err
	}
	settings.Operator = operator
	return s.Repo.PutSettings(ctx, settings)
}

func (s Service) requireOwner(actorUserID string) error {
	if strings.TrimSpace(actorUserID) == "" || actorUserID != s.Owner {
		return domainerrors.ErrNotOwner
	}
	return nil
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
