package application

import (
	"context"
	"errors"
	"testing"

	"scorpion/contexts/marketplace/tier-pricing/adapters/memory"
	domainerrors "scorpion/contexts/marketplace/tier-pricing/domain/errors"
	"scorpion/contexts/marketplace/tier-pricing/ports"
)

func newService() Service {
	return Service{
		Repo:  memory.NewStore(),
		Owner: "owner",
	}
}

func TestConfigureRequiresOwner(t *testing.T) {
	service := newService()
	ctx := context.Background()

	err := service.SetPrices(ctx, "mallory", []ports.Amount{25})
	if !errors.Is(err, domainerrors.ErrNotOwner) {
		t.Fatalf("expected not owner, got %v", err)
	}
	err = service.Configure(ctx, "mallory", []ports.TierRange{{StartID: 1, EndID: 10, Tier: 1}})
	if !errors.Is(err, domainerrors.ErrNotOwner) {
		t.Fatalf("expected not owner, got %v", err)
	}
}

func TestSetPricesRejectsNonPositive(t *testing.T) {
	service := newService()

	err := service.SetPrices(context.Background(), "owner", []ports.Amount{25, 0})
	if !errors.Is(err, domainerrors.ErrInvalidPrice) {
		t.Fatalf("expected invalid price, got %v", err)
	}
}

func TestPriceForZeroID(t *testing.T) {
	service := newService()

	_, err := service.PriceFor(context.Background(), 0)
	if !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
}
