package unit

import (
	"context"
	"errors"
	"testing"

	collectibleregistry "scorpion/contexts/marketplace/collectible-registry"
	registryerrors "scorpion/contexts/marketplace/collectible-registry/domain/errors"
	registrytransport "scorpion/contexts/marketplace/collectible-registry/transport/http"
)

func TestCollectibleRegistryIssueAndResolve(t *testing.T) {
	module := collectibleregistry.NewInMemoryModule(nil)
	ctx := context.Background()

	issued, err := module.Handler.IssueHandler(ctx, "creator_1", registrytransport.IssueCollectibleRequest{
		MetadataRef: "ipfs://profile/1",
	})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if issued.Data.CollectibleID != 1 || issued.Data.Holder != "creator_1" {
		t.Fatalf("unexpected issued collectible: %+v", issued.Data)
	}

	metadata, err := module.Handler.MetadataHandler(ctx, 1)
	if err != nil {
		t.Fatalf("metadata failed: %v", err)
	}
	if metadata.Data.MetadataRef != "ipfs://profile/1" {
		t.Fatalf("metadata ref = %s", metadata.Data.MetadataRef)
	}

	if _, err := module.Handler.MetadataHandler(ctx, 2); !errors.Is(err, registryerrors.ErrUnknownItem) {
		t.Fatalf("expected unknown item for unissued id, got %v", err)
	}
}

func TestCollectibleRegistryBaseURIPrefixesMetadataURL(t *testing.T) {
	module := collectibleregistry.NewInMemoryModule(nil)
	ctx := context.Background()

	if _, err := module.Handler.SetBaseURIHandler(ctx, "owner", registrytransport.SetBaseURIRequest{
		BaseURI: "https://cdn.example.com/meta/",
	}); err != nil {
		t.Fatalf("set base uri failed: %v", err)
	}
	if _, err := module.Handler.IssueHandler(ctx, "creator_1", registrytransport.IssueCollectibleRequest{
		MetadataRef: "profile/1.json",
	}); err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	metadata, err := module.Handler.MetadataHandler(ctx, 1)
	if err != nil {
		t.Fatalf("metadata failed: %v", err)
	}
	if metadata.Data.MetadataURL != "https://cdn.example.com/meta/profile/1.json" {
		t.Fatalf("metadata url = %s", metadata.Data.MetadataURL)
	}
}

func TestCollectibleRegistryTransferAuthorization(t *testing.T) {
	module := collectibleregistry.NewInMemoryModule(nil)
	ctx := context.Background()

	if _, err := module.Handler.IssueHandler(ctx, "creator_1", registrytransport.IssueCollectibleRequest{
		MetadataRef: "ipfs://profile/1",
	}); err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	_, err := module.Handler.TransferHandler(ctx, "mallory", 1, registrytransport.TransferRequest{To: "mallory"})
	if !errors.Is(err, registryerrors.ErrNotHolder) {
		t.Fatalf("expected not holder, got %v", err)
	}

	if _, err := module.Handler.SetOperatorHandler(ctx, "owner", registrytransport.SetOperatorRequest{
		Operator: "market",
	}); err != nil {
		t.Fatalf("set operator failed: %v", err)
	}
	moved, err := module.Handler.TransferHandler(ctx, "market", 1, registrytransport.TransferRequest{To: "collector_7"})
	if err != nil {
		t.Fatalf("operator transfer failed: %v", err)
	}
	if moved.Data.Holder != "collector_7" {
		t.Fatalf("holder after operator transfer = %s", moved.Data.Holder)
	}
}

func TestCollectibleRegistryAdminSettersRequireOwner(t *testing.T) {
	module := collectibleregistry.NewInMemoryModule(nil)
	ctx := context.Background()

	_, err := module.Handler.SetOperatorHandler(ctx, "mallory", registrytransport.SetOperatorRequest{Operator: "market"})
	if !errors.Is(err, registryerrors.ErrNotOwner) {
		t.Fatalf("expected not owner, got %v", err)
	}
	_, err = module.Handler.SetBaseURIHandler(ctx, "mallory", registrytransport.SetBaseURIRequest{BaseURI: "https://x/"})
	if !errors.Is(err, registryerrors.ErrNotOwner) {
		t.Fatalf("expected not owner, got %v", err)
	}
}
