package unit

import (
	"context"
	"errors"
	"fmt"
	"testing"

	tradingerrors "scorpion/contexts/marketplace/market-trading/domain/errors"
	tradingtransport "scorpion/contexts/marketplace/market-trading/transport/http"
	pricingports "scorpion/contexts/marketplace/tier-pricing/ports"
	"scorpion/internal/app/bootstrap"
)

// Seed data mirroring the production launch configuration: four tier prices
// and eight incremental id ranges covering collectibles 1 through 373.
var (
	launchPrices = []pricingports.Amount{25, 75, 100, 300}
	launchRanges = []pricingports.TierRange{
		{StartID: 1, EndID: 25, Tier: 4},
		{StartID: 26, EndID: 115, Tier: 3},
		{StartID: 116, EndID: 167, Tier: 2},
		{StartID: 168, EndID: 273, Tier: 1},
		{StartID: 274, EndID: 277, Tier: 4},
		{StartID: 278, EndID: 288, Tier: 3},
		{StartID: 289, EndID: 313, Tier: 2},
		{StartID: 314, EndID: 373, Tier: 1},
	}
)

func newMarketplace(t *testing.T) bootstrap.Marketplace {
	t.Helper()
	marketplace, err := bootstrap.BuildInMemoryMarketplace(nil, "owner", "market")
	if err != nil {
		t.Fatalf("build marketplace: %v", err)
	}
	return marketplace
}

func seedLaunchConfig(t *testing.T, marketplace bootstrap.Marketplace) {
	t.Helper()
	ctx := context.Background()

	if err := marketplace.Trading.Service.SetPaymentToken(ctx, "owner", "tok_gold"); err != nil {
		t.Fatalf("set payment token: %v", err)
	}
	if err := marketplace.Trading.Service.SetMarketingWallet(ctx, "owner", "marketing"); err != nil {
		t.Fatalf("set marketing wallet: %v", err)
	}
	if err := marketplace.Trading.Service.SetRoyaltyPercent(ctx, "owner", 5); err != nil {
		t.Fatalf("set royalty: %v", err)
	}
	if err := marketplace.Pricing.Service.SetPrices(ctx, "owner", launchPrices); err != nil {
		t.Fatalf("set prices: %v", err)
	}
	if err := marketplace.Pricing.Service.Configure(ctx, "owner", launchRanges); err != nil {
		t.Fatalf("configure ranges: %v", err)
	}
}

func TestMarketplaceMintHundredAndFetchActive(t *testing.T) {
	marketplace := newMarketplace(t)
	seedLaunchConfig(t, marketplace)
	ctx := context.Background()

	for i := 1; i <= 100; i++ {
		resp, err := marketplace.Trading.Handler.MintAndListHandler(ctx,
			fmt.Sprintf("idem-mint-%d", i), "creator_1", tradingtransport.MintAndListRequest{
				MetadataRef: fmt.Sprintf("ipfs://profile/%d", i),
			})
		if err != nil {
			t.Fatalf("mint %d failed: %v", i, err)
		}
		if resp.Data.ItemID != uint64(i) || resp.Data.CollectibleID != uint64(i) {
			t.Fatalf("expected sequential ids, got item %d collectible %d at step %d",
				resp.Data.ItemID, resp.Data.CollectibleID, i)
		}
	}

	active, err := marketplace.Trading.Handler.FetchActiveHandler(ctx)
	if err != nil {
		t.Fatalf("fetch active failed: %v", err)
	}
	if len(active.Data) != 100 {
		t.Fatalf("expected 100 active items, got %d", len(active.Data))
	}
	for i, item := range active.Data {
		if item.ItemID != uint64(i+1) {
			t.Fatalf("active items out of order at index %d: %d", i, item.ItemID)
		}
		if item.Sold {
			t.Fatalf("freshly minted item %d marked sold", item.ItemID)
		}
	}
}

func TestMarketplacePurchaseMidRangeItemWithExcessPayment(t *testing.T) {
	marketplace := newMarketplace(t)
	seedLaunchConfig(t, marketplace)
	ctx := context.Background()

	for i := 1; i <= 30; i++ {
		if _, err := marketplace.Trading.Handler.MintAndListHandler(ctx,
			fmt.Sprintf("idem-mint-%d", i), "creator_1", tradingtransport.MintAndListRequest{
				MetadataRef: fmt.Sprintf("ipfs://profile/%d", i),
			}); err != nil {
			t.Fatalf("mint %d failed: %v", i, err)
		}
	}

	if err := marketplace.Trading.Service.CreditWallet(ctx, "owner", "collector_7", 3000); err != nil {
		t.Fatalf("credit collector: %v", err)
	}

	// Item 22 sits in the first range (tier 4, price 300).
	receipt, err := marketplace.Trading.Handler.PurchaseHandler(ctx, "idem-buy-22", "collector_7", 22,
		tradingtransport.PurchaseRequest{Payment: 3000})
	if err != nil {
		t.Fatalf("purchase item 22: %v", err)
	}
	if receipt.Data.PricePaid != 300 {
		t.Fatalf("price paid = %d, want tier price 300", receipt.Data.PricePaid)
	}
	if receipt.Data.RoyaltyPaid != 15 || receipt.Data.SellerProceeds != 285 {
		t.Fatalf("split = %d/%d, want 15/285", receipt.Data.RoyaltyPaid, receipt.Data.SellerProceeds)
	}
	if receipt.Data.Refunded != 2700 {
		t.Fatalf("refund = %d, want 2700", receipt.Data.Refunded)
	}

	balance, err := marketplace.Trading.Service.BalanceOf(ctx, "collector_7")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 2700 {
		t.Fatalf("collector balance = %d, want 2700", balance)
	}

	holder, err := marketplace.Registry.Service.HolderOf(ctx, 22)
	if err != nil {
		t.Fatalf("holder of 22: %v", err)
	}
	if holder != "collector_7" {
		t.Fatalf("holder = %s, want collector_7", holder)
	}

	active, err := marketplace.Trading.Handler.FetchActiveHandler(ctx)
	if err != nil {
		t.Fatalf("fetch active: %v", err)
	}
	if len(active.Data) != 29 {
		t.Fatalf("expected 29 active items after one sale, got %d", len(active.Data))
	}
}

func TestMarketplaceUnderfundedPurchaseLeavesStateUntouched(t *testing.T) {
	marketplace := newMarketplace(t)
	seedLaunchConfig(t, marketplace)
	ctx := context.Background()

	if _, err := marketplace.Trading.Handler.MintAndListHandler(ctx, "idem-mint-1", "creator_1",
		tradingtransport.MintAndListRequest{MetadataRef: "ipfs://profile/1"}); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if err := marketplace.Trading.Service.CreditWallet(ctx, "owner", "collector_7", 100); err != nil {
		t.Fatalf("credit collector: %v", err)
	}

	_, err := marketplace.Trading.Handler.PurchaseHandler(ctx, "idem-buy-1", "collector_7", 1,
		tradingtransport.PurchaseRequest{Payment: 100})
	if !errors.Is(err, tradingerrors.ErrInsufficientPayment) {
		t.Fatalf("expected insufficient payment for tier price 300, got %v", err)
	}

	balance, err := marketplace.Trading.Service.BalanceOf(ctx, "collector_7")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 100 {
		t.Fatalf("collector balance = %d, want untouched 100", balance)
	}
	holder, err := marketplace.Registry.Service.HolderOf(ctx, 1)
	if err != nil {
		t.Fatalf("holder: %v", err)
	}
	if holder != "creator_1" {
		t.Fatalf("holder = %s, want creator_1", holder)
	}
}

func TestMarketplaceOutboxCarriesSettlementEvents(t *testing.T) {
	marketplace := newMarketplace(t)
	seedLaunchConfig(t, marketplace)
	ctx := context.Background()

	if _, err := marketplace.Trading.Handler.MintAndListHandler(ctx, "idem-mint-1", "creator_1",
		tradingtransport.MintAndListRequest{MetadataRef: "ipfs://profile/1", PriceOverride: 100}); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if err := marketplace.Trading.Service.CreditWallet(ctx, "owner", "collector_7", 100); err != nil {
		t.Fatalf("credit collector: %v", err)
	}
	if _, err := marketplace.Trading.Handler.PurchaseHandler(ctx, "idem-buy-1", "collector_7", 1,
		tradingtransport.PurchaseRequest{Payment: 100}); err != nil {
		t.Fatalf("purchase failed: %v", err)
	}

	pending, err := marketplace.Trading.Store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list outbox: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("expected listed+minted+purchased events, got %d", len(pending))
	}
}
