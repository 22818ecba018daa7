package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"scorpion/contexts/marketplace/market-trading/adapters/memory"
	domainerrors "scorpion/contexts/marketplace/market-trading/domain/errors"
	"scorpion/contexts/marketplace/market-trading/ports"
)

type fakeRegistry struct {
	holders  map[uint64]string
	refs     map[uint64]string
	nextID   uint64
	operator string
}

func newFakeRegistry(operator string) *fakeRegistry {
	return &fakeRegistry{
		holders:  make(map[uint64]string),
		refs:     make(map[uint64]string),
		nextID:   1,
		operator: operator,
	}
}

func (r *fakeRegistry) Issue(_ context.Context, actorUserID string, metadataRef string) (uint64, error) {
	id := r.nextID
	r.nextID++
	r.holders[id] = actorUserID
	r.refs[id] = metadataRef
	return id, nil
}

func (r *fakeRegistry) HolderOf(_ context.Context, collectibleID uint64) (string, error) {
	holder, ok := r.holders[collectibleID]
	if !ok {
		return "", errors.New("no such collectible")
	}
	return holder, nil
}

func (r *fakeRegistry) Transfer(_ context.Context, actorUserID string, collectibleID uint64, to string) error {
	holder, ok := r.holders[collectibleID]
	if !ok {
		return errors.New("no such collectible")
	}
	if actorUserID != holder && actorUserID != r.operator {
		return errors.New("transfer not authorized")
	}
	r.holders[collectibleID] = to
	return nil
}

func (r *fakeRegistry) ResolveMetadata(_ context.Context, collectibleID uint64) (string, error) {
	ref, ok := r.refs[collectibleID]
	if !ok {
		return "", errors.New("no such collectible")
	}
	return ref, nil
}

type fakePricing struct {
	price ports.Amount
	err   error
}

func (p fakePricing) PriceFor(_ context.Context, _ uint64) (ports.Amount, error) {
	return p.price, p.err
}

// blockingRegistry holds Transfer open until released so tests can observe
// a settlement mid-flight.
type blockingRegistry struct {
	*fakeRegistry
	transferEntered chan struct{}
	transferRelease chan struct{}
}

func (r *blockingRegistry) Transfer(ctx context.Context, actorUserID string, collectibleID uint64, to string) error {
	select {
	case r.transferEntered <- struct{}{}:
	default:
	}
	<-r.transferRelease
	return r.fakeRegistry.Transfer(ctx, actorUserID, collectibleID, to)
}

func newMarketService(registry ports.Registry, pricing fakePricing) (Service, *memory.Store) {
	store := memory.NewStore()
	service := Service{
		Ledger:          store,
		Wallets:         store,
		Config:          store,
		Registry:        registry,
		Pricing:         pricing,
		Idempotency:     store,
		Guard:           store,
		Outbox:          store,
		Clock:           store,
		IDGen:           store,
		Owner:           "owner",
		OperatorAccount: "market",
		IdempotencyTTL:  time.Hour,
	}
	return service, store
}

func configureMarket(t *testing.T, service Service) {
	t.Helper()
	ctx := context.Background()
	if err := service.SetPaymentToken(ctx, "owner", "tok_gold"); err != nil {
		t.Fatalf("set payment token: %v", err)
	}
	if err := service.SetMarketingWallet(ctx, "owner", "marketing"); err != nil {
		t.Fatalf("set marketing wallet: %v", err)
	}
	if err := service.SetRoyaltyPercent(ctx, "owner", 5); err != nil {
		t.Fatalf("set royalty: %v", err)
	}
}

func listCollectible(t *testing.T, service Service, registry *fakeRegistry, seller string, price ports.Amount) ports.MarketItem {
	t.Helper()
	ctx := context.Background()
	collectibleID, err := registry.Issue(ctx, seller, "ipfs://item")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	item, err := service.List(ctx, seller, ports.ListInput{
		CollectibleID: collectibleID,
		PriceOverride: price,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	return item
}

func mustBalance(t *testing.T, service Service, account string) ports.Amount {
	t.Helper()
	balance, err := service.BalanceOf(context.Background(), account)
	if err != nil {
		t.Fatalf("balance of %s: %v", account, err)
	}
	return balance
}

func TestPurchaseSettlesBalancesAndRefundsExcess(t *testing.T) {
	registry := newFakeRegistry("market")
	service, _ := newMarketService(registry, fakePricing{price: 25})
	ctx := context.Background()
	configureMarket(t, service)
	item := listCollectible(t, service, registry, "seller", 100)

	if err := service.CreditWallet(ctx, "owner", "buyer", 3000); err != nil {
		t.Fatalf("credit buyer: %v", err)
	}

	receipt, err := service.Purchase(ctx, "key-1", "buyer", item.ItemID, 3000)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if receipt.PricePaid != 100 || receipt.RoyaltyPaid != 5 || receipt.SellerProceeds != 95 || receipt.Refunded != 2900 {
		t.Fatalf("unexpected receipt split: %+v", receipt)
	}
	if receipt.Buyer != "buyer" || receipt.ItemID != item.ItemID || receipt.ReceiptID == "" {
		t.Fatalf("unexpected receipt identity: %+v", receipt)
	}

	if got := mustBalance(t, service, "buyer"); got != 2900 {
		t.Fatalf("buyer balance = %d, want 2900", got)
	}
	if got := mustBalance(t, service, "marketing"); got != 5 {
		t.Fatalf("marketing balance = %d, want 5", got)
	}
	if got := mustBalance(t, service, "seller"); got != 95 {
		t.Fatalf("seller balance = %d, want 95", got)
	}

	sold, err := service.Get(ctx, item.ItemID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if !sold.Sold || sold.Owner != "buyer" {
		t.Fatalf("item not settled: %+v", sold)
	}
	if holder := registry.holders[item.CollectibleID]; holder != "buyer" {
		t.Fatalf("collectible holder = %s, want buyer", holder)
	}

	active, err := service.FetchActive(ctx)
	if err != nil {
		t.Fatalf("fetch active: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active items, got %d", len(active))
	}
}

func TestPurchaseSecondBuyerGetsAlreadySold(t *testing.T) {
	registry := newFakeRegistry("market")
	service, _ := newMarketService(registry, fakePricing{price: 25})
	ctx := context.Background()
	configureMarket(t, service)
	item := listCollectible(t, service, registry, "seller", 100)

	for _, account := range []string{"first", "second"} {
		if err := service.CreditWallet(ctx, "owner", account, 200); err != nil {
			t.Fatalf("credit %s: %v", account, err)
		}
	}

	if _, err := service.Purchase(ctx, "key-first", "first", item.ItemID, 100); err != nil {
		t.Fatalf("first purchase: %v", err)
	}
	_, err := service.Purchase(ctx, "key-second", "second", item.ItemID, 100)
	if !errors.Is(err, domainerrors.ErrAlreadySold) {
		t.Fatalf("expected already sold, got %v", err)
	}
	if got := mustBalance(t, service, "second"); got != 200 {
		t.Fatalf("losing buyer balance = %d, want 200", got)
	}
}

func TestPurchaseWhileSettlementInFlightReturnsInProgress(t *testing.T) {
	registry := &blockingRegistry{
		fakeRegistry:    newFakeRegistry("market"),
		transferEntered: make(chan struct{}, 1),
		transferRelease: make(chan struct{}),
	}
	service, _ := newMarketService(registry, fakePricing{price: 25})
	ctx := context.Background()
	configureMarket(t, service)
	item := listCollectible(t, service, registry.fakeRegistry, "seller", 100)

	for _, account := range []string{"first", "second"} {
		if err := service.CreditWallet(ctx, "owner", account, 200); err != nil {
			t.Fatalf("credit %s: %v", account, err)
		}
	}

	type result struct {
		receipt ports.Receipt
		err     error
	}
	done := make(chan result, 1)
	go func() {
		receipt, err := service.Purchase(ctx, "key-first", "first", item.ItemID, 100)
		done <- result{receipt: receipt, err: err}
	}()

	select {
	case <-registry.transferEntered:
	case <-time.After(2 * time.Second):
		t.Fatalf("first settlement never reached the registry transfer")
	}

	_, err := service.Purchase(ctx, "key-second", "second", item.ItemID, 100)
	if !errors.Is(err, domainerrors.ErrSettlementInProgress) {
		t.Fatalf("expected settlement in progress, got %v", err)
	}
	if got := mustBalance(t, service, "second"); got != 200 {
		t.Fatalf("rejected buyer balance = %d, want 200", got)
	}

	close(registry.transferRelease)
	first := <-done
	if first.err != nil {
		t.Fatalf("first purchase: %v", first.err)
	}
	if first.receipt.Buyer != "first" || first.receipt.PricePaid != 100 {
		t.Fatalf("unexpected winning receipt: %+v", first.receipt)
	}
	if holder, err := registry.HolderOf(ctx, item.CollectibleID); err != nil || holder != "first" {
		t.Fatalf("holder after settlement = %q (%v), want first", holder, err)
	}
}

func TestPurchaseRejectsInsufficientPayment(t *testing.T) {
	registry := newFakeRegistry("market")
	service, _ := newMarketService(registry, fakePricing{price: 25})
	ctx := context.Background()
	configureMarket(t, service)
	item := listCollectible(t, service, registry, "seller", 100)

	if err := service.CreditWallet(ctx, "owner", "buyer", 500); err != nil {
		t.Fatalf("credit buyer: %v", err)
	}

	_, err := service.Purchase(ctx, "key-1", "buyer", item.ItemID, 99)
	if !errors.Is(err, domainerrors.ErrInsufficientPayment) {
		t.Fatalf("expected insufficient payment, got %v", err)
	}

	if got := mustBalance(t, service, "buyer"); got != 500 {
		t.Fatalf("buyer balance = %d, want 500", got)
	}
	unsold, err := service.Get(ctx, item.ItemID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if unsold.Sold {
		t.Fatalf("item should remain unsold after rejected payment")
	}
	if holder := registry.holders[item.CollectibleID]; holder != "seller" {
		t.Fatalf("collectible holder = %s, want seller", holder)
	}
}

func TestPurchaseRejectsUnfundedBuyer(t *testing.T) {
	registry := newFakeRegistry("market")
	service, _ := newMarketService(registry, fakePricing{price: 25})
	ctx := context.Background()
	configureMarket(t, service)
	item := listCollectible(t, service, registry, "seller", 100)

	_, err := service.Purchase(ctx, "key-1", "buyer", item.ItemID, 100)
	if !errors.Is(err, domainerrors.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	unsold, err := service.Get(ctx, item.ItemID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if unsold.Sold {
		t.Fatalf("item should remain unsold when the buyer cannot pay")
	}
}

func TestPurchaseRequiresConfiguredMarket(t *testing.T) {
	registry := newFakeRegistry("market")
	service, _ := newMarketService(registry, fakePricing{price: 25})
	ctx := context.Background()
	item := listCollectible(t, service, registry, "seller", 100)

	if err := service.CreditWallet(ctx, "owner", "buyer", 200); err != nil {
		t.Fatalf("credit buyer: %v", err)
	}

	_, err := service.Purchase(ctx, "key-1", "buyer", item.ItemID, 100)
	if !errors.Is(err, domainerrors.ErrMarketNotConfigured) {
		t.Fatalf("expected market not configured, got %v", err)
	}
}

func TestPurchaseReplaySettlesOnce(t *testing.T) {
	registry := newFakeRegistry("market")
	service, _ := newMarketService(registry, fakePricing{price: 25})
	ctx := context.Background()
	configureMarket(t, service)
	item := listCollectible(t, service, registry, "seller", 100)

	if err := service.CreditWallet(ctx, "owner", "buyer", 1000); err != nil {
		t.Fatalf("credit buyer: %v", err)
	}

	first, err := service.Purchase(ctx, "key-1", "buyer", item.ItemID, 100)
	if err != nil {
		t.Fatalf("first purchase: %v", err)
	}
	replay, err := service.Purchase(ctx, "key-1", "buyer", item.ItemID, 100)
	if err != nil {
		t.Fatalf("replay purchase: %v", err)
	}
	if replay.ReceiptID != first.ReceiptID || replay.PurchasedAt != first.PurchasedAt {
		t.Fatalf("replay returned a different receipt: %+v vs %+v", replay, first)
	}
	if got := mustBalance(t, service, "buyer"); got != 900 {
		t.Fatalf("buyer balance = %d, want 900 (charged once)", got)
	}
	if got := mustBalance(t, service, "seller"); got != 95 {
		t.Fatalf("seller balance = %d, want 95 (paid once)", got)
	}
}

func TestPurchaseIdempotencyKeyReuseWithDifferentRequest(t *testing.T) {
	registry := newFakeRegistry("market")
	service, _ := newMarketService(registry, fakePricing{price: 25})
	ctx := context.Background()
	configureMarket(t, service)
	item := listCollectible(t, service, registry, "seller", 100)

	if err := service.CreditWallet(ctx, "owner", "buyer", 1000); err != nil {
		t.Fatalf("credit buyer: %v", err)
	}
	if _, err := service.Purchase(ctx, "key-1", "buyer", item.ItemID, 100); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	_, err := service.Purchase(ctx, "key-1", "buyer", item.ItemID, 150)
	if !errors.Is(err, domainerrors.ErrIdempotencyConflict) {
		t.Fatalf("expected idempotency conflict, got %v", err)
	}
}

func TestPurchaseRequiresIdempotencyKey(t *testing.T) {
	registry := newFakeRegistry("market")
	service, _ := newMarketService(registry, fakePricing{price: 25})

	_, err := service.Purchase(context.Background(), "  ", "buyer", 1, 100)
	if !errors.Is(err, domainerrors.ErrIdempotencyKeyRequired) {
		t.Fatalf("expected idempotency key required, got %v", err)
	}
}

func TestRoyaltySplitConservesPrice(t *testing.T) {
	registry := newFakeRegistry("market")
	service, _ := newMarketService(registry, fakePricing{price: 25})
	ctx := context.Background()
	configureMarket(t, service)
	item := listCollectible(t, service, registry, "seller", 33)

	if err := service.CreditWallet(ctx, "owner", "buyer", 33); err != nil {
		t.Fatalf("credit buyer: %v", err)
	}

	receipt, err := service.Purchase(ctx, "key-1", "buyer", item.ItemID, 33)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if receipt.RoyaltyPaid != 1 || receipt.SellerProceeds != 32 {
		t.Fatalf("split = royalty %d proceeds %d, want 1/32", receipt.RoyaltyPaid, receipt.SellerProceeds)
	}
	if receipt.RoyaltyPaid+receipt.SellerProceeds != receipt.PricePaid {
		t.Fatalf("split does not conserve price: %+v", receipt)
	}
}

func TestListRequiresHolder(t *testing.T) {
	registry := newFakeRegistry("market")
	service, _ := newMarketService(registry, fakePricing{price: 25})
	ctx := context.Background()

	collectibleID, err := registry.Issue(ctx, "seller", "ipfs://item")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	_, err = service.List(ctx, "mallory", ports.ListInput{CollectibleID: collectibleID, PriceOverride: 100})
	if !errors.Is(err, domainerrors.ErrNotHolder) {
		t.Fatalf("expected not holder, got %v", err)
	}
}

func TestListFallsBackToTierPrice(t *testing.T) {
	registry := newFakeRegistry("market")
	service, _ := newMarketService(registry, fakePricing{price: 25})
	ctx := context.Background()

	collectibleID, err := registry.Issue(ctx, "seller", "ipfs://item")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	item, err := service.List(ctx, "seller", ports.ListInput{CollectibleID: collectibleID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if item.Price != 25 {
		t.Fatalf("item price = %d, want tier price 25", item.Price)
	}
}

func TestMintAndListReplayReturnsSameItem(t *testing.T) {
	registry := newFakeRegistry("market")
	service, store := newMarketService(registry, fakePricing{price: 25})
	ctx := context.Background()

	first, err := service.MintAndList(ctx, "mint-1", "seller", ports.MintAndListInput{
		MetadataRef:   "ipfs://profile/1",
		PriceOverride: 100,
	})
	if err != nil {
		t.Fatalf("mint and list: %v", err)
	}
	if first.ItemID == 0 || first.CollectibleID == 0 || first.Seller != "seller" {
		t.Fatalf("unexpected item: %+v", first)
	}
	if holder := registry.holders[first.CollectibleID]; holder != "seller" {
		t.Fatalf("holder = %s, want seller", holder)
	}

	replay, err := service.MintAndList(ctx, "mint-1", "seller", ports.MintAndListInput{
		MetadataRef:   "ipfs://profile/1",
		PriceOverride: 100,
	})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if replay.ItemID != first.ItemID || replay.CollectibleID != first.CollectibleID {
		t.Fatalf("replay minted again: %+v vs %+v", replay, first)
	}

	pending, err := store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list outbox: %v", err)
	}
	types := make(map[string]int)
	for _, message := range pending {
		types[message.EventType]++
	}
	if types[ports.EventTypeMarketItemListed] != 1 || types[ports.EventTypeMarketItemMinted] != 1 {
		t.Fatalf("unexpected outbox events: %v", types)
	}
}

func TestSetRoyaltyPercentValidatesBounds(t *testing.T) {
	registry := newFakeRegistry("market")
	service, _ := newMarketService(registry, fakePricing{price: 25})
	ctx := context.Background()

	if err := service.SetRoyaltyPercent(ctx, "owner", 101); !errors.Is(err, domainerrors.ErrInvalidRoyaltyPercent) {
		t.Fatalf("expected invalid royalty percent, got %v", err)
	}
	if err := service.SetRoyaltyPercent(ctx, "mallory", 5); !errors.Is(err, domainerrors.ErrNotOwner) {
		t.Fatalf("expected not owner, got %v", err)
	}
	if err := service.SetRoyaltyPercent(ctx, "owner", 0); err != nil {
		t.Fatalf("zero percent should be allowed: %v", err)
	}
}

func TestCreditWalletRequiresOwner(t *testing.T) {
	registry := newFakeRegistry("market")
	service, _ := newMarketService(registry, fakePricing{price: 25})

	err := service.CreditWallet(context.Background(), "mallory", "buyer", 100)
	if !errors.Is(err, domainerrors.ErrNotOwner) {
		t.Fatalf("expected not owner, got %v", err)
	}
}

func TestPurchaseUnknownListing(t *testing.T) {
	registry := newFakeRegistry("market")
	service, _ := newMarketService(registry, fakePricing{price: 25})
	configureMarket(t, service)

	_, err := service.Purchase(context.Background(), "key-1", "buyer", 42, 100)
	if !errors.Is(err, domainerrors.ErrUnknownListing) {
		t.Fatalf("expected unknown listing, got %v", err)
	}
}
