package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	domainerrors "scorpion/contexts/marketplace/market-trading/domain/errors"
	"scorpion/contexts/marketplace/market-trading/domain/services"
	"scorpion/contexts/marketplace/market-trading/ports"
)

type Service struct {
	Ledger      ports.Ledger
	Wallets     ports.WalletLedger
	Config      ports.ConfigStore
	Registry    ports.Registry
	Pricing     ports.PriceOracle
	Idempotency ports.IdempotencyStore
	Guard       ports.SettlementGuard
	Outbox      ports.OutboxWriter
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Owner       string
	// OperatorAccount is the identity this module uses when moving
	// collectibles through the registry. It must match the registry's
	// approved operator.
	OperatorAccount string
	IdempotencyTTL  time.Duration
	Logger          *slog.Logger
}

// List records a pre-minted collectible for sale. A zero price override lists
// at the tier price; the looked-up price is frozen into the ledger entry.
func (s Service) List(ctx context.Context, actorUserID string, input ports.ListInput) (ports.MarketItem, error) {
	actorUserID = strings.TrimSpace(actorUserID)
	if actorUserID == "" || input.CollectibleID == 0 || input.PriceOverride < 0 {
		return ports.MarketItem{}, domainerrors.ErrInvalidRequest
	}
	return s.list(ctx, actorUserID, input)
}

func (s Service) list(ctx context.Context, seller string, input ports.ListInput) (ports.MarketItem, error) {
	holder, err := s.Registry.HolderOf(ctx, input.CollectibleID)
	if err != nil {
		return ports.MarketItem{}, err
	}
	if holder != seller {
		return ports.MarketItem{}, domainerrors.ErrNotHolder
	}

	price := input.PriceOverride
	if price == 0 {
		price, err = s.Pricing.PriceFor(ctx, input.CollectibleID)
		if err != nil {
			return ports.MarketItem{}, err
		}
	}

	item, err := s.Ledger.InsertItem(ctx, ports.MarketItem{
		CollectibleID: input.CollectibleID,
		Seller:        seller,
		Owner:         seller,
		Price:         price,
		ListedAt:      s.now(),
	})
	if err != nil {
		return ports.MarketItem{}, err
	}

	if err := s.appendEvent(ctx, ports.EventTypeMarketItemListed, item.ItemID, ports.MarketItemListedPayload{
		ItemID:        item.ItemID,
		CollectibleID: item.CollectibleID,
		Seller:        item.Seller,
		Price:         int64(item.Price),
	}); err != nil {
		return ports.MarketItem{}, err
	}

	resolveLogger(s.Logger).Info("market item listed",
		"event", "market_item_listed",
		"module", "marketplace/market-trading",
		"layer", "application",
		"item_id", item.ItemID,
		"collectible_id", item.CollectibleID,
		"seller", item.Seller,
		"price", int64(item.Price),
	)
	return item, nil
}

// MintAndList is the single-transaction convenience path: issue a collectible
// and list it in one step.
func (s Service) MintAndList(
	ctx context.Context,
	idempotencyKey string,
	actorUserID string,
	input ports.MintAndListInput,
) (ports.MarketItem, error) {
	var out ports.MarketItem
	actorUserID = strings.TrimSpace(actorUserID)
	if actorUserID == "" || strings.TrimSpace(input.MetadataRef) == "" || input.PriceOverride < 0 {
		return out, domainerrors.ErrInvalidRequest
	}
	if err := s.requireIdempotency(idempotencyKey); err != nil {
		return out, err
	}

	requestHash := hashStrings("mint_and_list", actorUserID,
		strings.TrimSpace(input.MetadataRef), strconv.FormatInt(int64(input.PriceOverride), 10))
	err := s.runIdempotent(
		ctx,
		strings.TrimSpace(idempotencyKey),
		requestHash,
		func(raw []byte) error { return json.Unmarshal(raw, &out) },
		func() ([]byte, error) {
			collectibleID, err := s.Registry.Issue(ctx, actorUserID, strings.TrimSpace(input.MetadataRef))
			if err != nil {
				return nil, err
			}
			item, err := s.list(ctx, actorUserID, ports.ListInput{
				CollectibleID: collectibleID,
				PriceOverride: input.PriceOverride,
			})
			if err != nil {
				return nil, err
			}
			if err := s.appendEvent(ctx, ports.EventTypeMarketItemMinted, item.ItemID, ports.MarketItemMintedPayload{
				ItemID:        item.ItemID,
				CollectibleID: item.CollectibleID,
				MetadataRef:   strings.TrimSpace(input.MetadataRef),
				Seller:        item.Seller,
				Price:         int64(item.Price),
			}); err != nil {
				return nil, err
			}
			return json.Marshal(item)
		},
	)
	return out, err
}

func (s Service) Get(ctx context.Context, itemID uint64) (ports.MarketItem, error) {
	if itemID == 0 {
		return ports.MarketItem{}, domainerrors.ErrInvalidRequest
	}
	return s.Ledger.GetItem(ctx, itemID)
}

func (s Service) FetchActive(ctx context.Context) ([]ports.MarketItem, error) {
	return s.Ledger.FetchActive(ctx)
}

// Purchase settles a sale: it validates the listing and the payment, captures
// the payment, transfers the collectible, marks the ledger entry sold, and
// only then routes funds out (refund, royalty, seller proceeds). Validation
// failures leave every balance and ledger entry untouched.
func (s Service) Purchase(
	ctx context.Context,
	idempotencyKey string,
	payerUserID string,
	itemID uint64,
	payment ports.Amount,
) (ports.Receipt, error) {
	var out ports.Receipt
	payerUserID = strings.TrimSpace(payerUserID)
	if payerUserID == "" || itemID == 0 || payment <= 0 {
		return out, domainerrors.ErrInvalidRequest
	}
	if err := s.requireIdempotency(idempotencyKey); err != nil {
		return out, err
	}

	requestHash := hashStrings("purchase", payerUserID,
		strconv.FormatUint(itemID, 10), strconv.FormatInt(int64(payment), 10))
	err := s.runIdempotent(
		ctx,
		strings.TrimSpace(idempotencyKey),
		requestHash,
		func(raw []byte) error { return json.Unmarshal(raw, &out) },
		func() ([]byte, error) {
			receipt, err := s.settle(ctx, payerUserID, itemID, payment)
			if err != nil {
				return nil, err
			}
			return json.Marshal(receipt)
		},
	)
	return out, err
}

func (s Service) settle(ctx context.Context, payer string, itemID uint64, payment ports.Amount) (ports.Receipt, error) {
	config, err := s.Config.GetConfig(ctx)
	if err != nil {
		return ports.Receipt{}, err
	}
	if !config.Ready() {
		return ports.Receipt{}, domainerrors.ErrMarketNotConfigured
	}

	if !s.Guard.Acquire(itemID) {
		return ports.Receipt{}, domainerrors.ErrSettlementInProgress
	}
	defer s.Guard.Release(itemID)

	item, err := s.Ledger.GetItem(ctx, itemID)
	if err != nil {
		return ports.Receipt{}, err
	}
	if item.Sold {
		return ports.Receipt{}, domainerrors.ErrAlreadySold
	}
	if payment < item.Price {
		return ports.Receipt{}, domainerrors.ErrInsufficientPayment
	}

	// Capture the full payment first so a validation pass can never be
	// followed by an unfunded settlement.
	if err := s.Wallets.Debit(ctx, payer, payment); err != nil {
		return ports.Receipt{}, err
	}

	if err := s.Registry.Transfer(ctx, s.OperatorAccount, item.CollectibleID, payer); err != nil {
		// Captured payment goes straight back; nothing else changed.
		_ = s.Wallets.Credit(ctx, payer, payment)
		return ports.Receipt{}, err
	}
	sold, err := s.Ledger.MarkSold(ctx, itemID, payer, s.now())
	if err != nil {
		_ = s.Registry.Transfer(ctx, s.OperatorAccount, item.CollectibleID, item.Seller)
		_ = s.Wallets.Credit(ctx, payer, payment)
		return ports.Receipt{}, err
	}

	// State is committed; value now leaves the engine.
	royalty, proceeds := services.SplitProceeds(item.Price, config.RoyaltyPercent)
	refund := payment - item.Price
	if refund > 0 {
		if err := s.Wallets.Credit(ctx, payer, refund); err != nil {
			return ports.Receipt{}, err
		}
	}
	if royalty > 0 {
		if err := s.Wallets.Credit(ctx, config.MarketingWallet, royalty); err != nil {
			return ports.Receipt{}, err
		}
	}
	if err := s.Wallets.Credit(ctx, item.Seller, proceeds); err != nil {
		return ports.Receipt{}, err
	}

	receiptID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return ports.Receipt{}, err
	}
	receipt := ports.Receipt{
		ReceiptID:      receiptID,
		ItemID:         sold.ItemID,
		Buyer:          payer,
		PricePaid:      item.Price,
		RoyaltyPaid:    royalty,
		SellerProceeds: proceeds,
		Refunded:       refund,
		PurchasedAt:    sold.SoldAt,
	}

	if err := s.appendEvent(ctx, ports.EventTypeMarketItemPurchased, sold.ItemID, ports.MarketItemPurchasedPayload{
		ItemID:        sold.ItemID,
		CollectibleID: sold.CollectibleID,
		Buyer:         payer,
		PricePaid:     int64(item.Price),
		RoyaltyPaid:   int64(royalty),
	}); err != nil {
		return ports.Receipt{}, err
	}

	resolveLogger(s.Logger).Info("market item purchased",
		"event", "market_item_purchased",
		"module", "marketplace/market-trading",
		"layer", "application",
		"item_id", sold.ItemID,
		"buyer", payer,
		"price_paid", int64(item.Price),
		"royalty_paid", int64(royalty),
		"refunded", int64(refund),
	)
	return receipt, nil
}

func (s Service) SetMarketingWallet(ctx context.Context, actorUserID string, account string) error {
	if err := s.requireOwner(actorUserID); err != nil {
		return err
	}
	account = strings.TrimSpace(account)
	if account == "" {
		return domainerrors.ErrInvalidRequest
	}
	return s.updateConfig(ctx, func(config *ports.MarketConfig) {
		config.MarketingWallet = account
	})
}

func (s Service) SetRoyaltyPercent(ctx context.Context, actorUserID string, percent int) error {
	if err := s.requireOwner(actorUserID); err != nil {
		return err
	}
	if percent < 0 || percent > 100 {
		return domainerrors.ErrInvalidRoyaltyPercent
	}
	return s.updateConfig(ctx, func(config *ports.MarketConfig) {
		config.RoyaltyPercent = percent
		config.RoyaltyConfigured = true
	})
}

func (s Service) SetPaymentToken(ctx context.Context, actorUserID string, tokenRef string) error {
	if err := s.requireOwner(actorUserID); err != nil {
		return err
	}
	tokenRef = strings.TrimSpace(tokenRef)
	if tokenRef == "" {
		return domainerrors.ErrInvalidRequest
	}
	return s.updateConfig(ctx, func(config *ports.MarketConfig) {
		config.PaymentTokenRef = tokenRef
	})
}

func (s Service) GetConfig(ctx context.Context) (ports.MarketConfig, error) {
	return s.Config.GetConfig(ctx)
}

// CreditWallet funds an account. Administrative surface for deposits.
func (s Service) CreditWallet(ctx context.Context, actorUserID string, account string, amount ports.Amount) error {
	if err := s.requireOwner(actorUserID); err != nil {
		return err
	}
	account = strings.TrimSpace(account)
	if account == "" || amount <= 0 {
		return domainerrors.ErrInvalidRequest
	}
	return s.Wallets.Credit(ctx, account, amount)
}

func (s Service) BalanceOf(ctx context.Context, account string) (ports.Amount, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return 0, domainerrors.ErrInvalidRequest
	}
	return s.Wallets.BalanceOf(ctx, account)
}

func (s Service) updateConfig(ctx context.Context, mutate func(*ports.MarketConfig)) error {
	config, err := s.Config.GetConfig(ctx)
	if err != nil {
		return err
	}
	mutate(&config)
	if err := s.Config.PutConfig(ctx, config); err != nil {
		return err
	}
	resolveLogger(s.Logger).Info("market configuration updated",
		"event", "market_config_updated",
		"module", "marketplace/market-trading",
		"layer", "application",
		"marketing_wallet", config.MarketingWallet,
		"royalty_percent", config.RoyaltyPercent,
	)
	return nil
}

func (s Service) appendEvent(ctx context.Context, eventType string, itemID uint64, payload any) error {
	eventID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(ports.EventEnvelope{
		EventID:        eventID,
		EventType:      eventType,
		SourceService:  "marketplace/market-trading",
		OccurredAtUTC:  s.now(),
		EntityType:     "market_item",
		EntityID:       strconv.FormatUint(itemID, 10),
		PayloadVersion: 1,
		Payload:        payload,
	})
	if err != nil {
		return err
	}
	messageID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	return s.Outbox.AppendOutbox(ctx, ports.OutboxMessage{
		ID:        messageID,
		EventType: eventType,
		Payload:   raw,
		Status:    "pending",
		CreatedAt: s.now(),
	})
}

func (s Service) requireOwner(actorUserID string) error {
	if strings.TrimSpace(actorUserID) == "" || actorUserID != s.Owner {
		return domainerrors.ErrNotOwner
	}
	return nil
}

func (s Service) requireIdempotency(key string) error {
	if strings.TrimSpace(key) == "" {
		return domainerrors.ErrIdempotencyKeyRequired
	}
	return nil
}

func (s Service) idempotencyTTL() time.Duration {
	if s.IdempotencyTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.IdempotencyTTL
}

func (s Service) runIdempotent(
	ctx context.Context,
	key string,
	requestHash string,
	decode func([]byte) error,
	exec func() ([]byte, error),
) error {
	now := s.now()
	record, found, err := s.Idempotency.GetRecord(ctx, key, now)
	if err != nil {
		return err
	}
	if found {
		if record.RequestHash != requestHash {
			return domainerrors.ErrIdempotencyConflict
		}
		return decode(record.ResponsePayload)
	}

	payload, err := exec()
	if err != nil {
		return err
	}
	if err := s.Idempotency.PutRecord(ctx, ports.IdempotencyRecord{
		Key:             key,
		RequestHash:     requestHash,
		ResponsePayload: payload,
		ExpiresAt:       now.Add(s.idempotencyTTL()),
	}); err != nil {
		return err
	}
	return decode(payload)
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func hashStrings(values ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(values, "|")))
	return hex.EncodeToString(sum[:])
}
