package ports

import (
	"context"
	"time"
)

// Amount is a payment-token value in minor currency units.
type Amount int64

// MarketItem is one collectible offered for sale. Sold is terminal: the only
// mutation after listing is the single successful purchase.
type MarketItem struct {
	ItemID        uint64
	CollectibleID uint64
	Seller        string
	Owner         string
	Price         Amount
	Sold          bool
	ListedAt      time.Time
	SoldAt        time.Time
}

type Receipt struct {
	ReceiptID      string
	ItemID         uint64
	Buyer          string
	PricePaid      Amount
	RoyaltyPaid    Amount
	SellerProceeds Amount
	Refunded       Amount
	PurchasedAt    time.Time
}

// MarketConfig is the administrative singleton state. Purchases are rejected
// until the marketing wallet and the royalty percent have been set.
type MarketConfig struct {
	MarketingWallet   string
	RoyaltyPercent    int
	RoyaltyConfigured bool
	PaymentTokenRef   string
}

func (c MarketConfig) Ready() bool {
	return c.MarketingWallet != "" && c.RoyaltyConfigured
}

type ListInput struct {
	CollectibleID uint64
	// PriceOverride of zero means "list at tier price".
	PriceOverride Amount
}

type MintAndListInput struct {
	MetadataRef   string
	PriceOverride Amount
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type IdempotencyRecord struct {
	Key             string
	RequestHash     string
	ResponsePayload []byte
	ExpiresAt       time.Time
}

type IdempotencyStore interface {
	GetRecord(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	PutRecord(ctx context.Context, record IdempotencyRecord) error
}

type Ledger interface {
	// InsertItem assigns the next ledger-local item id, starting at 1.
	InsertItem(ctx context.Context, item MarketItem) (MarketItem, error)
	GetItem(ctx context.Context, itemID uint64) (MarketItem, error)
	// FetchActive returns every unsold item in ascending item id order.
	FetchActive(ctx context.Context) ([]MarketItem, error)
	// MarkSold flips the terminal sold flag and reassigns the owner. A
	// second call on the same item fails.
	MarkSold(ctx context.Context, itemID uint64, buyer string, now time.Time) (MarketItem, error)
}

type WalletLedger interface {
	Credit(ctx context.Context, account string, amount Amount) error
	Debit(ctx context.Context, account string, amount Amount) error
	BalanceOf(ctx context.Context, account string) (Amount, error)
}

type ConfigStore interface {
	GetConfig(ctx context.Context) (MarketConfig, error)
	PutConfig(ctx context.Context, config MarketConfig) error
}

// SettlementGuard serializes settlement per item so a re-entrant purchase of
// the same listing cannot interleave with an in-flight one.
type SettlementGuard interface {
	Acquire(itemID uint64) bool
	Release(itemID uint64)
}

// Registry is the collectible-registry collaborator surface the settlement
// engine needs.
type Registry interface {
	Issue(ctx context.Context, actorUserID string, metadataRef string) (uint64, error)
	HolderOf(ctx context.Context, collectibleID uint64) (string, error)
	Transfer(ctx context.Context, actorUserID string, collectibleID uint64, to string) error
	ResolveMetadata(ctx context.Context, collectibleID uint64) (string, error)
}

// PriceOracle resolves the tier price for a collectible at listing time. The
// listed price is a snapshot: later reconfiguration never changes it.
type PriceOracle interface {
	PriceFor(ctx context.Context, collectibleID uint64) (Amount, error)
}

const (
	EventTypeMarketItemMinted    = "marketplace.market_item_minted"
	EventTypeMarketItemListed    = "marketplace.market_item_listed"
	EventTypeMarketItemPurchased = "marketplace.market_item_purchased"
)

type EventEnvelope struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	SourceService  string    `json:"source_service"`
	OccurredAtUTC  time.Time `json:"occurred_at_utc"`
	EntityType     string    `json:"entity_type"`
	EntityID       string    `json:"entity_id"`
	PayloadVersion int       `json:"payload_version"`
	Payload        any       `json:"payload"`
}

type MarketItemMintedPayload struct {
	ItemID        uint64 `json:"item_id"`
	CollectibleID uint64 `json:"collectible_id"`
	MetadataRef   string `json:"metadata_ref"`
	Seller        string `json:"seller"`
	Price         int64  `json:"price"`
}

type MarketItemListedPayload struct {
	ItemID        uint64 `json:"item_id"`
	CollectibleID uint64 `json:"collectible_id"`
	Seller        string `json:"seller"`
	Price         int64  `json:"price"`
}

type MarketItemPurchasedPayload struct {
	ItemID        uint64 `json:"item_id"`
	CollectibleID uint64 `json:"collectible_id"`
	Buyer         string `json:"buyer"`
	PricePaid     int64  `json:"price_paid"`
	RoyaltyPaid   int64  `json:"royalty_paid"`
}

type OutboxMessage struct {
	ID         string
	EventType  string
	Payload    []byte
	Status     string // pending, published, failed
	RetryCount int
	CreatedAt  time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, message OutboxMessage) error
}

// OutboxSource is the relay-side view of the outbox consumed by the worker.
type OutboxSource interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, id string) error
	MarkOutboxFailed(ctx context.Context, id string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
