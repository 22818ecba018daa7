package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainerrors "scorpion/contexts/marketplace/market-trading/domain/errors"
	"scorpion/contexts/marketplace/market-trading/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	pgUniqueViolation = "23505"

	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
	outboxStatusFailed    = "failed"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger

	// Settlement serialization stays process-local; the database guards
	// the sold flag itself through the conditional MarkSold update.
	guardMu        sync.Mutex
	settlementBusy map[uint64]bool
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:             db,
		logger:         logger,
		settlementBusy: make(map[uint64]bool),
	}
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

func (r *Repository) InsertItem(ctx context.Context, item ports.MarketItem) (ports.MarketItem, error) {
	row := marketItemModel{
		CollectibleID: item.CollectibleID,
		Seller:        item.Seller,
		Owner:         item.Owner,
		Price:         int64(item.Price),
		Sold:          false,
		ListedAt:      item.ListedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return ports.MarketItem{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) GetItem(ctx context.Context, itemID uint64) (ports.MarketItem, error) {
	var row marketItemModel
	err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.MarketItem{}, domainerrors.ErrUnknownListing
		}
		return ports.MarketItem{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) FetchActive(ctx context.Context) ([]ports.MarketItem, error) {
	var rows []marketItemModel
	if err := r.db.WithContext(ctx).
		Where("sold = ?", false).
		Order("item_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]ports.MarketItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) MarkSold(ctx context.Context, itemID uint64, buyer string, now time.Time) (ports.MarketItem, error) {
	result := r.db.WithContext(ctx).
		Model(&marketItemModel{}).
		Where("item_id = ? AND sold = ?", itemID, false).
		Updates(map[string]any{
			"owner":   buyer,
			"sold":    true,
			"sold_at": now.UTC(),
		})
	if result.Error != nil {
		return ports.MarketItem{}, result.Error
	}
	if result.RowsAffected == 0 {
		item, err := r.GetItem(ctx, itemID)
		if err != nil {
			return ports.MarketItem{}, err
		}
		if item.Sold {
			return ports.MarketItem{}, domainerrors.ErrAlreadySold
		}
		return ports.MarketItem{}, domainerrors.ErrUnknownListing
	}
	return r.GetItem(ctx, itemID)
}

func (r *Repository) Credit(ctx context.Context, account string, amount ports.Amount) error {
	row := walletModel{
		Account: account,
		Balance: int64(amount),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "account"}},
		DoUpdates: clause.Assignments(map[string]any{
			"balance": gorm.Expr("wallets.balance + ?", int64(amount)),
		}),
	}).Create(&row).Error
}

func (r *Repository) Debit(ctx context.Context, account string, amount ports.Amount) error {
	result := r.db.WithContext(ctx).
		Model(&walletModel{}).
		Where("account = ? AND balance >= ?", account, int64(amount)).
		Update("balance", gorm.Expr("balance - ?", int64(amount)))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrInsufficientFunds
	}
	return nil
}

func (r *Repository) BalanceOf(ctx context.Context, account string) (ports.Amount, error) {
	var row walletModel
	err := r.db.WithContext(ctx).
		Where("account = ?", account).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return ports.Amount(row.Balance), nil
}

func (r *Repository) GetConfig(ctx context.Context) (ports.MarketConfig, error) {
	var row marketConfigModel
	err := r.db.WithContext(ctx).
		Where("singleton_id = ?", 1).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.MarketConfig{}, nil
		}
		return ports.MarketConfig{}, err
	}
	return ports.MarketConfig{
		MarketingWallet:   row.MarketingWallet,
		RoyaltyPercent:    row.RoyaltyPercent,
		RoyaltyConfigured: row.RoyaltyConfigured,
		PaymentTokenRef:   row.PaymentTokenRef,
	}, nil
}

func (r *Repository) PutConfig(ctx context.Context, config ports.MarketConfig) error {
	row := marketConfigModel{
		SingletonID:       1,
		MarketingWallet:   config.MarketingWallet,
		RoyaltyPercent:    config.RoyaltyPercent,
		RoyaltyConfigured: config.RoyaltyConfigured,
		PaymentTokenRef:   config.PaymentTokenRef,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "singleton_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"marketing_wallet", "royalty_percent", "royalty_configured", "payment_token_ref",
		}),
	}).Create(&row).Error
}

func (r *Repository) Acquire(itemID uint64) bool {
	r.guardMu.Lock()
	defer r.guardMu.Unlock()

	if r.settlementBusy[itemID] {
		return false
	}
	r.settlementBusy[itemID] = true
	return true
}

func (r *Repository) Release(itemID uint64) {
	r.guardMu.Lock()
	defer r.guardMu.Unlock()
	delete(r.settlementBusy, itemID)
}

func (r *Repository) GetRecord(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	var row idempotencyModel
	err := r.db.WithContext(ctx).
		Where("key = ? AND expires_at > ?", key, now.UTC()).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, err
	}
	return ports.IdempotencyRecord{
		Key:             row.Key,
		RequestHash:     row.RequestHash,
		ResponsePayload: row.ResponsePayload,
		ExpiresAt:       row.ExpiresAt.UTC(),
	}, true, nil
}

func (r *Repository) PutRecord(ctx context.Context, record ports.IdempotencyRecord) error {
	row := idempotencyModel{
		Key:             record.Key,
		RequestHash:     record.RequestHash,
		ResponsePayload: record.ResponsePayload,
		ExpiresAt:       record.ExpiresAt.UTC(),
	}
	err := r.db.WithContext(ctx).Create(&row).Error
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domainerrors.ErrIdempotencyConflict
		}
	}
	return err
}

func (r *Repository) AppendOutbox(ctx context.Context, message ports.OutboxMessage) error {
	row := outboxModel{
		ID:         message.ID,
		EventType:  message.EventType,
		Payload:    message.Payload,
		Status:     outboxStatusPending,
		RetryCount: message.RetryCount,
		CreatedAt:  message.CreatedAt.UTC(),
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			ID:         row.ID,
			EventType:  row.EventType,
			Payload:    row.Payload,
			Status:     row.Status,
			RetryCount: row.RetryCount,
			CreatedAt:  row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("id = ?", id).
		Update("status", outboxStatusPublished).
		Error
}

func (r *Repository) MarkOutboxFailed(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      outboxStatusFailed,
			"retry_count": gorm.Expr("retry_count + 1"),
		}).
		Error
}

type marketItemModel struct {
	ItemID        uint64    `gorm:"column:item_id;primaryKey;autoIncrement"`
	CollectibleID uint64    `gorm:"column:collectible_id"`
	Seller        string    `gorm:"column:seller"`
	Owner         string    `gorm:"column:owner"`
	Price         int64     `gorm:"column:price"`
	Sold          bool      `gorm:"column:sold"`
	ListedAt      time.Time `gorm:"column:listed_at"`
	SoldAt        time.Time `gorm:"column:sold_at"`
}

func (marketItemModel) TableName() string {
	return "market_items"
}

func (m marketItemModel) toEntity() ports.MarketItem {
	return ports.MarketItem{
		ItemID:        m.ItemID,
		CollectibleID: m.CollectibleID,
		Seller:        m.Seller,
		Owner:         m.Owner,
		Price:         ports.Amount(m.Price),
		Sold:          m.Sold,
		ListedAt:      m.ListedAt.UTC(),
		SoldAt:        m.SoldAt.UTC(),
	}
}

type walletModel struct {
	Account string `gorm:"column:account;primaryKey"`
	Balance int64  `gorm:"column:balance"`
}

func (walletModel) TableName() string {
	return "wallets"
}

type marketConfigModel struct {
	SingletonID       int    `gorm:"column:singleton_id;primaryKey"`
	MarketingWallet   string `gorm:"column:marketing_wallet"`
	RoyaltyPercent    int    `gorm:"column:royalty_percent"`
	RoyaltyConfigured bool   `gorm:"column:royalty_configured"`
	PaymentTokenRef   string `gorm:"column:payment_token_ref"`
}

func (marketConfigModel) TableName() string {
	return "market_config"
}

type idempotencyModel struct {
	Key             string    `gorm:"column:key;primaryKey"`
	RequestHash     string    `gorm:"column:request_hash"`
	ResponsePayload []byte    `gorm:"column:response_payload"`
	ExpiresAt       time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string {
	return "market_idempotency"
}

type outboxModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	EventType  string    `gorm:"column:event_type"`
	Payload    []byte    `gorm:"column:payload"`
	Status     string    `gorm:"column:status"`
	RetryCount int       `gorm:"column:retry_count"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (outboxModel) TableName() string {
	return "market_outbox"
}
