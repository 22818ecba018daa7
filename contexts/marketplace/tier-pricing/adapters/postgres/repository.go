package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	domainerrors "scorpion/contexts/marketplace/tier-pricing/domain/errors"
	"scorpion/contexts/marketplace/tier-pricing/domain/services"
	"scorpion/contexts/marketplace/tier-pricing/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const pgUniqueViolation = "23505"

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

func (r *Repository) AppendRanges(ctx context.Context, ranges []ports.TierRange) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := loadRanges(tx)
		if err != nil {
			return err
		}
		prices, err := loadPrices(tx)
		if err != nil {
			return err
		}
		if err := services.ValidateRanges(existing, ranges, len(prices)); err != nil {
			return err
		}

		rows := make([]tierRangeModel, 0, len(ranges))
		for _, item := range ranges {
			rows = append(rows, tierRangeModel{
				StartID: item.StartID,
				EndID:   item.EndID,
				Tier:    int(item.Tier),
			})
		}
		if err := tx.Create(&rows).Error; err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
				return domainerrors.ErrInvalidRange
			}
			return err
		}
		return nil
	})
}

func (r *Repository) ReplacePrices(ctx context.Context, prices []ports.Amount) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := loadRanges(tx)
		if err != nil {
			return err
		}
		for _, item := range existing {
			if int(item.Tier) > len(prices) {
				return domainerrors.ErrUnpricedTier
			}
		}

		rows := make([]tierPriceModel, 0, len(prices))
		for i, price := range prices {
			rows = append(rows, tierPriceModel{
				Tier:  i + 1,
				Price: int64(price),
			})
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tier"}},
			DoUpdates: clause.AssignmentColumns([]string{"price"}),
		}).Create(&rows).Error; err != nil {
			return err
		}
		// Shrinking the price list drops the tail tiers.
		return tx.Where("tier > ?", len(prices)).Delete(&tierPriceModel{}).Error
	})
}

func (r *Repository) PriceFor(ctx context.Context, id uint64) (ports.Amount, error) {
	var row tierRangeModel
	err := r.db.WithContext(ctx).
		Where("start_id <= ? AND end_id >= ?", id, id).
		Order("start_id ASC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domainerrors.ErrUnpricedItem
		}
		return 0, err
	}

	var price tierPriceModel
	err = r.db.WithContext(ctx).
		Where("tier = ?", row.Tier).
		First(&price).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domainerrors.ErrUnpricedTier
		}
		return 0, err
	}
	return ports.Amount(price.Price), nil
}

func (r *Repository) Ranges(ctx context.Context) ([]ports.TierRange, error) {
	return loadRanges(r.db.WithContext(ctx))
}

func (r *Repository) Prices(ctx context.Context) ([]ports.Amount, error) {
	return loadPrices(r.db.WithContext(ctx))
}

func loadRanges(tx *gorm.DB) ([]ports.TierRange, error) {
	var rows []tierRangeModel
	if err := tx.Order("start_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]ports.TierRange, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func loadPrices(tx *gorm.DB) ([]ports.Amount, error) {
	var rows []tierPriceModel
	if err := tx.Order("tier ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]ports.Amount, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.Amount(row.Price))
	}
	return items, nil
}

type tierRangeModel struct {
	StartID uint64 `gorm:"column:start_id;primaryKey"`
	EndID   uint64 `gorm:"column:end_id"`
	Tier    int    `gorm:"column:tier"`
}

func (tierRangeModel) TableName() string {
	return "tier_ranges"
}

func (m tierRangeModel) toEntity() ports.TierRange {
	return ports.TierRange{
		StartID: m.StartID,
		EndID:   m.EndID,
		Tier:    ports.Tier(m.Tier),
	}
}

type tierPriceModel struct {
	Tier  int   `gorm:"column:tier;primaryKey"`
	Price int64 `gorm:"column:price"`
}

func (tierPriceModel) TableName() string {
	return "tier_prices"
}
