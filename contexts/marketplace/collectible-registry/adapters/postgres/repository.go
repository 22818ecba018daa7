package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	domainerrors "scorpion/contexts/marketplace/collectible-registry/domain/errors"
	"scorpion/contexts/marketplace/collectible-registry/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

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

func (r *Repository) InsertCollectible(ctx context.Context, metadataRef string, holder string, now time.Time) (ports.Collectible, error) {
	row := collectibleModel{
		MetadataRef: metadataRef,
		Holder:      holder,
		IssuedAt:    now.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return ports.Collectible{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) GetCollectible(ctx context.Context, id uint64) (ports.Collectible, error) {
	var row collectibleModel
	err := r.db.WithContext(ctx).
		Where("collectible_id = ?", id).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Collectible{}, domainerrors.ErrUnknownItem
		}
		return ports.Collectible{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) UpdateHolder(ctx context.Context, id uint64, to string) (ports.Collectible, error) {
	result := r.db.WithContext(ctx).
		Model(&collectibleModel{}).
		Where("collectible_id = ?", id).
		Update("holder", to)
	if result.Error != nil {
		return ports.Collectible{}, result.Error
	}
	if result.RowsAffected == 0 {
		return ports.Collectible{}, domainerrors.ErrUnknownItem
	}
	return r.GetCollectible(ctx, id)
}

func (r *Repository) TotalIssued(ctx context.Context) (uint64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&collectibleModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return uint64(count), nil
}

func (r *Repository) GetSettings(ctx context.Context) (ports.Settings, error) {
	var row settingsModel
	err := r.db.WithContext(ctx).
		Where("singleton_id = ?", 1).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Settings{}, nil
		}
		return ports.Settings{}, err
	}
	return ports.Settings{
		BaseURI:  row.BaseURI,
		Operator: row.Operator,
	}, nil
}

func (r *Repository) PutSettings(ctx context.Context, settings ports.Settings) error {
	row := settingsModel{
		SingletonID: 1,
		BaseURI:     settings.BaseURI,
		Operator:    settings.Operator,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "singleton_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"base_uri", "operator"}),
	}).Create(&row).Error
}

type collectibleModel struct {
	CollectibleID uint64    `gorm:"column:collectible_id;primaryKey;autoIncrement"`
	MetadataRef   string    `gorm:"column:metadata_ref"`
	Holder        string    `gorm:"column:holder"`
	IssuedAt      time.Time `gorm:"column:issued_at"`
}

func (collectibleModel) TableName() string {
	return "collectibles"
}

func (m collectibleModel) toEntity() ports.Collectible {
	return ports.Collectible{
		ID:          m.CollectibleID,
		MetadataRef: m.MetadataRef,
		Holder:      m.Holder,
		IssuedAt:    m.IssuedAt.UTC(),
	}
}

type settingsModel struct {
	SingletonID int    `gorm:"column:singleton_id;primaryKey"`
	BaseURI     string `gorm:"column:base_uri"`
	Operator    string `gorm:"column:operator"`
}

func (settingsModel) TableName() string {
	return "registry_settings"
}
