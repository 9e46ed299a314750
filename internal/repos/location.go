package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mikesamcali-dev/memoryconnector-backend/internal/platform/logger"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/types"
)

type LocationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, location *types.Location) (*types.Location, error)
	// GetAllNames returns id + name + last_enriched_at for every location, for fuzzy matching.
	GetAllNames(ctx context.Context, tx *gorm.DB) ([]*types.Location, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, locationID uuid.UUID, fields map[string]any) error
}

type locationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLocationRepo(db *gorm.DB, baseLog *logger.Logger) LocationRepo {
	repoLog := baseLog.With("repo", "LocationRepo")
	return &locationRepo{db: db, log: repoLog}
}

func (r *locationRepo) Create(ctx context.Context, tx *gorm.DB, location *types.Location) (*types.Location, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(location).Error; err != nil {
		return nil, err
	}
	return location, nil
}

func (r *locationRepo) GetAllNames(ctx context.Context, tx *gorm.DB) ([]*types.Location, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Location
	if err := transaction.WithContext(ctx).
		Select("id", "name", "last_enriched_at").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *locationRepo) UpdateFields(ctx context.Context, tx *gorm.DB, locationID uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(fields) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.Location{}).
		Where("id = ?", locationID).
		Updates(fields).Error
}
