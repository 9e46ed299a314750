package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/mikesamcali-dev/memoryconnector-backend/internal/platform/logger"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/types"
)

type PersonRepo interface {
	Create(ctx context.Context, tx *gorm.DB, person *types.Person) (*types.Person, error)
	// GetAllNames returns id + display_name for every person, for fuzzy matching.
	GetAllNames(ctx context.Context, tx *gorm.DB) ([]*types.Person, error)
}

type personRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPersonRepo(db *gorm.DB, baseLog *logger.Logger) PersonRepo {
	repoLog := baseLog.With("repo", "PersonRepo")
	return &personRepo{db: db, log: repoLog}
}

func (r *personRepo) Create(ctx context.Context, tx *gorm.DB, person *types.Person) (*types.Person, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(person).Error; err != nil {
		return nil, err
	}
	return person, nil
}

func (r *personRepo) GetAllNames(ctx context.Context, tx *gorm.DB) ([]*types.Person, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Person
	if err := transaction.WithContext(ctx).
		Select("id", "display_name").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
