package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mikesamcali-dev/memoryconnector-backend/internal/platform/logger"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/types"
)

type MemoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, memory *types.Memory) (*types.Memory, error)
	// GetByID returns (nil, nil) when the memory does not exist.
	GetByID(ctx context.Context, tx *gorm.DB, memoryID uuid.UUID) (*types.Memory, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, memoryID uuid.UUID, fields map[string]any) error
}

type memoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMemoryRepo(db *gorm.DB, baseLog *logger.Logger) MemoryRepo {
	repoLog := baseLog.With("repo", "MemoryRepo")
	return &memoryRepo{db: db, log: repoLog}
}

func (r *memoryRepo) Create(ctx context.Context, tx *gorm.DB, memory *types.Memory) (*types.Memory, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(memory).Error; err != nil {
		return nil, err
	}
	return memory, nil
}

func (r *memoryRepo) GetByID(ctx context.Context, tx *gorm.DB, memoryID uuid.UUID) (*types.Memory, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var memory types.Memory
	if err := transaction.WithContext(ctx).
		Where("id = ?", memoryID).
		First(&memory).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &memory, nil
}

func (r *memoryRepo) UpdateFields(ctx context.Context, tx *gorm.DB, memoryID uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(fields) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.Memory{}).
		Where("id = ?", memoryID).
		Updates(fields).Error
}
