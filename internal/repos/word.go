package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mikesamcali-dev/memoryconnector-backend/internal/platform/logger"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/types"
)

type WordRepo interface {
	Create(ctx context.Context, tx *gorm.DB, word *types.Word) (*types.Word, error)
	// GetByText returns (nil, nil) when no word with that exact text exists.
	GetByText(ctx context.Context, tx *gorm.DB, text string) (*types.Word, error)
}

type wordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWordRepo(db *gorm.DB, baseLog *logger.Logger) WordRepo {
	repoLog := baseLog.With("repo", "WordRepo")
	return &wordRepo{db: db, log: repoLog}
}

func (r *wordRepo) Create(ctx context.Context, tx *gorm.DB, word *types.Word) (*types.Word, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(word).Error; err != nil {
		return nil, err
	}
	return word, nil
}

func (r *wordRepo) GetByText(ctx context.Context, tx *gorm.DB, text string) (*types.Word, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var word types.Word
	if err := transaction.WithContext(ctx).
		Where("text = ?", text).
		First(&word).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &word, nil
}

type MemoryWordLinkRepo interface {
	Create(ctx context.Context, tx *gorm.DB, link *types.MemoryWordLink) (*types.MemoryWordLink, error)
	Exists(ctx context.Context, tx *gorm.DB, memoryID uuid.UUID, wordID uuid.UUID) (bool, error)
}

type memoryWordLinkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMemoryWordLinkRepo(db *gorm.DB, baseLog *logger.Logger) MemoryWordLinkRepo {
	repoLog := baseLog.With("repo", "MemoryWordLinkRepo")
	return &memoryWordLinkRepo{db: db, log: repoLog}
}

func (r *memoryWordLinkRepo) Create(ctx context.Context, tx *gorm.DB, link *types.MemoryWordLink) (*types.MemoryWordLink, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(link).Error; err != nil {
		return nil, err
	}
	return link, nil
}

func (r *memoryWordLinkRepo) Exists(ctx context.Context, tx *gorm.DB, memoryID uuid.UUID, wordID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.MemoryWordLink{}).
		Where("memory_id = ? AND word_id = ?", memoryID, wordID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
