package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mikesamcali-dev/memoryconnector-backend/internal/platform/logger"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/types"
)

type CostRecordRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rec *types.CostRecord) (*types.CostRecord, error)
	CountSince(ctx context.Context, tx *gorm.DB, since time.Time) (int64, error)
	GroupCountByOperationSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) (map[string]int64, error)
}

type costRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCostRecordRepo(db *gorm.DB, baseLog *logger.Logger) CostRecordRepo {
	repoLog := baseLog.With("repo", "CostRecordRepo")
	return &costRecordRepo{db: db, log: repoLog}
}

func (r *costRecordRepo) Create(ctx context.Context, tx *gorm.DB, rec *types.CostRecord) (*types.CostRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *costRecordRepo) CountSince(ctx context.Context, tx *gorm.DB, since time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.CostRecord{}).
		Where("date >= ?", since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *costRecordRepo) GroupCountByOperationSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) (map[string]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	type row struct {
		Operation string
		Count     int64
	}
	var rows []row
	if err := transaction.WithContext(ctx).
		Model(&types.CostRecord{}).
		Select("operation, count(*) as count").
		Where("user_id = ? AND date >= ?", userID, since).
		Group("operation").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, rw := range rows {
		out[rw.Operation] = rw.Count
	}
	return out, nil
}
