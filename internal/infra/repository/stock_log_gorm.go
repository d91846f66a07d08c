package repository

import (
	"context"

	"inventory/internal/domain/model"
	repo "inventory/internal/repository"

	"gorm.io/gorm"
)

type StockLogGormRepository struct {
	db *gorm.DB
}

// DI
func NewStockLogGormRepository(db *gorm.DB) *StockLogGormRepository {
	return &StockLogGormRepository{db: db}
}

// 台帳に1件追記。更新系のメソッドは意図的に無い。
func (r *StockLogGormRepository) Create(ctx context.Context, log model.StockLog) (model.StockLog, error) {
	if err := r.db.WithContext(ctx).Create(&log).Error; err != nil {
		return model.StockLog{}, err
	}
	return log, nil
}

// 条件で絞ってページングして返す。(created_at, id) 昇順＝コミット順。
func (r *StockLogGormRepository) List(ctx context.Context, q repo.StockLogQuery) ([]model.StockLog, int64, error) {
	tx := r.db.WithContext(ctx).Model(&model.StockLog{})

	if q.ProductID != nil {
		tx = tx.Where("product_id = ?", *q.ProductID)
	}
	if q.TransactionType != nil {
		tx = tx.Where("transaction_type = ?", *q.TransactionType)
	}
	if q.CreatedFrom != nil {
		tx = tx.Where("created_at >= ?", *q.CreatedFrom)
	}
	if q.CreatedTo != nil {
		tx = tx.Where("created_at <= ?", *q.CreatedTo)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return []model.StockLog{}, 0, err
	}

	tx = tx.Order("created_at asc").Order("id asc")

	offset := (q.Page - 1) * q.Limit
	var logs []model.StockLog
	if err := tx.Offset(offset).Limit(q.Limit).Find(&logs).Error; err != nil {
		return []model.StockLog{}, 0, err
	}

	return logs, total, nil
}
