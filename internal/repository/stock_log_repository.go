package repository

import (
	"context"
	"time"

	"inventory/internal/domain/model"
)

// 台帳の絞り込み条件。From/Toは両端とも含む（それぞれ独立に指定可）。
type StockLogQuery struct {
	Page  int
	Limit int

	ProductID       *int64
	TransactionType *model.TransactionType
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}

// 在庫台帳の約束。追記専用なのでCreateとListしかない。
type StockLogRepository interface {
	// CreateはStockUsecaseのトランザクション内からのみ呼ばれる。
	// IDと作成時刻は保存時に確定する。
	Create(ctx context.Context, log model.StockLog) (model.StockLog, error)

	// (created_at, id) 昇順＝コミット順で返す。
	List(ctx context.Context, q StockLogQuery) ([]model.StockLog, int64, error)
}
