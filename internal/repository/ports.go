package repository

import (
	"context"

	"inventory/internal/domain/model"
)

// 商品キャッシュ（cache-aside）。
// 在庫調整のコミット後にDeleteで無効化する。
type ProductCache interface {
	Get(ctx context.Context, id int64) (model.Product, bool, error)
	Set(ctx context.Context, p model.Product) error
	Delete(ctx context.Context, id int64) error
}

// コミット済みの在庫調整イベントを外部へ流す約束。
// 配送失敗は呼び出し側でログに残すだけ（調整はもう確定している）。
type StockEventPublisher interface {
	PublishStockChanged(ctx context.Context, ev model.StockEvent) error
}
