package repository

import (
	"context"
	"errors"

	"inventory/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 一覧検索の条件
type ProductListQuery struct {
	Page     int
	Limit    int
	CategoryID *int64
	MinPrice *int64
	MaxPrice *int64

	//在庫がこの値以下の商品だけ（在庫切れ一覧で使う）
	MaxQuantity *int64
}

// 商品の永続化を約束。
// 数量（quantity）を書くのはForUpdateで読んだトランザクションの中だけ。
type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	// 行ロック付き取得（SELECT ... FOR UPDATE）。
	// 存在確認もこの読みで行う。トランザクション内でのみ呼ぶこと。
	FindByIDForUpdate(ctx context.Context, id int64) (model.Product, error)

	ExistsByNameAndCategory(ctx context.Context, name string, categoryID int64) (bool, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)

	// quantity以外のフィールドを更新する
	Update(ctx context.Context, p model.Product) error
	Delete(ctx context.Context, id int64) error

	//在庫を加算
	IncreaseQuantity(ctx context.Context, productID int64, qty int64) error

	//在庫が足りるときだけ減算（条件付きUPDATE）
	DecreaseQuantityIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)
}
