package model

import "time"

// 在庫イベントの種類
type TransactionType string

const (
	//販売（在庫減）
	TransactionSold TransactionType = "sold"

	//入荷（在庫増）
	TransactionRestocked TransactionType = "restocked"
)

// 在庫台帳の1レコード。
// 作成後は更新・削除しない（追記専用）。quantityは常に正の変化量で、
// 方向はtransaction_typeで表す。
type StockLog struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64 `gorm:"not null;index" json:"product_id"`
	ActorID   int64 `gorm:"not null;index" json:"actor_id"`

	TransactionType TransactionType `gorm:"type:varchar(20);not null;index" json:"transaction_type"`

	//変化量（正の整数）
	Quantity int64 `gorm:"not null" json:"quantity"`

	//任意の参照メモ（発注番号など）
	Reference string `gorm:"type:varchar(255)" json:"reference"`

	//コミット時に確定。以後変更しない
	CreatedAt time.Time `gorm:"not null;index;autoCreateTime" json:"created_at"`
}
