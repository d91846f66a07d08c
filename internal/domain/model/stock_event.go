package model

import "time"

// コミット済みの在庫調整を外部へ通知するイベント。
type StockEvent struct {
	ProductID       int64           `json:"product_id"`
	ActorID         int64           `json:"actor_id"`
	TransactionType TransactionType `json:"transaction_type"`
	Quantity        int64           `json:"quantity"`
	QuantityAfter   int64           `json:"quantity_after"`
	OccurredAt      time.Time       `json:"occurred_at"`
}
