package model

import "time"

// 商品。quantity（在庫数）はStockUsecase経由でのみ増減する。
type Product struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_products_name_category" json:"name"`
	Description string    `gorm:"type:varchar(255)" json:"description"`
	Price       int64     `gorm:"not null" json:"price"`
	Quantity    int64     `gorm:"not null" json:"quantity"`
	CategoryID  int64     `gorm:"not null;index;uniqueIndex:idx_products_name_category" json:"category_id"`
	Image       string    `gorm:"type:varchar(255)" json:"image"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
