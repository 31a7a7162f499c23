package model

import "time"

type Product struct {
	ID          string `gorm:"primaryKey;size:64;not null"` // product sku
	Title       string `gorm:"size:255;index;not null"`
	Description string `gorm:"size:1024"`
	Price       int64  `gorm:"not null"` // minor units
	Currency    string `gorm:"size:8;not null"`
	ImageURL    string `gorm:"size:512"`
	WeightGrams int32
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CheckoutSessionRow struct {
	ID        string `gorm:"primaryKey;size:64;not null"`
	Status    string `gorm:"size:16;index;not null"` // OPEN, CLOSED
	Version   int64  `gorm:"not null"`
	Payload   string `gorm:"type:text;not null"` // json encoded Session
	OrderID   string `gorm:"size:64;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CheckoutSessionRow) TableName() string {
	return "checkout_sessions"
}

type OrderRow struct {
	OrderID    string `gorm:"primaryKey;size:64;not null"`
	CheckoutID string `gorm:"size:64;uniqueIndex;not null"`
	Total      int64  `gorm:"not null"`
	Currency   string `gorm:"size:8;not null"`
	Payload    string `gorm:"type:text;not null"` // json encoded Order
	CreatedAt  time.Time
}

func (OrderRow) TableName() string {
	return "orders"
}

// IdempotencyKey remembers which resource a client-supplied Idempotency-Key produced.
type IdempotencyKey struct {
	Key        string `gorm:"column:idempotency_key;primaryKey;size:128;not null"`
	Operation  string `gorm:"primaryKey;size:32;not null"` // create_checkout, complete_checkout
	ResourceID string `gorm:"size:64;not null"`
	CreatedAt  time.Time
}
