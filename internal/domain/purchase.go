package domain

import "time"

// User is the owner of purchases. Read-only here: accounts are
// managed elsewhere, the catalog admin only reports against them.
type User struct {
	ID    int64  `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
}

// Purchase links a user to the price they bought at. The catalog admin
// never mutates purchases; they feed the reports and the tier
// unused check.
type Purchase struct {
	ID      int64 `json:"id" db:"id"`
	PriceID int64 `json:"price_id" db:"price_id"`
	OwnerID int64 `json:"owner_id" db:"owner_id"`
}

// PurchaseTransfer records a purchase changing hands.
type PurchaseTransfer struct {
	ID         int64     `json:"id" db:"id"`
	PurchaseID int64     `json:"purchase_id" db:"purchase_id"`
	FromUserID int64     `json:"from_user_id" db:"from_user_id"`
	ToUserID   int64     `json:"to_user_id" db:"to_user_id"`
	Timestamp  time.Time `json:"timestamp" db:"timestamp"`
}
