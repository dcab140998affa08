package domain

import (
	"github.com/shopspring/decimal"
)

// PriceTier is a named pricing option for a product. At most one tier
// per product is active at a time; Unused is derived from purchases
// and reports whether the tier can still be deleted.
type PriceTier struct {
	ID        int64  `json:"id" db:"id"`
	ProductID int64  `json:"product_id" db:"product_id"`
	Name      string `json:"name" db:"name"`
	Active    bool   `json:"active" db:"active"`
	Unused    bool   `json:"unused" db:"-"`

	Prices []*Price `json:"prices,omitempty" db:"-"`
}

// Price is a single-currency amount owned by one PriceTier. A tier
// holds at most one price per currency.
type Price struct {
	ID          int64           `json:"id" db:"id"`
	PriceTierID int64           `json:"price_tier_id" db:"price_tier_id"`
	Currency    string          `json:"currency" db:"currency"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
}
