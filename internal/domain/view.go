package domain

// ProductView is a curated, ordered subset of products exposed to the
// outside through an opaque token link.
type ProductView struct {
	ID    int64  `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Type  string `json:"type" db:"type"`
	Token string `json:"token" db:"token"`
}

// ProductViewProduct places one product inside a view at an explicit
// position. Order determines display sequence within the view.
type ProductViewProduct struct {
	ID        int64 `json:"id" db:"id"`
	ViewID    int64 `json:"view_id" db:"view_id"`
	ProductID int64 `json:"product_id" db:"product_id"`
	Order     int   `json:"order" db:"display_order"`
}
