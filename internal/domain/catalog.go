package domain

import (
	"fmt"
	"time"
)

// ProductGroup is a node in the catalog hierarchy. Groups form a
// forest: a nil ParentID marks a root group.
type ProductGroup struct {
	ID          int64      `json:"id" db:"id"`
	Type        string     `json:"type" db:"type"`
	Name        string     `json:"name" db:"name"`
	CapacityMax *int       `json:"capacity_max" db:"capacity_max"`
	Expires     *time.Time `json:"expires" db:"expires"`
	ParentID    *int64     `json:"parent_id" db:"parent_id"`
}

func (g *ProductGroup) String() string {
	return fmt.Sprintf("<ProductGroup %d (%s: %s)>", g.ID, g.Type, g.Name)
}

// Product is a purchasable item belonging to exactly one ProductGroup.
type Product struct {
	ID          int64      `json:"id" db:"id"`
	GroupID     int64      `json:"group_id" db:"group_id"`
	Name        string     `json:"name" db:"name"`
	DisplayName string     `json:"display_name" db:"display_name"`
	Description *string    `json:"description" db:"description"`
	CapacityMax *int       `json:"capacity_max" db:"capacity_max"`
	Expires     *time.Time `json:"expires" db:"expires"`
}

func (p *Product) String() string {
	return fmt.Sprintf("<Product %d (%s)>", p.ID, p.Name)
}
