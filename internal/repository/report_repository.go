package repository

import (
	"context"
	"database/sql"
	"fmt"

	"ticket-office/internal/domain"
)

// PurchaseCount is one row of a per-group purchase report: how many
// purchases a user holds for a product.
type PurchaseCount struct {
	User    domain.User    `json:"user"`
	Product domain.Product `json:"product"`
	Count   int            `json:"count"`
}

// ReportRepository defines the interface for read-only reporting queries
type ReportRepository interface {
	GroupPurchaseCounts(ctx context.Context, groupName string) ([]*PurchaseCount, error)
	ListTransfers(ctx context.Context) ([]*domain.PurchaseTransfer, error)
}

type reportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new instance of ReportRepository
func NewReportRepository(db *sql.DB) ReportRepository {
	return &reportRepository{db: db}
}

// GroupPurchaseCounts aggregates purchases of the named group's
// products per (user, product) pair, ordered by user name ascending.
func (r *reportRepository) GroupPurchaseCounts(ctx context.Context, groupName string) ([]*PurchaseCount, error) {
	query := `
		SELECT u.id, u.name, u.email,
		       p.id, p.group_id, p.name, p.display_name, p.description, p.capacity_max, p.expires,
		       COUNT(pu.id)
		FROM product_groups g
		JOIN products p ON p.group_id = g.id
		JOIN price_tiers t ON t.product_id = p.id
		JOIN prices pr ON pr.price_tier_id = t.id
		JOIN purchases pu ON pu.price_id = pr.id
		JOIN users u ON u.id = pu.owner_id
		WHERE g.name = $1
		GROUP BY u.id, p.id
		ORDER BY u.name ASC, u.id ASC, p.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, groupName)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate purchase counts: %w", err)
	}
	defer rows.Close()

	counts := []*PurchaseCount{}
	for rows.Next() {
		pc := &PurchaseCount{}
		err := rows.Scan(
			&pc.User.ID,
			&pc.User.Name,
			&pc.User.Email,
			&pc.Product.ID,
			&pc.Product.GroupID,
			&pc.Product.Name,
			&pc.Product.DisplayName,
			&pc.Product.Description,
			&pc.Product.CapacityMax,
			&pc.Product.Expires,
			&pc.Count,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase count: %w", err)
		}
		counts = append(counts, pc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchase counts: %w", err)
	}

	return counts, nil
}

// ListTransfers retrieves the full purchase transfer log
func (r *reportRepository) ListTransfers(ctx context.Context) ([]*domain.PurchaseTransfer, error) {
	query := `
		SELECT id, purchase_id, from_user_id, to_user_id, timestamp
		FROM purchase_transfers
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase transfers: %w", err)
	}
	defer rows.Close()

	transfers := []*domain.PurchaseTransfer{}
	for rows.Next() {
		transfer := &domain.PurchaseTransfer{}
		err := rows.Scan(
			&transfer.ID,
			&transfer.PurchaseID,
			&transfer.FromUserID,
			&transfer.ToUserID,
			&transfer.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase transfer: %w", err)
		}
		transfers = append(transfers, transfer)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchase transfers: %w", err)
	}

	return transfers, nil
}
