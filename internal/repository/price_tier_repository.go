package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ticket-office/internal/domain"
)

var (
	ErrPriceTierNotFound = errors.New("price tier not found")
	ErrPriceTierInUse    = errors.New("price tier has purchases against it")
)

// tierUnusedCondition reports whether no purchase references any price
// under the tier. Deletion is only legal while this holds.
const tierUnusedCondition = `
	NOT EXISTS (
		SELECT 1
		FROM purchases pu
		JOIN prices pr ON pr.id = pu.price_id
		WHERE pr.price_tier_id = t.id
	)
`

// PriceTierRepository defines the interface for price tier data access
type PriceTierRepository interface {
	CreateWithPrices(ctx context.Context, tier *domain.PriceTier) error
	FindByID(ctx context.Context, id int64) (*domain.PriceTier, error)
	ListByProduct(ctx context.Context, productID int64) ([]*domain.PriceTier, error)
	CountByProduct(ctx context.Context, productID int64) (int, error)
	Activate(ctx context.Context, id int64) error
	Deactivate(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

type priceTierRepository struct {
	db *sql.DB
}

// NewPriceTierRepository creates a new instance of PriceTierRepository
func NewPriceTierRepository(db *sql.DB) PriceTierRepository {
	return &priceTierRepository{db: db}
}

// CreateWithPrices inserts a tier and its prices in one transaction.
// The tier row is inserted first so the prices can carry its
// generated ID as an explicit foreign key.
func (r *priceTierRepository) CreateWithPrices(ctx context.Context, tier *domain.PriceTier) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(
		ctx,
		`INSERT INTO price_tiers (product_id, name, active) VALUES ($1, $2, $3) RETURNING id`,
		tier.ProductID,
		tier.Name,
		tier.Active,
	).Scan(&tier.ID)
	if err != nil {
		return fmt.Errorf("failed to create price tier: %w", err)
	}

	for _, price := range tier.Prices {
		price.PriceTierID = tier.ID
		err = tx.QueryRowContext(
			ctx,
			`INSERT INTO prices (price_tier_id, currency, amount) VALUES ($1, $2, $3) RETURNING id`,
			price.PriceTierID,
			price.Currency,
			price.Amount,
		).Scan(&price.ID)
		if err != nil {
			return fmt.Errorf("failed to create price: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit price tier: %w", err)
	}

	// A freshly created tier cannot have purchases yet
	tier.Unused = true

	return nil
}

// FindByID retrieves a tier with its prices and derived unused flag
func (r *priceTierRepository) FindByID(ctx context.Context, id int64) (*domain.PriceTier, error) {
	query := `
		SELECT t.id, t.product_id, t.name, t.active, ` + tierUnusedCondition + ` AS unused
		FROM price_tiers t
		WHERE t.id = $1
	`

	tier := &domain.PriceTier{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&tier.ID,
		&tier.ProductID,
		&tier.Name,
		&tier.Active,
		&tier.Unused,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPriceTierNotFound
		}
		return nil, fmt.Errorf("failed to find price tier by ID: %w", err)
	}

	prices, err := r.listPrices(ctx, tier.ID)
	if err != nil {
		return nil, err
	}
	tier.Prices = prices

	return tier, nil
}

// ListByProduct retrieves all tiers of a product, ordered by ID ascending
func (r *priceTierRepository) ListByProduct(ctx context.Context, productID int64) ([]*domain.PriceTier, error) {
	query := `
		SELECT t.id, t.product_id, t.name, t.active, ` + tierUnusedCondition + ` AS unused
		FROM price_tiers t
		WHERE t.product_id = $1
		ORDER BY t.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list price tiers: %w", err)
	}
	defer rows.Close()

	tiers := []*domain.PriceTier{}
	for rows.Next() {
		tier := &domain.PriceTier{}
		err := rows.Scan(
			&tier.ID,
			&tier.ProductID,
			&tier.Name,
			&tier.Active,
			&tier.Unused,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price tier: %w", err)
		}
		tiers = append(tiers, tier)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price tiers: %w", err)
	}

	for _, tier := range tiers {
		prices, err := r.listPrices(ctx, tier.ID)
		if err != nil {
			return nil, err
		}
		tier.Prices = prices
	}

	return tiers, nil
}

// CountByProduct returns the number of tiers attached to a product
func (r *priceTierRepository) CountByProduct(ctx context.Context, productID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM price_tiers WHERE product_id = $1`,
		productID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count price tiers: %w", err)
	}

	return count, nil
}

// Activate sets the tier active and deactivates all of its siblings
// in one transaction, so exactly one tier per product ends up active.
func (r *priceTierRepository) Activate(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var productID int64
	err = tx.QueryRowContext(ctx, `SELECT product_id FROM price_tiers WHERE id = $1`, id).Scan(&productID)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrPriceTierNotFound
		}
		return fmt.Errorf("failed to find price tier: %w", err)
	}

	_, err = tx.ExecContext(ctx, `UPDATE price_tiers SET active = FALSE WHERE product_id = $1`, productID)
	if err != nil {
		return fmt.Errorf("failed to deactivate sibling tiers: %w", err)
	}

	_, err = tx.ExecContext(ctx, `UPDATE price_tiers SET active = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to activate price tier: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tier activation: %w", err)
	}

	return nil
}

// Deactivate clears the tier's active flag, leaving siblings untouched.
// A product may end up with no active tier.
func (r *priceTierRepository) Deactivate(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `UPDATE price_tiers SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate price tier: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrPriceTierNotFound
	}

	return nil
}

// Delete removes a tier and its prices, but only while the tier is
// unused. The unused check and the delete run in the same statement
// so a concurrent purchase cannot slip between them.
func (r *priceTierRepository) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM price_tiers t
		WHERE t.id = $1 AND ` + tierUnusedCondition

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete price tier: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Distinguish a missing tier from one that has purchases
		var exists bool
		err = r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM price_tiers WHERE id = $1)`, id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check price tier existence: %w", err)
		}
		if exists {
			return ErrPriceTierInUse
		}
		return ErrPriceTierNotFound
	}

	return nil
}

func (r *priceTierRepository) listPrices(ctx context.Context, tierID int64) ([]*domain.Price, error) {
	query := `
		SELECT id, price_tier_id, currency, amount
		FROM prices
		WHERE price_tier_id = $1
		ORDER BY currency ASC
	`

	rows, err := r.db.QueryContext(ctx, query, tierID)
	if err != nil {
		return nil, fmt.Errorf("failed to list prices: %w", err)
	}
	defer rows.Close()

	prices := []*domain.Price{}
	for rows.Next() {
		price := &domain.Price{}
		err := rows.Scan(
			&price.ID,
			&price.PriceTierID,
			&price.Currency,
			&price.Amount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price: %w", err)
		}
		prices = append(prices, price)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prices: %w", err)
	}

	return prices, nil
}
