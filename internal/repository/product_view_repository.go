package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ticket-office/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrProductViewNotFound = errors.New("product view not found")
	ErrViewProductNotFound = errors.New("product is not part of this view")
	ErrViewProductExists   = errors.New("product is already part of this view")
)

// ViewCount pairs a product view with the number of products linked
// into it.
type ViewCount struct {
	View         domain.ProductView `json:"view"`
	ProductCount int                `json:"product_count"`
}

// ProductViewRepository defines the interface for product view data access
type ProductViewRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.ProductView, error)
	ListEntries(ctx context.Context, viewID int64) ([]*domain.ProductViewProduct, error)
	Update(ctx context.Context, view *domain.ProductView, orders map[int64]int) error
	CreateEntry(ctx context.Context, entry *domain.ProductViewProduct) error
	NextOrder(ctx context.Context, viewID int64) (int, error)
	ViewCounts(ctx context.Context) ([]*ViewCount, error)
}

type productViewRepository struct {
	db *sql.DB
}

// NewProductViewRepository creates a new instance of ProductViewRepository
func NewProductViewRepository(db *sql.DB) ProductViewRepository {
	return &productViewRepository{db: db}
}

// FindByID retrieves a product view by ID
func (r *productViewRepository) FindByID(ctx context.Context, id int64) (*domain.ProductView, error) {
	query := `
		SELECT id, name, type, token
		FROM product_views
		WHERE id = $1
	`

	view := &domain.ProductView{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&view.ID,
		&view.Name,
		&view.Type,
		&view.Token,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductViewNotFound
		}
		return nil, fmt.Errorf("failed to find product view by ID: %w", err)
	}

	return view, nil
}

// ListEntries retrieves a view's product entries in display order
func (r *productViewRepository) ListEntries(ctx context.Context, viewID int64) ([]*domain.ProductViewProduct, error) {
	query := `
		SELECT id, view_id, product_id, display_order
		FROM product_view_products
		WHERE view_id = $1
		ORDER BY display_order ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, viewID)
	if err != nil {
		return nil, fmt.Errorf("failed to list view entries: %w", err)
	}
	defer rows.Close()

	entries := []*domain.ProductViewProduct{}
	for rows.Next() {
		entry := &domain.ProductViewProduct{}
		err := rows.Scan(
			&entry.ID,
			&entry.ViewID,
			&entry.ProductID,
			&entry.Order,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan view entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating view entries: %w", err)
	}

	return entries, nil
}

// Update overwrites the view's fields and the display order of each
// listed entry in one transaction. Orders maps product ID to its new
// position; a product ID outside the view aborts the whole update.
func (r *productViewRepository) Update(ctx context.Context, view *domain.ProductView, orders map[int64]int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(
		ctx,
		`UPDATE product_views SET name = $2, type = $3, token = $4 WHERE id = $1`,
		view.ID,
		view.Name,
		view.Type,
		view.Token,
	)
	if err != nil {
		return fmt.Errorf("failed to update product view: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductViewNotFound
	}

	for productID, order := range orders {
		result, err := tx.ExecContext(
			ctx,
			`UPDATE product_view_products SET display_order = $3 WHERE view_id = $1 AND product_id = $2`,
			view.ID,
			productID,
			order,
		)
		if err != nil {
			return fmt.Errorf("failed to update view entry order: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return ErrViewProductNotFound
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit view update: %w", err)
	}

	return nil
}

// CreateEntry links a product into a view at the given position
func (r *productViewRepository) CreateEntry(ctx context.Context, entry *domain.ProductViewProduct) error {
	query := `
		INSERT INTO product_view_products (view_id, product_id, display_order)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		entry.ViewID,
		entry.ProductID,
		entry.Order,
	).Scan(&entry.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrViewProductExists
		}
		return fmt.Errorf("failed to create view entry: %w", err)
	}

	return nil
}

// NextOrder returns the position after the view's current last entry
func (r *productViewRepository) NextOrder(ctx context.Context, viewID int64) (int, error) {
	var next int
	err := r.db.QueryRowContext(
		ctx,
		`SELECT COALESCE(MAX(display_order), 0) + 1 FROM product_view_products WHERE view_id = $1`,
		viewID,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to compute next view order: %w", err)
	}

	return next, nil
}

// ViewCounts returns every view with its linked product count, ordered
// by view ID ascending. Views with no products report zero.
func (r *productViewRepository) ViewCounts(ctx context.Context) ([]*ViewCount, error) {
	query := `
		SELECT v.id, v.name, v.type, v.token, COUNT(pvp.id)
		FROM product_views v
		LEFT JOIN product_view_products pvp ON pvp.view_id = v.id
		GROUP BY v.id, v.name, v.type, v.token
		ORDER BY v.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count view products: %w", err)
	}
	defer rows.Close()

	counts := []*ViewCount{}
	for rows.Next() {
		vc := &ViewCount{}
		err := rows.Scan(
			&vc.View.ID,
			&vc.View.Name,
			&vc.View.Type,
			&vc.View.Token,
			&vc.ProductCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan view count: %w", err)
		}
		counts = append(counts, vc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating view counts: %w", err)
	}

	return counts, nil
}
