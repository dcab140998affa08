package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ticket-office/internal/domain"
)

var (
	ErrProductGroupNotFound = errors.New("product group not found")
)

// ProductGroupRepository defines the interface for product group data access
type ProductGroupRepository interface {
	Create(ctx context.Context, group *domain.ProductGroup) error
	Update(ctx context.Context, group *domain.ProductGroup) error
	FindByID(ctx context.Context, id int64) (*domain.ProductGroup, error)
	ListRoots(ctx context.Context) ([]*domain.ProductGroup, error)
	ListChildren(ctx context.Context, parentID int64) ([]*domain.ProductGroup, error)
}

type productGroupRepository struct {
	db *sql.DB
}

// NewProductGroupRepository creates a new instance of ProductGroupRepository
func NewProductGroupRepository(db *sql.DB) ProductGroupRepository {
	return &productGroupRepository{db: db}
}

// Create inserts a new product group and fills in its generated ID
func (r *productGroupRepository) Create(ctx context.Context, group *domain.ProductGroup) error {
	query := `
		INSERT INTO product_groups (type, name, capacity_max, expires, parent_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		group.Type,
		group.Name,
		group.CapacityMax,
		group.Expires,
		group.ParentID,
	).Scan(&group.ID)

	if err != nil {
		return fmt.Errorf("failed to create product group: %w", err)
	}

	return nil
}

// Update overwrites the mutable fields of an existing product group
func (r *productGroupRepository) Update(ctx context.Context, group *domain.ProductGroup) error {
	query := `
		UPDATE product_groups
		SET type = $2, name = $3, capacity_max = $4, expires = $5, parent_id = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		group.ID,
		group.Type,
		group.Name,
		group.CapacityMax,
		group.Expires,
		group.ParentID,
	)

	if err != nil {
		return fmt.Errorf("failed to update product group: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductGroupNotFound
	}

	return nil
}

// FindByID retrieves a product group by ID
func (r *productGroupRepository) FindByID(ctx context.Context, id int64) (*domain.ProductGroup, error) {
	query := `
		SELECT id, type, name, capacity_max, expires, parent_id
		FROM product_groups
		WHERE id = $1
	`

	group := &domain.ProductGroup{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&group.ID,
		&group.Type,
		&group.Name,
		&group.CapacityMax,
		&group.Expires,
		&group.ParentID,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductGroupNotFound
		}
		return nil, fmt.Errorf("failed to find product group by ID: %w", err)
	}

	return group, nil
}

// ListRoots retrieves all groups without a parent, ordered by ID ascending
func (r *productGroupRepository) ListRoots(ctx context.Context) ([]*domain.ProductGroup, error) {
	query := `
		SELECT id, type, name, capacity_max, expires, parent_id
		FROM product_groups
		WHERE parent_id IS NULL
		ORDER BY id ASC
	`

	return r.queryGroups(ctx, query)
}

// ListChildren retrieves the direct children of a group, ordered by ID ascending
func (r *productGroupRepository) ListChildren(ctx context.Context, parentID int64) ([]*domain.ProductGroup, error) {
	query := `
		SELECT id, type, name, capacity_max, expires, parent_id
		FROM product_groups
		WHERE parent_id = $1
		ORDER BY id ASC
	`

	return r.queryGroups(ctx, query, parentID)
}

func (r *productGroupRepository) queryGroups(ctx context.Context, query string, args ...interface{}) ([]*domain.ProductGroup, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list product groups: %w", err)
	}
	defer rows.Close()

	groups := []*domain.ProductGroup{}
	for rows.Next() {
		group := &domain.ProductGroup{}
		err := rows.Scan(
			&group.ID,
			&group.Type,
			&group.Name,
			&group.CapacityMax,
			&group.Expires,
			&group.ParentID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product group: %w", err)
		}
		groups = append(groups, group)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product groups: %w", err)
	}

	return groups, nil
}
