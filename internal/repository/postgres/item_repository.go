package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"pawnshop-service/internal/models"
)

// ItemRepo is a PostgreSQL implementation of the repository.ItemRepository interface
type ItemRepo struct {
	db *sql.DB
}

// NewItemRepository creates a new ItemRepo
func NewItemRepository(db *sql.DB) *ItemRepo {
	return &ItemRepo{db: db}
}

// Create creates a new collateral item in the database
func (r *ItemRepo) Create(ctx context.Context, item *models.Item) (int, error) {
	query := `INSERT INTO items (customer_id, name, description, category, serial_number,
             appraised_value, status)
             VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	var id int
	err := r.db.QueryRowContext(
		ctx,
		query,
		item.CustomerID,
		item.Name,
		item.Description,
		item.Category,
		item.SerialNumber,
		item.AppraisedValue,
		item.Status,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create item: %w", err)
	}

	return id, nil
}

// GetByID gets an item by ID
func (r *ItemRepo) GetByID(ctx context.Context, id int) (*models.Item, error) {
	query := `SELECT id, customer_id, name, description, category, serial_number,
             appraised_value, status, forfeited_date, forfeiture_notes, auction_price,
             auction_date, created_at, updated_at
             FROM items WHERE id = $1`

	item, err := r.scanOne(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("item %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return item, nil
}

// GetByCustomerID gets all items for a customer
func (r *ItemRepo) GetByCustomerID(ctx context.Context, customerID int) ([]*models.Item, error) {
	query := `SELECT id, customer_id, name, description, category, serial_number,
             appraised_value, status, forfeited_date, forfeiture_notes, auction_price,
             auction_date, created_at, updated_at
             FROM items WHERE customer_id = $1
             ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	return r.scanItems(rows)
}

// GetAll gets all items
func (r *ItemRepo) GetAll(ctx context.Context) ([]*models.Item, error) {
	query := `SELECT id, customer_id, name, description, category, serial_number,
             appraised_value, status, forfeited_date, forfeiture_notes, auction_price,
             auction_date, created_at, updated_at
             FROM items
             ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	return r.scanItems(rows)
}

// Update updates an item
func (r *ItemRepo) Update(ctx context.Context, item *models.Item) error {
	return r.update(ctx, r.db.ExecContext, item)
}

// UpdateTx updates an item inside a transaction
func (r *ItemRepo) UpdateTx(ctx context.Context, tx *sql.Tx, item *models.Item) error {
	return r.update(ctx, tx.ExecContext, item)
}

// Delete deletes an item by ID
func (r *ItemRepo) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("item %d: %w", id, models.ErrNotFound)
	}

	return nil
}

func (r *ItemRepo) update(ctx context.Context, exec execFunc, item *models.Item) error {
	query := `UPDATE items
             SET name = $1, description = $2, category = $3, serial_number = $4,
                 appraised_value = $5, status = $6, forfeited_date = $7,
                 forfeiture_notes = $8, auction_price = $9, auction_date = $10,
                 updated_at = NOW()
             WHERE id = $11`

	var auctionPrice decimal.NullDecimal
	if item.AuctionPrice != nil {
		auctionPrice = decimal.NullDecimal{Decimal: *item.AuctionPrice, Valid: true}
	}

	result, err := exec(
		ctx,
		query,
		item.Name,
		item.Description,
		item.Category,
		item.SerialNumber,
		item.AppraisedValue,
		item.Status,
		nullTime(item.ForfeitedDate),
		item.ForfeitureNotes,
		auctionPrice,
		nullTime(item.AuctionDate),
		item.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("item %d: %w", item.ID, models.ErrNotFound)
	}

	return nil
}

func (r *ItemRepo) scanOne(row rowScanner) (*models.Item, error) {
	item := &models.Item{}
	var (
		forfeitedDate sql.NullTime
		auctionPrice  decimal.NullDecimal
		auctionDate   sql.NullTime
	)

	err := row.Scan(
		&item.ID,
		&item.CustomerID,
		&item.Name,
		&item.Description,
		&item.Category,
		&item.SerialNumber,
		&item.AppraisedValue,
		&item.Status,
		&forfeitedDate,
		&item.ForfeitureNotes,
		&auctionPrice,
		&auctionDate,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.ForfeitedDate = timePtr(forfeitedDate)
	item.AuctionDate = timePtr(auctionDate)
	if auctionPrice.Valid {
		price := auctionPrice.Decimal
		item.AuctionPrice = &price
	}

	return item, nil
}

func (r *ItemRepo) scanItems(rows *sql.Rows) ([]*models.Item, error) {
	var items []*models.Item

	for rows.Next() {
		item, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}
