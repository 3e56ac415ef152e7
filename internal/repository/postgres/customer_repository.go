package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pawnshop-service/internal/models"
)

// CustomerRepo is a PostgreSQL implementation of the repository.CustomerRepository interface
type CustomerRepo struct {
	db *sql.DB
}

// NewCustomerRepository creates a new CustomerRepo
func NewCustomerRepository(db *sql.DB) *CustomerRepo {
	return &CustomerRepo{db: db}
}

// Create creates a new customer in the database
func (r *CustomerRepo) Create(ctx context.Context, customer *models.Customer) (int, error) {
	query := `INSERT INTO customers (first_name, last_name, email, phone, document_id, address)
             VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	var id int
	err := r.db.QueryRowContext(
		ctx,
		query,
		customer.FirstName,
		customer.LastName,
		customer.Email,
		customer.Phone,
		customer.DocumentID,
		customer.Address,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create customer: %w", err)
	}

	return id, nil
}

// GetByID gets a customer by ID
func (r *CustomerRepo) GetByID(ctx context.Context, id int) (*models.Customer, error) {
	query := `SELECT id, first_name, last_name, email, phone, document_id, address, created_at, updated_at
             FROM customers WHERE id = $1`

	customer := &models.Customer{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&customer.ID,
		&customer.FirstName,
		&customer.LastName,
		&customer.Email,
		&customer.Phone,
		&customer.DocumentID,
		&customer.Address,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("customer %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return customer, nil
}

// GetAll gets all customers
func (r *CustomerRepo) GetAll(ctx context.Context) ([]*models.Customer, error) {
	query := `SELECT id, first_name, last_name, email, phone, document_id, address, created_at, updated_at
             FROM customers
             ORDER BY last_name, first_name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get customers: %w", err)
	}
	defer rows.Close()

	var customers []*models.Customer

	for rows.Next() {
		customer := &models.Customer{}
		err := rows.Scan(
			&customer.ID,
			&customer.FirstName,
			&customer.LastName,
			&customer.Email,
			&customer.Phone,
			&customer.DocumentID,
			&customer.Address,
			&customer.CreatedAt,
			&customer.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}

		customers = append(customers, customer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return customers, nil
}

// Update updates a customer
func (r *CustomerRepo) Update(ctx context.Context, customer *models.Customer) error {
	query := `UPDATE customers
             SET first_name = $1, last_name = $2, email = $3, phone = $4,
                 document_id = $5, address = $6, updated_at = NOW()
             WHERE id = $7`

	result, err := r.db.ExecContext(
		ctx,
		query,
		customer.FirstName,
		customer.LastName,
		customer.Email,
		customer.Phone,
		customer.DocumentID,
		customer.Address,
		customer.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("customer %d: %w", customer.ID, models.ErrNotFound)
	}

	return nil
}

// Delete deletes a customer by ID
func (r *CustomerRepo) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("customer %d: %w", id, models.ErrNotFound)
	}

	return nil
}
