package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pawnshop-service/internal/models"
)

// PaymentRepo is a PostgreSQL implementation of the repository.PaymentRepository interface
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepository creates a new PaymentRepo
func NewPaymentRepository(db *sql.DB) *PaymentRepo {
	return &PaymentRepo{db: db}
}

// CreateTx records a payment inside the caller's transaction so the payment
// row and the loan mutation commit or roll back together.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, payment *models.Payment) (int, error) {
	query := `INSERT INTO payments (loan_id, amount, payment_date, method, status, reference, notes)
             VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	var id int
	err := tx.QueryRowContext(
		ctx,
		query,
		payment.LoanID,
		payment.Amount,
		payment.PaymentDate,
		payment.Method,
		payment.Status,
		payment.Reference,
		payment.Notes,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create payment: %w", err)
	}

	return id, nil
}

// GetByID gets a payment by ID
func (r *PaymentRepo) GetByID(ctx context.Context, id int) (*models.Payment, error) {
	query := `SELECT id, loan_id, amount, payment_date, method, status, reference, notes, created_at
             FROM payments WHERE id = $1`

	payment := &models.Payment{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&payment.ID,
		&payment.LoanID,
		&payment.Amount,
		&payment.PaymentDate,
		&payment.Method,
		&payment.Status,
		&payment.Reference,
		&payment.Notes,
		&payment.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("payment %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return payment, nil
}

// GetByLoanID gets all payments for a loan, newest first
func (r *PaymentRepo) GetByLoanID(ctx context.Context, loanID int) ([]*models.Payment, error) {
	query := `SELECT id, loan_id, amount, payment_date, method, status, reference, notes, created_at
             FROM payments
             WHERE loan_id = $1
             ORDER BY payment_date DESC`

	rows, err := r.db.QueryContext(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments: %w", err)
	}
	defer rows.Close()

	return r.scanPayments(rows)
}

// GetByDateRange gets all payments in a date range, for daily reports
func (r *PaymentRepo) GetByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*models.Payment, error) {
	query := `SELECT id, loan_id, amount, payment_date, method, status, reference, notes, created_at
             FROM payments
             WHERE payment_date >= $1 AND payment_date <= $2
             ORDER BY payment_date`

	rows, err := r.db.QueryContext(ctx, query, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments: %w", err)
	}
	defer rows.Close()

	return r.scanPayments(rows)
}

// CountByLoanID counts the payments recorded against a loan. Used to
// enforce restrict-delete semantics on loans.
func (r *PaymentRepo) CountByLoanID(ctx context.Context, loanID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM payments WHERE loan_id = $1`, loanID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count payments: %w", err)
	}

	return count, nil
}

// UpdateStatus changes a payment's status. Completed payments are otherwise
// immutable; cancellation is a status change, never a delete.
func (r *PaymentRepo) UpdateStatus(ctx context.Context, id int, status models.PaymentStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE payments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("payment %d: %w", id, models.ErrNotFound)
	}

	return nil
}

func (r *PaymentRepo) scanPayments(rows *sql.Rows) ([]*models.Payment, error) {
	var payments []*models.Payment

	for rows.Next() {
		payment := &models.Payment{}
		err := rows.Scan(
			&payment.ID,
			&payment.LoanID,
			&payment.Amount,
			&payment.PaymentDate,
			&payment.Method,
			&payment.Status,
			&payment.Reference,
			&payment.Notes,
			&payment.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}

		payments = append(payments, payment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return payments, nil
}
