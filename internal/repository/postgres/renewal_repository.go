package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"pawnshop-service/internal/models"
)

// RenewalRepo is a PostgreSQL implementation of the repository.RenewalRepository interface
type RenewalRepo struct {
	db *sql.DB
}

// NewRenewalRepository creates a new RenewalRepo
func NewRenewalRepository(db *sql.DB) *RenewalRepo {
	return &RenewalRepo{db: db}
}

// CreateTx records a renewal inside the caller's transaction. Renewal
// records are immutable history, there is no update.
func (r *RenewalRepo) CreateTx(ctx context.Context, tx *sql.Tx, renewal *models.LoanRenewal) (int, error) {
	query := `INSERT INTO loan_renewals (loan_id, previous_due_date, new_due_date, extension_days,
             renewal_fee, interest_rate, interest_amount, processed_by, notes)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`

	var id int
	err := tx.QueryRowContext(
		ctx,
		query,
		renewal.LoanID,
		renewal.PreviousDueDate,
		renewal.NewDueDate,
		renewal.ExtensionDays,
		renewal.RenewalFee,
		renewal.InterestRate,
		renewal.InterestAmount,
		renewal.ProcessedBy,
		renewal.Notes,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create loan renewal: %w", err)
	}

	return id, nil
}

// GetByLoanID gets the renewal history of a loan, newest first
func (r *RenewalRepo) GetByLoanID(ctx context.Context, loanID int) ([]*models.LoanRenewal, error) {
	query := `SELECT id, loan_id, previous_due_date, new_due_date, extension_days,
             renewal_fee, interest_rate, interest_amount, processed_by, notes, created_at
             FROM loan_renewals
             WHERE loan_id = $1
             ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get loan renewals: %w", err)
	}
	defer rows.Close()

	var renewals []*models.LoanRenewal

	for rows.Next() {
		renewal := &models.LoanRenewal{}
		err := rows.Scan(
			&renewal.ID,
			&renewal.LoanID,
			&renewal.PreviousDueDate,
			&renewal.NewDueDate,
			&renewal.ExtensionDays,
			&renewal.RenewalFee,
			&renewal.InterestRate,
			&renewal.InterestAmount,
			&renewal.ProcessedBy,
			&renewal.Notes,
			&renewal.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan renewal: %w", err)
		}

		renewals = append(renewals, renewal)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return renewals, nil
}
