package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"pawnshop-service/internal/models"
)

// InterestChargeRepo is a PostgreSQL implementation of the repository.InterestChargeRepository interface
type InterestChargeRepo struct {
	db *sql.DB
}

// NewInterestChargeRepository creates a new InterestChargeRepo
func NewInterestChargeRepository(db *sql.DB) *InterestChargeRepo {
	return &InterestChargeRepo{db: db}
}

// CreateTx appends an interest charge record inside the caller's
// transaction. The table is an append-only audit trail.
func (r *InterestChargeRepo) CreateTx(ctx context.Context, tx *sql.Tx, charge *models.InterestCharge) (int, error) {
	query := `INSERT INTO interest_charges (loan_id, charge_date, days_overdue, interest_rate,
             principal_amount, interest_amount, balance_before, balance_after, charge_type, applied)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`

	var id int
	err := tx.QueryRowContext(
		ctx,
		query,
		charge.LoanID,
		charge.ChargeDate,
		charge.DaysOverdue,
		charge.InterestRate,
		charge.PrincipalAmount,
		charge.InterestAmount,
		charge.BalanceBefore,
		charge.BalanceAfter,
		charge.ChargeType,
		charge.Applied,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create interest charge: %w", err)
	}

	return id, nil
}

// GetByLoanID gets all interest charges for a loan, newest first
func (r *InterestChargeRepo) GetByLoanID(ctx context.Context, loanID int) ([]*models.InterestCharge, error) {
	query := `SELECT id, loan_id, charge_date, days_overdue, interest_rate, principal_amount,
             interest_amount, balance_before, balance_after, charge_type, applied, created_at
             FROM interest_charges
             WHERE loan_id = $1
             ORDER BY charge_date DESC`

	rows, err := r.db.QueryContext(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get interest charges: %w", err)
	}
	defer rows.Close()

	var charges []*models.InterestCharge

	for rows.Next() {
		charge := &models.InterestCharge{}
		err := rows.Scan(
			&charge.ID,
			&charge.LoanID,
			&charge.ChargeDate,
			&charge.DaysOverdue,
			&charge.InterestRate,
			&charge.PrincipalAmount,
			&charge.InterestAmount,
			&charge.BalanceBefore,
			&charge.BalanceAfter,
			&charge.ChargeType,
			&charge.Applied,
			&charge.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interest charge: %w", err)
		}

		charges = append(charges, charge)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return charges, nil
}
