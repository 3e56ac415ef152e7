package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"pawnshop-service/internal/models"
)

// InstallmentRepo is a PostgreSQL implementation of the repository.InstallmentRepository interface
type InstallmentRepo struct {
	db *sql.DB
}

// NewInstallmentRepository creates a new InstallmentRepo
func NewInstallmentRepository(db *sql.DB) *InstallmentRepo {
	return &InstallmentRepo{db: db}
}

// CreateBatchTx inserts a full installment schedule inside the caller's
// transaction so that no partial schedule is ever persisted.
func (r *InstallmentRepo) CreateBatchTx(ctx context.Context, tx *sql.Tx, installments []*models.Installment) error {
	if len(installments) == 0 {
		return nil
	}

	valueStrings := make([]string, 0, len(installments))
	valueArgs := make([]interface{}, 0, len(installments)*9)

	for i, inst := range installments {
		valueStrings = append(valueStrings, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			i*9+1, i*9+2, i*9+3, i*9+4, i*9+5, i*9+6, i*9+7, i*9+8, i*9+9))

		valueArgs = append(valueArgs,
			inst.LoanID,
			inst.Number,
			inst.DueDate,
			inst.Amount,
			inst.PrincipalAmount,
			inst.InterestAmount,
			inst.PaidAmount,
			inst.BalanceRemaining,
			inst.Status,
		)
	}

	stmt := fmt.Sprintf(`INSERT INTO installments
                       (loan_id, installment_number, due_date, amount, principal_amount,
                        interest_amount, paid_amount, balance_remaining, status)
                       VALUES %s`, strings.Join(valueStrings, ","))

	if _, err := tx.ExecContext(ctx, stmt, valueArgs...); err != nil {
		return fmt.Errorf("failed to insert installments: %w", err)
	}

	return nil
}

// GetByID gets an installment by ID
func (r *InstallmentRepo) GetByID(ctx context.Context, id int) (*models.Installment, error) {
	query := `SELECT id, loan_id, installment_number, due_date, amount, principal_amount,
             interest_amount, paid_amount, balance_remaining, late_fee, days_overdue,
             status, paid_date, created_at, updated_at
             FROM installments WHERE id = $1`

	inst, err := r.scanOne(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("installment %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get installment: %w", err)
	}

	return inst, nil
}

// GetByLoanID gets all installments for a loan, ordered by number
func (r *InstallmentRepo) GetByLoanID(ctx context.Context, loanID int) ([]*models.Installment, error) {
	rows, err := r.db.QueryContext(ctx, r.byLoanQuery(), loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get installments: %w", err)
	}
	defer rows.Close()

	return r.scanInstallments(rows)
}

// GetByLoanIDTx gets all installments for a loan inside a transaction
func (r *InstallmentRepo) GetByLoanIDTx(ctx context.Context, tx *sql.Tx, loanID int) ([]*models.Installment, error) {
	rows, err := tx.QueryContext(ctx, r.byLoanQuery(), loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get installments: %w", err)
	}
	defer rows.Close()

	return r.scanInstallments(rows)
}

// Update updates an installment's payment state
func (r *InstallmentRepo) Update(ctx context.Context, installment *models.Installment) error {
	return r.update(ctx, r.db.ExecContext, installment)
}

// UpdateTx updates an installment inside a transaction
func (r *InstallmentRepo) UpdateTx(ctx context.Context, tx *sql.Tx, installment *models.Installment) error {
	return r.update(ctx, tx.ExecContext, installment)
}

func (r *InstallmentRepo) update(ctx context.Context, exec execFunc, installment *models.Installment) error {
	query := `UPDATE installments
             SET paid_amount = $1, balance_remaining = $2, late_fee = $3, days_overdue = $4,
                 status = $5, paid_date = $6, updated_at = NOW()
             WHERE id = $7`

	result, err := exec(
		ctx,
		query,
		installment.PaidAmount,
		installment.BalanceRemaining,
		installment.LateFee,
		installment.DaysOverdue,
		installment.Status,
		nullTime(installment.PaidDate),
		installment.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update installment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("installment %d: %w", installment.ID, models.ErrNotFound)
	}

	return nil
}

func (r *InstallmentRepo) byLoanQuery() string {
	return `SELECT id, loan_id, installment_number, due_date, amount, principal_amount,
             interest_amount, paid_amount, balance_remaining, late_fee, days_overdue,
             status, paid_date, created_at, updated_at
             FROM installments
             WHERE loan_id = $1
             ORDER BY installment_number`
}

func (r *InstallmentRepo) scanOne(row rowScanner) (*models.Installment, error) {
	inst := &models.Installment{}
	var paidDate sql.NullTime

	err := row.Scan(
		&inst.ID,
		&inst.LoanID,
		&inst.Number,
		&inst.DueDate,
		&inst.Amount,
		&inst.PrincipalAmount,
		&inst.InterestAmount,
		&inst.PaidAmount,
		&inst.BalanceRemaining,
		&inst.LateFee,
		&inst.DaysOverdue,
		&inst.Status,
		&paidDate,
		&inst.CreatedAt,
		&inst.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	inst.PaidDate = timePtr(paidDate)
	return inst, nil
}

func (r *InstallmentRepo) scanInstallments(rows *sql.Rows) ([]*models.Installment, error) {
	var installments []*models.Installment

	for rows.Next() {
		inst, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan installment: %w", err)
		}
		installments = append(installments, inst)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return installments, nil
}
