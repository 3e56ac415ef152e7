package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"pawnshop-service/internal/models"
)

// loanColumns is the canonical column list used by every loan query. The
// plan-specific columns are nullable; only the columns of the loan's plan
// variant are populated.
const loanColumns = `id, customer_id, item_id, loan_amount, interest_rate, overdue_interest_rate,
             interest_amount, total_amount, amount_paid, balance_remaining, principal_remaining,
             start_date, status, payment_plan_type,
             term_days, due_date,
             minimum_monthly_payment, next_payment_date, last_payment_date, grace_period_days,
             grace_period_end_date, consecutive_missed_payments, is_at_risk,
             installment_count, installment_amount, frequency_days, late_fee_percent,
             forfeited_date, paid_date, created_at, updated_at`

// LoanRepo is a PostgreSQL implementation of the repository.LoanRepository interface
type LoanRepo struct {
	db *sql.DB
}

// NewLoanRepository creates a new LoanRepo
func NewLoanRepository(db *sql.DB) *LoanRepo {
	return &LoanRepo{db: db}
}

// Create creates a new loan in the database
func (r *LoanRepo) Create(ctx context.Context, loan *models.Loan) (int, error) {
	return r.create(ctx, r.db.QueryRowContext, loan)
}

// CreateTx creates a new loan inside a transaction, so that origination of
// the loan and its installment schedule commits atomically.
func (r *LoanRepo) CreateTx(ctx context.Context, tx *sql.Tx, loan *models.Loan) (int, error) {
	return r.create(ctx, tx.QueryRowContext, loan)
}

type queryRowFunc func(ctx context.Context, query string, args ...interface{}) *sql.Row

func (r *LoanRepo) create(ctx context.Context, queryRow queryRowFunc, loan *models.Loan) (int, error) {
	query := `INSERT INTO loans (customer_id, item_id, loan_amount, interest_rate, overdue_interest_rate,
             interest_amount, total_amount, amount_paid, balance_remaining, principal_remaining,
             start_date, status, payment_plan_type,
             term_days, due_date,
             minimum_monthly_payment, next_payment_date, last_payment_date, grace_period_days,
             grace_period_end_date, consecutive_missed_payments, is_at_risk,
             installment_count, installment_amount, frequency_days, late_fee_percent,
             forfeited_date, paid_date)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
                     $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)
             RETURNING id`

	var id int
	args := loanArgs(loan)
	err := queryRow(ctx, query, args...).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create loan: %w", err)
	}

	return id, nil
}

// GetByID gets a loan by ID
func (r *LoanRepo) GetByID(ctx context.Context, id int) (*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	loan, err := scanLoan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("loan %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}

	return loan, nil
}

// GetByIDForUpdate gets a loan by ID inside a transaction, locking the row
// until the transaction completes.
func (r *LoanRepo) GetByIDForUpdate(ctx context.Context, tx *sql.Tx, id int) (*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 FOR UPDATE`

	loan, err := scanLoan(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("loan %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get loan for update: %w", err)
	}

	return loan, nil
}

// GetByCustomerID gets all loans for a customer
func (r *LoanRepo) GetByCustomerID(ctx context.Context, customerID int) ([]*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE customer_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get loans: %w", err)
	}
	defer rows.Close()

	return scanLoans(rows)
}

// GetAll gets all loans
func (r *LoanRepo) GetAll(ctx context.Context) ([]*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get loans: %w", err)
	}
	defer rows.Close()

	return scanLoans(rows)
}

// GetOpenLoans gets all loans that have not reached a terminal status, for
// the overdue sweep.
func (r *LoanRepo) GetOpenLoans(ctx context.Context) ([]*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans
             WHERE status IN ($1, $2, $3)
             ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query,
		models.LoanStatusPending, models.LoanStatusActive, models.LoanStatusOverdue)
	if err != nil {
		return nil, fmt.Errorf("failed to get open loans: %w", err)
	}
	defer rows.Close()

	return scanLoans(rows)
}

// Update updates a loan
func (r *LoanRepo) Update(ctx context.Context, loan *models.Loan) error {
	return r.update(ctx, r.db.ExecContext, loan)
}

// UpdateTx updates a loan inside a transaction
func (r *LoanRepo) UpdateTx(ctx context.Context, tx *sql.Tx, loan *models.Loan) error {
	return r.update(ctx, tx.ExecContext, loan)
}

// Delete deletes a loan by ID. Child installments, renewals and interest
// charges cascade; the service layer enforces restrict-delete for loans with
// payments.
func (r *LoanRepo) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM loans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete loan: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("loan %d: %w", id, models.ErrNotFound)
	}

	return nil
}

type execFunc func(ctx context.Context, query string, args ...interface{}) (sql.Result, error)

func (r *LoanRepo) update(ctx context.Context, exec execFunc, loan *models.Loan) error {
	query := `UPDATE loans
             SET interest_amount = $1, total_amount = $2, amount_paid = $3,
                 balance_remaining = $4, principal_remaining = $5, status = $6,
                 due_date = $7,
                 next_payment_date = $8, last_payment_date = $9, grace_period_end_date = $10,
                 consecutive_missed_payments = $11, is_at_risk = $12,
                 forfeited_date = $13, paid_date = $14, updated_at = NOW()
             WHERE id = $15`

	var (
		dueDate           sql.NullTime
		nextPayment       sql.NullTime
		lastPayment       sql.NullTime
		graceEnd          sql.NullTime
		consecutiveMissed sql.NullInt64
		isAtRisk          bool
	)

	if loan.Traditional != nil {
		dueDate = sql.NullTime{Time: loan.Traditional.DueDate, Valid: true}
	}
	if mp := loan.MinimumPayment; mp != nil {
		nextPayment = sql.NullTime{Time: mp.NextPaymentDate, Valid: true}
		lastPayment = nullTime(mp.LastPaymentDate)
		graceEnd = nullTime(mp.GracePeriodEndDate)
		consecutiveMissed = sql.NullInt64{Int64: int64(mp.ConsecutiveMissed), Valid: true}
		isAtRisk = mp.IsAtRisk
	}

	result, err := exec(
		ctx,
		query,
		loan.InterestAmount,
		loan.TotalAmount,
		loan.AmountPaid,
		loan.BalanceRemaining,
		loan.PrincipalRemaining,
		loan.Status,
		dueDate,
		nextPayment,
		lastPayment,
		graceEnd,
		consecutiveMissed,
		isAtRisk,
		nullTime(loan.ForfeitedDate),
		nullTime(loan.PaidDate),
		loan.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update loan: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("loan %d: %w", loan.ID, models.ErrNotFound)
	}

	return nil
}

func loanArgs(loan *models.Loan) []interface{} {
	var (
		termDays          sql.NullInt64
		dueDate           sql.NullTime
		minimumPayment    decimal.NullDecimal
		nextPayment       sql.NullTime
		lastPayment       sql.NullTime
		graceDays         sql.NullInt64
		graceEnd          sql.NullTime
		consecutiveMissed sql.NullInt64
		isAtRisk          bool
		installmentCount  sql.NullInt64
		installmentAmount decimal.NullDecimal
		frequencyDays     sql.NullInt64
		lateFeePercent    decimal.NullDecimal
	)

	switch {
	case loan.Traditional != nil:
		termDays = sql.NullInt64{Int64: int64(loan.Traditional.TermDays), Valid: true}
		dueDate = sql.NullTime{Time: loan.Traditional.DueDate, Valid: true}
	case loan.MinimumPayment != nil:
		mp := loan.MinimumPayment
		minimumPayment = decimal.NullDecimal{Decimal: mp.MinimumMonthlyPayment, Valid: true}
		nextPayment = sql.NullTime{Time: mp.NextPaymentDate, Valid: true}
		lastPayment = nullTime(mp.LastPaymentDate)
		graceDays = sql.NullInt64{Int64: int64(mp.GracePeriodDays), Valid: true}
		graceEnd = nullTime(mp.GracePeriodEndDate)
		consecutiveMissed = sql.NullInt64{Int64: int64(mp.ConsecutiveMissed), Valid: true}
		isAtRisk = mp.IsAtRisk
	case loan.Installments != nil:
		inst := loan.Installments
		installmentCount = sql.NullInt64{Int64: int64(inst.Count), Valid: true}
		installmentAmount = decimal.NullDecimal{Decimal: inst.InstallmentAmount, Valid: true}
		frequencyDays = sql.NullInt64{Int64: int64(inst.FrequencyDays), Valid: true}
		lateFeePercent = decimal.NullDecimal{Decimal: inst.LateFeePercent, Valid: true}
	}

	return []interface{}{
		loan.CustomerID,
		loan.ItemID,
		loan.Amount,
		loan.InterestRate,
		loan.OverdueInterestRate,
		loan.InterestAmount,
		loan.TotalAmount,
		loan.AmountPaid,
		loan.BalanceRemaining,
		loan.PrincipalRemaining,
		loan.StartDate,
		loan.Status,
		loan.PlanType,
		termDays,
		dueDate,
		minimumPayment,
		nextPayment,
		lastPayment,
		graceDays,
		graceEnd,
		consecutiveMissed,
		isAtRisk,
		installmentCount,
		installmentAmount,
		frequencyDays,
		lateFeePercent,
		nullTime(loan.ForfeitedDate),
		nullTime(loan.PaidDate),
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLoan(row rowScanner) (*models.Loan, error) {
	loan := &models.Loan{}

	var (
		termDays          sql.NullInt64
		dueDate           sql.NullTime
		minimumPayment    decimal.NullDecimal
		nextPayment       sql.NullTime
		lastPayment       sql.NullTime
		graceDays         sql.NullInt64
		graceEnd          sql.NullTime
		consecutiveMissed sql.NullInt64
		isAtRisk          bool
		installmentCount  sql.NullInt64
		installmentAmount decimal.NullDecimal
		frequencyDays     sql.NullInt64
		lateFeePercent    decimal.NullDecimal
		forfeitedDate     sql.NullTime
		paidDate          sql.NullTime
	)

	err := row.Scan(
		&loan.ID,
		&loan.CustomerID,
		&loan.ItemID,
		&loan.Amount,
		&loan.InterestRate,
		&loan.OverdueInterestRate,
		&loan.InterestAmount,
		&loan.TotalAmount,
		&loan.AmountPaid,
		&loan.BalanceRemaining,
		&loan.PrincipalRemaining,
		&loan.StartDate,
		&loan.Status,
		&loan.PlanType,
		&termDays,
		&dueDate,
		&minimumPayment,
		&nextPayment,
		&lastPayment,
		&graceDays,
		&graceEnd,
		&consecutiveMissed,
		&isAtRisk,
		&installmentCount,
		&installmentAmount,
		&frequencyDays,
		&lateFeePercent,
		&forfeitedDate,
		&paidDate,
		&loan.CreatedAt,
		&loan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	switch loan.PlanType {
	case models.PlanTraditional:
		loan.Traditional = &models.TraditionalTerms{
			TermDays: int(termDays.Int64),
			DueDate:  dueDate.Time,
		}
	case models.PlanMinimumPayment:
		loan.MinimumPayment = &models.MinimumPaymentTerms{
			MinimumMonthlyPayment: minimumPayment.Decimal,
			NextPaymentDate:       nextPayment.Time,
			LastPaymentDate:       timePtr(lastPayment),
			GracePeriodDays:       int(graceDays.Int64),
			GracePeriodEndDate:    timePtr(graceEnd),
			ConsecutiveMissed:     int(consecutiveMissed.Int64),
			IsAtRisk:              isAtRisk,
		}
	case models.PlanInstallments:
		loan.Installments = &models.InstallmentTerms{
			Count:             int(installmentCount.Int64),
			InstallmentAmount: installmentAmount.Decimal,
			FrequencyDays:     int(frequencyDays.Int64),
			LateFeePercent:    lateFeePercent.Decimal,
		}
	}

	loan.ForfeitedDate = timePtr(forfeitedDate)
	loan.PaidDate = timePtr(paidDate)

	return loan, nil
}

func scanLoans(rows *sql.Rows) ([]*models.Loan, error) {
	var loans []*models.Loan

	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, loan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return loans, nil
}
