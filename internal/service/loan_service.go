package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"pawnshop-service/configs"
	"pawnshop-service/internal/models"
	"pawnshop-service/internal/repository"
)

// LoanSvc is an implementation of the service.LoanService interface. It is
// the balance engine: every payment, renewal and confiscation runs as one
// synchronous unit of work against a single loan aggregate, serialized by a
// row lock on the loan.
type LoanSvc struct {
	repos  *repository.Repository
	logger *logrus.Logger
	config *configs.Config
	email  EmailService
	rate   RateService
}

// NewLoanService creates a new LoanSvc
func NewLoanService(deps Dependencies) *LoanSvc {
	return &LoanSvc{
		repos:  deps.Repos,
		logger: deps.Logger,
		config: deps.Config,
		email:  NewEmailService(deps),
		rate:   NewRateService(deps),
	}
}

// Create originates a new loan. It validates plan-specific fields, pawns the
// collateral item and, for installment plans, generates and persists the full
// schedule in the same transaction; no partial schedule is ever stored.
func (s *LoanSvc) Create(ctx context.Context, req *models.LoanRequest) (int, error) {
	if req.StartDate.IsZero() {
		req.StartDate = time.Now()
	}

	// Default the interest rate from the central-bank key rate plus margin
	// when the request omits one.
	if req.InterestRate.IsZero() {
		keyRate, err := s.rate.GetKeyRate(ctx)
		if err != nil {
			s.logger.Warnf("Failed to get key rate: %v. Using default rate of %.2f%%.", err, s.config.Loan.DefaultInterestRate)
			keyRate = s.config.Loan.DefaultInterestRate
		}
		req.InterestRate = decimal.NewFromFloat(keyRate + s.config.Loan.RateMargin)
	}

	if err := req.Validate(); err != nil {
		return 0, fmt.Errorf("invalid loan request: %w", err)
	}

	if _, err := s.repos.Customer.GetByID(ctx, req.CustomerID); err != nil {
		return 0, fmt.Errorf("customer not found: %w", err)
	}

	item, err := s.repos.Item.GetByID(ctx, req.ItemID)
	if err != nil {
		return 0, fmt.Errorf("item not found: %w", err)
	}

	if !item.CanBePawned() {
		return 0, fmt.Errorf("%w: item %d has status %s and cannot secure a new loan",
			models.ErrInvalidLoanState, item.ID, item.Status)
	}

	loan := req.ToLoan()

	var schedule []*models.Installment
	if loan.PlanType == models.PlanInstallments {
		schedule, err = models.GenerateInstallmentSchedule(loan)
		if err != nil {
			return 0, err
		}
		loan.Installments.InstallmentAmount = schedule[0].Amount
	}

	tx, err := s.repos.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	loanID, err := s.repos.Loan.CreateTx(ctx, tx, loan)
	if err != nil {
		return 0, fmt.Errorf("failed to create loan: %w", err)
	}

	if len(schedule) > 0 {
		for _, inst := range schedule {
			inst.LoanID = loanID
		}
		if err = s.repos.Installment.CreateBatchTx(ctx, tx, schedule); err != nil {
			return 0, fmt.Errorf("failed to create installment schedule: %w", err)
		}
	}

	item.Status = models.ItemStatusPawned
	if err = s.repos.Item.UpdateTx(ctx, tx, item); err != nil {
		return 0, fmt.Errorf("failed to pawn item: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Infof("Loan created: %d for customer %d, amount %s, plan %s, rate %s%%",
		loanID, req.CustomerID, req.Amount.StringFixed(2), req.PlanType, req.InterestRate.StringFixed(2))

	return loanID, nil
}

// GetByID gets a loan by ID
func (s *LoanSvc) GetByID(ctx context.Context, id int) (*models.Loan, error) {
	loan, err := s.repos.Loan.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}

	return loan, nil
}

// GetByCustomerID gets all loans for a customer
func (s *LoanSvc) GetByCustomerID(ctx context.Context, customerID int) ([]*models.Loan, error) {
	loans, err := s.repos.Loan.GetByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get loans: %w", err)
	}

	return loans, nil
}

// GetAll gets all loans
func (s *LoanSvc) GetAll(ctx context.Context) ([]*models.Loan, error) {
	loans, err := s.repos.Loan.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get loans: %w", err)
	}

	return loans, nil
}

// GetSchedule gets the installment schedule and its summary for a loan
func (s *LoanSvc) GetSchedule(ctx context.Context, loanID int) ([]*models.Installment, *models.ScheduleSummary, error) {
	if _, err := s.repos.Loan.GetByID(ctx, loanID); err != nil {
		return nil, nil, fmt.Errorf("failed to get loan: %w", err)
	}

	installments, err := s.repos.Installment.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get installment schedule: %w", err)
	}

	return installments, models.CalculateScheduleSummary(installments), nil
}

// GetSummary builds the read-only reporting projection for a loan
func (s *LoanSvc) GetSummary(ctx context.Context, loanID int, now time.Time) (*models.LoanSummary, error) {
	loan, err := s.repos.Loan.GetByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}

	return models.NewLoanSummary(loan, now), nil
}

// GetRenewals gets the renewal history of a loan
func (s *LoanSvc) GetRenewals(ctx context.Context, loanID int) ([]*models.LoanRenewal, error) {
	renewals, err := s.repos.Renewal.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get renewals: %w", err)
	}

	return renewals, nil
}

// GetInterestCharges gets the interest charge audit trail of a loan
func (s *LoanSvc) GetInterestCharges(ctx context.Context, loanID int) ([]*models.InterestCharge, error) {
	charges, err := s.repos.InterestCharge.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get interest charges: %w", err)
	}

	return charges, nil
}

// ApplyPayment applies a payment to a loan according to its plan variant.
// The whole call is one transaction: the loan aggregate, the targeted
// installment and the payment record commit or roll back together.
func (s *LoanSvc) ApplyPayment(ctx context.Context, req *models.PaymentRequest) (*models.PaymentResult, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: payment amount must be positive", models.ErrInvalidPaymentAmount)
	}

	now := req.PaymentDate
	if now.IsZero() {
		now = time.Now()
	}

	tx, err := s.repos.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	loan, err := s.repos.Loan.GetByIDForUpdate(ctx, tx, req.LoanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}

	if loan.IsTerminal() {
		err = fmt.Errorf("%w: loan %d has status %s and cannot accept payments",
			models.ErrInvalidLoanState, loan.ID, loan.Status)
		return nil, err
	}

	result := &models.PaymentResult{}

	switch loan.PlanType {
	case models.PlanTraditional:
		result.PaidOff = loan.ApplyBalancePayment(req.Amount, now)

	case models.PlanInstallments:
		result.PaidOff, err = s.applyInstallmentPayment(ctx, tx, loan, req, now)
		if err != nil {
			return nil, err
		}

	case models.PlanMinimumPayment:
		mp := loan.MinimumPayment
		if mp.Qualifies(req.Amount) {
			mp.RegisterQualifyingPayment(now)
			if loan.Status == models.LoanStatusOverdue {
				loan.Status = models.LoanStatusActive
			}
		} else {
			// Below-minimum payments are accepted with a warning; they do
			// not reset the tracker.
			result.Warning = fmt.Sprintf("payment %s is below the minimum monthly payment %s and does not reset the payment tracker",
				req.Amount.StringFixed(2), mp.MinimumMonthlyPayment.StringFixed(2))
		}
		result.PaidOff = loan.ApplyBalancePayment(req.Amount, now)

	default:
		err = fmt.Errorf("%w: loan %d has unknown payment plan %q",
			models.ErrInvalidLoanState, loan.ID, loan.PlanType)
		return nil, err
	}

	payment := &models.Payment{
		LoanID:      loan.ID,
		Amount:      req.Amount,
		PaymentDate: now,
		Method:      req.Method,
		Status:      models.PaymentStatusCompleted,
		Reference:   uuid.NewString(),
		Notes:       req.Notes,
	}

	payment.ID, err = s.repos.Payment.CreateTx(ctx, tx, payment)
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	if err = s.repos.Loan.UpdateTx(ctx, tx, loan); err != nil {
		return nil, fmt.Errorf("failed to update loan: %w", err)
	}

	if result.PaidOff {
		if err = s.releaseItem(ctx, tx, loan.ItemID); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	result.Payment = payment
	result.NewBalance = loan.BalanceRemaining
	result.NewStatus = loan.Status

	s.logger.Infof("Payment %s applied to loan %d (plan %s), new balance %s, status %s",
		req.Amount.StringFixed(2), loan.ID, loan.PlanType, loan.BalanceRemaining.StringFixed(2), loan.Status)

	go func(loan models.Loan, payment models.Payment) {
		ctx := context.Background()
		if err := s.email.SendPaymentReceipt(ctx, &loan, &payment); err != nil {
			s.logger.Warnf("Failed to send payment receipt: %v", err)
		}
	}(*loan, *payment)

	return result, nil
}

// applyInstallmentPayment credits a payment to one installment (the one the
// caller targets, or the earliest unpaid) and recomputes the loan aggregates
// from the full installment set.
func (s *LoanSvc) applyInstallmentPayment(ctx context.Context, tx *sql.Tx, loan *models.Loan, req *models.PaymentRequest, now time.Time) (bool, error) {
	installments, err := s.repos.Installment.GetByLoanIDTx(ctx, tx, loan.ID)
	if err != nil {
		return false, fmt.Errorf("failed to get installments: %w", err)
	}

	var target *models.Installment
	if req.TargetInstallmentID > 0 {
		for _, inst := range installments {
			if inst.ID == req.TargetInstallmentID {
				target = inst
				break
			}
		}
		if target == nil {
			return false, fmt.Errorf("installment %d on loan %d: %w",
				req.TargetInstallmentID, loan.ID, models.ErrNotFound)
		}
	} else {
		target = models.EarliestUnpaid(installments)
		if target == nil {
			return false, fmt.Errorf("%w: loan %d has no unpaid installments",
				models.ErrInvalidLoanState, loan.ID)
		}
	}

	target.RegisterPayment(req.Amount, now, loan.LateFeePercent())

	if err := s.repos.Installment.UpdateTx(ctx, tx, target); err != nil {
		return false, fmt.Errorf("failed to update installment: %w", err)
	}

	// SyncInstallmentTotals marks the loan paid once the schedule settles;
	// a partially paid schedule keeps overdue standing until the next sweep.
	return loan.SyncInstallmentTotals(installments, now), nil
}

// Renew extends a traditional loan's due date. The interest strategy is
// chosen by the caller: flat charges principal * rate regardless of the
// extension, prorated scales it by extension / term.
func (s *LoanSvc) Renew(ctx context.Context, req *models.RenewalRequest) (*models.LoanRenewal, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid renewal request: %w", err)
	}

	tx, err := s.repos.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	loan, err := s.repos.Loan.GetByIDForUpdate(ctx, tx, req.LoanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}

	if !loan.IsRenewable() {
		err = fmt.Errorf("%w: loan %d (plan %s, status %s) cannot be renewed",
			models.ErrInvalidLoanState, loan.ID, loan.PlanType, loan.Status)
		return nil, err
	}

	termDays := loan.Traditional.TermDays
	interest, err := models.RenewalInterest(req.Strategy, loan.Amount, req.InterestRate, req.ExtensionDays, termDays)
	if err != nil {
		return nil, err
	}

	wasOverdue := loan.Status == models.LoanStatusOverdue
	daysOverdue := loan.DaysOverdue(time.Now())
	balanceBefore := loan.BalanceRemaining

	renewal := &models.LoanRenewal{
		LoanID:          loan.ID,
		PreviousDueDate: loan.Traditional.DueDate,
		NewDueDate:      loan.Traditional.DueDate.AddDate(0, 0, req.ExtensionDays),
		ExtensionDays:   req.ExtensionDays,
		RenewalFee:      req.RenewalFee,
		InterestRate:    req.InterestRate,
		InterestAmount:  interest,
		ProcessedBy:     req.ProcessedBy,
		Notes:           req.Notes,
	}

	if err = loan.ApplyRenewal(renewal); err != nil {
		return nil, err
	}

	renewal.ID, err = s.repos.Renewal.CreateTx(ctx, tx, renewal)
	if err != nil {
		return nil, fmt.Errorf("failed to record renewal: %w", err)
	}

	chargeType := models.InterestChargeDaily
	if wasOverdue {
		chargeType = models.InterestChargeOverdue
	}

	charge := &models.InterestCharge{
		LoanID:          loan.ID,
		ChargeDate:      time.Now(),
		DaysOverdue:     daysOverdue,
		InterestRate:    req.InterestRate,
		PrincipalAmount: loan.Amount,
		InterestAmount:  interest,
		BalanceBefore:   balanceBefore,
		BalanceAfter:    loan.BalanceRemaining,
		ChargeType:      chargeType,
		Applied:         true,
	}

	if _, err = s.repos.InterestCharge.CreateTx(ctx, tx, charge); err != nil {
		return nil, fmt.Errorf("failed to record interest charge: %w", err)
	}

	if err = s.repos.Loan.UpdateTx(ctx, tx, loan); err != nil {
		return nil, fmt.Errorf("failed to update loan: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Infof("Loan %d renewed: due date %s -> %s, interest %s (%s), fee %s",
		loan.ID, renewal.PreviousDueDate.Format("2006-01-02"), renewal.NewDueDate.Format("2006-01-02"),
		interest.StringFixed(2), req.Strategy, req.RenewalFee.StringFixed(2))

	go func(loan models.Loan, renewal models.LoanRenewal) {
		ctx := context.Background()
		if err := s.email.SendRenewalConfirmation(ctx, &loan, &renewal); err != nil {
			s.logger.Warnf("Failed to send renewal confirmation: %v", err)
		}
	}(*loan, *renewal)

	return renewal, nil
}

// Confiscate moves an overdue loan and its collateral item to their terminal
// forfeited states. Irreversible.
func (s *LoanSvc) Confiscate(ctx context.Context, req *models.ConfiscationRequest) (*models.Loan, error) {
	now := time.Now()

	tx, err := s.repos.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	loan, err := s.repos.Loan.GetByIDForUpdate(ctx, tx, req.LoanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}

	if err = loan.Forfeit(now); err != nil {
		return nil, err
	}

	item, err := s.repos.Item.GetByID(ctx, loan.ItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	item.Forfeit(now, req.Notes, req.AuctionPrice, req.AuctionDate)

	if err = s.repos.Item.UpdateTx(ctx, tx, item); err != nil {
		return nil, fmt.Errorf("failed to forfeit item: %w", err)
	}

	if err = s.repos.Loan.UpdateTx(ctx, tx, loan); err != nil {
		return nil, fmt.Errorf("failed to update loan: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Infof("Loan %d confiscated, item %d forfeited", loan.ID, item.ID)

	return loan, nil
}

// EvaluateOverdue is the idempotent overdue sweep. It promotes traditional
// loans past their due date, refreshes installment statuses and late fees,
// and advances minimum-payment trackers. It returns the loans whose state
// changed; running it twice with the same clock changes nothing the second
// time.
func (s *LoanSvc) EvaluateOverdue(ctx context.Context, now time.Time) ([]*models.Loan, error) {
	loans, err := s.repos.Loan.GetOpenLoans(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get open loans: %w", err)
	}

	var changed []*models.Loan

	for _, loan := range loans {
		loanChanged, err := s.evaluateLoan(ctx, loan, now)
		if err != nil {
			s.logger.Warnf("Failed to evaluate loan %d: %v", loan.ID, err)
			continue
		}
		if loanChanged {
			changed = append(changed, loan)
		}
	}

	s.logger.Infof("Overdue sweep at %s: %d of %d open loan(s) updated",
		now.Format("2006-01-02"), len(changed), len(loans))

	return changed, nil
}

func (s *LoanSvc) evaluateLoan(ctx context.Context, loan *models.Loan, now time.Time) (bool, error) {
	changed := false

	switch loan.PlanType {
	case models.PlanTraditional:
		if loan.Status != models.LoanStatusOverdue && now.After(loan.Traditional.DueDate) {
			loan.Status = models.LoanStatusOverdue
			changed = true
		}

	case models.PlanInstallments:
		installments, err := s.repos.Installment.GetByLoanID(ctx, loan.ID)
		if err != nil {
			return false, fmt.Errorf("failed to get installments: %w", err)
		}

		for _, inst := range installments {
			before := *inst
			inst.UpdateStatus(now, loan.LateFeePercent())
			if before.Status != inst.Status || before.DaysOverdue != inst.DaysOverdue || !before.LateFee.Equal(inst.LateFee) {
				if err := s.repos.Installment.Update(ctx, inst); err != nil {
					return false, fmt.Errorf("failed to update installment: %w", err)
				}
				changed = true
			}
		}

		if models.AnyOverdue(installments) && loan.Status != models.LoanStatusOverdue {
			loan.Status = models.LoanStatusOverdue
			changed = true
		}

	case models.PlanMinimumPayment:
		wasAtRisk := loan.MinimumPayment.IsAtRisk
		if loan.MinimumPayment.Evaluate(now) {
			changed = true
		}
		if loan.MinimumPayment.IsPaymentOverdue(now) && loan.Status == models.LoanStatusActive {
			loan.Status = models.LoanStatusOverdue
			changed = true
		}
		if !wasAtRisk && loan.MinimumPayment.IsAtRisk {
			go func(loan models.Loan) {
				ctx := context.Background()
				if err := s.email.SendAtRiskAlert(ctx, &loan); err != nil {
					s.logger.Warnf("Failed to send at-risk alert: %v", err)
				}
			}(*loan)
		}
	}

	if changed {
		if err := s.repos.Loan.Update(ctx, loan); err != nil {
			return false, fmt.Errorf("failed to update loan: %w", err)
		}
	}

	return changed, nil
}

// Delete removes a loan. Loans with recorded payments cannot be deleted;
// cancellation of payments is a status change, not a removal of history.
func (s *LoanSvc) Delete(ctx context.Context, id int) error {
	count, err := s.repos.Payment.CountByLoanID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count payments: %w", err)
	}

	if count > 0 {
		return fmt.Errorf("%w: loan %d has %d recorded payment(s) and cannot be deleted",
			models.ErrInvalidLoanState, id, count)
	}

	if err := s.repos.Loan.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete loan: %w", err)
	}

	return nil
}

func (s *LoanSvc) releaseItem(ctx context.Context, tx *sql.Tx, itemID int) error {
	item, err := s.repos.Item.GetByID(ctx, itemID)
	if err != nil {
		return fmt.Errorf("failed to get item: %w", err)
	}

	item.Status = models.ItemStatusAvailable
	if err := s.repos.Item.UpdateTx(ctx, tx, item); err != nil {
		return fmt.Errorf("failed to release item: %w", err)
	}

	return nil
}
