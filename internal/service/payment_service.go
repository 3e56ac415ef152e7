package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"pawnshop-service/configs"
	"pawnshop-service/internal/models"
	"pawnshop-service/internal/repository"
)

// PaymentSvc is an implementation of the service.PaymentService interface.
// Payment application lives on the loan service; this one covers reads and
// cancellation of the payment records themselves.
type PaymentSvc struct {
	repos  *repository.Repository
	logger *logrus.Logger
	config *configs.Config
}

// NewPaymentService creates a new PaymentSvc
func NewPaymentService(deps Dependencies) *PaymentSvc {
	return &PaymentSvc{
		repos:  deps.Repos,
		logger: deps.Logger,
		config: deps.Config,
	}
}

// GetByID gets a payment by ID
func (s *PaymentSvc) GetByID(ctx context.Context, id int) (*models.Payment, error) {
	payment, err := s.repos.Payment.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return payment, nil
}

// GetByLoanID gets all payments applied to a loan
func (s *PaymentSvc) GetByLoanID(ctx context.Context, loanID int) ([]*models.Payment, error) {
	payments, err := s.repos.Payment.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments: %w", err)
	}

	return payments, nil
}

// GetByDateRange gets all payments received within a date range
func (s *PaymentSvc) GetByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*models.Payment, error) {
	payments, err := s.repos.Payment.GetByDateRange(ctx, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments: %w", err)
	}

	return payments, nil
}

// Cancel marks a payment as cancelled. The record stays on the books; the
// loan balance is not adjusted automatically and must be corrected with a
// compensating entry.
func (s *PaymentSvc) Cancel(ctx context.Context, id int) error {
	payment, err := s.repos.Payment.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get payment: %w", err)
	}

	if payment.Status == models.PaymentStatusCancelled {
		return fmt.Errorf("%w: payment %d is already cancelled", models.ErrInvalidLoanState, id)
	}

	if err := s.repos.Payment.UpdateStatus(ctx, id, models.PaymentStatusCancelled); err != nil {
		return fmt.Errorf("failed to cancel payment: %w", err)
	}

	s.logger.Infof("Payment cancelled: %d (loan %d, amount %s)", id, payment.LoanID, payment.Amount.StringFixed(2))

	return nil
}
