package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"pawnshop-service/configs"
	"pawnshop-service/internal/models"
	"pawnshop-service/internal/repository"
)

// UserService defines methods for user service
type UserService interface {
	Register(ctx context.Context, user *models.UserRegistration) (int, error)
	Login(ctx context.Context, login *models.UserLogin) (*models.TokenResponse, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// CustomerService defines methods for customer service
type CustomerService interface {
	Create(ctx context.Context, customer *models.CustomerCreate) (int, error)
	GetByID(ctx context.Context, id int) (*models.Customer, error)
	GetAll(ctx context.Context) ([]*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, id int) error
}

// ItemService defines methods for collateral item service
type ItemService interface {
	Create(ctx context.Context, item *models.ItemCreate) (int, error)
	GetByID(ctx context.Context, id int) (*models.Item, error)
	GetByCustomerID(ctx context.Context, customerID int) ([]*models.Item, error)
	GetAll(ctx context.Context) ([]*models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, id int) error
}

// LoanService defines the loan balance engine operations
type LoanService interface {
	Create(ctx context.Context, req *models.LoanRequest) (int, error)
	GetByID(ctx context.Context, id int) (*models.Loan, error)
	GetByCustomerID(ctx context.Context, customerID int) ([]*models.Loan, error)
	GetAll(ctx context.Context) ([]*models.Loan, error)
	GetSchedule(ctx context.Context, loanID int) ([]*models.Installment, *models.ScheduleSummary, error)
	GetSummary(ctx context.Context, loanID int, now time.Time) (*models.LoanSummary, error)
	GetRenewals(ctx context.Context, loanID int) ([]*models.LoanRenewal, error)
	GetInterestCharges(ctx context.Context, loanID int) ([]*models.InterestCharge, error)
	ApplyPayment(ctx context.Context, req *models.PaymentRequest) (*models.PaymentResult, error)
	Renew(ctx context.Context, req *models.RenewalRequest) (*models.LoanRenewal, error)
	Confiscate(ctx context.Context, req *models.ConfiscationRequest) (*models.Loan, error)
	EvaluateOverdue(ctx context.Context, now time.Time) ([]*models.Loan, error)
	Delete(ctx context.Context, id int) error
}

// PaymentService defines read/cancel operations on payment records
type PaymentService interface {
	GetByID(ctx context.Context, id int) (*models.Payment, error)
	GetByLoanID(ctx context.Context, loanID int) ([]*models.Payment, error)
	GetByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*models.Payment, error)
	Cancel(ctx context.Context, id int) error
}

// EmailService defines methods for email notifications
type EmailService interface {
	SendPaymentReceipt(ctx context.Context, loan *models.Loan, payment *models.Payment) error
	SendAtRiskAlert(ctx context.Context, loan *models.Loan) error
	SendRenewalConfirmation(ctx context.Context, loan *models.Loan, renewal *models.LoanRenewal) error
}

// RateService provides the reference interest rate used as a default at
// loan origination
type RateService interface {
	GetKeyRate(ctx context.Context) (float64, error)
}

// Dependencies contains dependencies for services
type Dependencies struct {
	Repos  *repository.Repository
	Logger *logrus.Logger
	Config *configs.Config
}

// Service is a composition of all services
type Service struct {
	User     UserService
	Customer CustomerService
	Item     ItemService
	Loan     LoanService
	Payment  PaymentService
	Email    EmailService
	Rate     RateService
}

// NewService creates a new service with all sub-services
func NewService(deps Dependencies) *Service {
	return &Service{
		User:     NewUserService(deps),
		Customer: NewCustomerService(deps),
		Item:     NewItemService(deps),
		Loan:     NewLoanService(deps),
		Payment:  NewPaymentService(deps),
		Email:    NewEmailService(deps),
		Rate:     NewRateService(deps),
	}
}
