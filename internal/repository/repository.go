package repository

import (
	"context"
	"database/sql"
	"time"

	"pawnshop-service/internal/models"
	"pawnshop-service/internal/repository/postgres"
)

// TransactionManager defines methods for transaction management
type TransactionManager interface {
	BeginTx(ctx context.Context) (*sql.Tx, error)
	CommitTx(tx *sql.Tx) error
	RollbackTx(tx *sql.Tx) error
}

// UserRepository defines methods for user repository
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (int, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int) error
}

// CustomerRepository defines methods for customer repository
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) (int, error)
	GetByID(ctx context.Context, id int) (*models.Customer, error)
	GetAll(ctx context.Context) ([]*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, id int) error
}

// ItemRepository defines methods for collateral item repository
type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) (int, error)
	GetByID(ctx context.Context, id int) (*models.Item, error)
	GetByCustomerID(ctx context.Context, customerID int) ([]*models.Item, error)
	GetAll(ctx context.Context) ([]*models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, id int) error

	// Transaction-specific methods
	UpdateTx(ctx context.Context, tx *sql.Tx, item *models.Item) error
}

// LoanRepository defines methods for loan repository
type LoanRepository interface {
	Create(ctx context.Context, loan *models.Loan) (int, error)
	GetByID(ctx context.Context, id int) (*models.Loan, error)
	GetByCustomerID(ctx context.Context, customerID int) ([]*models.Loan, error)
	GetAll(ctx context.Context) ([]*models.Loan, error)
	GetOpenLoans(ctx context.Context) ([]*models.Loan, error)
	Update(ctx context.Context, loan *models.Loan) error
	Delete(ctx context.Context, id int) error

	// Transaction-specific methods. GetByIDForUpdate locks the loan row so
	// concurrent mutations of the same loan serialize.
	CreateTx(ctx context.Context, tx *sql.Tx, loan *models.Loan) (int, error)
	GetByIDForUpdate(ctx context.Context, tx *sql.Tx, id int) (*models.Loan, error)
	UpdateTx(ctx context.Context, tx *sql.Tx, loan *models.Loan) error
}

// InstallmentRepository defines methods for installment repository
type InstallmentRepository interface {
	CreateBatchTx(ctx context.Context, tx *sql.Tx, installments []*models.Installment) error
	GetByID(ctx context.Context, id int) (*models.Installment, error)
	GetByLoanID(ctx context.Context, loanID int) ([]*models.Installment, error)
	Update(ctx context.Context, installment *models.Installment) error

	// Transaction-specific methods
	GetByLoanIDTx(ctx context.Context, tx *sql.Tx, loanID int) ([]*models.Installment, error)
	UpdateTx(ctx context.Context, tx *sql.Tx, installment *models.Installment) error
}

// RenewalRepository defines methods for loan renewal history repository
type RenewalRepository interface {
	CreateTx(ctx context.Context, tx *sql.Tx, renewal *models.LoanRenewal) (int, error)
	GetByLoanID(ctx context.Context, loanID int) ([]*models.LoanRenewal, error)
}

// InterestChargeRepository defines methods for the interest charge audit trail
type InterestChargeRepository interface {
	CreateTx(ctx context.Context, tx *sql.Tx, charge *models.InterestCharge) (int, error)
	GetByLoanID(ctx context.Context, loanID int) ([]*models.InterestCharge, error)
}

// PaymentRepository defines methods for payment repository
type PaymentRepository interface {
	CreateTx(ctx context.Context, tx *sql.Tx, payment *models.Payment) (int, error)
	GetByID(ctx context.Context, id int) (*models.Payment, error)
	GetByLoanID(ctx context.Context, loanID int) ([]*models.Payment, error)
	GetByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*models.Payment, error)
	CountByLoanID(ctx context.Context, loanID int) (int, error)
	UpdateStatus(ctx context.Context, id int, status models.PaymentStatus) error
}

// Repository is a composition of all repositories
type Repository struct {
	DB             *sql.DB
	User           UserRepository
	Customer       CustomerRepository
	Item           ItemRepository
	Loan           LoanRepository
	Installment    InstallmentRepository
	Renewal        RenewalRepository
	InterestCharge InterestChargeRepository
	Payment        PaymentRepository
}

// NewRepository creates a new repository with all sub-repositories
func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		DB:             db,
		User:           postgres.NewUserRepository(db),
		Customer:       postgres.NewCustomerRepository(db),
		Item:           postgres.NewItemRepository(db),
		Loan:           postgres.NewLoanRepository(db),
		Installment:    postgres.NewInstallmentRepository(db),
		Renewal:        postgres.NewRenewalRepository(db),
		InterestCharge: postgres.NewInterestChargeRepository(db),
		Payment:        postgres.NewPaymentRepository(db),
	}
}

// BeginTx begins a new transaction
func (r *Repository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return r.DB.BeginTx(ctx, nil)
}

// CommitTx commits a transaction
func (r *Repository) CommitTx(tx *sql.Tx) error {
	return tx.Commit()
}

// RollbackTx rolls back a transaction
func (r *Repository) RollbackTx(tx *sql.Tx) error {
	return tx.Rollback()
}
