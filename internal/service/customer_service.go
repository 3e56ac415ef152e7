package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"pawnshop-service/configs"
	"pawnshop-service/internal/models"
	"pawnshop-service/internal/repository"
)

// CustomerSvc is an implementation of the service.CustomerService interface
type CustomerSvc struct {
	repos  *repository.Repository
	logger *logrus.Logger
	config *configs.Config
}

// NewCustomerService creates a new CustomerSvc
func NewCustomerService(deps Dependencies) *CustomerSvc {
	return &CustomerSvc{
		repos:  deps.Repos,
		logger: deps.Logger,
		config: deps.Config,
	}
}

// Create creates a new customer
func (s *CustomerSvc) Create(ctx context.Context, customerReq *models.CustomerCreate) (int, error) {
	if err := customerReq.Validate(); err != nil {
		return 0, fmt.Errorf("invalid customer data: %w", err)
	}

	customer := customerReq.ToCustomer()

	id, err := s.repos.Customer.Create(ctx, customer)
	if err != nil {
		return 0, fmt.Errorf("failed to create customer: %w", err)
	}

	s.logger.Infof("Customer created: %d (%s %s)", id, customer.FirstName, customer.LastName)

	return id, nil
}

// GetByID gets a customer by ID
func (s *CustomerSvc) GetByID(ctx context.Context, id int) (*models.Customer, error) {
	customer, err := s.repos.Customer.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return customer, nil
}

// GetAll gets all customers
func (s *CustomerSvc) GetAll(ctx context.Context) ([]*models.Customer, error) {
	customers, err := s.repos.Customer.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get customers: %w", err)
	}

	return customers, nil
}

// Update updates a customer
func (s *CustomerSvc) Update(ctx context.Context, customer *models.Customer) error {
	if _, err := s.repos.Customer.GetByID(ctx, customer.ID); err != nil {
		return fmt.Errorf("failed to get customer: %w", err)
	}

	if err := s.repos.Customer.Update(ctx, customer); err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}

	s.logger.Infof("Customer updated: %d", customer.ID)

	return nil
}

// Delete deletes a customer. Customers with loans on record cannot be
// deleted.
func (s *CustomerSvc) Delete(ctx context.Context, id int) error {
	loans, err := s.repos.Loan.GetByCustomerID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get customer loans: %w", err)
	}

	if len(loans) > 0 {
		return fmt.Errorf("%w: customer %d has %d loan(s) on record and cannot be deleted",
			models.ErrInvalidLoanState, id, len(loans))
	}

	if err := s.repos.Customer.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	s.logger.Infof("Customer deleted: %d", id)

	return nil
}
