package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"pawnshop-service/configs"
	"pawnshop-service/internal/models"
	"pawnshop-service/internal/repository"
)

// ItemSvc is an implementation of the service.ItemService interface
type ItemSvc struct {
	repos  *repository.Repository
	logger *logrus.Logger
	config *configs.Config
}

// NewItemService creates a new ItemSvc
func NewItemService(deps Dependencies) *ItemSvc {
	return &ItemSvc{
		repos:  deps.Repos,
		logger: deps.Logger,
		config: deps.Config,
	}
}

// Create registers a new collateral item
func (s *ItemSvc) Create(ctx context.Context, itemReq *models.ItemCreate) (int, error) {
	if err := itemReq.Validate(); err != nil {
		return 0, fmt.Errorf("invalid item data: %w", err)
	}

	if _, err := s.repos.Customer.GetByID(ctx, itemReq.CustomerID); err != nil {
		return 0, fmt.Errorf("customer not found: %w", err)
	}

	item := itemReq.ToItem()

	id, err := s.repos.Item.Create(ctx, item)
	if err != nil {
		return 0, fmt.Errorf("failed to create item: %w", err)
	}

	s.logger.Infof("Item created: %d (%s, appraised at %s)", id, item.Name, item.AppraisedValue.StringFixed(2))

	return id, nil
}

// GetByID gets an item by ID
func (s *ItemSvc) GetByID(ctx context.Context, id int) (*models.Item, error) {
	item, err := s.repos.Item.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return item, nil
}

// GetByCustomerID gets all items of a customer
func (s *ItemSvc) GetByCustomerID(ctx context.Context, customerID int) ([]*models.Item, error) {
	items, err := s.repos.Item.GetByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}

	return items, nil
}

// GetAll gets all items
func (s *ItemSvc) GetAll(ctx context.Context) ([]*models.Item, error) {
	items, err := s.repos.Item.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}

	return items, nil
}

// Update updates an item. Items securing an open loan keep their status;
// only descriptive fields may change.
func (s *ItemSvc) Update(ctx context.Context, item *models.Item) error {
	original, err := s.repos.Item.GetByID(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("failed to get item: %w", err)
	}

	if original.Status == models.ItemStatusPawned && item.Status != original.Status {
		return fmt.Errorf("%w: item %d secures an open loan, its status is managed by the loan lifecycle",
			models.ErrInvalidLoanState, item.ID)
	}

	if err := s.repos.Item.Update(ctx, item); err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	s.logger.Infof("Item updated: %d", item.ID)

	return nil
}

// Delete deletes an item. Pawned items cannot be deleted.
func (s *ItemSvc) Delete(ctx context.Context, id int) error {
	item, err := s.repos.Item.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get item: %w", err)
	}

	if item.Status == models.ItemStatusPawned {
		return fmt.Errorf("%w: item %d secures an open loan and cannot be deleted",
			models.ErrInvalidLoanState, id)
	}

	if err := s.repos.Item.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	s.logger.Infof("Item deleted: %d", id)

	return nil
}
