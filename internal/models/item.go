package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ItemStatus defines the status of a collateral item
type ItemStatus string

const (
	ItemStatusAvailable ItemStatus = "available"
	ItemStatusPawned    ItemStatus = "pawned"
	ItemStatusForfeited ItemStatus = "forfeited"
	ItemStatusSold      ItemStatus = "sold"
)

// Item is a pawned object securing a loan.
type Item struct {
	ID             int             `json:"id" db:"id"`
	CustomerID     int             `json:"customer_id" db:"customer_id"`
	Name           string          `json:"name" db:"name"`
	Description    string          `json:"description,omitempty" db:"description"`
	Category       string          `json:"category,omitempty" db:"category"`
	SerialNumber   string          `json:"serial_number,omitempty" db:"serial_number"`
	AppraisedValue decimal.Decimal `json:"appraised_value" db:"appraised_value"`
	Status         ItemStatus      `json:"status" db:"status"`

	// Confiscation metadata, set on forfeiture.
	ForfeitedDate   *time.Time       `json:"forfeited_date,omitempty" db:"forfeited_date"`
	ForfeitureNotes string           `json:"forfeiture_notes,omitempty" db:"forfeiture_notes"`
	AuctionPrice    *decimal.Decimal `json:"auction_price,omitempty" db:"auction_price"`
	AuctionDate     *time.Time       `json:"auction_date,omitempty" db:"auction_date"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ItemCreate represents an item registration request
type ItemCreate struct {
	CustomerID     int             `json:"customer_id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Category       string          `json:"category,omitempty"`
	SerialNumber   string          `json:"serial_number,omitempty"`
	AppraisedValue decimal.Decimal `json:"appraised_value"`
}

// Validate checks item registration data
func (i *ItemCreate) Validate() error {
	i.Name = strings.TrimSpace(i.Name)
	if i.Name == "" {
		return errors.New("item name is required")
	}
	if i.CustomerID <= 0 {
		return errors.New("customer ID is required")
	}
	if i.AppraisedValue.LessThanOrEqual(decimal.Zero) {
		return errors.New("appraised value must be positive")
	}
	return nil
}

// ToItem converts ItemCreate to Item
func (i *ItemCreate) ToItem() *Item {
	return &Item{
		CustomerID:     i.CustomerID,
		Name:           i.Name,
		Description:    i.Description,
		Category:       i.Category,
		SerialNumber:   i.SerialNumber,
		AppraisedValue: i.AppraisedValue,
		Status:         ItemStatusAvailable,
	}
}

// CanBePawned reports whether the item may secure a new loan.
func (i *Item) CanBePawned() bool {
	return i.Status == ItemStatusAvailable
}

// Forfeit moves the item to its terminal forfeited state with confiscation
// metadata. Irreversible.
func (i *Item) Forfeit(now time.Time, notes string, auctionPrice *decimal.Decimal, auctionDate *time.Time) {
	i.Status = ItemStatusForfeited
	forfeitedAt := now
	i.ForfeitedDate = &forfeitedAt
	i.ForfeitureNotes = notes
	i.AuctionPrice = auctionPrice
	i.AuctionDate = auctionDate
}
