package models

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Customer represents a pawnshop customer
type Customer struct {
	ID         int       `json:"id" db:"id"`
	FirstName  string    `json:"first_name" db:"first_name"`
	LastName   string    `json:"last_name" db:"last_name"`
	Email      string    `json:"email,omitempty" db:"email"`
	Phone      string    `json:"phone,omitempty" db:"phone"`
	DocumentID string    `json:"document_id" db:"document_id"`
	Address    string    `json:"address,omitempty" db:"address"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// CustomerCreate represents a customer registration request
type CustomerCreate struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	DocumentID string `json:"document_id"`
	Address    string `json:"address,omitempty"`
}

// Validate validates customer registration data
func (c *CustomerCreate) Validate() error {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.DocumentID = strings.TrimSpace(c.DocumentID)

	if c.FirstName == "" || c.LastName == "" {
		return errors.New("first and last name are required")
	}

	if c.DocumentID == "" {
		return errors.New("document ID is required")
	}

	if c.Email != "" {
		emailPattern := `^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`
		matched, err := regexp.MatchString(emailPattern, c.Email)
		if err != nil || !matched {
			return errors.New("invalid email format")
		}
	}

	return nil
}

// ToCustomer converts CustomerCreate to Customer
func (c *CustomerCreate) ToCustomer() *Customer {
	return &Customer{
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Email:      c.Email,
		Phone:      c.Phone,
		DocumentID: c.DocumentID,
		Address:    c.Address,
	}
}
