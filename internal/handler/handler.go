package handler

import (
	"github.com/sirupsen/logrus"

	"pawnshop-service/configs"
	"pawnshop-service/internal/service"
)

// Dependencies contains handler dependencies
type Dependencies struct {
	Services *service.Service
	Logger   *logrus.Logger
	Config   *configs.Config
}

// Handler contains all HTTP handlers for the application
type Handler struct {
	User     *UserHandler
	Customer *CustomerHandler
	Item     *ItemHandler
	Loan     *LoanHandler
	Payment  *PaymentHandler
}

// NewHandler creates a new Handler with all subhandlers
func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		User:     NewUserHandler(deps.Services.User, deps.Logger, deps.Config),
		Customer: NewCustomerHandler(deps.Services.Customer, deps.Logger, deps.Config),
		Item:     NewItemHandler(deps.Services.Item, deps.Logger, deps.Config),
		Loan:     NewLoanHandler(deps.Services.Loan, deps.Services.Payment, deps.Logger, deps.Config),
		Payment:  NewPaymentHandler(deps.Services.Payment, deps.Logger, deps.Config),
	}
}
