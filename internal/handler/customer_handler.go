package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"pawnshop-service/configs"
	"pawnshop-service/internal/models"
	"pawnshop-service/internal/service"
	"pawnshop-service/pkg/utils"
)

// CustomerHandler handles customer-related HTTP requests
type CustomerHandler struct {
	customerService service.CustomerService
	logger          *logrus.Logger
	config          *configs.Config
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService service.CustomerService, logger *logrus.Logger, config *configs.Config) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		logger:          logger,
		config:          config,
	}
}

// Create handles customer registration
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var customerReq models.CustomerCreate
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&customerReq); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	customerID, err := h.customerService.Create(r.Context(), &customerReq)
	if err != nil {
		h.logger.Warnf("Failed to create customer: %v", err)
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusCreated, "customer created successfully", map[string]interface{}{
		"customer_id": customerID,
	})
}

// GetAll handles retrieving all customers
func (h *CustomerHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customerService.GetAll(r.Context())
	if err != nil {
		h.logger.Warnf("Failed to get customers: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to get customers")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "customers retrieved successfully", customers)
}

// GetByID handles retrieving a specific customer by ID
func (h *CustomerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	customerID, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid customer ID")
		return
	}

	customer, err := h.customerService.GetByID(r.Context(), customerID)
	if err != nil {
		h.logger.Warnf("Failed to get customer: %v", err)
		utils.RespondWithError(w, http.StatusNotFound, "customer not found")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "customer retrieved successfully", customer)
}

// Update handles updating a customer
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	customerID, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid customer ID")
		return
	}

	var customer models.Customer
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&customer); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	customer.ID = customerID

	if err := h.customerService.Update(r.Context(), &customer); err != nil {
		h.logger.Warnf("Failed to update customer: %v", err)
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "customer updated successfully", nil)
}

// Delete handles deleting a customer
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	customerID, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid customer ID")
		return
	}

	if err := h.customerService.Delete(r.Context(), customerID); err != nil {
		h.logger.Warnf("Failed to delete customer: %v", err)
		if errors.Is(err, models.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "customer not found")
			return
		}
		utils.RespondWithError(w, http.StatusConflict, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "customer deleted successfully", nil)
}
