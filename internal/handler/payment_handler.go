package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"pawnshop-service/configs"
	"pawnshop-service/internal/models"
	"pawnshop-service/internal/service"
	"pawnshop-service/pkg/utils"
)

// PaymentHandler handles payment record HTTP requests
type PaymentHandler struct {
	paymentService service.PaymentService
	logger         *logrus.Logger
	config         *configs.Config
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService service.PaymentService, logger *logrus.Logger, config *configs.Config) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
		config:         config,
	}
}

// GetByID handles retrieving a payment by ID
func (h *PaymentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	paymentID, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payment ID")
		return
	}

	payment, err := h.paymentService.GetByID(r.Context(), paymentID)
	if err != nil {
		h.logger.Warnf("Failed to get payment: %v", err)
		utils.RespondWithError(w, http.StatusNotFound, "payment not found")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "payment retrieved successfully", payment)
}

// GetByDateRange handles retrieving payments received within a date range
func (h *PaymentHandler) GetByDateRange(w http.ResponseWriter, r *http.Request) {
	startParam := r.URL.Query().Get("start")
	endParam := r.URL.Query().Get("end")

	startDate, err := time.Parse("2006-01-02", startParam)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid start date, expected YYYY-MM-DD")
		return
	}

	endDate, err := time.Parse("2006-01-02", endParam)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid end date, expected YYYY-MM-DD")
		return
	}

	payments, err := h.paymentService.GetByDateRange(r.Context(), startDate, endDate)
	if err != nil {
		h.logger.Warnf("Failed to get payments: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to get payments")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "payments retrieved successfully", payments)
}

// Cancel handles cancelling a payment record
func (h *PaymentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	paymentID, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payment ID")
		return
	}

	if err := h.paymentService.Cancel(r.Context(), paymentID); err != nil {
		h.logger.Warnf("Failed to cancel payment: %v", err)
		if errors.Is(err, models.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "payment not found")
			return
		}
		utils.RespondWithError(w, http.StatusConflict, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "payment cancelled successfully", nil)
}
