package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"pawnshop-service/configs"
	"pawnshop-service/internal/middleware"
	"pawnshop-service/internal/models"
	"pawnshop-service/internal/service"
	"pawnshop-service/pkg/utils"
)

// LoanHandler handles loan lifecycle HTTP requests
type LoanHandler struct {
	loanService    service.LoanService
	paymentService service.PaymentService
	logger         *logrus.Logger
	config         *configs.Config
}

// NewLoanHandler creates a new LoanHandler
func NewLoanHandler(loanService service.LoanService, paymentService service.PaymentService, logger *logrus.Logger, config *configs.Config) *LoanHandler {
	return &LoanHandler{
		loanService:    loanService,
		paymentService: paymentService,
		logger:         logger,
		config:         config,
	}
}

// Create handles loan origination
func (h *LoanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var loanReq models.LoanRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&loanReq); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	loanID, err := h.loanService.Create(r.Context(), &loanReq)
	if err != nil {
		h.logger.Warnf("Failed to create loan: %v", err)
		utils.RespondWithError(w, loanErrorStatus(err), err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusCreated, "loan created successfully", map[string]interface{}{
		"loan_id": loanID,
	})
}

// GetAll handles retrieving all loans, optionally filtered by customer
func (h *LoanHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	if customerParam := r.URL.Query().Get("customer_id"); customerParam != "" {
		customerID, err := strconv.Atoi(customerParam)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid customer ID")
			return
		}

		loans, err := h.loanService.GetByCustomerID(r.Context(), customerID)
		if err != nil {
			h.logger.Warnf("Failed to get loans: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "failed to get loans")
			return
		}

		utils.RespondWithSuccess(w, http.StatusOK, "loans retrieved successfully", loans)
		return
	}

	loans, err := h.loanService.GetAll(r.Context())
	if err != nil {
		h.logger.Warnf("Failed to get loans: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to get loans")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "loans retrieved successfully", loans)
}

// GetByID handles retrieving a specific loan by ID
func (h *LoanHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	loanID, ok := h.loanIDFromRequest(w, r)
	if !ok {
		return
	}

	loan, err := h.loanService.GetByID(r.Context(), loanID)
	if err != nil {
		h.logger.Warnf("Failed to get loan: %v", err)
		utils.RespondWithError(w, http.StatusNotFound, "loan not found")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "loan retrieved successfully", loan)
}

// GetSchedule handles retrieving the installment schedule for a loan
func (h *LoanHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	loanID, ok := h.loanIDFromRequest(w, r)
	if !ok {
		return
	}

	schedule, summary, err := h.loanService.GetSchedule(r.Context(), loanID)
	if err != nil {
		h.logger.Warnf("Failed to get installment schedule: %v", err)
		utils.RespondWithError(w, http.StatusNotFound, "installment schedule not found")
		return
	}

	response := map[string]interface{}{
		"installments": schedule,
		"summary":      summary,
	}

	utils.RespondWithSuccess(w, http.StatusOK, "installment schedule retrieved successfully", response)
}

// GetSummary handles retrieving the reporting summary for a loan
func (h *LoanHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	loanID, ok := h.loanIDFromRequest(w, r)
	if !ok {
		return
	}

	summary, err := h.loanService.GetSummary(r.Context(), loanID, time.Now())
	if err != nil {
		h.logger.Warnf("Failed to get loan summary: %v", err)
		utils.RespondWithError(w, http.StatusNotFound, "loan not found")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "loan summary retrieved successfully", summary)
}

// GetRenewals handles retrieving the renewal history for a loan
func (h *LoanHandler) GetRenewals(w http.ResponseWriter, r *http.Request) {
	loanID, ok := h.loanIDFromRequest(w, r)
	if !ok {
		return
	}

	renewals, err := h.loanService.GetRenewals(r.Context(), loanID)
	if err != nil {
		h.logger.Warnf("Failed to get renewals: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to get renewals")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "renewals retrieved successfully", renewals)
}

// GetCharges handles retrieving the interest charge trail for a loan
func (h *LoanHandler) GetCharges(w http.ResponseWriter, r *http.Request) {
	loanID, ok := h.loanIDFromRequest(w, r)
	if !ok {
		return
	}

	charges, err := h.loanService.GetInterestCharges(r.Context(), loanID)
	if err != nil {
		h.logger.Warnf("Failed to get interest charges: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to get interest charges")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "interest charges retrieved successfully", charges)
}

// GetPayments handles retrieving all payments applied to a loan
func (h *LoanHandler) GetPayments(w http.ResponseWriter, r *http.Request) {
	loanID, ok := h.loanIDFromRequest(w, r)
	if !ok {
		return
	}

	payments, err := h.paymentService.GetByLoanID(r.Context(), loanID)
	if err != nil {
		h.logger.Warnf("Failed to get payments: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to get payments")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "payments retrieved successfully", payments)
}

// ApplyPayment handles applying a payment to a loan
func (h *LoanHandler) ApplyPayment(w http.ResponseWriter, r *http.Request) {
	loanID, ok := h.loanIDFromRequest(w, r)
	if !ok {
		return
	}

	var paymentReq models.PaymentRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&paymentReq); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	paymentReq.LoanID = loanID

	result, err := h.loanService.ApplyPayment(r.Context(), &paymentReq)
	if err != nil {
		h.logger.Warnf("Failed to apply payment: %v", err)
		utils.RespondWithError(w, loanErrorStatus(err), err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "payment applied successfully", result)
}

// Renew handles renewing a loan
func (h *LoanHandler) Renew(w http.ResponseWriter, r *http.Request) {
	loanID, ok := h.loanIDFromRequest(w, r)
	if !ok {
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(int)
	if !ok {
		utils.RespondWithError(w, http.StatusInternalServerError, "user ID not found in context")
		return
	}

	var renewalReq models.RenewalRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&renewalReq); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	renewalReq.LoanID = loanID
	renewalReq.ProcessedBy = userID

	renewal, err := h.loanService.Renew(r.Context(), &renewalReq)
	if err != nil {
		h.logger.Warnf("Failed to renew loan: %v", err)
		utils.RespondWithError(w, loanErrorStatus(err), err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "loan renewed successfully", renewal)
}

// Confiscate handles forfeiting an overdue loan and its collateral
func (h *LoanHandler) Confiscate(w http.ResponseWriter, r *http.Request) {
	loanID, ok := h.loanIDFromRequest(w, r)
	if !ok {
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(int)
	if !ok {
		utils.RespondWithError(w, http.StatusInternalServerError, "user ID not found in context")
		return
	}

	var confiscationReq models.ConfiscationRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&confiscationReq); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	confiscationReq.LoanID = loanID
	confiscationReq.ProcessedBy = userID

	loan, err := h.loanService.Confiscate(r.Context(), &confiscationReq)
	if err != nil {
		h.logger.Warnf("Failed to confiscate loan: %v", err)
		utils.RespondWithError(w, loanErrorStatus(err), err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "loan confiscated successfully", loan)
}

// Sweep handles triggering the overdue sweep on demand
func (h *LoanHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	changed, err := h.loanService.EvaluateOverdue(r.Context(), time.Now())
	if err != nil {
		h.logger.Warnf("Failed to run overdue sweep: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to run overdue sweep")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "overdue sweep completed", map[string]interface{}{
		"updated_loans": len(changed),
	})
}

// Delete handles deleting a loan without payment history
func (h *LoanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	loanID, ok := h.loanIDFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.loanService.Delete(r.Context(), loanID); err != nil {
		h.logger.Warnf("Failed to delete loan: %v", err)
		utils.RespondWithError(w, loanErrorStatus(err), err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "loan deleted successfully", nil)
}

func (h *LoanHandler) loanIDFromRequest(w http.ResponseWriter, r *http.Request) (int, bool) {
	vars := mux.Vars(r)
	loanID, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid loan ID")
		return 0, false
	}
	return loanID, true
}

// loanErrorStatus maps the loan error taxonomy to HTTP status codes
func loanErrorStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidLoanState):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidScheduleParameters), errors.Is(err, models.ErrInvalidPaymentAmount):
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}
