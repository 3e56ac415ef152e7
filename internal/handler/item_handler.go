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

// ItemHandler handles collateral item HTTP requests
type ItemHandler struct {
	itemService service.ItemService
	logger      *logrus.Logger
	config      *configs.Config
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(itemService service.ItemService, logger *logrus.Logger, config *configs.Config) *ItemHandler {
	return &ItemHandler{
		itemService: itemService,
		logger:      logger,
		config:      config,
	}
}

// Create handles item registration
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var itemReq models.ItemCreate
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&itemReq); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	itemID, err := h.itemService.Create(r.Context(), &itemReq)
	if err != nil {
		h.logger.Warnf("Failed to create item: %v", err)
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusCreated, "item created successfully", map[string]interface{}{
		"item_id": itemID,
	})
}

// GetAll handles retrieving all items
func (h *ItemHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	// Optional filter by customer
	if customerParam := r.URL.Query().Get("customer_id"); customerParam != "" {
		customerID, err := strconv.Atoi(customerParam)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid customer ID")
			return
		}

		items, err := h.itemService.GetByCustomerID(r.Context(), customerID)
		if err != nil {
			h.logger.Warnf("Failed to get items: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "failed to get items")
			return
		}

		utils.RespondWithSuccess(w, http.StatusOK, "items retrieved successfully", items)
		return
	}

	items, err := h.itemService.GetAll(r.Context())
	if err != nil {
		h.logger.Warnf("Failed to get items: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to get items")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "items retrieved successfully", items)
}

// GetByID handles retrieving a specific item by ID
func (h *ItemHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	itemID, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid item ID")
		return
	}

	item, err := h.itemService.GetByID(r.Context(), itemID)
	if err != nil {
		h.logger.Warnf("Failed to get item: %v", err)
		utils.RespondWithError(w, http.StatusNotFound, "item not found")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "item retrieved successfully", item)
}

// Update handles updating an item
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	itemID, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid item ID")
		return
	}

	var item models.Item
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&item); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	item.ID = itemID

	if err := h.itemService.Update(r.Context(), &item); err != nil {
		h.logger.Warnf("Failed to update item: %v", err)
		if errors.Is(err, models.ErrInvalidLoanState) {
			utils.RespondWithError(w, http.StatusConflict, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "item updated successfully", nil)
}

// Delete handles deleting an item
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	itemID, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid item ID")
		return
	}

	if err := h.itemService.Delete(r.Context(), itemID); err != nil {
		h.logger.Warnf("Failed to delete item: %v", err)
		if errors.Is(err, models.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "item not found")
			return
		}
		utils.RespondWithError(w, http.StatusConflict, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "item deleted successfully", nil)
}
