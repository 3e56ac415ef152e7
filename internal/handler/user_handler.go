package handler

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"pawnshop-service/configs"
	"pawnshop-service/internal/middleware"
	"pawnshop-service/internal/models"
	"pawnshop-service/internal/service"
	"pawnshop-service/pkg/utils"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService service.UserService
	logger      *logrus.Logger
	config      *configs.Config
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService, logger *logrus.Logger, config *configs.Config) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
		config:      config,
	}
}

// Register handles user registration
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var userReg models.UserRegistration
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&userReg); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	userID, err := h.userService.Register(r.Context(), &userReg)
	if err != nil {
		h.logger.Warnf("Failed to register user: %v", err)
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusCreated, "user registered successfully", map[string]interface{}{
		"user_id": userID,
	})
}

// Login handles user login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq models.UserLogin
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&loginReq); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	tokenResponse, err := h.userService.Login(r.Context(), &loginReq)
	if err != nil {
		h.logger.Warnf("Failed to login user: %v", err)
		utils.RespondWithError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "login successful", tokenResponse)
}

// GetUser handles fetching the authenticated user's details
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int)
	if !ok {
		utils.RespondWithError(w, http.StatusInternalServerError, "user ID not found in context")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		h.logger.Warnf("Failed to get user: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to get user details")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "user details retrieved successfully", user)
}

// UpdateUser handles updating the authenticated user's details
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int)
	if !ok {
		utils.RespondWithError(w, http.StatusInternalServerError, "user ID not found in context")
		return
	}

	var user models.User
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&user); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	// Ensure the target is the authenticated user
	user.ID = userID

	err := h.userService.Update(r.Context(), &user)
	if err != nil {
		h.logger.Warnf("Failed to update user: %v", err)
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "user updated successfully", nil)
}
