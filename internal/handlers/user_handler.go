package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/inkwellblog/backend/internal/auth"
	"github.com/inkwellblog/backend/internal/models"
	"go.uber.org/zap"
)

// UserService is the interface that wraps methods for user profile business logic.
type UserService interface {
	// Method GetProfile retrieves the current user's profile.
	GetProfile(ctx context.Context, userID int) (*models.User, error)
	// Method GetUser retrieves a user's public page: the profile and their recent published posts.
	GetUser(ctx context.Context, userID int) (*models.User, []models.Post, error)
	// Method ListUsers retrieves a page of users, optionally filtered by role and search query.
	ListUsers(ctx context.Context, page, perPage int, role *models.Role, search string) ([]models.User, *models.Pagination, error)
	// Method UpdateProfile applies a partial update to the current user's profile.
	//
	// Returns an error when a new username or email is already taken.
	UpdateProfile(ctx context.Context, userID int, req *models.UpdateProfileRequest) error
	// Method ChangePassword verifies the current password and sets a new one.
	ChangePassword(ctx context.Context, userID int, req *models.ChangePasswordRequest) error
}

// UserHandler handles user profile HTTP requests
type UserHandler struct {
	BaseHandler
	userService UserService
	perPage     int
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService UserService, perPage int, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: BaseHandler{Logger: logger},
		userService: userService,
		perPage:     perPage,
	}
}

// RegisterRoutes registers all user handler routes.
// The routes require authentication; the caller wires the auth middleware.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Route("/profile", func(r chi.Router) {
		r.Get("/", h.GetProfile)
		r.Put("/", h.UpdateProfile)
		r.Put("/password", h.ChangePassword)
	})
	r.Get("/users", h.ListUsers)
	r.Get("/users/{id}", h.GetUser)
}

// ListUsers handles GET /users
// @Summary List users
// @Description Retrieve a page of users, optionally filtered by role and search query.
// @Tags users
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param role query int false "Role (1=user, 2=admin)"
// @Param q query string false "Search query matched against username and email"
// @Success 200 {object} map[string]any "Users with pagination"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	var role *models.Role
	if raw := r.URL.Query().Get("role"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.RespondError(w, http.StatusBadRequest, "invalid role")
			return
		}
		typed := models.Role(parsed)
		role = &typed
	}
	search := strings.TrimSpace(r.URL.Query().Get("q"))

	users, pagination, err := h.userService.ListUsers(r.Context(), pageParam(r), h.perPage, role, search)
	if err != nil {
		h.Logger.Error("failed to list users", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{
		"users":      users,
		"pagination": pagination,
	})
}

// GetProfile handles GET /profile
// @Summary Get current user profile
// @Description Retrieve the authenticated user's profile.
// @Tags users
// @Produce json
// @Success 200 {object} models.User "User profile"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /profile [get]
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		h.Logger.Error("failed to get profile", zap.Int("userId", userID), zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}

	h.RespondJSON(w, http.StatusOK, user)
}

// GetUser handles GET /users/{id}
// @Summary Get a user's public page
// @Description Retrieve a user's profile and their recent published posts.
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} map[string]any "User and recent posts"
// @Failure 404 {object} map[string]string "User not found"
// @Security BearerAuth
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, posts, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		h.Logger.Error("failed to get user", zap.Int("userId", userID), zap.Error(err))
		h.RespondError(w, http.StatusNotFound, "user not found")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{
		"user":  user,
		"posts": posts,
	})
}

// UpdateProfile handles PUT /profile
// @Summary Update current user profile
// @Description Apply a partial update to the authenticated user's username, email or bio.
// @Tags users
// @Accept json
// @Produce json
// @Param request body models.UpdateProfileRequest true "Profile update"
// @Success 200 {object} map[string]string "Profile updated successfully"
// @Failure 400 {object} map[string]string "Invalid request body or taken username/email"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /profile [put]
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.userService.UpdateProfile(r.Context(), userID, &req); err != nil {
		h.Logger.Error("failed to update profile", zap.Int("userId", userID), zap.Error(err))
		errStatus := http.StatusInternalServerError
		if strings.Contains(err.Error(), "already exists") || strings.Contains(err.Error(), "invalid") ||
			strings.Contains(err.Error(), "empty") || strings.Contains(err.Error(), "nothing to update") {
			errStatus = http.StatusBadRequest
		}
		h.RespondError(w, errStatus, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "profile updated successfully"})
}

// ChangePassword handles PUT /profile/password
// @Summary Change current user password
// @Description Verify the current password and set a new one.
// @Tags users
// @Accept json
// @Produce json
// @Param request body models.ChangePasswordRequest true "Password change"
// @Success 200 {object} map[string]string "Password changed successfully"
// @Failure 400 {object} map[string]string "Incorrect current password or weak new password"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /profile/password [put]
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.userService.ChangePassword(r.Context(), userID, &req); err != nil {
		h.Logger.Error("failed to change password", zap.Int("userId", userID), zap.Error(err))
		errStatus := http.StatusInternalServerError
		if strings.Contains(err.Error(), "incorrect") || strings.Contains(err.Error(), "password must") {
			errStatus = http.StatusBadRequest
		}
		h.RespondError(w, errStatus, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "password changed successfully"})
}
