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

// AdminService is the interface that wraps methods for the admin panel business logic.
type AdminService interface {
	// Method Dashboard collects site-wide counters for the admin dashboard.
	Dashboard(ctx context.Context) (*models.Stats, error)
	// Method ToggleUserActive flips a user's active flag and returns the new state.
	//
	// Returns an error when an admin targets their own account.
	ToggleUserActive(ctx context.Context, userID, callerID int) (bool, error)
	// Method ToggleUserAdmin flips a user's role between user and admin and returns the new role.
	//
	// Returns an error when an admin targets their own account.
	ToggleUserAdmin(ctx context.Context, userID, callerID int) (models.Role, error)
	// Method ListAllPosts retrieves a page of posts including drafts.
	ListAllPosts(ctx context.Context, page, perPage int) ([]models.Post, *models.Pagination, error)
	// Method TogglePostPublished flips a post's published flag and returns the new state.
	TogglePostPublished(ctx context.Context, postID int) (bool, error)
	// Method ListComments retrieves a page of all comments for moderation.
	ListComments(ctx context.Context, page, perPage int) ([]models.Comment, *models.Pagination, error)
	// Method ToggleCommentApproved flips a comment's approved flag and returns the new state.
	ToggleCommentApproved(ctx context.Context, commentID int) (bool, error)
}

// AdminUserLister lists user accounts for the admin panel.
type AdminUserLister interface {
	// Method ListUsers retrieves a page of users, optionally filtered by role and search query.
	ListUsers(ctx context.Context, page, perPage int, role *models.Role, search string) ([]models.User, *models.Pagination, error)
}

// CategoryAdminService manages categories from the admin panel.
type CategoryAdminService interface {
	// Method CreateCategory creates a new category with a slug derived from its name.
	CreateCategory(ctx context.Context, req *models.CategoryRequest) (*models.Category, error)
	// Method UpdateCategory renames a category, recomputing its slug.
	UpdateCategory(ctx context.Context, categoryID int, req *models.CategoryRequest) (*models.Category, error)
	// Method ToggleCategoryActive flips a category's active flag and returns the new state.
	ToggleCategoryActive(ctx context.Context, categoryID int) (bool, error)
}

// AdminHandler handles admin panel HTTP requests.
// Every route is wired behind the admin role middleware.
type AdminHandler struct {
	BaseHandler
	adminService    AdminService
	userLister      AdminUserLister
	categoryService CategoryAdminService
	usersPerPage    int
	postsPerPage    int
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService AdminService, userLister AdminUserLister,
	categoryService CategoryAdminService, usersPerPage, postsPerPage int, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler:     BaseHandler{Logger: logger},
		adminService:    adminService,
		userLister:      userLister,
		categoryService: categoryService,
		usersPerPage:    usersPerPage,
		postsPerPage:    postsPerPage,
	}
}

// RegisterRoutes registers all admin handler routes.
// Note: This assumes the router is already scoped to /admin behind the admin role middleware.
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.Dashboard)
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Post("/{id}/toggle-active", h.ToggleUserActive)
		r.Post("/{id}/toggle-admin", h.ToggleUserAdmin)
	})
	r.Route("/posts", func(r chi.Router) {
		r.Get("/", h.ListAllPosts)
		r.Post("/{id}/toggle-published", h.TogglePostPublished)
	})
	r.Route("/comments", func(r chi.Router) {
		r.Get("/", h.ListComments)
		r.Post("/{id}/toggle-approved", h.ToggleCommentApproved)
	})
	r.Route("/categories", func(r chi.Router) {
		r.Post("/", h.CreateCategory)
		r.Put("/{id}", h.UpdateCategory)
		r.Post("/{id}/toggle-active", h.ToggleCategoryActive)
	})
}

// Dashboard handles GET /admin/dashboard
// @Summary Admin dashboard
// @Description Retrieve site-wide user, post, comment and category counters.
// @Tags admin
// @Produce json
// @Success 200 {object} models.Stats "Site statistics"
// @Failure 403 {object} map[string]string "Insufficient permissions"
// @Security BearerAuth
// @Router /admin/dashboard [get]
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.Dashboard(r.Context())
	if err != nil {
		h.Logger.Error("failed to collect dashboard stats", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to collect stats")
		return
	}

	h.RespondJSON(w, http.StatusOK, stats)
}

// ListUsers handles GET /admin/users
// @Summary List users
// @Description Retrieve a page of users, optionally filtered by role and search query.
// @Tags admin
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param role query int false "Role filter (1 = user, 2 = admin)"
// @Param q query string false "Search query matched against email and username"
// @Success 200 {object} map[string]any "Users with pagination"
// @Failure 403 {object} map[string]string "Insufficient permissions"
// @Security BearerAuth
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
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

	users, pagination, err := h.userLister.ListUsers(r.Context(), pageParam(r), h.usersPerPage, role, search)
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

// ToggleUserActive handles POST /admin/users/{id}/toggle-active
// @Summary Toggle user active flag
// @Description Flip a user's active flag. Admins cannot deactivate their own account.
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} map[string]any "New active state"
// @Failure 400 {object} map[string]string "Cannot target own account"
// @Failure 404 {object} map[string]string "User not found"
// @Security BearerAuth
// @Router /admin/users/{id}/toggle-active [post]
func (h *AdminHandler) ToggleUserActive(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.GetUserID(r.Context())
	userID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	active, err := h.adminService.ToggleUserActive(r.Context(), userID, callerID)
	if err != nil {
		h.Logger.Error("failed to toggle user active", zap.Int("userId", userID), zap.Error(err))
		h.RespondError(w, adminToggleErrorStatus(err), err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{"is_active": active})
}

// ToggleUserAdmin handles POST /admin/users/{id}/toggle-admin
// @Summary Toggle user admin role
// @Description Flip a user's role between user and admin. Admins cannot demote their own account.
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} map[string]any "New role"
// @Failure 400 {object} map[string]string "Cannot target own account"
// @Failure 404 {object} map[string]string "User not found"
// @Security BearerAuth
// @Router /admin/users/{id}/toggle-admin [post]
func (h *AdminHandler) ToggleUserAdmin(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.GetUserID(r.Context())
	userID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	role, err := h.adminService.ToggleUserAdmin(r.Context(), userID, callerID)
	if err != nil {
		h.Logger.Error("failed to toggle user admin", zap.Int("userId", userID), zap.Error(err))
		h.RespondError(w, adminToggleErrorStatus(err), err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{"role": role})
}

// ListAllPosts handles GET /admin/posts
// @Summary List all posts
// @Description Retrieve a page of posts including drafts.
// @Tags admin
// @Produce json
// @Param page query int false "Page number" default(1)
// @Success 200 {object} map[string]any "Posts with pagination"
// @Failure 403 {object} map[string]string "Insufficient permissions"
// @Security BearerAuth
// @Router /admin/posts [get]
func (h *AdminHandler) ListAllPosts(w http.ResponseWriter, r *http.Request) {
	posts, pagination, err := h.adminService.ListAllPosts(r.Context(), pageParam(r), h.postsPerPage)
	if err != nil {
		h.Logger.Error("failed to list all posts", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{
		"posts":      posts,
		"pagination": pagination,
	})
}

// TogglePostPublished handles POST /admin/posts/{id}/toggle-published
// @Summary Toggle post published flag
// @Description Flip a post's published flag. The first publish stamps the publication time.
// @Tags admin
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} map[string]any "New published state"
// @Failure 404 {object} map[string]string "Post not found"
// @Security BearerAuth
// @Router /admin/posts/{id}/toggle-published [post]
func (h *AdminHandler) TogglePostPublished(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	published, err := h.adminService.TogglePostPublished(r.Context(), postID)
	if err != nil {
		h.Logger.Error("failed to toggle post published", zap.Int("postId", postID), zap.Error(err))
		h.RespondError(w, adminToggleErrorStatus(err), err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{"is_published": published})
}

// ListComments handles GET /admin/comments
// @Summary List all comments
// @Description Retrieve a page of all comments, newest first, for moderation.
// @Tags admin
// @Produce json
// @Param page query int false "Page number" default(1)
// @Success 200 {object} map[string]any "Comments with pagination"
// @Failure 403 {object} map[string]string "Insufficient permissions"
// @Security BearerAuth
// @Router /admin/comments [get]
func (h *AdminHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, pagination, err := h.adminService.ListComments(r.Context(), pageParam(r), h.postsPerPage)
	if err != nil {
		h.Logger.Error("failed to list comments", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to list comments")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{
		"comments":   comments,
		"pagination": pagination,
	})
}

// ToggleCommentApproved handles POST /admin/comments/{id}/toggle-approved
// @Summary Toggle comment approved flag
// @Description Flip a comment's approved flag.
// @Tags admin
// @Produce json
// @Param id path int true "Comment ID"
// @Success 200 {object} map[string]any "New approved state"
// @Failure 404 {object} map[string]string "Comment not found"
// @Security BearerAuth
// @Router /admin/comments/{id}/toggle-approved [post]
func (h *AdminHandler) ToggleCommentApproved(w http.ResponseWriter, r *http.Request) {
	commentID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid comment id")
		return
	}

	approved, err := h.adminService.ToggleCommentApproved(r.Context(), commentID)
	if err != nil {
		h.Logger.Error("failed to toggle comment approved", zap.Int("commentId", commentID), zap.Error(err))
		h.RespondError(w, adminToggleErrorStatus(err), err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{"is_approved": approved})
}

// CreateCategory handles POST /admin/categories
// @Summary Create a category
// @Description Create a new category. The slug is derived from its name.
// @Tags admin
// @Accept json
// @Produce json
// @Param request body models.CategoryRequest true "New category"
// @Success 201 {object} models.Category "Created category"
// @Failure 400 {object} map[string]string "Invalid name or duplicate category"
// @Security BearerAuth
// @Router /admin/categories [post]
func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req models.CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.categoryService.CreateCategory(r.Context(), &req)
	if err != nil {
		h.Logger.Error("failed to create category", zap.Error(err))
		errStatus := http.StatusInternalServerError
		if strings.Contains(err.Error(), "empty") || strings.Contains(err.Error(), "already exists") ||
			strings.Contains(err.Error(), "must contain") {
			errStatus = http.StatusBadRequest
		}
		h.RespondError(w, errStatus, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusCreated, category)
}

// UpdateCategory handles PUT /admin/categories/{id}
// @Summary Update a category
// @Description Rename a category, recomputing its slug.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Param request body models.CategoryRequest true "Category update"
// @Success 200 {object} models.Category "Updated category"
// @Failure 400 {object} map[string]string "Invalid name or duplicate category"
// @Failure 404 {object} map[string]string "Category not found"
// @Security BearerAuth
// @Router /admin/categories/{id} [put]
func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	var req models.CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.categoryService.UpdateCategory(r.Context(), categoryID, &req)
	if err != nil {
		h.Logger.Error("failed to update category", zap.Int("categoryId", categoryID), zap.Error(err))
		errStatus := http.StatusInternalServerError
		if strings.Contains(err.Error(), "empty") || strings.Contains(err.Error(), "already exists") ||
			strings.Contains(err.Error(), "must contain") {
			errStatus = http.StatusBadRequest
		} else if strings.Contains(err.Error(), "not found") {
			errStatus = http.StatusNotFound
		}
		h.RespondError(w, errStatus, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, category)
}

// ToggleCategoryActive handles POST /admin/categories/{id}/toggle-active
// @Summary Toggle category active flag
// @Description Flip a category's active flag. Inactive categories are hidden from listings.
// @Tags admin
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} map[string]string "Category toggled"
// @Failure 404 {object} map[string]string "Category not found"
// @Security BearerAuth
// @Router /admin/categories/{id}/toggle-active [post]
func (h *AdminHandler) ToggleCategoryActive(w http.ResponseWriter, r *http.Request) {
	categoryID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	active, err := h.categoryService.ToggleCategoryActive(r.Context(), categoryID)
	if err != nil {
		h.Logger.Error("failed to toggle category active", zap.Int("categoryId", categoryID), zap.Error(err))
		h.RespondError(w, adminToggleErrorStatus(err), err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{"is_active": active})
}

// adminToggleErrorStatus maps admin toggle errors to HTTP status codes
func adminToggleErrorStatus(err error) int {
	switch {
	case strings.Contains(err.Error(), "own account") || strings.Contains(err.Error(), "own admin status"):
		return http.StatusBadRequest
	case strings.Contains(err.Error(), "not found"):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
