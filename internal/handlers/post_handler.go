package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/inkwellblog/backend/internal/auth"
	"github.com/inkwellblog/backend/internal/models"
	"github.com/inkwellblog/backend/internal/services"
	"go.uber.org/zap"
)

// PostService is the interface that wraps methods for blog post business logic.
type PostService interface {
	// Method ListPosts retrieves a page of published posts matching the filter.
	ListPosts(ctx context.Context, page, perPage int, filter models.PostFilter) ([]models.Post, *models.Pagination, error)
	// Method GetPost retrieves a post by slug or numeric ID, increments its view
	// counter and attaches its tags and approved comments. Drafts are visible
	// only to their author and to admins.
	GetPost(ctx context.Context, slugOrID string, viewerID int, viewerRole models.Role) (*models.Post, []models.Comment, error)
	// Method CreatePost creates a new post for the given author.
	CreatePost(ctx context.Context, authorID int, req *models.CreatePostRequest) (*models.Post, error)
	// Method UpdatePost applies a partial update to a post.
	//
	// Returns services.ErrForbidden when the caller is neither the author nor an admin.
	UpdatePost(ctx context.Context, postID, callerID int, callerRole models.Role, req *models.UpdatePostRequest) error
	// Method DeletePost removes a post.
	//
	// Returns services.ErrForbidden when the caller is neither the author nor an admin.
	DeletePost(ctx context.Context, postID, callerID int, callerRole models.Role) error
	// Method AddComment attaches an unapproved comment to a published post.
	AddComment(ctx context.Context, postID, authorID int, req *models.CreateCommentRequest) (*models.Comment, error)
}

// PostHandler handles blog post HTTP requests
type PostHandler struct {
	BaseHandler
	postService PostService
	perPage     int
}

// NewPostHandler creates a new post handler
func NewPostHandler(postService PostService, perPage int, logger *zap.Logger) *PostHandler {
	return &PostHandler{
		BaseHandler: BaseHandler{Logger: logger},
		postService: postService,
		perPage:     perPage,
	}
}

// RegisterRoutes registers all post handler routes.
// The routes require authentication; the caller wires the auth middleware.
func (h *PostHandler) RegisterRoutes(r chi.Router) {
	r.Route("/posts", func(r chi.Router) {
		r.Get("/", h.ListPosts)
		r.Post("/", h.CreatePost)
		r.Get("/{slug}", h.GetPost)
		r.Put("/{id}", h.UpdatePost)
		r.Delete("/{id}", h.DeletePost)
		r.Post("/{id}/comments", h.AddComment)
	})
}

// ListPosts handles GET /posts
// @Summary List published posts
// @Description Retrieve a page of published posts, optionally filtered by category and search query.
// @Tags posts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param category query int false "Category ID"
// @Param q query string false "Search query matched against title and content"
// @Success 200 {object} map[string]any "Posts with pagination"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /posts [get]
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	filter := models.PostFilter{
		Search: strings.TrimSpace(r.URL.Query().Get("q")),
	}
	if raw := r.URL.Query().Get("category"); raw != "" {
		categoryID, err := strconv.Atoi(raw)
		if err != nil {
			h.RespondError(w, http.StatusBadRequest, "invalid category id")
			return
		}
		filter.CategoryID = &categoryID
	}

	posts, pagination, err := h.postService.ListPosts(r.Context(), pageParam(r), h.perPage, filter)
	if err != nil {
		h.Logger.Error("failed to list posts", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{
		"posts":      posts,
		"pagination": pagination,
	})
}

// GetPost handles GET /posts/{slug}
// @Summary Get a post
// @Description Retrieve a post by slug or numeric ID with its tags and approved comments. Each read of a published post increments its view counter.
// @Tags posts
// @Produce json
// @Param slug path string true "Post slug or ID"
// @Success 200 {object} map[string]any "Post with comments"
// @Failure 404 {object} map[string]string "Post not found"
// @Security BearerAuth
// @Router /posts/{slug} [get]
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := auth.GetUserID(r.Context())
	viewerRole, _ := auth.GetRole(r.Context())

	post, comments, err := h.postService.GetPost(r.Context(), chi.URLParam(r, "slug"), viewerID, viewerRole)
	if err != nil {
		h.Logger.Error("failed to get post", zap.String("slug", chi.URLParam(r, "slug")), zap.Error(err))
		if strings.Contains(err.Error(), "not found") {
			h.RespondError(w, http.StatusNotFound, "post not found")
			return
		}
		h.RespondError(w, http.StatusInternalServerError, "failed to get post")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{
		"post":             post,
		"comments":         comments,
		"reading_time_min": post.ReadingTime(),
	})
}

// CreatePost handles POST /posts
// @Summary Create a post
// @Description Create a new post for the authenticated user. The slug is derived from the title.
// @Tags posts
// @Accept json
// @Produce json
// @Param request body models.CreatePostRequest true "New post"
// @Success 201 {object} models.Post "Created post"
// @Failure 400 {object} map[string]string "Invalid request body or unknown category"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /posts [post]
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	post, err := h.postService.CreatePost(r.Context(), userID, &req)
	if err != nil {
		h.Logger.Error("failed to create post", zap.Int("userId", userID), zap.Error(err))
		errStatus := http.StatusInternalServerError
		if strings.Contains(err.Error(), "empty") || strings.Contains(err.Error(), "not found") ||
			strings.Contains(err.Error(), "not active") {
			errStatus = http.StatusBadRequest
		}
		h.RespondError(w, errStatus, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusCreated, post)
}

// UpdatePost handles PUT /posts/{id}
// @Summary Update a post
// @Description Apply a partial update to a post. Only the author or an admin may edit a post.
// @Tags posts
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body models.UpdatePostRequest true "Post update"
// @Success 200 {object} map[string]string "Post updated successfully"
// @Failure 403 {object} map[string]string "Insufficient permissions"
// @Failure 404 {object} map[string]string "Post not found"
// @Security BearerAuth
// @Router /posts/{id} [put]
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	role, _ := auth.GetRole(r.Context())

	postID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	var req models.UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.postService.UpdatePost(r.Context(), postID, userID, role, &req); err != nil {
		h.Logger.Error("failed to update post", zap.Int("postId", postID), zap.Error(err))
		h.RespondError(w, postWriteErrorStatus(err), err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "post updated successfully"})
}

// DeletePost handles DELETE /posts/{id}
// @Summary Delete a post
// @Description Remove a post. Only the author or an admin may delete a post.
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} map[string]string "Post deleted successfully"
// @Failure 403 {object} map[string]string "Insufficient permissions"
// @Failure 404 {object} map[string]string "Post not found"
// @Security BearerAuth
// @Router /posts/{id} [delete]
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	role, _ := auth.GetRole(r.Context())

	postID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	if err := h.postService.DeletePost(r.Context(), postID, userID, role); err != nil {
		h.Logger.Error("failed to delete post", zap.Int("postId", postID), zap.Error(err))
		h.RespondError(w, postWriteErrorStatus(err), err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "post deleted successfully"})
}

// AddComment handles POST /posts/{id}/comments
// @Summary Comment on a post
// @Description Attach a comment to a published post. Comments await moderation before appearing.
// @Tags posts
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body models.CreateCommentRequest true "New comment"
// @Success 201 {object} models.Comment "Created comment"
// @Failure 400 {object} map[string]string "Empty comment"
// @Failure 404 {object} map[string]string "Post not found"
// @Security BearerAuth
// @Router /posts/{id}/comments [post]
func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	postID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	var req models.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	comment, err := h.postService.AddComment(r.Context(), postID, userID, &req)
	if err != nil {
		h.Logger.Error("failed to add comment", zap.Int("postId", postID), zap.Error(err))
		errStatus := http.StatusInternalServerError
		if strings.Contains(err.Error(), "empty") {
			errStatus = http.StatusBadRequest
		} else if strings.Contains(err.Error(), "not found") {
			errStatus = http.StatusNotFound
		}
		h.RespondError(w, errStatus, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusCreated, comment)
}

// postWriteErrorStatus maps post write errors to HTTP status codes
func postWriteErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case strings.Contains(err.Error(), "not found"):
		return http.StatusNotFound
	case strings.Contains(err.Error(), "empty") || strings.Contains(err.Error(), "not active"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
