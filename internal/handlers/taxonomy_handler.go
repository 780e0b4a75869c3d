package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/inkwellblog/backend/internal/models"
	"go.uber.org/zap"
)

// TaxonomyService is the interface that wraps methods for category and tag business logic.
type TaxonomyService interface {
	// Method ListCategories retrieves active categories with their post counts.
	ListCategories(ctx context.Context) ([]models.Category, error)
	// Method GetCategory retrieves an active category and a page of its published posts.
	GetCategory(ctx context.Context, slug string, page, perPage int) (*models.Category, []models.Post, *models.Pagination, error)
	// Method ListTags retrieves all tags with their post counts.
	ListTags(ctx context.Context) ([]models.Tag, error)
	// Method GetTag retrieves a tag and a page of published posts carrying it.
	GetTag(ctx context.Context, slug string, page, perPage int) (*models.Tag, []models.Post, *models.Pagination, error)
}

// TaxonomyHandler handles category and tag HTTP requests
type TaxonomyHandler struct {
	BaseHandler
	taxonomyService TaxonomyService
	perPage         int
}

// NewTaxonomyHandler creates a new taxonomy handler
func NewTaxonomyHandler(taxonomyService TaxonomyService, perPage int, logger *zap.Logger) *TaxonomyHandler {
	return &TaxonomyHandler{
		BaseHandler:     BaseHandler{Logger: logger},
		taxonomyService: taxonomyService,
		perPage:         perPage,
	}
}

// RegisterRoutes registers all taxonomy handler routes.
// The routes require authentication; the caller wires the auth middleware.
func (h *TaxonomyHandler) RegisterRoutes(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Get("/{slug}", h.GetCategory)
	})
	r.Route("/tags", func(r chi.Router) {
		r.Get("/", h.ListTags)
		r.Get("/{slug}", h.GetTag)
	})
}

// ListCategories handles GET /categories
// @Summary List categories
// @Description Retrieve active categories with their published post counts.
// @Tags taxonomy
// @Produce json
// @Success 200 {array} models.Category "Categories"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /categories [get]
func (h *TaxonomyHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.taxonomyService.ListCategories(r.Context())
	if err != nil {
		h.Logger.Error("failed to list categories", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	h.RespondJSON(w, http.StatusOK, categories)
}

// GetCategory handles GET /categories/{slug}
// @Summary Get a category
// @Description Retrieve an active category and a page of its published posts.
// @Tags taxonomy
// @Produce json
// @Param slug path string true "Category slug"
// @Param page query int false "Page number" default(1)
// @Success 200 {object} map[string]any "Category with posts"
// @Failure 404 {object} map[string]string "Category not found"
// @Security BearerAuth
// @Router /categories/{slug} [get]
func (h *TaxonomyHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	category, posts, pagination, err := h.taxonomyService.GetCategory(r.Context(), slug, pageParam(r), h.perPage)
	if err != nil {
		h.Logger.Error("failed to get category", zap.String("slug", slug), zap.Error(err))
		h.RespondError(w, http.StatusNotFound, "category not found")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{
		"category":   category,
		"posts":      posts,
		"pagination": pagination,
	})
}

// ListTags handles GET /tags
// @Summary List tags
// @Description Retrieve all tags with their published post counts.
// @Tags taxonomy
// @Produce json
// @Success 200 {array} models.Tag "Tags"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /tags [get]
func (h *TaxonomyHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.taxonomyService.ListTags(r.Context())
	if err != nil {
		h.Logger.Error("failed to list tags", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to list tags")
		return
	}

	h.RespondJSON(w, http.StatusOK, tags)
}

// GetTag handles GET /tags/{slug}
// @Summary Get a tag
// @Description Retrieve a tag and a page of published posts carrying it.
// @Tags taxonomy
// @Produce json
// @Param slug path string true "Tag slug"
// @Param page query int false "Page number" default(1)
// @Success 200 {object} map[string]any "Tag with posts"
// @Failure 404 {object} map[string]string "Tag not found"
// @Security BearerAuth
// @Router /tags/{slug} [get]
func (h *TaxonomyHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	tag, posts, pagination, err := h.taxonomyService.GetTag(r.Context(), slug, pageParam(r), h.perPage)
	if err != nil {
		h.Logger.Error("failed to get tag", zap.String("slug", slug), zap.Error(err))
		h.RespondError(w, http.StatusNotFound, "tag not found")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{
		"tag":        tag,
		"posts":      posts,
		"pagination": pagination,
	})
}
