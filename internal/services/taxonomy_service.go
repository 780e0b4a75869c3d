package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/inkwellblog/backend/internal/models"
)

// CategoryRepository wraps data access for the categories table
type CategoryRepository interface {
	// Create inserts a new category and fills in its ID.
	Create(ctx context.Context, category *models.Category) error
	// GetByID retrieves a category by ID.
	GetByID(ctx context.Context, categoryID int) (*models.Category, error)
	// GetBySlug retrieves a category by slug.
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	// ExistsBySlug checks if a category with the given slug exists.
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	// ListWithPostCounts retrieves categories with their published post counts.
	ListWithPostCounts(ctx context.Context, activeOnly bool) ([]models.Category, error)
	// Update replaces a category's name, slug and description.
	Update(ctx context.Context, categoryID int, name, slug, description string) error
	// SetActive flips a category's active flag.
	SetActive(ctx context.Context, categoryID int, active bool) error
}

// TagRepository wraps data access for the tags table
type TagRepository interface {
	// GetBySlug retrieves a tag by slug.
	GetBySlug(ctx context.Context, slug string) (*models.Tag, error)
	// ListWithPostCounts retrieves tags with their published post counts.
	ListWithPostCounts(ctx context.Context) ([]models.Tag, error)
}

// TagPostRepository lists posts for a tag's page
type TagPostRepository interface {
	// ListByTag retrieves a page of published posts carrying the tag.
	ListByTag(ctx context.Context, tagSlug string, page, perPage int) ([]models.Post, error)
	// CountByTag returns the number of published posts carrying the tag.
	CountByTag(ctx context.Context, tagSlug string) (int, error)
	// List retrieves a page of posts matching the filter.
	List(ctx context.Context, page, perPage int, filter models.PostFilter) ([]models.Post, error)
	// CountList returns the number of posts matching the filter.
	CountList(ctx context.Context, filter models.PostFilter) (int, error)
}

// taxonomyService implements category and tag business logic
type taxonomyService struct {
	categoryRepo CategoryRepository
	tagRepo      TagRepository
	postRepo     TagPostRepository
}

// NewTaxonomyService creates a new taxonomy service
func NewTaxonomyService(categoryRepo CategoryRepository, tagRepo TagRepository, postRepo TagPostRepository) *taxonomyService {
	return &taxonomyService{
		categoryRepo: categoryRepo,
		tagRepo:      tagRepo,
		postRepo:     postRepo,
	}
}

// ListCategories retrieves active categories with their post counts
func (s *taxonomyService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categoryRepo.ListWithPostCounts(ctx, true)
}

// GetCategory retrieves an active category and a page of its published posts
func (s *taxonomyService) GetCategory(ctx context.Context, slug string, page, perPage int) (*models.Category, []models.Post, *models.Pagination, error) {
	category, err := s.categoryRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, nil, err
	}
	if !category.IsActive {
		return nil, nil, nil, fmt.Errorf("category not found")
	}

	if page < 1 {
		page = 1
	}
	filter := models.PostFilter{CategoryID: &category.ID, PublishedOnly: true}

	posts, err := s.postRepo.List(ctx, page, perPage, filter)
	if err != nil {
		return nil, nil, nil, err
	}

	total, err := s.postRepo.CountList(ctx, filter)
	if err != nil {
		return nil, nil, nil, err
	}

	return category, posts, models.NewPagination(page, perPage, total), nil
}

// ListTags retrieves all tags with their post counts
func (s *taxonomyService) ListTags(ctx context.Context) ([]models.Tag, error) {
	return s.tagRepo.ListWithPostCounts(ctx)
}

// GetTag retrieves a tag and a page of published posts carrying it
func (s *taxonomyService) GetTag(ctx context.Context, slug string, page, perPage int) (*models.Tag, []models.Post, *models.Pagination, error) {
	tag, err := s.tagRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, nil, err
	}

	if page < 1 {
		page = 1
	}

	posts, err := s.postRepo.ListByTag(ctx, slug, page, perPage)
	if err != nil {
		return nil, nil, nil, err
	}

	total, err := s.postRepo.CountByTag(ctx, slug)
	if err != nil {
		return nil, nil, nil, err
	}

	return tag, posts, models.NewPagination(page, perPage, total), nil
}

// CreateCategory creates a new category with a slug derived from its name
func (s *taxonomyService) CreateCategory(ctx context.Context, req *models.CategoryRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("category name cannot be empty")
	}

	slug := Slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("category name must contain letters or digits")
	}

	exists, err := s.categoryRepo.ExistsBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to check category slug: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("category already exists")
	}

	category := &models.Category{
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(req.Description),
		IsActive:    true,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// UpdateCategory renames a category, recomputing its slug
func (s *taxonomyService) UpdateCategory(ctx context.Context, categoryID int, req *models.CategoryRequest) (*models.Category, error) {
	current, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("category name cannot be empty")
	}

	slug := Slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("category name must contain letters or digits")
	}

	if slug != current.Slug {
		exists, err := s.categoryRepo.ExistsBySlug(ctx, slug)
		if err != nil {
			return nil, fmt.Errorf("failed to check category slug: %w", err)
		}
		if exists {
			return nil, fmt.Errorf("category already exists")
		}
	}

	description := strings.TrimSpace(req.Description)
	if err := s.categoryRepo.Update(ctx, categoryID, name, slug, description); err != nil {
		return nil, err
	}

	current.Name = name
	current.Slug = slug
	current.Description = description
	return current, nil
}

// ToggleCategoryActive flips a category's active flag and returns the new state
func (s *taxonomyService) ToggleCategoryActive(ctx context.Context, categoryID int) (bool, error) {
	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return false, err
	}

	newState := !category.IsActive
	if err := s.categoryRepo.SetActive(ctx, categoryID, newState); err != nil {
		return false, err
	}

	return newState, nil
}
