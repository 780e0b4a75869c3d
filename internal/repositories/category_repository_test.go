package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/inkwellblog/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupCategoryTestRepository creates a category repository with a mock database
func setupCategoryTestRepository(t *testing.T) (*categoryRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewCategoryRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestCategoryRepository_Create(t *testing.T) {
	tests := []struct {
		name          string
		category      *models.Category
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
		expectedID    int
	}{
		{
			name: "success",
			category: &models.Category{
				Name:        "Go",
				Slug:        "go",
				Description: "Posts about Go",
				IsActive:    true,
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO categories`).
					WithArgs("Go", "go", "Posts about Go", true).
					WillReturnResult(sqlmock.NewResult(3, 1))
			},
			expectedID: 3,
		},
		{
			name: "duplicate slug",
			category: &models.Category{
				Name:     "Go",
				Slug:     "go",
				IsActive: true,
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO categories`).
					WithArgs("Go", "go", "", true).
					WillReturnError(errors.New("Error 1062: Duplicate entry 'go' for key 'slug'"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupCategoryTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.Create(context.Background(), tt.category)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedID, tt.category.ID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCategoryRepository_GetBySlug(t *testing.T) {
	tests := []struct {
		name          string
		slug          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
	}{
		{
			name: "found",
			slug: "go",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "name", "slug", "description", "is_active"}).
					AddRow(3, "Go", "go", "Posts about Go", true)
				mock.ExpectQuery(`SELECT id, name, slug, description, is_active`).
					WithArgs("go").
					WillReturnRows(rows)
			},
		},
		{
			name: "not found",
			slug: "missing",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, name, slug, description, is_active`).
					WithArgs("missing").
					WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "description", "is_active"}))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupCategoryTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			category, err := repo.GetBySlug(context.Background(), tt.slug)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, category)
			} else {
				assert.NoError(t, err)
				require.NotNil(t, category)
				assert.Equal(t, tt.slug, category.Slug)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCategoryRepository_ListWithPostCounts(t *testing.T) {
	tests := []struct {
		name          string
		activeOnly    bool
		setupMock     func(sqlmock.Sqlmock)
		expectedLen   int
		expectedError bool
	}{
		{
			name:       "active only ordered by post count",
			activeOnly: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "name", "slug", "description", "is_active", "post_count"}).
					AddRow(3, "Go", "go", "", true, 12).
					AddRow(4, "Web", "web", "", true, 5)
				mock.ExpectQuery(`WHERE c\.is_active = TRUE GROUP BY c\.id ORDER BY post_count DESC`).
					WillReturnRows(rows)
			},
			expectedLen: 2,
		},
		{
			name:       "all categories",
			activeOnly: false,
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "name", "slug", "description", "is_active", "post_count"}).
					AddRow(3, "Go", "go", "", true, 12).
					AddRow(5, "Archive", "archive", "", false, 0)
				mock.ExpectQuery(`GROUP BY c\.id ORDER BY post_count DESC`).
					WillReturnRows(rows)
			},
			expectedLen: 2,
		},
		{
			name:       "database error",
			activeOnly: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`GROUP BY c\.id`).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupCategoryTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			categories, err := repo.ListWithPostCounts(context.Background(), tt.activeOnly)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Len(t, categories, tt.expectedLen)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCategoryRepository_SetActive(t *testing.T) {
	tests := []struct {
		name          string
		categoryID    int
		active        bool
		setupMock     func(sqlmock.Sqlmock)
		expectedError string
	}{
		{
			name:       "deactivate",
			categoryID: 3,
			active:     false,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE categories SET is_active = \? WHERE id = \?`).
					WithArgs(false, 3).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:       "category not found",
			categoryID: 99,
			active:     true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE categories SET is_active = \? WHERE id = \?`).
					WithArgs(true, 99).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			expectedError: "category not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupCategoryTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.SetActive(context.Background(), tt.categoryID, tt.active)

			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
