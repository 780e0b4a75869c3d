package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/inkwellblog/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupCommentTestRepository creates a comment repository with a mock database
func setupCommentTestRepository(t *testing.T) (*commentRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewCommentRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestCommentRepository_Create(t *testing.T) {
	tests := []struct {
		name          string
		comment       *models.Comment
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
		expectedID    int
	}{
		{
			name:    "success",
			comment: &models.Comment{Content: "Nice post", AuthorID: 1, PostID: 10},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO comments`).
					WithArgs("Nice post", 1, 10).
					WillReturnResult(sqlmock.NewResult(5, 1))
			},
			expectedID: 5,
		},
		{
			name:    "database error",
			comment: &models.Comment{Content: "Nice post", AuthorID: 1, PostID: 10},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO comments`).
					WithArgs("Nice post", 1, 10).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupCommentTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.Create(context.Background(), tt.comment)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedID, tt.comment.ID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCommentRepository_ListApprovedByPost(t *testing.T) {
	createdAt := time.Now()

	tests := []struct {
		name          string
		postID        int
		setupMock     func(sqlmock.Sqlmock)
		expectedLen   int
		expectedError bool
	}{
		{
			name:   "approved comments oldest first",
			postID: 10,
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "content", "is_approved", "author_id", "post_id", "created_at", "username"}).
					AddRow(5, "First!", true, 1, 10, createdAt.Add(-time.Hour), "alice").
					AddRow(6, "Great read", true, 2, 10, createdAt, "bob")
				mock.ExpectQuery(`WHERE c\.post_id = \? AND c\.is_approved = TRUE`).
					WithArgs(10).
					WillReturnRows(rows)
			},
			expectedLen: 2,
		},
		{
			name:   "no approved comments",
			postID: 11,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`WHERE c\.post_id = \? AND c\.is_approved = TRUE`).
					WithArgs(11).
					WillReturnRows(sqlmock.NewRows([]string{"id", "content", "is_approved", "author_id", "post_id", "created_at", "username"}))
			},
			expectedLen: 0,
		},
		{
			name:   "database error",
			postID: 10,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`WHERE c\.post_id = \? AND c\.is_approved = TRUE`).
					WithArgs(10).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupCommentTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			comments, err := repo.ListApprovedByPost(context.Background(), tt.postID)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Len(t, comments, tt.expectedLen)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCommentRepository_ListAll(t *testing.T) {
	repo, mock, cleanup := setupCommentTestRepository(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "content", "is_approved", "author_id", "post_id", "created_at", "username"}).
		AddRow(6, "Great read", false, 2, 10, time.Now(), "bob")
	mock.ExpectQuery(`ORDER BY c\.created_at DESC LIMIT \? OFFSET \?`).
		WithArgs(10, 10).
		WillReturnRows(rows)

	comments, err := repo.ListAll(context.Background(), 2, 10)

	assert.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "bob", comments[0].AuthorUsername)
	assert.False(t, comments[0].IsApproved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_SetApproved(t *testing.T) {
	tests := []struct {
		name          string
		commentID     int
		approved      bool
		setupMock     func(sqlmock.Sqlmock)
		expectedError string
	}{
		{
			name:      "approve",
			commentID: 6,
			approved:  true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE comments SET is_approved = \? WHERE id = \?`).
					WithArgs(true, 6).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:      "comment not found",
			commentID: 99,
			approved:  true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE comments SET is_approved = \? WHERE id = \?`).
					WithArgs(true, 99).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			expectedError: "comment not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupCommentTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.SetApproved(context.Background(), tt.commentID, tt.approved)

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
