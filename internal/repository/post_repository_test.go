package repository

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"devconnector/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var postColumns = []string{"post_id", "text", "name", "avatar", "user_id", "created_at"}

func setupMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { sqlxDB.Close() })

	return sqlxDB, mock
}

func TestPostRepositoryImpl_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	post := &models.Post{Text: "Hello world", Name: "Jane", Avatar: "//avatar", UserID: uuid.NewString()}

	mock.ExpectExec(`INSERT INTO posts`).
		WithArgs(sqlmock.AnyArg(), "Hello world", "Jane", "//avatar", post.UserID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), post)

	require.NoError(t, err)
	assert.True(t, isUUID(post.PostID))
	assert.False(t, post.CreatedAt.IsZero())
	assert.NotNil(t, post.Likes)
	assert.NotNil(t, post.Comments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepositoryImpl_CreateError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectExec(`INSERT INTO posts`).WillReturnError(fmt.Errorf("database error"))

	err := repo.Create(context.Background(), &models.Post{Text: "text", UserID: uuid.NewString()})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create post")
}

func TestPostRepositoryImpl_GetByID(t *testing.T) {
	postID := uuid.NewString()
	authorID := uuid.NewString()
	likerID := uuid.NewString()
	commentID := uuid.NewString()
	now := time.Now()

	tests := []struct {
		name      string
		postID    string
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   error
	}{
		{
			name:   "post with likes and comments",
			postID: postID,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT post_id, text, name, avatar, user_id, created_at FROM posts`).
					WithArgs(postID).
					WillReturnRows(sqlmock.NewRows(postColumns).
						AddRow(postID, "Hello world", "Jane", "//avatar", authorID, now))
				mock.ExpectQuery(`SELECT post_id, user_id FROM post_likes`).
					WithArgs(sqlmock.AnyArg()).
					WillReturnRows(sqlmock.NewRows([]string{"post_id", "user_id"}).
						AddRow(postID, likerID))
				mock.ExpectQuery(`FROM post_comments`).
					WithArgs(sqlmock.AnyArg()).
					WillReturnRows(sqlmock.NewRows([]string{"post_id", "comment_id", "text", "name", "avatar", "user_id", "created_at"}).
						AddRow(postID, commentID, "Nice", "Bob", "", likerID, now))
			},
		},
		{
			name:   "post does not exist",
			postID: postID,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM posts`).
					WithArgs(postID).
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name:      "malformed id",
			postID:    "not-a-uuid",
			setupMock: func(mock sqlmock.Sqlmock) {},
			wantErr:   ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewPostRepository(db)
			tt.setupMock(mock)

			post, err := repo.GetByID(context.Background(), tt.postID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, post)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "Hello world", post.Text)
				assert.Equal(t, authorID, post.UserID)
				assert.Equal(t, []models.Like{{UserID: likerID}}, post.Likes)
				require.Len(t, post.Comments, 1)
				assert.Equal(t, commentID, post.Comments[0].CommentID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostRepositoryImpl_GetAllEmpty(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(`ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows(postColumns))

	posts, err := repo.GetAll(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepositoryImpl_GetAllGroupsRelations(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	first, second := uuid.NewString(), uuid.NewString()
	liker := uuid.NewString()
	now := time.Now()

	mock.ExpectQuery(`ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows(postColumns).
			AddRow(first, "newer", "", "", liker, now).
			AddRow(second, "older", "", "", liker, now.Add(-time.Hour)))
	mock.ExpectQuery(`FROM post_likes`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"post_id", "user_id"}).AddRow(second, liker))
	mock.ExpectQuery(`FROM post_comments`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"post_id", "comment_id", "text", "name", "avatar", "user_id", "created_at"}))

	posts, err := repo.GetAll(context.Background())

	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "newer", posts[0].Text)
	assert.Empty(t, posts[0].Likes)
	assert.Equal(t, []models.Like{{UserID: liker}}, posts[1].Likes)
	assert.NotNil(t, posts[1].Comments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepositoryImpl_Delete(t *testing.T) {
	postID := uuid.NewString()

	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "deleted", affected: 1},
		{name: "missing", affected: 0, wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewPostRepository(db)

			mock.ExpectExec(`DELETE FROM posts WHERE post_id`).
				WithArgs(postID).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err := repo.Delete(context.Background(), postID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostRepositoryImpl_AddLike(t *testing.T) {
	postID := uuid.NewString()
	userID := uuid.NewString()

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   error
	}{
		{
			name: "inserted",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO post_likes`).
					WithArgs(postID, userID).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "already liked",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO post_likes`).
					WithArgs(postID, userID).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: ErrAlreadyExists,
		},
		{
			name: "post missing",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO post_likes`).
					WithArgs(postID, userID).
					WillReturnError(&pq.Error{Code: pqForeignKeyViolation})
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewPostRepository(db)
			tt.setupMock(mock)

			err := repo.AddLike(context.Background(), postID, models.Like{UserID: userID})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostRepositoryImpl_RemoveLikeMissing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	postID, userID := uuid.NewString(), uuid.NewString()

	mock.ExpectExec(`DELETE FROM post_likes`).
		WithArgs(postID, userID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.RemoveLike(context.Background(), postID, userID)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepositoryImpl_AddComment(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	postID := uuid.NewString()
	comment := models.Comment{
		CommentID: uuid.NewString(),
		Text:      "hello",
		Name:      "Bob",
		UserID:    uuid.NewString(),
		CreatedAt: time.Now(),
	}

	mock.ExpectExec(`INSERT INTO post_comments`).
		WithArgs(comment.CommentID, postID, comment.UserID, "hello", "Bob", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO post_comments`).
		WillReturnError(&pq.Error{Code: pqForeignKeyViolation})

	assert.NoError(t, repo.AddComment(context.Background(), postID, comment))
	assert.ErrorIs(t, repo.AddComment(context.Background(), postID, comment), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepositoryImpl_RemoveComment(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	postID, commentID := uuid.NewString(), uuid.NewString()

	mock.ExpectExec(`DELETE FROM post_comments`).
		WithArgs(postID, commentID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM post_comments`).
		WithArgs(postID, commentID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.RemoveComment(context.Background(), postID, commentID))
	assert.ErrorIs(t, repo.RemoveComment(context.Background(), postID, commentID), ErrNotFound)
	assert.ErrorIs(t, repo.RemoveComment(context.Background(), postID, "bogus"), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
