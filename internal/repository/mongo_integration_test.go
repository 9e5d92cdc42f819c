package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"devconnector/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func setupMongo(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping mongo integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	ctr, err := mongodb.Run(ctx, "mongo:6")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := ctr.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate mongo container: %v", err)
		}
	})

	uri, err := ctr.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	return client.Database("devconnector_test")
}

func newMongoPost(t *testing.T, repo *MongoPostRepository) *models.Post {
	t.Helper()
	post := &models.Post{Text: "hello", Name: "Ann", UserID: "u1"}
	require.NoError(t, repo.Create(context.Background(), post))
	return post
}

func TestMongoPostRepository_Integration(t *testing.T) {
	db := setupMongo(t)
	ctx := context.Background()

	t.Run("add like", func(t *testing.T) {
		repo := NewMongoPostRepository(db.Collection("posts_add_like"))
		post := newMongoPost(t, repo)

		tests := []struct {
			name        string
			postID      string
			userID      string
			expectedErr error
		}{
			{name: "first like", postID: post.PostID, userID: "u2"},
			{name: "second user goes first", postID: post.PostID, userID: "u3"},
			{name: "repeated like", postID: post.PostID, userID: "u2", expectedErr: ErrAlreadyExists},
			{name: "missing post", postID: bson.NewObjectID().Hex(), userID: "u2", expectedErr: ErrNotFound},
			{name: "malformed id", postID: "not-an-id", userID: "u2", expectedErr: ErrNotFound},
		}

		for _, tt := range tests {
			err := repo.AddLike(ctx, tt.postID, models.Like{UserID: tt.userID})
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr, tt.name)
			} else {
				assert.NoError(t, err, tt.name)
			}
		}

		got, err := repo.GetByID(ctx, post.PostID)
		require.NoError(t, err)
		assert.Equal(t, []models.Like{{UserID: "u3"}, {UserID: "u2"}}, got.Likes)
	})

	t.Run("concurrent likes by one user", func(t *testing.T) {
		repo := NewMongoPostRepository(db.Collection("posts_like_race"))
		post := newMongoPost(t, repo)

		const workers = 8
		errs := make(chan error, workers)
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- repo.AddLike(ctx, post.PostID, models.Like{UserID: "u2"})
			}()
		}
		wg.Wait()
		close(errs)

		succeeded := 0
		for err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.ErrorIs(t, err, ErrAlreadyExists)
		}
		assert.Equal(t, 1, succeeded)

		got, err := repo.GetByID(ctx, post.PostID)
		require.NoError(t, err)
		assert.Len(t, got.Likes, 1)
	})

	t.Run("remove like", func(t *testing.T) {
		repo := NewMongoPostRepository(db.Collection("posts_remove_like"))
		post := newMongoPost(t, repo)
		require.NoError(t, repo.AddLike(ctx, post.PostID, models.Like{UserID: "u2"}))
		require.NoError(t, repo.AddLike(ctx, post.PostID, models.Like{UserID: "u3"}))

		require.NoError(t, repo.RemoveLike(ctx, post.PostID, "u2"))
		assert.ErrorIs(t, repo.RemoveLike(ctx, post.PostID, "u2"), ErrNotFound)
		assert.ErrorIs(t, repo.RemoveLike(ctx, bson.NewObjectID().Hex(), "u3"), ErrNotFound)

		got, err := repo.GetByID(ctx, post.PostID)
		require.NoError(t, err)
		assert.Equal(t, []models.Like{{UserID: "u3"}}, got.Likes)
	})

	t.Run("comments", func(t *testing.T) {
		repo := NewMongoPostRepository(db.Collection("posts_comments"))
		post := newMongoPost(t, repo)
		now := time.Now().UTC().Truncate(time.Millisecond)

		for _, id := range []string{"c1", "c2"} {
			require.NoError(t, repo.AddComment(ctx, post.PostID, models.Comment{
				CommentID: id, Text: "nice", Name: "Bob", UserID: "u2", CreatedAt: now,
			}))
		}
		assert.ErrorIs(t, repo.AddComment(ctx, bson.NewObjectID().Hex(), models.Comment{CommentID: "c3"}), ErrNotFound)

		got, err := repo.GetByID(ctx, post.PostID)
		require.NoError(t, err)
		require.Len(t, got.Comments, 2)
		assert.Equal(t, "c2", got.Comments[0].CommentID)
		assert.Equal(t, now, got.Comments[0].CreatedAt)

		require.NoError(t, repo.RemoveComment(ctx, post.PostID, "c2"))
		assert.ErrorIs(t, repo.RemoveComment(ctx, post.PostID, "c2"), ErrNotFound)
		assert.ErrorIs(t, repo.RemoveComment(ctx, bson.NewObjectID().Hex(), "c1"), ErrNotFound)

		got, err = repo.GetByID(ctx, post.PostID)
		require.NoError(t, err)
		require.Len(t, got.Comments, 1)
		assert.Equal(t, "c1", got.Comments[0].CommentID)
	})

	t.Run("list and delete", func(t *testing.T) {
		repo := NewMongoPostRepository(db.Collection("posts_list"))
		first := newMongoPost(t, repo)
		time.Sleep(5 * time.Millisecond)
		second := newMongoPost(t, repo)

		posts, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, second.PostID, posts[0].PostID)
		assert.NotNil(t, posts[0].Likes)
		assert.NotNil(t, posts[0].Comments)

		require.NoError(t, repo.Delete(ctx, first.PostID))
		assert.ErrorIs(t, repo.Delete(ctx, first.PostID), ErrNotFound)
		_, err = repo.GetByID(ctx, first.PostID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
