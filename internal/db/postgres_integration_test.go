//go:build integration

package db

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/leafsii/blog-backend/internal/db/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newPostgresDB(t *testing.T) *Database {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("blog"),
		postgres.WithUsername("blog"),
		postgres.WithPassword("blog"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := NewDatabase(&Config{Type: "postgres", DSN: dsn, MaxOpenConns: 10, MaxIdleConns: 5})
	require.NoError(t, err)
	require.NoError(t, ConnectAndMigrate(ctx, db))
	t.Cleanup(func() { _ = db.Disconnect(ctx) })
	return db
}

func TestPostgresRepositories(t *testing.T) {
	ctx := context.Background()
	db := newPostgresDB(t)
	assert.Equal(t, "postgres", db.Dialect())

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	t.Run("unique username", func(t *testing.T) {
		err := db.Users().Create(ctx, alice)
		assert.ErrorIs(t, err, interfaces.ErrUniqueConstraint)
	})

	t.Run("toggle under contention", func(t *testing.T) {
		post := createPost(t, db, alice, "contended")

		const workers = 16
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _, err := db.PostLikes().Toggle(ctx, post.ID, bob.ID)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		n, err := db.PostLikes().Count(ctx, post.ID)
		require.NoError(t, err)
		assert.LessOrEqual(t, n, int64(1))
	})

	t.Run("search and ordering", func(t *testing.T) {
		createPost(t, db, bob, "Postgres tips")
		posts, err := db.Posts().FindMany(ctx, &interfaces.Query{
			Search: "POSTGRES",
			Where:  []interfaces.Filter{{Field: "author", Value: bob.ID}},
		})
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, "bob", posts[0].Author)
	})

	t.Run("user cascade", func(t *testing.T) {
		carol := createUser(t, db, "carol")
		post := createPost(t, db, carol, "carol's")
		comment := createComment(t, db, post, bob, "hi carol")
		_, _, err := db.CommentLikes().Toggle(ctx, comment.ID, alice.ID)
		require.NoError(t, err)
		_, err = db.Profiles().GetOrCreate(ctx, carol.ID)
		require.NoError(t, err)

		require.NoError(t, db.Users().Delete(ctx, carol.ID))
		_, err = db.Comments().GetByID(ctx, comment.ID)
		assert.ErrorIs(t, err, interfaces.ErrNotFound)
	})

	t.Run("seed", func(t *testing.T) {
		require.NoError(t, db.Users().Delete(ctx, alice.ID))
		require.NoError(t, db.Users().Delete(ctx, bob.ID))
		_, err := Seed(ctx, db, func(pw string) (string, error) { return pw, nil })
		require.NoError(t, err)

		popular, err := db.Posts().Popular(ctx, 10)
		require.NoError(t, err)
		require.NotEmpty(t, popular)
		assert.EqualValues(t, 2, popular[0].LikesCount)
	})
}
