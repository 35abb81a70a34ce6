package db

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/leafsii/blog-backend/internal/db/entities"
	"github.com/leafsii/blog-backend/internal/db/interfaces"
	"github.com/leafsii/blog-backend/internal/db/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	ctx := context.Background()

	db := NewInMemoryDatabase()
	require.NoError(t, ConnectAndMigrate(ctx, db))
	t.Cleanup(func() { _ = db.Disconnect(ctx) })
	return db
}

func createUser(t *testing.T, db interfaces.Database, username string) *entities.User {
	t.Helper()
	user := &entities.User{Username: username, Email: username + "@example.com", PasswordHash: "x"}
	require.NoError(t, db.Users().Create(context.Background(), user))
	return user
}

func createPost(t *testing.T, db interfaces.Database, author *entities.User, title string) *entities.Post {
	t.Helper()
	post := &entities.Post{Title: title, Content: title + " body", AuthorID: author.ID}
	require.NoError(t, db.Posts().Create(context.Background(), post))
	return post
}

func createComment(t *testing.T, db interfaces.Database, post *entities.Post, author *entities.User, content string) *entities.Comment {
	t.Helper()
	comment := &entities.Comment{PostID: post.ID, AuthorID: author.ID, Content: content}
	require.NoError(t, db.Comments().Create(context.Background(), comment))
	return comment
}

func TestInMemoryDatabase(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	assert.True(t, db.IsHealthy(ctx))
	assert.Equal(t, "sqlite", db.Dialect())

	require.NoError(t, db.Disconnect(ctx))
	assert.False(t, db.IsHealthy(ctx))
	_, err := db.Users().GetByID(ctx, 1)
	assert.ErrorIs(t, err, interfaces.ErrDatabaseNotConnected)
}

func TestNewDatabaseRejectsUnknownType(t *testing.T) {
	_, err := NewDatabase(&Config{Type: "oracle"})
	assert.Error(t, err)

	_, err = NewDatabase(&Config{Type: "postgres"})
	assert.Error(t, err, "postgres requires a DSN")
}

func TestSQLiteDSN(t *testing.T) {
	dsn := sqliteDSN("file:blog.db")
	assert.Equal(t, "file:blog.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite", dsn)
	assert.Equal(t, dsn, sqliteDSN(dsn))
	assert.Contains(t, sqliteDSN("file:x?mode=memory"), "mode=memory&_pragma=foreign_keys(1)")
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := db.Users()

	user := &entities.User{Username: "alice", Email: "alice@example.com", FirstName: "Alice", PasswordHash: "hash"}
	require.NoError(t, users.Create(ctx, user))
	require.NotZero(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	got, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.Nil(t, got.Profile)

	byName, err := users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	got.LastName = "Brown"
	require.NoError(t, users.Update(ctx, got))
	got, err = users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Brown", got.LastName)

	err = users.Create(ctx, &entities.User{Username: "alice"})
	assert.ErrorIs(t, err, interfaces.ErrUniqueConstraint)

	bio := "hello"
	require.NoError(t, db.Profiles().Create(ctx, &entities.UserProfile{UserID: user.ID, Bio: &bio}))
	got, err = users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Profile)
	assert.Equal(t, "hello", *got.Profile.Bio)
	assert.Nil(t, got.Profile.Avatar)

	require.NoError(t, users.Delete(ctx, user.ID))
	_, err = users.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
	assert.ErrorIs(t, users.Delete(ctx, user.ID), interfaces.ErrNotFound)
	assert.ErrorIs(t, users.Update(ctx, got), interfaces.ErrNotFound)
}

func TestUserSearch(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	for _, name := range []string{"alice", "bob", "alicia"} {
		createUser(t, db, name)
	}

	found, err := db.Users().FindMany(ctx, &interfaces.Query{Search: "ALI"})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "alice", found[0].Username)
	assert.Equal(t, "alicia", found[1].Username)

	found, err = db.Users().FindMany(ctx, &interfaces.Query{Search: "ali example.com"})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = db.Users().FindMany(ctx, &interfaces.Query{Search: "ali_"})
	require.NoError(t, err)
	assert.Empty(t, found, "underscore is matched literally")
}

func TestTransactionRollback(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	err := db.Transaction(ctx, func(ctx context.Context, repos interfaces.Repositories) error {
		user := &entities.User{Username: "ghost"}
		if err := repos.Users().Create(ctx, user); err != nil {
			return err
		}
		if err := repos.Profiles().Create(ctx, &entities.UserProfile{UserID: user.ID}); err != nil {
			return err
		}
		return fmt.Errorf("abort")
	})
	require.EqualError(t, err, "abort")

	_, err = db.Users().GetByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
	profiles, err := db.Profiles().FindMany(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestProfileRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	user := createUser(t, db, "alice")

	first, err := db.Profiles().GetOrCreate(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, first.UserID)
	assert.Nil(t, first.Bio)

	second, err := db.Profiles().GetOrCreate(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	err = db.Profiles().Create(ctx, &entities.UserProfile{UserID: user.ID})
	assert.ErrorIs(t, err, interfaces.ErrUniqueConstraint)

	err = db.Profiles().Create(ctx, &entities.UserProfile{UserID: 9999})
	assert.ErrorIs(t, err, interfaces.ErrForeignKeyConstraint)

	avatar := "avatars/a.png"
	second.Avatar = &avatar
	require.NoError(t, db.Profiles().Update(ctx, second))
	got, err := db.Profiles().GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "avatars/a.png", *got.Avatar)

	filtered, err := db.Profiles().FindMany(ctx, &interfaces.Query{Where: []interfaces.Filter{{Field: "user", Value: user.ID}}})
	require.NoError(t, err)
	assert.Len(t, filtered, 1)

	require.NoError(t, db.Profiles().Delete(ctx, got.ID))
	_, err = db.Profiles().GetByUserID(ctx, user.ID)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestPostRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	hello := createPost(t, db, alice, "Hello")
	gopher := createPost(t, db, alice, "Gophers")
	createPost(t, db, bob, "Bob's notes")

	got, err := db.Posts().GetByID(ctx, hello.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Author)
	assert.Zero(t, got.LikesCount)
	assert.Zero(t, got.CommentsCount)

	createComment(t, db, hello, bob, "nice")
	got, err = db.Posts().GetByID(ctx, hello.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.CommentsCount)

	t.Run("default order is newest first", func(t *testing.T) {
		posts, err := db.Posts().FindMany(ctx, nil)
		require.NoError(t, err)
		require.Len(t, posts, 3)
		assert.Equal(t, "Bob's notes", posts[0].Title)
		assert.Equal(t, "Hello", posts[2].Title)
	})

	t.Run("filter by author", func(t *testing.T) {
		posts, err := db.Posts().FindMany(ctx, &interfaces.Query{
			Where: []interfaces.Filter{{Field: "author", Value: alice.ID}},
		})
		require.NoError(t, err)
		assert.Len(t, posts, 2)
	})

	t.Run("ordering and pagination", func(t *testing.T) {
		limit, offset := 1, 1
		posts, err := db.Posts().FindMany(ctx, &interfaces.Query{
			OrderBy: query.ParseOrdering("title,bogus"),
			Limit:   &limit,
			Offset:  &offset,
		})
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, gopher.ID, posts[0].ID)

		posts, err = db.Posts().FindMany(ctx, &interfaces.Query{Offset: &offset})
		require.NoError(t, err)
		assert.Len(t, posts, 2)
	})

	t.Run("search", func(t *testing.T) {
		posts, err := db.Posts().FindMany(ctx, &interfaces.Query{Search: "gopher BODY"})
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, gopher.ID, posts[0].ID)
	})

	t.Run("unknown filter", func(t *testing.T) {
		_, err := db.Posts().FindMany(ctx, &interfaces.Query{Where: []interfaces.Filter{{Field: "title", Value: "x"}}})
		assert.ErrorIs(t, err, interfaces.ErrInvalidQuery)
	})

	t.Run("update refreshes updated_at", func(t *testing.T) {
		before, err := db.Posts().GetByID(ctx, gopher.ID)
		require.NoError(t, err)
		before.Title = "Gophers!"
		require.NoError(t, db.Posts().Update(ctx, before))
		after, err := db.Posts().GetByID(ctx, gopher.ID)
		require.NoError(t, err)
		assert.Equal(t, "Gophers!", after.Title)
		assert.False(t, after.UpdatedAt.Before(before.CreatedAt))
		assert.True(t, after.CreatedAt.Equal(gopher.CreatedAt))
	})
}

func TestCommentRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	p1 := createPost(t, db, alice, "one")
	p2 := createPost(t, db, alice, "two")

	c1 := createComment(t, db, p1, bob, "first on one")
	createComment(t, db, p1, alice, "second on one")
	createComment(t, db, p2, bob, "on two")

	onP1, err := db.Comments().FindMany(ctx, &interfaces.Query{Where: []interfaces.Filter{{Field: "post", Value: p1.ID}}})
	require.NoError(t, err)
	assert.Len(t, onP1, 2)

	byBob, err := db.Comments().FindMany(ctx, &interfaces.Query{Where: []interfaces.Filter{{Field: "author", Value: bob.ID}}})
	require.NoError(t, err)
	assert.Len(t, byBob, 2)

	err = db.Comments().Create(ctx, &entities.Comment{PostID: 9999, AuthorID: bob.ID, Content: "orphan"})
	assert.ErrorIs(t, err, interfaces.ErrForeignKeyConstraint)

	c1.Content = "edited"
	require.NoError(t, db.Comments().Update(ctx, c1))
	got, err := db.Comments().GetByID(ctx, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Content)
	assert.Equal(t, "bob", got.Author)
	assert.Equal(t, p1.ID, got.PostID)
}

func TestToggleLike(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	post := createPost(t, db, alice, "Hello")

	like, created, err := db.PostLikes().Toggle(ctx, post.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, like)
	assert.Equal(t, "bob", like.Username)
	assert.Equal(t, post.ID, like.TargetID)

	n, err := db.PostLikes().Count(ctx, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	likes, err := db.PostLikes().ListByTarget(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, like.ID, likes[0].ID)
	assert.Equal(t, "bob", likes[0].Username)

	like, created, err = db.PostLikes().Toggle(ctx, post.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Nil(t, like)

	n, err = db.PostLikes().Count(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, _, err = db.PostLikes().Toggle(ctx, 9999, bob.ID)
	assert.ErrorIs(t, err, interfaces.ErrForeignKeyConstraint)

	comment := createComment(t, db, post, alice, "thanks")
	_, created, err = db.CommentLikes().Toggle(ctx, comment.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "comment", db.CommentLikes().Target().Name)
	got, err := db.Comments().GetByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.LikesCount)
}

func TestConcurrentToggle(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	post := createPost(t, db, alice, "Hello")

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := db.PostLikes().Toggle(ctx, post.ID, alice.ID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	n, err := db.PostLikes().Count(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, n, "an even number of toggles leaves no like")
}

func TestPopular(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	var likers []*entities.User
	for i := 0; i < 5; i++ {
		likers = append(likers, createUser(t, db, fmt.Sprintf("user%d", i)))
	}
	counts := []int{5, 1, 3}
	var posts []*entities.Post
	for i, c := range counts {
		post := createPost(t, db, likers[0], fmt.Sprintf("post %d", i))
		posts = append(posts, post)
		for _, u := range likers[:c] {
			_, _, err := db.PostLikes().Toggle(ctx, post.ID, u.ID)
			require.NoError(t, err)
		}
	}
	tie := createPost(t, db, likers[0], "tie with post 2")
	for _, u := range likers[:3] {
		_, _, err := db.PostLikes().Toggle(ctx, tie.ID, u.ID)
		require.NoError(t, err)
	}

	popular, err := db.Posts().Popular(ctx, 10)
	require.NoError(t, err)
	require.Len(t, popular, 4)
	assert.Equal(t, []int64{posts[0].ID, posts[2].ID, tie.ID, posts[1].ID},
		[]int64{popular[0].ID, popular[1].ID, popular[2].ID, popular[3].ID})
	assert.EqualValues(t, []int64{5, 3, 3, 1},
		[]int64{popular[0].LikesCount, popular[1].LikesCount, popular[2].LikesCount, popular[3].LikesCount})

	top, err := db.Posts().Popular(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, posts[0].ID, top[0].ID)
}

func TestCascadeDeletes(t *testing.T) {
	ctx := context.Background()

	t.Run("comment", func(t *testing.T) {
		db := newTestDB(t)
		alice := createUser(t, db, "alice")
		post := createPost(t, db, alice, "p")
		comment := createComment(t, db, post, alice, "c")
		_, _, err := db.CommentLikes().Toggle(ctx, comment.ID, alice.ID)
		require.NoError(t, err)

		require.NoError(t, db.Comments().Delete(ctx, comment.ID))
		n, err := db.CommentLikes().Count(ctx, comment.ID)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.ErrorIs(t, db.Comments().Delete(ctx, comment.ID), interfaces.ErrNotFound)
	})

	t.Run("post", func(t *testing.T) {
		db := newTestDB(t)
		alice := createUser(t, db, "alice")
		bob := createUser(t, db, "bob")
		post := createPost(t, db, alice, "p")
		keep := createPost(t, db, alice, "keep")
		comment := createComment(t, db, post, bob, "c")
		kept := createComment(t, db, keep, bob, "kept")
		for _, toggle := range []func() error{
			func() error { _, _, err := db.PostLikes().Toggle(ctx, post.ID, bob.ID); return err },
			func() error { _, _, err := db.CommentLikes().Toggle(ctx, comment.ID, alice.ID); return err },
			func() error { _, _, err := db.CommentLikes().Toggle(ctx, kept.ID, alice.ID); return err },
		} {
			require.NoError(t, toggle())
		}

		require.NoError(t, db.Posts().Delete(ctx, post.ID))

		_, err := db.Posts().GetByID(ctx, post.ID)
		assert.ErrorIs(t, err, interfaces.ErrNotFound)
		_, err = db.Comments().GetByID(ctx, comment.ID)
		assert.ErrorIs(t, err, interfaces.ErrNotFound)
		n, err := db.PostLikes().Count(ctx, post.ID)
		require.NoError(t, err)
		assert.Zero(t, n)
		n, err = db.CommentLikes().Count(ctx, comment.ID)
		require.NoError(t, err)
		assert.Zero(t, n)

		n, err = db.CommentLikes().Count(ctx, kept.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})

	t.Run("user", func(t *testing.T) {
		db := newTestDB(t)
		alice := createUser(t, db, "alice")
		bob := createUser(t, db, "bob")
		_, err := db.Profiles().GetOrCreate(ctx, alice.ID)
		require.NoError(t, err)

		alicePost := createPost(t, db, alice, "alice's")
		bobPost := createPost(t, db, bob, "bob's")
		bobOnAlice := createComment(t, db, alicePost, bob, "bob on alice")
		aliceOnBob := createComment(t, db, bobPost, alice, "alice on bob")
		bobOnBob := createComment(t, db, bobPost, bob, "bob on bob")

		for _, toggle := range []func() error{
			func() error { _, _, err := db.PostLikes().Toggle(ctx, bobPost.ID, alice.ID); return err },
			func() error { _, _, err := db.PostLikes().Toggle(ctx, alicePost.ID, bob.ID); return err },
			func() error { _, _, err := db.CommentLikes().Toggle(ctx, bobOnAlice.ID, bob.ID); return err },
			func() error { _, _, err := db.CommentLikes().Toggle(ctx, bobOnBob.ID, alice.ID); return err },
			func() error { _, _, err := db.CommentLikes().Toggle(ctx, bobOnBob.ID, bob.ID); return err },
		} {
			require.NoError(t, toggle())
		}
		require.NoError(t, db.Tokens().Save(ctx, &entities.AuthToken{
			Token: "t", UserID: alice.ID, CreatedAt: now(), ExpiresAt: now().Add(time.Hour),
		}))

		require.NoError(t, db.Users().Delete(ctx, alice.ID))

		_, err = db.Posts().GetByID(ctx, alicePost.ID)
		assert.ErrorIs(t, err, interfaces.ErrNotFound)
		_, err = db.Comments().GetByID(ctx, bobOnAlice.ID)
		assert.ErrorIs(t, err, interfaces.ErrNotFound)
		_, err = db.Comments().GetByID(ctx, aliceOnBob.ID)
		assert.ErrorIs(t, err, interfaces.ErrNotFound)
		_, err = db.Profiles().GetByUserID(ctx, alice.ID)
		assert.ErrorIs(t, err, interfaces.ErrNotFound)
		_, err = db.Tokens().Get(ctx, "t")
		assert.ErrorIs(t, err, interfaces.ErrNotFound)

		n, err := db.PostLikes().Count(ctx, bobPost.ID)
		require.NoError(t, err)
		assert.Zero(t, n)

		likes, err := db.CommentLikes().ListByTarget(ctx, bobOnBob.ID)
		require.NoError(t, err)
		require.Len(t, likes, 1)
		assert.Equal(t, "bob", likes[0].Username)

		remaining, err := db.Posts().GetByID(ctx, bobPost.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, remaining.CommentsCount)
	})
}

func TestTokenRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	alice := createUser(t, db, "alice")

	issued := now()
	token := &entities.AuthToken{Token: "abc", UserID: alice.ID, CreatedAt: issued, ExpiresAt: issued.Add(time.Hour)}
	require.NoError(t, db.Tokens().Save(ctx, token))

	got, err := db.Tokens().Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.UserID)
	assert.True(t, got.ExpiresAt.Equal(token.ExpiresAt))
	assert.False(t, got.Expired(issued))

	assert.ErrorIs(t, db.Tokens().Save(ctx, token), interfaces.ErrUniqueConstraint)

	require.NoError(t, db.Tokens().Delete(ctx, "abc"))
	require.NoError(t, db.Tokens().Delete(ctx, "abc"))
	_, err = db.Tokens().Get(ctx, "abc")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	result, err := Seed(ctx, db, func(pw string) (string, error) { return "hashed:" + pw, nil })
	require.NoError(t, err)
	assert.Len(t, result.Users, len(UserFixtures))
	assert.Len(t, result.Posts, len(PostFixtures))

	alice, err := db.Users().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "hashed:alice-password", alice.PasswordHash)
	require.NotNil(t, alice.Profile)
	assert.Equal(t, "Writes about Go.", *alice.Profile.Bio)

	popular, err := db.Posts().Popular(ctx, 10)
	require.NoError(t, err)
	require.NotEmpty(t, popular)
	assert.Equal(t, "Introduction to Go", popular[0].Title)
	assert.EqualValues(t, 2, popular[0].LikesCount)
	assert.EqualValues(t, 2, popular[0].CommentsCount)

	comments, err := db.Comments().Popular(ctx, 10)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "Explicit cascades are underrated.", comments[0].Content)
}
