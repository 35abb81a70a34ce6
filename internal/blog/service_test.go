package blog

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/leafsii/blog-backend/internal/access"
	"github.com/leafsii/blog-backend/internal/auth"
	"github.com/leafsii/blog-backend/internal/db"
	"github.com/leafsii/blog-backend/internal/db/entities"
	"github.com/leafsii/blog-backend/internal/db/interfaces"
	"github.com/leafsii/blog-backend/internal/media"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) RecordLikeToggle(ctx context.Context, target string, created bool) {
	m.Called(ctx, target, created)
}

func (m *mockRecorder) RecordRegistration(ctx context.Context) {
	m.Called(ctx)
}

type fixture struct {
	svc     *Service
	db      *db.Database
	fs      afero.Fs
	metrics *mockRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	database := db.NewInMemoryDatabase()
	require.NoError(t, db.ConnectAndMigrate(ctx, database))
	t.Cleanup(func() { _ = database.Disconnect(ctx) })

	logger := zap.NewNop().Sugar()
	hasher, err := auth.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)
	tokens := auth.NewManager(auth.NewSQLTokenStore(database.Tokens()), database.Users(), time.Hour, logger)
	fs := afero.NewMemMapFs()
	store := media.NewStore(fs, "http://localhost:8080", 1024)

	rec := &mockRecorder{}
	rec.On("RecordRegistration", mock.Anything).Maybe()
	rec.On("RecordLikeToggle", mock.Anything, mock.Anything, mock.Anything).Maybe()

	return &fixture{
		svc:     NewService(database, hasher, tokens, store, rec, logger),
		db:      database,
		fs:      fs,
		metrics: rec,
	}
}

func (f *fixture) register(t *testing.T, username string) *entities.User {
	t.Helper()
	user, err := f.svc.Register(context.Background(), UserInput{
		Username: username,
		Email:    username + "@example.com",
		Password: username + "-pw",
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) post(t *testing.T, author *entities.User, title string) *entities.Post {
	t.Helper()
	post, err := f.svc.CreatePost(context.Background(), author, PostInput{Title: title, Content: title + " content"})
	require.NoError(t, err)
	return post
}

func validationFields(t *testing.T, err error) map[string][]string {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	return verr.Fields
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	alice := f.register(t, "alice")
	require.NotNil(t, alice.Profile)
	assert.NotEmpty(t, alice.PasswordHash)
	assert.NotEqual(t, "alice-pw", alice.PasswordHash)
	f.metrics.AssertCalled(t, "RecordRegistration", mock.Anything)

	profile, err := f.db.Profiles().GetByUserID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.Profile.ID, profile.ID)

	_, err = f.svc.Register(ctx, UserInput{Username: "alice"})
	assert.Contains(t, validationFields(t, err), "username")

	_, err = f.svc.Register(ctx, UserInput{Username: "bad name!"})
	assert.Contains(t, validationFields(t, err), "username")

	_, err = f.svc.Register(ctx, UserInput{Username: ""})
	assert.Equal(t, []string{"This field may not be blank."}, validationFields(t, err)["username"])

	users, err := f.svc.ListUsers(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestLoginLogout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.register(t, "alice")

	_, _, err := f.svc.Login(ctx, "alice", "wrong")
	assert.Contains(t, validationFields(t, err), "non_field_errors")
	_, _, err = f.svc.Login(ctx, "nobody", "x")
	assert.Contains(t, validationFields(t, err), "non_field_errors")

	token, user, err := f.svc.Login(ctx, "alice", "alice-pw")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, user.ID)

	principal, err := f.svc.Authenticate(ctx, token.Token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, principal.ID)

	assert.ErrorIs(t, f.svc.Logout(ctx, nil, token.Token), access.ErrUnauthenticated)
	require.NoError(t, f.svc.Logout(ctx, principal, token.Token))
	_, err = f.svc.Authenticate(ctx, token.Token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	passwordless, err := f.svc.Register(ctx, UserInput{Username: "nopw"})
	require.NoError(t, err)
	_, _, err = f.svc.Login(ctx, passwordless.Username, "")
	assert.Error(t, err)
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	_, err := f.svc.UpdateUser(ctx, bob, alice.ID, UserPatch{FirstName: Some("Mallory")})
	assert.ErrorIs(t, err, access.ErrForbidden)

	_, err = f.svc.UpdateUser(ctx, nil, alice.ID, UserPatch{})
	assert.ErrorIs(t, err, access.ErrUnauthenticated)

	updated, err := f.svc.UpdateUser(ctx, alice, alice.ID, UserPatch{FirstName: Some("Alice"), Password: Some("new-pw")})
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.FirstName)
	assert.Equal(t, "alice@example.com", updated.Email)

	_, _, err = f.svc.Login(ctx, "alice", "new-pw")
	assert.NoError(t, err)

	_, err = f.svc.UpdateUser(ctx, alice, alice.ID, UserPatch{Username: Some("bob")})
	assert.Contains(t, validationFields(t, err), "username")

	_, err = f.svc.UpdateUser(ctx, alice, 9999, UserPatch{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostOwnership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	post := f.post(t, alice, "Hello")
	assert.Equal(t, alice.ID, post.AuthorID)
	assert.Equal(t, "alice", post.Author)

	_, err := f.svc.CreatePost(ctx, nil, PostInput{Title: "anon", Content: "x"})
	assert.ErrorIs(t, err, access.ErrUnauthenticated)

	_, err = f.svc.UpdatePost(ctx, bob, post.ID, PostPatch{Title: Some("hijacked")})
	assert.ErrorIs(t, err, access.ErrForbidden)
	assert.ErrorIs(t, f.svc.DeletePost(ctx, bob, post.ID), access.ErrForbidden)

	updated, err := f.svc.UpdatePost(ctx, alice, post.ID, PostPatch{Title: Some("Hello, world")})
	require.NoError(t, err)
	assert.Equal(t, "Hello, world", updated.Title)
	assert.Equal(t, "Hello content", updated.Content)
	assert.False(t, updated.UpdatedAt.Before(post.UpdatedAt))

	_, err = f.svc.UpdatePost(ctx, alice, post.ID, PostPatch{Title: Some(""), Content: Some("")})
	fields := validationFields(t, err)
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "content")

	long := make([]byte, 256)
	for i := range long {
		long[i] = 'a'
	}
	_, err = f.svc.CreatePost(ctx, alice, PostInput{Title: string(long), Content: "x"})
	assert.Contains(t, validationFields(t, err), "title")

	require.NoError(t, f.svc.DeletePost(ctx, alice, post.ID))
	_, err = f.svc.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.svc.DeletePost(ctx, alice, post.ID), ErrNotFound)
}

func TestLikeScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	post := f.post(t, alice, "Hello")

	like, created, err := f.svc.TogglePostLike(ctx, bob, post.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "bob", like.Username)
	f.metrics.AssertCalled(t, "RecordLikeToggle", mock.Anything, "post", true)

	detail, err := f.svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, detail.LikesCount)

	likes, err := f.svc.PostLikes(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, "bob", likes[0].Username)

	_, created, err = f.svc.TogglePostLike(ctx, bob, post.ID)
	require.NoError(t, err)
	assert.False(t, created)
	f.metrics.AssertCalled(t, "RecordLikeToggle", mock.Anything, "post", false)

	detail, err = f.svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, detail.LikesCount)

	_, _, err = f.svc.TogglePostLike(ctx, nil, post.ID)
	assert.ErrorIs(t, err, access.ErrUnauthenticated)
	_, _, err = f.svc.TogglePostLike(ctx, bob, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.PostLikes(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestComments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	post := f.post(t, alice, "Hello")

	comment, err := f.svc.CreateComment(ctx, bob, CommentInput{PostID: post.ID, Content: "Nice"})
	require.NoError(t, err)
	assert.Equal(t, "bob", comment.Author)

	_, err = f.svc.CreateComment(ctx, bob, CommentInput{PostID: 9999, Content: "lost"})
	assert.Equal(t, []string{`Invalid pk "9999" - object does not exist.`}, validationFields(t, err)["post"])

	_, err = f.svc.UpdateComment(ctx, alice, comment.ID, CommentPatch{Content: Some("edited by alice")})
	assert.ErrorIs(t, err, access.ErrForbidden)

	_, created, err := f.svc.ToggleCommentLike(ctx, alice, comment.ID)
	require.NoError(t, err)
	assert.True(t, created)

	popular, err := f.svc.PopularComments(ctx)
	require.NoError(t, err)
	require.Len(t, popular, 1)
	assert.EqualValues(t, 1, popular[0].LikesCount)

	mine, err := f.svc.MyComments(ctx, bob, nil)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	mine, err = f.svc.MyComments(ctx, alice, &interfaces.Query{Where: []interfaces.Filter{{Field: "author", Value: bob.ID}}})
	require.NoError(t, err)
	assert.Empty(t, mine, "the author filter is always the principal")

	detail, err := f.svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, detail.Comments, 1)

	require.NoError(t, f.svc.DeleteComment(ctx, bob, comment.ID))
	likes, err := f.db.CommentLikes().Count(ctx, comment.ID)
	require.NoError(t, err)
	assert.Zero(t, likes)
}

func TestUserDetailAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	post := f.post(t, alice, "Hello")
	_, err := f.svc.CreateComment(ctx, alice, CommentInput{PostID: post.ID, Content: "self reply"})
	require.NoError(t, err)
	_, _, err = f.svc.TogglePostLike(ctx, bob, post.ID)
	require.NoError(t, err)

	me, err := f.svc.Me(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, me.Posts, 1)
	assert.Len(t, me.Comments, 1)
	_, err = f.svc.Me(ctx, nil)
	assert.ErrorIs(t, err, access.ErrUnauthenticated)

	assert.ErrorIs(t, f.svc.DeleteUser(ctx, bob, alice.ID), access.ErrForbidden)
	require.NoError(t, f.svc.DeleteUser(ctx, alice, alice.ID))

	_, err = f.svc.GetUser(ctx, alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProfiles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	_, err := f.svc.CreateProfile(ctx, alice, nil)
	assert.Contains(t, validationFields(t, err), "user")

	mine, err := f.svc.MyProfile(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, alice.Profile.ID, mine.ID)
	assert.Equal(t, "alice", mine.User.Username)

	require.NoError(t, f.db.Profiles().Delete(ctx, mine.ID))
	recreated, err := f.svc.MyProfile(ctx, alice)
	require.NoError(t, err)
	assert.NotEqual(t, mine.ID, recreated.ID)

	bio := "gopher"
	_, err = f.svc.UpdateProfile(ctx, bob, recreated.ID, ProfilePatch{Bio: Some(&bio)})
	assert.ErrorIs(t, err, access.ErrForbidden)
	updated, err := f.svc.UpdateProfile(ctx, alice, recreated.ID, ProfilePatch{Bio: Some(&bio)})
	require.NoError(t, err)
	assert.Equal(t, "gopher", *updated.Bio)

	unchanged, err := f.svc.UpdateProfile(ctx, alice, recreated.ID, ProfilePatch{})
	require.NoError(t, err)
	assert.Equal(t, "gopher", *unchanged.Bio)

	cleared, err := f.svc.UpdateProfile(ctx, alice, recreated.ID, ProfilePatch{Bio: Some[*string](nil)})
	require.NoError(t, err)
	assert.Nil(t, cleared.Bio)
}

func TestUploadAvatar(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	_, err := f.svc.UploadAvatar(ctx, bob, alice.Profile.ID, bytes.NewReader(png))
	assert.ErrorIs(t, err, access.ErrForbidden)

	detail, err := f.svc.UploadAvatar(ctx, alice, alice.Profile.ID, bytes.NewReader(png))
	require.NoError(t, err)
	require.NotNil(t, detail.Avatar)
	first := *detail.Avatar
	exists, err := afero.Exists(f.fs, "/"+first)
	require.NoError(t, err)
	assert.True(t, exists)

	detail, err = f.svc.UploadAvatar(ctx, alice, alice.Profile.ID, bytes.NewReader(png))
	require.NoError(t, err)
	assert.NotEqual(t, first, *detail.Avatar)
	exists, err = afero.Exists(f.fs, "/"+first)
	require.NoError(t, err)
	assert.False(t, exists, "replaced avatar is removed")

	_, err = f.svc.UploadAvatar(ctx, alice, alice.Profile.ID, bytes.NewReader([]byte("plain text")))
	assert.Contains(t, validationFields(t, err), "avatar")
}

func TestPopularAndMyPosts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	carol := f.register(t, "carol")

	quiet := f.post(t, alice, "quiet")
	loud := f.post(t, bob, "loud")
	for _, u := range []*entities.User{alice, bob, carol} {
		_, _, err := f.svc.TogglePostLike(ctx, u, loud.ID)
		require.NoError(t, err)
	}

	popular, err := f.svc.PopularPosts(ctx)
	require.NoError(t, err)
	require.Len(t, popular, 2)
	assert.Equal(t, loud.ID, popular[0].ID)
	assert.Equal(t, quiet.ID, popular[1].ID)

	mine, err := f.svc.MyPosts(ctx, alice, nil)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, quiet.ID, mine[0].ID)

	_, err = f.svc.MyPosts(ctx, nil, nil)
	assert.ErrorIs(t, err, access.ErrUnauthenticated)
}
