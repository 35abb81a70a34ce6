package db

import (
	"context"
	"fmt"

	"github.com/leafsii/blog-backend/internal/db/entities"
	"github.com/leafsii/blog-backend/internal/db/interfaces"
)

// UserFixture is a seed account. Password is hashed by Seed's caller.
type UserFixture struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
	Bio       string
}

// UserFixtures provides sample user data for seeding
var UserFixtures = []UserFixture{
	{Username: "alice", Email: "alice@example.com", FirstName: "Alice", LastName: "Brown", Password: "alice-password", Bio: "Writes about Go."},
	{Username: "bob", Email: "bob@example.com", FirstName: "Bob", LastName: "Johnson", Password: "bob-password"},
	{Username: "carol", Email: "carol@example.com", FirstName: "Carol", LastName: "Smith", Password: "carol-password"},
}

// PostFixture is a seed post. Author is a fixture username.
type PostFixture struct {
	Author   string
	Title    string
	Content  string
	Comments []CommentFixture
	LikedBy  []string
}

type CommentFixture struct {
	Author  string
	Content string
	LikedBy []string
}

// PostFixtures provides sample post data for seeding
var PostFixtures = []PostFixture{
	{
		Author:  "alice",
		Title:   "Introduction to Go",
		Content: "Go is a programming language developed at Google...",
		Comments: []CommentFixture{
			{Author: "bob", Content: "Great intro!", LikedBy: []string{"alice"}},
			{Author: "carol", Content: "Looking forward to part two."},
		},
		LikedBy: []string{"bob", "carol"},
	},
	{
		Author:  "bob",
		Title:   "Database Design Patterns",
		Content: "When designing databases, there are several patterns...",
		Comments: []CommentFixture{
			{Author: "alice", Content: "Explicit cascades are underrated.", LikedBy: []string{"bob", "carol"}},
		},
		LikedBy: []string{"alice"},
	},
	{
		Author:  "alice",
		Title:   "Advanced Go Techniques",
		Content: "This post covers advanced Go programming techniques...",
	},
}

// SeedResult holds what Seed created, keyed by fixture username.
type SeedResult struct {
	Users    map[string]*entities.User
	Posts    []*entities.Post
	Comments []*entities.Comment
}

// Seed inserts the fixtures in one transaction. hash turns a fixture
// password into the stored hash.
func Seed(ctx context.Context, database interfaces.Database, hash func(string) (string, error)) (*SeedResult, error) {
	result := &SeedResult{Users: make(map[string]*entities.User)}

	err := database.Transaction(ctx, func(ctx context.Context, repos interfaces.Repositories) error {
		for _, f := range UserFixtures {
			pw, err := hash(f.Password)
			if err != nil {
				return fmt.Errorf("hash password for %s: %w", f.Username, err)
			}
			user := &entities.User{
				Username:     f.Username,
				Email:        f.Email,
				FirstName:    f.FirstName,
				LastName:     f.LastName,
				PasswordHash: pw,
			}
			if err := repos.Users().Create(ctx, user); err != nil {
				return fmt.Errorf("seed user %s: %w", f.Username, err)
			}
			profile := &entities.UserProfile{UserID: user.ID}
			if f.Bio != "" {
				bio := f.Bio
				profile.Bio = &bio
			}
			if err := repos.Profiles().Create(ctx, profile); err != nil {
				return fmt.Errorf("seed profile for %s: %w", f.Username, err)
			}
			user.Profile = profile
			result.Users[f.Username] = user
		}

		userID := func(name string) (int64, error) {
			u, ok := result.Users[name]
			if !ok {
				return 0, fmt.Errorf("unknown fixture user %q", name)
			}
			return u.ID, nil
		}
		like := func(likes interfaces.LikeRepository, targetID int64, names []string) error {
			for _, name := range names {
				id, err := userID(name)
				if err != nil {
					return err
				}
				if _, _, err := likes.Toggle(ctx, targetID, id); err != nil {
					return fmt.Errorf("seed %s like by %s: %w", likes.Target().Name, name, err)
				}
			}
			return nil
		}

		for _, pf := range PostFixtures {
			authorID, err := userID(pf.Author)
			if err != nil {
				return err
			}
			post := &entities.Post{Title: pf.Title, Content: pf.Content, AuthorID: authorID}
			if err := repos.Posts().Create(ctx, post); err != nil {
				return fmt.Errorf("seed post %q: %w", pf.Title, err)
			}
			result.Posts = append(result.Posts, post)

			for _, cf := range pf.Comments {
				commenterID, err := userID(cf.Author)
				if err != nil {
					return err
				}
				comment := &entities.Comment{PostID: post.ID, AuthorID: commenterID, Content: cf.Content}
				if err := repos.Comments().Create(ctx, comment); err != nil {
					return fmt.Errorf("seed comment on %q: %w", pf.Title, err)
				}
				result.Comments = append(result.Comments, comment)
				if err := like(repos.CommentLikes(), comment.ID, cf.LikedBy); err != nil {
					return err
				}
			}
			if err := like(repos.PostLikes(), post.ID, pf.LikedBy); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
