package db

import "github.com/leafsii/blog-backend/internal/db/interfaces"

// Listing schemas. Keys of FilterFields and OrderFields are the names
// accepted from query strings.
var (
	UserSchema = &interfaces.Schema{
		TableName:    "users",
		Alias:        "u",
		SearchFields: []string{"u.username", "u.email", "u.first_name", "u.last_name"},
		FilterFields: map[string]string{
			"username": "u.username",
		},
		OrderFields: map[string]string{
			"id":         "u.id",
			"username":   "u.username",
			"created_at": "u.created_at",
		},
		DefaultOrder: []interfaces.OrderBy{{Field: "id", Direction: "asc"}},
	}

	ProfileSchema = &interfaces.Schema{
		TableName: "user_profiles",
		Alias:     "pr",
		FilterFields: map[string]string{
			"user": "pr.user_id",
		},
		OrderFields: map[string]string{
			"id": "pr.id",
		},
		DefaultOrder: []interfaces.OrderBy{{Field: "id", Direction: "asc"}},
	}

	PostSchema = &interfaces.Schema{
		TableName:    "posts",
		Alias:        "p",
		SearchFields: []string{"p.title", "p.content"},
		FilterFields: map[string]string{
			"author": "p.author_id",
		},
		OrderFields: map[string]string{
			"created_at": "p.created_at",
			"updated_at": "p.updated_at",
			"title":      "p.title",
		},
		DefaultOrder: []interfaces.OrderBy{{Field: "created_at", Direction: "desc"}},
	}

	CommentSchema = &interfaces.Schema{
		TableName:    "comments",
		Alias:        "c",
		SearchFields: []string{"c.content"},
		FilterFields: map[string]string{
			"post":   "c.post_id",
			"author": "c.author_id",
		},
		OrderFields: map[string]string{
			"created_at": "c.created_at",
			"updated_at": "c.updated_at",
		},
		DefaultOrder: []interfaces.OrderBy{{Field: "created_at", Direction: "desc"}},
	}
)
