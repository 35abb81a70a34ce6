package interfaces

import "context"

// Database represents the main database interface
type Database interface {
	// Connect establishes a connection to the database
	Connect(ctx context.Context) error

	// Disconnect closes the database connection
	Disconnect(ctx context.Context) error

	// IsHealthy checks if the database connection is healthy
	IsHealthy(ctx context.Context) bool

	// Migrate applies all pending schema migrations
	Migrate(ctx context.Context) error

	// Transaction executes fn with repositories bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	Transaction(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error

	// Repositories outside a transaction. Multi-statement operations such as
	// cascading deletes still run in their own transaction.
	Repositories
}
