package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/leafsii/blog-backend/internal/db/entities"
	"github.com/leafsii/blog-backend/internal/db/interfaces"
)

// Database implements interfaces.Database on top of database/sql via sqlx.
type Database struct {
	cfg     *Config
	dialect dialect
	conn    *sqlx.DB
}

var _ interfaces.Database = (*Database)(nil)

func newDatabase(cfg *Config, d dialect) *Database {
	return &Database{cfg: cfg, dialect: d}
}

// Dialect returns "postgres" or "sqlite".
func (db *Database) Dialect() string {
	return db.dialect.name
}

// Connect establishes a connection to the database
func (db *Database) Connect(ctx context.Context) error {
	conn, err := sqlx.Open(db.dialect.driver, db.cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to open %s database: %w", db.dialect.name, err)
	}

	if db.dialect.name == sqliteDialect.name {
		// A single connection serializes writers and keeps in-memory databases alive.
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		conn.SetConnMaxLifetime(0)
	} else {
		if db.cfg.MaxOpenConns > 0 {
			conn.SetMaxOpenConns(db.cfg.MaxOpenConns)
		}
		if db.cfg.MaxIdleConns > 0 {
			conn.SetMaxIdleConns(db.cfg.MaxIdleConns)
		}
		conn.SetConnMaxIdleTime(5 * time.Minute)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return fmt.Errorf("failed to ping %s database: %w", db.dialect.name, err)
	}

	db.conn = conn
	return nil
}

// Disconnect closes the database connection
func (db *Database) Disconnect(ctx context.Context) error {
	if db.conn == nil {
		return nil
	}
	err := db.conn.Close()
	db.conn = nil
	return err
}

// IsHealthy checks if the database connection is healthy
func (db *Database) IsHealthy(ctx context.Context) bool {
	if db.conn == nil {
		return false
	}
	return db.conn.PingContext(ctx) == nil
}

// Migrate applies all pending migrations for the active dialect
func (db *Database) Migrate(ctx context.Context) error {
	if db.conn == nil {
		return interfaces.ErrDatabaseNotConnected
	}
	provider, err := newMigrationProvider(db.dialect, db.conn.DB)
	if err != nil {
		return err
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// SQL returns the underlying *sql.DB, or nil before Connect.
func (db *Database) SQL() *sql.DB {
	if db.conn == nil {
		return nil
	}
	return db.conn.DB
}

// Transaction executes fn within a database transaction
func (db *Database) Transaction(ctx context.Context, fn func(ctx context.Context, repos interfaces.Repositories) error) error {
	s := db.store()
	if s.exec == nil {
		return interfaces.ErrDatabaseNotConnected
	}
	return s.inTx(ctx, func(tx *store) error {
		return fn(ctx, &repositories{s: tx})
	})
}

func (db *Database) Users() interfaces.UserRepository       { return &userRepo{s: db.store()} }
func (db *Database) Profiles() interfaces.ProfileRepository { return &profileRepo{s: db.store()} }
func (db *Database) Posts() interfaces.PostRepository       { return &postRepo{s: db.store()} }
func (db *Database) Comments() interfaces.CommentRepository { return &commentRepo{s: db.store()} }
func (db *Database) Tokens() interfaces.TokenRepository     { return &tokenRepo{s: db.store()} }
func (db *Database) PostLikes() interfaces.LikeRepository {
	return newLikeRepo(db.store(), entities.PostLikeTarget)
}
func (db *Database) CommentLikes() interfaces.LikeRepository {
	return newLikeRepo(db.store(), entities.CommentLikeTarget)
}

func (db *Database) store() *store {
	s := &store{
		sb:      sq.StatementBuilder.PlaceholderFormat(db.dialect.placeholder),
		dialect: db.dialect,
	}
	if db.conn != nil {
		s.db = db.conn
		s.exec = db.conn
	}
	return s
}

// repositories binds every repository to one store, typically a transaction.
type repositories struct {
	s *store
}

func (r *repositories) Users() interfaces.UserRepository       { return &userRepo{s: r.s} }
func (r *repositories) Profiles() interfaces.ProfileRepository { return &profileRepo{s: r.s} }
func (r *repositories) Posts() interfaces.PostRepository       { return &postRepo{s: r.s} }
func (r *repositories) Comments() interfaces.CommentRepository { return &commentRepo{s: r.s} }
func (r *repositories) Tokens() interfaces.TokenRepository     { return &tokenRepo{s: r.s} }
func (r *repositories) PostLikes() interfaces.LikeRepository {
	return newLikeRepo(r.s, entities.PostLikeTarget)
}
func (r *repositories) CommentLikes() interfaces.LikeRepository {
	return newLikeRepo(r.s, entities.CommentLikeTarget)
}

// store is the executor shared by repositories: the connection pool or an
// open transaction.
type store struct {
	db      *sqlx.DB
	exec    sqlx.ExtContext
	sb      sq.StatementBuilderType
	dialect dialect
}

func (s *store) get(ctx context.Context, op string, dest any, b sq.Sqlizer) error {
	if s.exec == nil {
		return interfaces.ErrDatabaseNotConnected
	}
	query, args, err := b.ToSql()
	if err != nil {
		return &interfaces.DatabaseError{Op: op, Err: err}
	}
	return translateError(op, sqlx.GetContext(ctx, s.exec, dest, query, args...))
}

func (s *store) selectAll(ctx context.Context, op string, dest any, b sq.Sqlizer) error {
	if s.exec == nil {
		return interfaces.ErrDatabaseNotConnected
	}
	query, args, err := b.ToSql()
	if err != nil {
		return &interfaces.DatabaseError{Op: op, Err: err}
	}
	return translateError(op, sqlx.SelectContext(ctx, s.exec, dest, query, args...))
}

// execute runs a statement and returns the number of affected rows.
func (s *store) execute(ctx context.Context, op string, b sq.Sqlizer) (int64, error) {
	if s.exec == nil {
		return 0, interfaces.ErrDatabaseNotConnected
	}
	query, args, err := b.ToSql()
	if err != nil {
		return 0, &interfaces.DatabaseError{Op: op, Err: err}
	}
	res, err := s.exec.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, translateError(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, translateError(op, err)
	}
	return n, nil
}

// inTx runs fn inside a transaction, reusing the current one when the store
// is already transactional.
func (s *store) inTx(ctx context.Context, fn func(tx *store) error) (err error) {
	if s.exec == nil {
		return interfaces.ErrDatabaseNotConnected
	}
	if _, ok := s.exec.(*sqlx.Tx); ok {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return translateError("begin transaction", err)
	}
	txStore := *s
	txStore.exec = tx

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(&txStore); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return translateError("commit transaction", err)
	}
	return nil
}

// now returns the current time at the precision both backends store.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
