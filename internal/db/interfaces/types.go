package interfaces

import (
	"errors"
)

// Filter restricts a listing to rows whose field equals Value.
// Field is the public filter name declared in the Schema, not a column.
type Filter struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// OrderBy represents sorting configuration
type OrderBy struct {
	Field     string `json:"field"`
	Direction string `json:"direction"` // "asc" or "desc"
}

// Query represents a listing with search, filtering, sorting, and pagination
type Query struct {
	Search  string    `json:"search,omitempty"`
	Where   []Filter  `json:"where,omitempty"`
	OrderBy []OrderBy `json:"order_by,omitempty"`
	Limit   *int      `json:"limit,omitempty"`
	Offset  *int      `json:"offset,omitempty"`
}

// Schema describes how a table is listed: which columns are searchable,
// which public names can be filtered or ordered on, and the default order.
// Column names are qualified with Alias.
type Schema struct {
	TableName    string
	Alias        string
	SearchFields []string
	FilterFields map[string]string
	OrderFields  map[string]string
	DefaultOrder []OrderBy
}

// Column qualifies a column name with the schema alias.
func (s *Schema) Column(name string) string {
	if s.Alias == "" {
		return name
	}
	return s.Alias + "." + name
}

// Common database errors
var (
	ErrNotFound             = errors.New("record not found")
	ErrUniqueConstraint     = errors.New("unique constraint violation")
	ErrForeignKeyConstraint = errors.New("foreign key constraint violation")
	ErrInvalidQuery         = errors.New("invalid query")
	ErrDatabaseNotConnected = errors.New("database not connected")
)

// DatabaseError wraps database-specific errors
type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}
