// Package blog holds the business operations behind the HTTP API: ownership
// checks, author assignment, transactional registration and like toggles.
package blog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/leafsii/blog-backend/internal/auth"
	"github.com/leafsii/blog-backend/internal/db/interfaces"
	"github.com/leafsii/blog-backend/internal/media"
	"go.uber.org/zap"
)

// PopularLimit is the size of the popular posts and comments lists.
const PopularLimit = 10

var ErrNotFound = errors.New("not found")

// ValidationError maps field names to messages. Non-field problems use the
// "non_field_errors" key.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Add records msg for field and returns e for chaining.
func (e *ValidationError) Add(field, msg string) *ValidationError {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
	return e
}

// OrNil returns nil when no field failed.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func fieldError(field, msg string) error {
	return (&ValidationError{}).Add(field, msg)
}

// Recorder receives domain events for metrics.
type Recorder interface {
	RecordLikeToggle(ctx context.Context, target string, created bool)
	RecordRegistration(ctx context.Context)
}

type nopRecorder struct{}

func (nopRecorder) RecordLikeToggle(context.Context, string, bool) {}
func (nopRecorder) RecordRegistration(context.Context)             {}

type Service struct {
	db      interfaces.Database
	hasher  *auth.Hasher
	tokens  *auth.Manager
	media   *media.Store
	metrics Recorder
	logger  *zap.SugaredLogger
}

// NewService wires the service. metrics may be nil.
func NewService(db interfaces.Database, hasher *auth.Hasher, tokens *auth.Manager, mediaStore *media.Store, metrics Recorder, logger *zap.SugaredLogger) *Service {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &Service{
		db:      db,
		hasher:  hasher,
		tokens:  tokens,
		media:   mediaStore,
		metrics: metrics,
		logger:  logger,
	}
}

// Media exposes the avatar store for URL rendering.
func (s *Service) Media() *media.Store {
	return s.media
}

// notFound converts the store's not-found error into ErrNotFound.
func notFound(err error, kind string, id int64) error {
	if errors.Is(err, interfaces.ErrNotFound) {
		return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}
	return err
}
