// Package access implements object-level authorization: anyone may read,
// only the owner may write.
package access

import (
	"errors"
	"net/http"

	"github.com/leafsii/blog-backend/internal/db/entities"
)

type Action int

const (
	Read Action = iota
	Write
)

func (a Action) String() string {
	if a == Read {
		return "read"
	}
	return "write"
}

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("you do not have permission to perform this action")
)

// ActionFor maps an HTTP method to the action it performs.
func ActionFor(method string) Action {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return Read
	default:
		return Write
	}
}

// Check authorizes principal to perform action on obj. principal may be nil
// for anonymous requests.
func Check(action Action, principal *entities.User, obj entities.Owned) error {
	if action == Read {
		return nil
	}
	if principal == nil {
		return ErrUnauthenticated
	}
	if obj == nil || obj.OwnerID() != principal.ID {
		return ErrForbidden
	}
	return nil
}

// RequirePrincipal fails with ErrUnauthenticated for anonymous callers.
func RequirePrincipal(principal *entities.User) error {
	if principal == nil {
		return ErrUnauthenticated
	}
	return nil
}
