package blog

import (
	"regexp"
	"strconv"
	"unicode/utf8"
)

// Field is one optional value of a partial update. Set reports whether the
// request carried the field at all.
type Field[T any] struct {
	Value T
	Set   bool
}

// Some returns a Field that is set to v.
func Some[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

func (f Field[T]) apply(dst *T) {
	if f.Set {
		*dst = f.Value
	}
}

const (
	maxUsernameLen = 150
	maxNameLen     = 150
	maxTitleLen    = 255
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

func checkRequired(v *ValidationError, field, value string) bool {
	if value == "" {
		v.Add(field, "This field may not be blank.")
		return false
	}
	return true
}

func checkMaxLen(v *ValidationError, field, value string, limit int) {
	if utf8.RuneCountInString(value) > limit {
		v.Add(field, "Ensure this field has no more than "+strconv.Itoa(limit)+" characters.")
	}
}
