package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/leafsii/blog-backend/internal/blog"
)

const maxBodyBytes = 1 << 20

var errMalformedBody = errors.New("malformed JSON body")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON names so errors line up with the request body.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeBody unmarshals the JSON object in r into dst and returns the set of
// keys the client sent. An empty body decodes as {}.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) (map[string]bool, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		data = []byte("{}")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return nil, (&blog.ValidationError{}).Add(typeErr.Field, "Incorrect type. Expected "+typeErr.Type.String()+".")
		}
		return nil, fmt.Errorf("%w: %v", errMalformedBody, err)
	}

	present := make(map[string]bool, len(raw))
	for k := range raw {
		present[k] = true
	}
	return present, nil
}

// validateRequest checks every field of a create or full update, or only the
// sent fields of a partial update.
func validateRequest(dst any, present map[string]bool, partial bool) error {
	var err error
	if partial {
		fields := structFields(dst, present)
		if len(fields) == 0 {
			return nil
		}
		err = validate.StructPartial(dst, fields...)
	} else {
		err = validate.Struct(dst)
	}
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &blog.ValidationError{}
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), fieldMessage(fe, present[fe.Field()]))
	}
	return out
}

func fieldMessage(fe validator.FieldError, sent bool) string {
	switch fe.Tag() {
	case "required":
		if sent && fe.Kind() == reflect.String {
			return "This field may not be blank."
		}
		return "This field is required."
	case "max":
		return "Ensure this field has no more than " + fe.Param() + " characters."
	case "email":
		return "Enter a valid email address."
	default:
		return "Invalid value."
	}
}

// structFields maps JSON keys to the Go field names StructPartial expects.
func structFields(dst any, present map[string]bool) []string {
	t := reflect.TypeOf(dst)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	var out []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if present[name] {
			out = append(out, f.Name)
		}
	}
	return out
}

// field turns a decoded value into a partial-update field, set only when the
// client sent the key.
func field[T any](present map[string]bool, key string, v T) blog.Field[T] {
	if present[key] {
		return blog.Some(v)
	}
	return blog.Field[T]{}
}
