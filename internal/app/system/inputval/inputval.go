// Package inputval decodes and validates JSON request bodies.
//
// Bodies are decoded strictly: unknown fields, trailing data and oversized
// payloads are rejected before struct tags are checked with
// go-playground/validator.
package inputval

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/dalemusser/quickmatch/internal/domain/models"
	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes caps a JSON request body.
const MaxBodyBytes = 64 << 10

// Errors maps a JSON field name to a human-readable problem.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return strings.Join(parts, "; ")
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// Report JSON names, not Go field names.
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("category", enumRule(func(s string) bool { return models.Category(s).Valid() }))
		_ = v.RegisterValidation("gender_limit", enumRule(func(s string) bool { return models.GenderLimit(s).Valid() }))
		_ = v.RegisterValidation("status", enumRule(func(s string) bool { return models.Status(s).Valid() }))
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		validate = v
	})
	return validate
}

// enumRule accepts an empty value (meaning "use the default") or a member of the set.
func enumRule(valid func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || valid(s)
	}
}

// Validate checks v's `validate` struct tags. The error, if any, is Errors.
func Validate(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "category", "gender_limit", "status":
		return fmt.Sprintf("%q is not a valid %s", fe.Value(), fe.Tag())
	default:
		return "is invalid"
	}
}

// DecodeJSON reads r's body into dst strictly and validates it. An empty
// body decodes as "{}" so routes whose fields are all optional accept it.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return decodeError(err)
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return Validate(dst)
}

func decodeError(err error) error {
	var syntax *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var tooBig *http.MaxBytesError
	switch {
	case errors.As(err, &syntax):
		return fmt.Errorf("malformed JSON at offset %d", syntax.Offset)
	case errors.As(err, &typeErr):
		return Errors{typeErr.Field: "must be a " + typeErr.Type.String()}
	case errors.As(err, &tooBig):
		return fmt.Errorf("request body exceeds %d bytes", tooBig.Limit)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return Errors{field: "is not a recognized field"}
	default:
		return fmt.Errorf("invalid request body: %w", err)
	}
}
