package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/hugh/go-gatekeeper/pkg/apperr"
)

// maxBodyBytes caps request bodies; every payload here is a handful of short fields.
const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Sanitizer is implemented by request bodies that clean their free-text
// fields. DecodeJSON runs it before validation, so a name made only of
// whitespace fails "required".
type Sanitizer interface {
	Sanitize()
}

// DecodeJSON reads the request body into dest, sanitizes it and validates its
// struct tags. Failures are returned as bad request errors with per-field
// details.
func DecodeJSON(r *http.Request, dest any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := decoder.Decode(dest); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	if s, ok := dest.(Sanitizer); ok {
		s.Sanitize()
	}
	return Struct(dest)
}

// Struct validates v, returning nil or a bad request error whose details map
// json field names to messages.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.BadRequest("validation failed")
	}

	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fieldPath(fe)] = message(fe)
	}
	return apperr.BadRequest("validation failed").WithDetails(details)
}

// fieldPath drops the top-level struct name from the namespace, so nested
// fields read "module_ids[0]" rather than "GrantModulesRequest.module_ids[0]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must have exactly %s characters", fe.Param())
	case "uuid", "uuid4":
		return "must be a valid UUID"
	}
	return "is invalid"
}

// SanitizeString removes null bytes and control characters other than
// newlines and tabs.
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")

	var result strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || !unicode.IsControl(r) {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}
