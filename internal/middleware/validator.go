package middleware

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/bryanwahyu/glowguide/internal/domain/analysis"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("tempid", func(fl validator.FieldLevel) bool {
		return ValidateTempID(fl.Field().String()) == nil
	})
	return v
}

// ValidateStruct runs the validate tags on v and reports the first failure
// by its json name.
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	return &FieldError{Field: verrs[0].Field(), Tag: verrs[0].Tag()}
}

// FieldError names the offending field and the rule it broke.
type FieldError struct {
	Field string
	Tag   string
}

func (e *FieldError) Error() string {
	if e.Tag == "required" {
		return fmt.Sprintf("%s is required", e.Field)
	}
	return fmt.Sprintf("%s is invalid", e.Field)
}

// ValidateTempID accepts "temp_<uuid>".
func ValidateTempID(id string) error {
	rest, ok := strings.CutPrefix(id, analysis.TempIDPrefix)
	if !ok {
		return fmt.Errorf("temp analysis id must start with %q", analysis.TempIDPrefix)
	}
	if _, err := uuid.Parse(rest); err != nil {
		return fmt.Errorf("invalid temp analysis id: %w", err)
	}
	return nil
}

func ValidateAnalysisID(id string) error {
	if id == "" {
		return errors.New("analysis id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid analysis id: %w", err)
	}
	return nil
}

// ParsePage reads a 1-based page number, defaulting to 1.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

// ValidateLimit clamps a page size.
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
