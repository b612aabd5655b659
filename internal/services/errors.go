package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrStructuralIntegrity = errors.New("structural integrity violation")
	ErrUpstreamDegradation = errors.New("upstream degradation")
	ErrCollaborator        = errors.New("collaborator failure")
	ErrConfiguration       = errors.New("configuration error")
	ErrValidation          = errors.New("validation error")
	ErrNotFound            = errors.New("not found")
)

// Collaborator sub-markers. Both satisfy errors.Is(err, ErrCollaborator).
var (
	ErrDecode      = fmt.Errorf("%w: decode", ErrCollaborator)
	ErrRecognition = fmt.Errorf("%w: recognition", ErrCollaborator)
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrCollaborator
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Category is the diagnostic class of a failure.
type Category string

const (
	CategoryStructural    Category = "structural_integrity"
	CategoryDegradation   Category = "upstream_degradation"
	CategoryCollaborator  Category = "collaborator_failure"
	CategoryConfiguration Category = "configuration"
	CategoryValidation    Category = "validation"
	CategoryNotFound      Category = "not_found"
	CategoryCanceled      Category = "canceled"
	CategoryUnknown       Category = "unknown"
)

// Classify maps an error onto its diagnostic category. Nil errors are
// CategoryUnknown.
func Classify(err error) Category {
	switch {
	case err == nil:
		return CategoryUnknown
	case errors.Is(err, ErrStructuralIntegrity):
		return CategoryStructural
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CategoryCanceled
	case errors.Is(err, ErrCollaborator):
		return CategoryCollaborator
	case errors.Is(err, ErrUpstreamDegradation):
		return CategoryDegradation
	case errors.Is(err, ErrConfiguration):
		return CategoryConfiguration
	case errors.Is(err, ErrValidation):
		return CategoryValidation
	case errors.Is(err, ErrNotFound):
		return CategoryNotFound
	default:
		return CategoryUnknown
	}
}

// IsFatal reports whether err must abort the run.
func IsFatal(err error) bool {
	return errors.Is(err, ErrStructuralIntegrity)
}

// Details returns the human-readable part of err with the leading marker
// text removed.
func Details(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, marker := range []error{
		ErrDecode,
		ErrRecognition,
		ErrStructuralIntegrity,
		ErrUpstreamDegradation,
		ErrCollaborator,
		ErrConfiguration,
		ErrValidation,
		ErrNotFound,
	} {
		prefix := marker.Error() + ": "
		if errors.Is(err, marker) && strings.HasPrefix(msg, prefix) {
			return strings.TrimPrefix(msg, prefix)
		}
	}
	return msg
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "engine failure"
	}
	return strings.Join(parts, ": ")
}
