package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrModelLoad signals a missing, unreadable or invalid model artifact.
	ErrModelLoad = errors.New("model load failed")
	// ErrMalformedPayload signals a request body that is not a JSON object.
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrSchemaMismatch signals a record that does not map onto the feature schema.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrLengthRequired signals a request without a Content-Length.
	ErrLengthRequired = errors.New("content length required")
	// ErrPayloadTooLarge signals a body above the configured cap.
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrPredictionFailed signals a failure inside the model during inference.
	ErrPredictionFailed = errors.New("prediction failed")
)

// InvalidField describes a single field whose value has the wrong type or range.
type InvalidField struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// SchemaError wraps ErrSchemaMismatch with the offending field names.
type SchemaError struct {
	Missing []string
	Unknown []string
	Invalid []InvalidField
}

func (e *SchemaError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unknown) > 0 {
		parts = append(parts, "unknown "+strings.Join(e.Unknown, ", "))
	}
	for _, f := range e.Invalid {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Name, f.Reason))
	}
	if len(parts) == 0 {
		return ErrSchemaMismatch.Error()
	}
	return ErrSchemaMismatch.Error() + ": " + strings.Join(parts, "; ")
}

func (e *SchemaError) Unwrap() error { return ErrSchemaMismatch }

// Empty reports whether no problem was recorded.
func (e *SchemaError) Empty() bool {
	return len(e.Missing) == 0 && len(e.Unknown) == 0 && len(e.Invalid) == 0
}
