package feature

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/kailas-cloud/mqttguard/internal/domain"
)

// Record is a decoded request body: feature name to scalar value.
// Numbers are kept as json.Number until Encode.
type Record map[string]any

// Vector is the model input in canonical order. Encode always returns Count values.
type Vector []float64

// Decode parses body as exactly one JSON object.
func Decode(body []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty body", domain.ErrMalformedPayload)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedPayload, err)
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected JSON object, got %s", domain.ErrMalformedPayload, jsonKind(raw))
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after JSON object", domain.ErrMalformedPayload)
	}

	return Record(obj), nil
}

// Encode maps rec onto the canonical order. Every canonical field must be
// present with a value of its kind, and no other key may appear. All
// problems are reported together in a *domain.SchemaError.
func Encode(rec Record) (Vector, error) {
	vec := make(Vector, Count)
	var serr domain.SchemaError

	for i, f := range canonical {
		raw, ok := rec[f.name]
		if !ok {
			serr.Missing = append(serr.Missing, f.name)
			continue
		}
		v, reason := coerce(f.kind, raw)
		if reason != "" {
			serr.Invalid = append(serr.Invalid, domain.InvalidField{Name: f.name, Reason: reason})
			continue
		}
		vec[i] = v
	}

	for name := range rec {
		if _, ok := index[name]; !ok {
			serr.Unknown = append(serr.Unknown, name)
		}
	}
	slices.Sort(serr.Unknown)

	if !serr.Empty() {
		return nil, &serr
	}
	return vec, nil
}

// coerce converts a single value. A non-empty reason means the value is rejected.
func coerce(kind Kind, raw any) (float64, string) {
	var f float64
	switch v := raw.(type) {
	case bool:
		if kind != Boolean {
			return 0, "expected number, got boolean"
		}
		if v {
			return 1, ""
		}
		return 0, ""
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, "number out of range"
		}
		f = parsed
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	default:
		return 0, fmt.Sprintf("expected %s, got %s", expectation(kind), jsonKind(raw))
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, "number out of range"
	}
	if kind == Boolean && f != 0 && f != 1 {
		return 0, "expected boolean or 0/1"
	}
	return f, ""
}

func expectation(kind Kind) string {
	if kind == Boolean {
		return "boolean"
	}
	return "number"
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number, float64, int, int64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
