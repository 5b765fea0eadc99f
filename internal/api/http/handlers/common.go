package handlers

import (
	"bytes"
	"encoding/json"

	"github.com/fieldops/deployment-service/internal/service"
	apperrors "github.com/fieldops/deployment-service/pkg/util"
)

// optionalString converts a raw JSON value into an optional: nil raw means
// the key was absent, JSON null means an explicit clear.
func optionalString(raw json.RawMessage, field string) (service.OptionalString, error) {
	if raw == nil {
		return service.OptionalString{}, nil
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return service.OptionalString{Present: true}, nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return service.OptionalString{}, apperrors.NewValidationError("invalid value", map[string]any{"field": field})
	}
	return service.OptionalString{Present: true, Value: &value}, nil
}

// truthy evaluates a raw JSON body the way the checklist flags expect:
// false, null, 0, "" and empty containers clear a flag, everything else
// sets it. An empty body counts as a clear; a non-empty body that is not
// valid JSON is rejected rather than treated as falsy.
func truthy(raw []byte) (bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false, nil
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return false, apperrors.NewValidationError("request body is not valid JSON", nil)
	}
	switch v := value.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case float64:
		return v != 0, nil
	case string:
		return v != "", nil
	case []any:
		return len(v) > 0, nil
	case map[string]any:
		return len(v) > 0, nil
	default:
		return true, nil
	}
}
