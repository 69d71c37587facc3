// Package sanitize strips internal-only fields and null values from the
// outward-facing report structure. Clean is a pure function and a fixed
// point: sanitizing already-sanitized output is a no-op.
package sanitize

import (
	"encoding/json"

	"filter-agent/internal/models"
)

// blockedKeys never cross the service boundary.
var blockedKeys = map[string]struct{}{
	"sourceType":  {},
	"source_type": {},
}

// Clean walks an arbitrary tree of maps, slices and scalars, removing
// block-listed map keys, nil-valued map entries at every depth, and nil
// slice elements (dropped, not replaced).
func Clean(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, child := range val {
			if _, blocked := blockedKeys[k]; blocked {
				continue
			}
			if child == nil {
				continue
			}
			out[k] = Clean(child)
		}
		return out
	case []interface{}:
		out := make([]interface{}, 0, len(val))
		for _, child := range val {
			if child == nil {
				continue
			}
			out = append(out, Clean(child))
		}
		return out
	case []map[string]interface{}:
		out := make([]interface{}, 0, len(val))
		for _, child := range val {
			if child == nil {
				continue
			}
			out = append(out, Clean(child))
		}
		return out
	default:
		return v
	}
}

// Summary renders an AccountSummary as the sanitized map form sent to the
// caller.
func Summary(s *models.AccountSummary) map[string]interface{} {
	if s == nil {
		return nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil
	}
	var tree map[string]interface{}
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil
	}
	cleaned, _ := Clean(tree).(map[string]interface{})
	return cleaned
}
