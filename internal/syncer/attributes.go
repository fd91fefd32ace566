package syncer

import (
	"fmt"
	"math"
	"strings"
)

// Helpers for reading JSON:API attribute maps decoded as map[string]any.

func stringAttr(attrs map[string]any, key string) (string, error) {
	val, ok := attrs[key]
	if !ok {
		return "", fmt.Errorf("missing %s", key)
	}
	str, ok := val.(string)
	if !ok || str == "" {
		return "", fmt.Errorf("invalid %s", key)
	}
	return str, nil
}

func int64Attr(attrs map[string]any, key string) (int64, error) {
	val, ok := attrs[key]
	if !ok {
		return 0, fmt.Errorf("missing %s", key)
	}

	switch n := val.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("invalid %s", key)
		}
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("non-integer %s", key)
		}
		return int64(n), nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	default:
		return 0, fmt.Errorf("invalid %s type %T", key, val)
	}
}

func optionalObject(attrs map[string]any, key string) (map[string]any, error) {
	val, ok := attrs[key]
	if !ok || val == nil {
		return nil, nil
	}
	obj, ok := val.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid %s type %T", key, val)
	}
	return obj, nil
}

func optionalString(attrs map[string]any, key string) (*string, error) {
	val, ok := attrs[key]
	if !ok || val == nil {
		return nil, nil
	}
	str, ok := val.(string)
	if !ok {
		return nil, fmt.Errorf("invalid %s type %T", key, val)
	}
	return &str, nil
}

// relationshipID returns relationships[key].data.id, or "" when the
// relationship is absent or null.
func relationshipID(rels map[string]map[string]interface{}, key string) string {
	rel, ok := rels[key]
	if !ok {
		return ""
	}
	data, _ := rel["data"].(map[string]any)
	if data == nil {
		return ""
	}
	id, _ := data["id"].(string)
	return strings.TrimSpace(id)
}

// relationshipIDs returns the ids of a to-many relationship.
func relationshipIDs(rels map[string]map[string]interface{}, key string) []string {
	rel, ok := rels[key]
	if !ok {
		return nil
	}
	data, _ := rel["data"].([]any)
	ids := make([]string, 0, len(data))
	for _, item := range data {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if id, _ := obj["id"].(string); strings.TrimSpace(id) != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func stringPtr(v string) *string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}
