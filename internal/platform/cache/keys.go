package cache

import (
	"sort"
	"strings"
)

const (
	PrefixEvaluation = "evaluation"
	PrefixEmployee   = "employee"
	PrefixDashboard  = "dashboard"
)

// Key builds the cache key for a single entity.
func Key(prefix, id string) string {
	return prefix + ":" + id
}

// ListKey builds the cache key for a filtered list query. The filter set is
// serialized in sorted order so the same filters always map to the same key
// and distinct queries never collide.
func ListKey(prefix string, filters map[string]string) string {
	return ListPrefix(prefix) + filterSignature(filters)
}

// ListPrefix is the sweep prefix covering every list key for an entity type.
func ListPrefix(prefix string) string {
	return prefix + ":list:"
}

func filterSignature(filters map[string]string) string {
	parts := make([]string, 0, len(filters))
	for key, value := range filters {
		if value == "" {
			continue
		}
		parts = append(parts, key+"="+value)
	}
	if len(parts) == 0 {
		return "all"
	}
	sort.Strings(parts)
	return strings.Join(parts, "&")
}
