// Package filters provides predicate constructors for text and metadata
// filtering of posts and comments. Predicates are plain functions so the
// iteration layer can treat them as opaque.
package filters

import (
	"fmt"
	"regexp"
	"strings"
)

// TextFilter reports whether a piece of text content matches.
type TextFilter func(text string) bool

// MetadataFilter reports whether an item's generic mapping matches.
type MetadataFilter func(metadata map[string]any) bool

// Text builds a keyword predicate. With requireAll set, every keyword must
// appear; otherwise any one is enough. Matching is case-insensitive.
func Text(keywords []string, requireAll bool) TextFilter {
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}

	return func(text string) bool {
		textLower := strings.ToLower(text)
		if requireAll {
			for _, kw := range lowered {
				if !strings.Contains(textLower, kw) {
					return false
				}
			}
			return true
		}
		for _, kw := range lowered {
			if strings.Contains(textLower, kw) {
				return true
			}
		}
		return false
	}
}

// Metadata builds an operator predicate from field conditions. Keys use the
// form "field__op" where op is one of gt, gte, lt, lte, ne, in, contains,
// regex or eq; a bare "field" means eq. An unknown operator is a
// configuration error and fails here rather than silently matching.
func Metadata(conditions map[string]any) (MetadataFilter, error) {
	type condition struct {
		field    string
		operator string
		value    any
		regex    *regexp.Regexp
	}

	parsed := make([]condition, 0, len(conditions))
	for key, value := range conditions {
		field, operator := key, "eq"
		if idx := strings.LastIndex(key, "__"); idx >= 0 {
			field, operator = key[:idx], key[idx+2:]
		}

		c := condition{field: field, operator: operator, value: value}
		switch operator {
		case "gt", "gte", "lt", "lte", "ne", "in", "contains", "eq":
		case "regex":
			re, err := regexp.Compile(fmt.Sprintf("%v", value))
			if err != nil {
				return nil, fmt.Errorf("invalid regex for field %s: %w", field, err)
			}
			c.regex = re
		default:
			return nil, fmt.Errorf("unknown operator: %s", operator)
		}
		parsed = append(parsed, c)
	}

	return func(metadata map[string]any) bool {
		for _, c := range parsed {
			fieldValue, present := metadata[c.field]

			switch c.operator {
			case "gt":
				if !present || !numericCompare(fieldValue, c.value, func(a, b float64) bool { return a > b }) {
					return false
				}
			case "gte":
				if !present || !numericCompare(fieldValue, c.value, func(a, b float64) bool { return a >= b }) {
					return false
				}
			case "lt":
				if !present || !numericCompare(fieldValue, c.value, func(a, b float64) bool { return a < b }) {
					return false
				}
			case "lte":
				if !present || !numericCompare(fieldValue, c.value, func(a, b float64) bool { return a <= b }) {
					return false
				}
			case "ne":
				if equal(fieldValue, c.value) {
					return false
				}
			case "in":
				if !present || !contains(c.value, fieldValue) {
					return false
				}
			case "contains":
				if !present || !contains(fieldValue, c.value) {
					return false
				}
			case "regex":
				if !present || !c.regex.MatchString(fmt.Sprintf("%v", fieldValue)) {
					return false
				}
			case "eq":
				if !equal(fieldValue, c.value) {
					return false
				}
			}
		}
		return true
	}, nil
}

// numericCompare coerces both sides to float64. JSON decoding hands us
// float64 for all numbers, but conditions are often written with ints.
func numericCompare(a, b any, cmp func(a, b float64) bool) bool {
	av, ok := asFloat(a)
	if !ok {
		return false
	}
	bv, ok := asFloat(b)
	if !ok {
		return false
	}
	return cmp(av, bv)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func equal(a, b any) bool {
	if af, ok := asFloat(a); ok {
		if bf, ok := asFloat(b); ok {
			return af == bf
		}
	}
	return a == b
}

// contains handles both "element in collection" and "substring in string".
func contains(collection, element any) bool {
	switch c := collection.(type) {
	case string:
		return strings.Contains(c, fmt.Sprintf("%v", element))
	case []any:
		for _, item := range c {
			if equal(item, element) {
				return true
			}
		}
	case []string:
		for _, item := range c {
			if equal(item, element) {
				return true
			}
		}
	}
	return false
}
