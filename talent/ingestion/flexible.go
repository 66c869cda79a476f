package ingestion

import (
	"fmt"
	"sort"
	"strings"
)

// FlexibleResumeDocument is the terminal pipeline artifact: a JSON object
// whose field names mirror the source resume's actual organization instead
// of a fixed template. Values are what encoding/json produces: string,
// float64, bool, []any or map[string]any.
type FlexibleResumeDocument map[string]any

// StringField returns the first candidate key holding a non-empty string.
// Keys are matched after snake_case normalization, so "Full Name",
// "full_name" and "fullName" all resolve the same way. Never assumes any
// key exists.
func (d FlexibleResumeDocument) StringField(candidates ...string) (string, bool) {
	if len(d) == 0 {
		return "", false
	}

	normalized := make(map[string]any, len(d))
	for k, v := range d {
		normalized[normalizeKey(k)] = v
	}

	for _, candidate := range candidates {
		v, ok := normalized[normalizeKey(candidate)]
		if !ok {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return s, true
		}
		// Nested object: common for contact blocks, search one level down
		if m, ok := v.(map[string]any); ok {
			for _, nested := range m {
				if s, ok := nested.(string); ok && strings.TrimSpace(s) != "" {
					return s, true
				}
			}
		}
	}
	return "", false
}

// Name is a best-effort view over typical name fields
func (d FlexibleResumeDocument) Name() (string, bool) {
	if s, ok := d.StringField("name", "full_name", "candidate_name"); ok {
		return s, true
	}
	// Contact blocks often nest the name
	for _, key := range []string{"contact", "contact_information", "personal_info", "personal_information"} {
		if nested, ok := d[normalizeMatch(d, key)].(map[string]any); ok {
			if s, ok := FlexibleResumeDocument(nested).StringField("name", "full_name"); ok {
				return s, true
			}
		}
	}
	return "", false
}

// Email is a best-effort view over typical email fields
func (d FlexibleResumeDocument) Email() (string, bool) {
	if s, ok := d.StringField("email", "email_address", "contact_email"); ok {
		return s, true
	}
	for _, key := range []string{"contact", "contact_information", "personal_info", "personal_information"} {
		if nested, ok := d[normalizeMatch(d, key)].(map[string]any); ok {
			if s, ok := FlexibleResumeDocument(nested).StringField("email", "email_address"); ok {
				return s, true
			}
		}
	}
	return "", false
}

// Phone is a best-effort view over typical phone fields
func (d FlexibleResumeDocument) Phone() (string, bool) {
	if s, ok := d.StringField("phone", "phone_number", "mobile", "contact_number"); ok {
		return s, true
	}
	for _, key := range []string{"contact", "contact_information", "personal_info", "personal_information"} {
		if nested, ok := d[normalizeMatch(d, key)].(map[string]any); ok {
			if s, ok := FlexibleResumeDocument(nested).StringField("phone", "phone_number", "mobile"); ok {
				return s, true
			}
		}
	}
	return "", false
}

// HasField reports whether a key (after normalization) exists at the top level
func (d FlexibleResumeDocument) HasField(key string) bool {
	return normalizeMatch(d, key) != ""
}

// FlattenText renders every leaf value as text, keys sorted for
// determinism. Used to build embedding input from a saved document.
func (d FlexibleResumeDocument) FlattenText() string {
	var sb strings.Builder
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		flattenValue(&sb, k, d[k])
	}
	return strings.TrimSpace(sb.String())
}

func flattenValue(sb *strings.Builder, label string, v any) {
	switch val := v.(type) {
	case string:
		fmt.Fprintf(sb, "%s: %s\n", label, val)
	case []any:
		for _, item := range val {
			flattenValue(sb, label, item)
		}
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flattenValue(sb, label+"."+k, val[k])
		}
	case nil:
		// skip
	default:
		fmt.Fprintf(sb, "%s: %v\n", label, val)
	}
}

// normalizeKey lowercases and converts separators so key lookups are
// insensitive to naming style
func normalizeKey(key string) string {
	var sb strings.Builder
	prevLower := false
	for _, r := range key {
		switch {
		case r >= 'A' && r <= 'Z':
			if prevLower {
				sb.WriteByte('_')
			}
			sb.WriteRune(r - 'A' + 'a')
			prevLower = false
		case r == ' ' || r == '-' || r == '_':
			sb.WriteByte('_')
			prevLower = false
		default:
			sb.WriteRune(r)
			prevLower = r >= 'a' && r <= 'z' || r >= '0' && r <= '9'
		}
	}
	return strings.Trim(sb.String(), "_")
}

// normalizeMatch returns the original document key whose normalized form
// matches key, or "" when absent
func normalizeMatch(d FlexibleResumeDocument, key string) string {
	want := normalizeKey(key)
	for k := range d {
		if normalizeKey(k) == want {
			return k
		}
	}
	return ""
}
