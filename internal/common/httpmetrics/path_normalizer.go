package httpmetrics

import "strings"

// NormalizePath collapses request ids and usernames in metric labels so the
// cardinality stays bounded.
func NormalizePath(path string) string {
	if path == "" {
		return "/"
	}

	parts := strings.Split(path, "/")
	for i, part := range parts {
		if i == 0 || part == "" {
			continue
		}
		prev := parts[i-1]
		if prev == "requests" && isNumeric(part) {
			parts[i] = "{id}"
		}
		if prev == "users" {
			parts[i] = "{username}"
		}
	}

	result := strings.Join(parts, "/")
	if result == "" {
		return "/"
	}

	return result
}

func isNumeric(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
