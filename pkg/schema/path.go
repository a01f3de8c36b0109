package schema

import "strings"

// PathSeparator joins keys into node paths ("server/modelNumber").
const PathSeparator = "/"

// JoinPath appends key to parent using PathSeparator.
func JoinPath(parent, key string) string {
	parent = strings.TrimSpace(parent)
	key = strings.TrimSpace(key)
	if parent == "" {
		return key
	}
	if key == "" {
		return parent
	}
	return parent + PathSeparator + key
}

// NormalizePath accepts the XPath-like form used by value payloads
// ("/server/modelNumber") and returns the canonical relative form.
func NormalizePath(path string) string {
	return strings.Join(SplitPath(path), PathSeparator)
}

// SplitPath returns the non-empty segments of path.
func SplitPath(path string) []string {
	parts := strings.Split(strings.TrimSpace(path), PathSeparator)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
