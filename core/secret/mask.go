package secret

import "strings"

// Mask returns a masked representation of a credential suitable for logs.
// - length <= 5: fully masked
// - length <= 20: first and last characters visible
// - length > 20: first 3 and last 1 characters visible
func Mask(s string) string {
	n := len(s)
	switch {
	case n == 0:
		return ""
	case n <= 5:
		return strings.Repeat("*", n)
	case n <= 20:
		return s[:1] + strings.Repeat("*", n-2) + s[n-1:]
	default:
		return s[:3] + strings.Repeat("*", n-4) + s[n-1:]
	}
}

// ShapeOK reports whether key superficially looks like a provider credential:
// it carries the expected prefix (when one is given) and is at least minLen
// bytes long. It says nothing about whether the upstream accepts the key.
func ShapeOK(key, prefix string, minLen int) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	if prefix != "" && !strings.HasPrefix(key, prefix) {
		return false
	}
	return len(key) >= minLen
}
