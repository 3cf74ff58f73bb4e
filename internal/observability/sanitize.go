package observability

import "unicode"

const defaultStringLimit = 256

// sanitizeString drops control characters and caps the length to keep
// user-supplied values from forging log lines.
func sanitizeString(value string, limit int) string {
	if limit <= 0 {
		limit = defaultStringLimit
	}

	cleaned := make([]rune, 0, len(value))
	for _, r := range value {
		if unicode.IsControl(r) {
			continue
		}
		cleaned = append(cleaned, r)
	}
	if len(cleaned) > limit {
		cleaned = cleaned[:limit]
	}
	return string(cleaned)
}

// SanitizePath cleans request paths before they are logged.
func SanitizePath(path string) string {
	if path == "" {
		return "/"
	}
	return sanitizeString(path, 180)
}

// SanitizeQuery cleans raw query strings before they are logged.
func SanitizeQuery(q string) string {
	return sanitizeString(q, 256)
}

// SanitizeMethod removes control characters in HTTP methods.
func SanitizeMethod(method string) string {
	return sanitizeString(method, 10)
}
