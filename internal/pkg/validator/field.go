package validator

import (
	"strings"
	"unicode"
)

// fieldKey turns a Go field name into the snake_case key clients see, keeping
// initialisms together: FirstName is first_name, CorrelationID is
// correlation_id, HTTPStatus is http_status.
func fieldKey(name string) string {
	runes := []rune(name)

	var b strings.Builder
	b.Grow(len(name) + 4)

	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}
