package domain

import (
	"strings"

	"github.com/mozillazg/go-unidecode"
)

// Slugify transliterates to ASCII, lowercases, and joins alphanumeric runs with '-'.
func Slugify(s string) string {
	ascii := strings.ToLower(unidecode.Unidecode(s))

	var b strings.Builder
	pendingDash := false
	for _, r := range ascii {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingDash = b.Len() > 0
			continue
		}
		if pendingDash {
			b.WriteByte('-')
			pendingDash = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
