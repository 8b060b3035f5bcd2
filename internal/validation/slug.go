package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9-]{1,200}$`)

var reservedSlugs = map[string]struct{}{
	"api":        {},
	"auth":       {},
	"admin":      {},
	"posts":      {},
	"comments":   {},
	"categories": {},
	"users":      {},
	"login":      {},
	"signup":     {},
	"health":     {},
	"metrics":    {},
	"new":        {},
}

// Slugify derives a URL-safe slug from a title: lowercase ASCII letters,
// digits and single hyphens, no leading or trailing hyphen. "Hello World"
// becomes "hello-world".
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) && r < 128, unicode.IsDigit(r) && r < 128:
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if len(slug) > 200 {
		slug = strings.TrimRight(slug[:200], "-")
	}
	return slug
}

// ValidateSlug validates slug format and reserved names.
func ValidateSlug(slug string) error {
	if !slugRegex.MatchString(slug) {
		return fmt.Errorf("slug must contain only lowercase letters, numbers, and hyphens")
	}

	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		return fmt.Errorf("slug cannot start or end with a hyphen")
	}

	if _, exists := reservedSlugs[slug]; exists {
		return fmt.Errorf("slug is reserved")
	}

	return nil
}
