package rules

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Matches reports whether stripped token text satisfies this detector.
func (d *TokenDetector) Matches(text string) bool {
	stripped := strings.TrimSpace(text)
	if stripped == "" {
		return false
	}

	switch d.Method {
	case MethodRegex:
		if d.re == nil {
			return false
		}
		return d.re.MatchString(stripped)

	case MethodLength:
		if utf8.RuneCountInString(stripped) < d.MinLength {
			return false
		}
		if IsNameRole(d.Role) {
			return isUpperAlphabetic(stripped)
		}
		return true

	default:
		return false
	}
}

// AssignRole runs detectors in their supplied order and returns the role
// of the first match. First detector wins; later detectors never override.
func AssignRole(detectors []*TokenDetector, text string) (string, bool) {
	for _, d := range detectors {
		if d.Matches(text) {
			return d.Role, true
		}
	}
	return "", false
}

// isUpperAlphabetic reports whether every rune is an uppercase letter,
// ignoring interior spaces ("MEETING ROOM" qualifies).
func isUpperAlphabetic(s string) bool {
	seen := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		if !unicode.IsLetter(r) || !unicode.IsUpper(r) {
			return false
		}
		seen = true
	}
	return seen
}
