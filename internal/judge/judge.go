package judge

import "strings"

// Normalize lower-cases s and strips everything that is not a letter or
// digit. Comparisons happen on this form only.
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Judge reports whether a submitted answer counts as correct against the
// expected one. Deliberately lenient: exact normalized equality, or either
// normalized string containing the other. Two empty strings match.
func Judge(expected, submitted string) bool {
	e := Normalize(expected)
	s := Normalize(submitted)

	if e == s {
		return true
	}
	if e == "" || s == "" {
		return false
	}
	return strings.Contains(s, e) || strings.Contains(e, s)
}
