package ai

import "strings"

// SanitizeText replaces control characters (all but newline and tab) with
// spaces, collapses whitespace runs into single spaces, and trims the ends.
// Every prompt passes through here before hitting a backend; page source
// dumps in particular arrive full of control noise.
func SanitizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r < 0x20 && r != '\n' && r != '\t') || r == 0x7f {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// truncate limits s to max runes for prompt budgets.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
