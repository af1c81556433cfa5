package util

import (
	"regexp"
	"strings"
)

var nonPhone = regexp.MustCompile(`[^\d\+]+`)

// NormalizePhone strips formatting noise and coerces common prefixes into an
// E.164-like form. Recipient rows are stored normalized so the opt-in join
// matches on equal strings.
func NormalizePhone(raw string) string {
	s := nonPhone.ReplaceAllString(strings.TrimSpace(raw), "")

	if strings.HasPrefix(s, "00") {
		s = "+" + s[2:]
	} else if s != "" && !strings.HasPrefix(s, "+") {
		s = "+" + s
	}

	return s
}
