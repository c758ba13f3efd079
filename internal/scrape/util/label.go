package util

import (
	"strings"
)

// ValueAfterLabel scans plain text for the first of labels and returns what follows it,
// up to the next line break. Used when a details table flattens into "연식 2019년 주행거리 ...".
func ValueAfterLabel(s string, labels ...string) string {
	for _, lab := range labels {
		i := strings.Index(s, lab)
		if i < 0 {
			continue
		}
		rest := s[i+len(lab):]

		// stop at newline-ish boundaries if present
		for _, cut := range []string{"\n", "\r", " | ", "\t"} {
			if j := strings.Index(rest, cut); j >= 0 {
				rest = rest[:j]
			}
		}

		rest = strings.TrimLeft(strings.TrimSpace(rest), ":")
		if rest = CollapseSpace(rest); rest != "" {
			return rest
		}
	}
	return ""
}

// HasAny reports whether s contains one of keys and which one matched first in keys order.
func HasAny(s string, keys ...string) (string, bool) {
	for _, k := range keys {
		if k != "" && strings.Contains(s, k) {
			return k, true
		}
	}
	return "", false
}
