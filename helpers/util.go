package helpers

import (
	"errors"
	"strings"
)

func GetSplitPart(target string, separate string, index int) (string, error) {
	parts := strings.Split(target, separate)
	if index >= len(parts) {
		return "", errors.New("index out of range")
	}
	return parts[index], nil
}

// SplitSelectors splits a comma separated selector list into trimmed,
// non-empty candidates, keeping their order
func SplitSelectors(selectors string) []string {
	var out []string
	for _, s := range strings.Split(selectors, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Host returns the host part of a URL, or the input when it has no scheme
func Host(rawURL string) string {
	rest := rawURL
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	host, err := GetSplitPart(rest, "/", 0)
	if err != nil {
		return rawURL
	}
	return host
}
