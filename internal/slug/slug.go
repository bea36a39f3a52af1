// Package slug turns titles into URL-safe identifiers that are unique within
// a table.
package slug

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// MaxLen bounds a slug including any numeric suffix.
const MaxLen = 160

const maxAttempts = 10000

var invalid = regexp.MustCompile(`[^A-Za-z0-9-]+`)

// ErrExhausted is returned when no free suffix was found.
var ErrExhausted = errors.New("slug: no free candidate")

// Make lower-cases title, replaces every run of characters outside
// [A-Za-z0-9-] with a single "-" and trims leading and trailing dashes.
func Make(title string) string {
	s := invalid.ReplaceAllString(strings.TrimSpace(title), "-")
	s = strings.Trim(strings.ToLower(s), "-")
	return cut(s, MaxLen)
}

// ExistsFunc reports whether a slug is already taken.
type ExistsFunc func(ctx context.Context, slug string) (bool, error)

// Unique returns base when it is free, otherwise the first free candidate of
// base-1, base-2, ... The result is deterministic given the current contents
// seen by exists.
func Unique(ctx context.Context, base string, exists ExistsFunc) (string, error) {
	if base == "" {
		return "", errors.New("slug: empty base")
	}
	taken, err := exists(ctx, base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}
	for i := 1; i < maxAttempts; i++ {
		suffix := fmt.Sprintf("-%d", i)
		candidate := cut(base, MaxLen-len(suffix)) + suffix
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrExhausted
}

func cut(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimRight(s[:n], "-")
}
