// Package slug builds URL slugs for categories and posts.
package slug

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// MaxLength is the maximum length of a generated base slug.
const MaxLength = 50

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Make lower-cases s, collapses every non-alphanumeric run into one hyphen,
// strips leading and trailing hyphens and truncates to MaxLength.
func Make(s string) string {
	slug := strings.ToLower(s)
	slug = nonAlnum.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > MaxLength {
		slug = slug[:MaxLength]
	}
	return slug
}

// ExistsFunc reports whether a slug is already taken.
type ExistsFunc func(ctx context.Context, slug string) (bool, error)

// Unique returns Make(s), or the first of Make(s)-1, Make(s)-2, ... not taken.
func Unique(ctx context.Context, s string, exists ExistsFunc) (string, error) {
	base := Make(s)
	candidate := base
	for n := 1; ; n++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}
