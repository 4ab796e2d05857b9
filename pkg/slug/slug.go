package slug

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

const maxLength = 80

// reserved are path segments that share a route with slugs.
var reserved = map[string]struct{}{
	"enrolled": {},
}

// Make lowercases s, strips accents and joins alphanumeric runs with '-'.
func Make(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range norm.NFKD.String(s) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(unicode.ToLower(r))
		default:
			dash = true
		}
		if b.Len() >= maxLength {
			break
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "course"
	}
	if _, ok := reserved[out]; ok || looksLikeID(out) {
		return out + "-course"
	}
	return out
}

// looksLikeID reports whether s would parse as a hex ObjectID.
func looksLikeID(s string) bool {
	if len(s) != 24 {
		return false
	}
	for _, r := range s {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			return false
		}
	}
	return true
}

// Unique returns base, or base with the first free numeric suffix. After ten
// taken candidates it falls back to a random suffix.
func Unique(ctx context.Context, base string, exists func(ctx context.Context, slug string) (bool, error)) (string, error) {
	candidate := base
	for i := 2; i <= 11; i++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8]), nil
}
