package skin

import (
	"regexp"
	"strings"
)

// FallbackName replaces a name that sanitizes to nothing.
const FallbackName = "skinpack"

// MaxSafeNameLen bounds the byte length of every safe name.
const MaxSafeNameLen = 64

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	unsafeRe     = regexp.MustCompile(`[^a-zA-Z0-9_.\-]`)
	dashRunRe    = regexp.MustCompile(`-+`)
)

// SafeName turns a display name into an archive-safe token: whitespace
// becomes '-', other characters outside [a-zA-Z0-9_.-] are dropped, dash
// runs collapse, and the result is lowercased and cut to 64 bytes.
// It never returns an empty string and SafeName(SafeName(s)) == SafeName(s).
func SafeName(name string) string {
	s := whitespaceRe.ReplaceAllString(name, "-")
	s = unsafeRe.ReplaceAllString(s, "")
	s = dashRunRe.ReplaceAllString(s, "-")
	s = strings.ToLower(s)
	if len(s) > MaxSafeNameLen {
		s = s[:MaxSafeNameLen]
	}
	if s == "" {
		return FallbackName
	}
	return s
}
