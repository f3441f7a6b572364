package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripDiacritics approximates the original Rust implementation's use
// of the `deunicode` crate: it folds accented latin letters down to
// their ASCII base (é -> e) via Unicode normalization. Letters with no
// such decomposition (other scripts, ß, ø) pass through unchanged and
// are kept by the caller's letter/digit filter. There is
// no `deunicode`-equivalent crate in the Go ecosystem reachable from
// this module's dependency pack; NFD decomposition + combining-mark
// removal is the idiomatic stdlib-adjacent substitute.
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func toASCIIApprox(s string) string {
	out, _, err := transform.String(stripDiacritics, s)
	if err != nil {
		return s
	}
	return out
}

// SafeTruncate truncates s to at most maxChars runes without ever
// splitting a multi-byte character (spec §8 property 10; grounded on
// original_source/src/helpers/sanitize.rs::safe_truncate).
func SafeTruncate(s string, maxChars int) string {
	count := 0
	for i := range s {
		if count == maxChars {
			return s[:i]
		}
		count++
	}
	return s
}

// FilenameFromString produces a lowercase, single-spaced filename
// fragment from arbitrary input: accented Latin letters are folded to
// ASCII, letters and digits of any script are kept, and every other
// character becomes a space. Grounded on
// original_source/src/helpers/sanitize.rs::filename_from_string.
func FilenameFromString(input string) string {
	ascii := toASCIIApprox(input)

	var clean strings.Builder
	clean.Grow(len(ascii))
	for _, r := range ascii {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			clean.WriteRune(r)
		} else {
			clean.WriteRune(' ')
		}
	}

	lower := strings.ToLower(clean.String())

	var result strings.Builder
	result.Grow(len(lower))
	lastWasSpace := false
	for _, r := range lower {
		if r == ' ' {
			if !lastWasSpace {
				result.WriteRune(r)
			}
			lastWasSpace = true
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return strings.TrimSpace(result.String())
}

// KeyFromAlbum builds the "<artist-or-unknown>/<album>" cache key used
// by the image cache and MPD cover-art lookups (spec §4.11 step 1).
// Multiple artists are joined with "+", each sanitized independently.
// Grounded on original_source/src/helpers/sanitize.rs::key_from_album.
func KeyFromAlbum(artists []string, albumName string) string {
	if len(artists) == 0 {
		return "unknown/" + FilenameFromString(albumName)
	}
	parts := make([]string, len(artists))
	for i, a := range artists {
		parts[i] = FilenameFromString(a)
	}
	return strings.Join(parts, "+") + "/" + FilenameFromString(albumName)
}
