// Package literal turns runtime values into Go source literals.
//
// Every function here is total: any input produces a well-formed literal.
// Escape is not idempotent, so raw values must be escaped exactly once.
package literal

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var shortEscapes = map[rune]string{
	'\\': `\\`,
	'"':  `\"`,
	'\a': `\a`,
	'\b': `\b`,
	'\f': `\f`,
	'\n': `\n`,
	'\r': `\r`,
	'\t': `\t`,
	'\v': `\v`,
}

// Escape returns s escaped for use between double quotes in Go source.
// Invalid UTF-8 bytes become \xNN; non-printable runes become \u or \U
// sequences.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		if r == utf8.RuneError && size == 1 {
			fmt.Fprintf(&b, `\x%02x`, s[i-1])
			continue
		}
		if esc, ok := shortEscapes[r]; ok {
			b.WriteString(esc)
			continue
		}
		switch {
		case r < utf8.RuneSelf && (r < 0x20 || r == 0x7f):
			fmt.Fprintf(&b, `\x%02x`, r)
		case !unicode.IsPrint(r):
			if r < 0x10000 {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				fmt.Fprintf(&b, `\U%08x`, r)
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Quote returns s as a double-quoted Go string literal.
func Quote(s string) string { return `"` + Escape(s) + `"` }

// Bool returns the canonical Go token for v.
func Bool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// Int returns v as an unquoted decimal literal.
func Int(v int64) string { return strconv.FormatInt(v, 10) }

// Uint returns v as an unquoted decimal literal.
func Uint(v uint64) string { return strconv.FormatUint(v, 10) }

// OptString returns a pointer expression holding s, or "" when s is nil.
// The empty result means the declaration must carry an explicit *string type
// and no initializer.
func OptString(s *string) string {
	if s == nil {
		return ""
	}
	return "func() *string { v := " + Quote(*s) + "; return &v }()"
}

// OptBool is OptString for booleans.
func OptBool(v *bool) string {
	if v == nil {
		return ""
	}
	return "func() *bool { v := " + Bool(*v) + "; return &v }()"
}

// StringArray returns a fixed-size array literal such as [2]string{"a", "b"}.
func StringArray(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = Quote(s)
	}
	return fmt.Sprintf("[%d]string{%s}", len(items), strings.Join(quoted, ", "))
}

// Pair is one (name, version) tuple.
type Pair struct {
	Name    string
	Version string
}

// PairArray returns a fixed-size array-of-pairs literal such as
// [1][2]string{{"name", "1.0.0"}}.
func PairArray(pairs []Pair) string {
	items := make([]string, len(pairs))
	for i, p := range pairs {
		items[i] = "{" + Quote(p.Name) + ", " + Quote(p.Version) + "}"
	}
	return fmt.Sprintf("[%d][2]string{%s}", len(pairs), strings.Join(items, ", "))
}

// JoinPairs returns the human readable "name version, name version" form.
func JoinPairs(pairs []Pair) string {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.Name + " " + p.Version
	}
	return strings.Join(parts, ", ")
}
