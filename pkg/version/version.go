// SPDX-License-Identifier: MPL-2.0

package version

import (
	"strings"
	"unicode"
)

type (
	// Version is a parsed, comparable artifact version.
	// The zero value is equal to "0".
	Version struct {
		raw    string
		tokens []token
	}

	// token is a single component of a version string.
	token struct {
		// text holds the lowercased textual value, or the digits without
		// leading zeros for numeric tokens.
		text    string
		numeric bool
	}
)

// Parse splits text into version tokens. It always succeeds.
func Parse(text string) Version {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]token, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, newToken(f))
	}

	return Version{raw: text, tokens: tokens}
}

func newToken(field string) token {
	for _, r := range field {
		if r < '0' || r > '9' {
			return token{text: strings.ToLower(field)}
		}
	}

	// Numeric tokens are kept as digit strings so arbitrarily long
	// build numbers compare without overflow.
	digits := strings.TrimLeft(field, "0")
	return token{text: digits, numeric: true}
}

// String returns the original text the version was parsed from.
func (v Version) String() string { return v.raw }

// Compare returns -1 if v sorts before other, 0 if they are equal and +1 otherwise.
func (v Version) Compare(other Version) int {
	n := max(len(v.tokens), len(other.tokens))
	for i := range n {
		if c := v.at(i).compare(other.at(i)); c != 0 {
			return c
		}
	}
	return 0
}

// Less reports whether v sorts before other.
func (v Version) Less(other Version) bool { return v.Compare(other) < 0 }

// Equal reports whether v and other compare equal. "1.0" and "1.0.0" are equal.
func (v Version) Equal(other Version) bool { return v.Compare(other) == 0 }

// at returns the token at position i, padding with numeric zero.
func (v Version) at(i int) token {
	if i < len(v.tokens) {
		return v.tokens[i]
	}
	return token{numeric: true}
}

func (t token) compare(other token) int {
	switch {
	case t.numeric && !other.numeric:
		return 1
	case !t.numeric && other.numeric:
		return -1
	case t.numeric:
		if len(t.text) != len(other.text) {
			if len(t.text) < len(other.text) {
				return -1
			}
			return 1
		}
		return strings.Compare(t.text, other.text)
	default:
		return strings.Compare(t.text, other.text)
	}
}

// Compare parses and compares two version strings.
func Compare(a, b string) int {
	return Parse(a).Compare(Parse(b))
}

// Max returns the highest of the given versions and false when none are given.
func Max(versions ...Version) (Version, bool) {
	if len(versions) == 0 {
		return Version{}, false
	}
	best := versions[0]
	for _, v := range versions[1:] {
		if v.Compare(best) > 0 {
			best = v
		}
	}
	return best, true
}
