// Package search holds the matching predicates used by tag, text and partial lookups.
package search

import (
	"strings"
)

// SplitTags tokenizes a stored comma-delimited tag string, trimming every
// token and dropping empty ones.
func SplitTags(stored string) []string {
	var tags []string
	for _, tag := range strings.Split(stored, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// JoinTags is the inverse of SplitTags.
func JoinTags(tags []string) string {
	clean := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			clean = append(clean, tag)
		}
	}
	return strings.Join(clean, ",")
}

// MatchTag reports whether query is a substring of at least one stored token.
func MatchTag(tokens []string, query string) bool {
	for _, token := range tokens {
		if strings.Contains(token, query) {
			return true
		}
	}
	return false
}

// MatchTags reports whether every query tag matches one of the stored tag tokens.
// No query tags never matches.
func MatchTags(stored string, queries []string) bool {
	if len(queries) == 0 {
		return false
	}

	tokens := SplitTags(stored)
	for _, q := range queries {
		if !MatchTag(tokens, q) {
			return false
		}
	}
	return true
}

// Contains is a case-sensitive substring check that treats an empty needle as no match.
func Contains(s, needle string) bool {
	return needle != "" && strings.Contains(s, needle)
}

// ContainsAny reports whether needle is contained in any of the fields.
func ContainsAny(needle string, fields ...string) bool {
	for _, f := range fields {
		if Contains(f, needle) {
			return true
		}
	}
	return false
}

// HasWildcard reports whether a pattern uses LIKE wildcards.
func HasWildcard(pattern string) bool {
	return strings.ContainsAny(pattern, "%_")
}

// LikePattern turns a partial filter into a LIKE pattern: patterns with
// wildcards are kept, plain text becomes a substring pattern.
func LikePattern(filter string) string {
	if HasWildcard(filter) {
		return filter
	}
	return "%" + EscapeLike(filter) + "%"
}

// EscapeLike escapes LIKE wildcards with a backslash.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// MatchLike matches s against a LIKE pattern case-sensitively. '%' matches
// any run of characters, '_' exactly one and '\' escapes the next character.
func MatchLike(pattern, s string) bool {
	p := []rune(pattern)
	r := []rune(s)

	// positions to backtrack to after the last '%'
	star, mark := -1, 0
	i, j := 0, 0
	for j < len(r) {
		if i < len(p) {
			switch {
			case p[i] == '%':
				star, mark = i, j
				i++
				continue
			case p[i] == '\\' && i+1 < len(p):
				if p[i+1] == r[j] {
					i += 2
					j++
					continue
				}
			case p[i] == '_' || p[i] == r[j]:
				i++
				j++
				continue
			}
		}

		if star < 0 {
			return false
		}
		mark++
		i, j = star+1, mark
	}

	for i < len(p) && p[i] == '%' {
		i++
	}
	return i == len(p)
}

// MatchFilter applies an exact or partial filter to a value.
func MatchFilter(filter, value string, partial bool) bool {
	if !partial {
		return filter == value
	}
	return MatchLike(LikePattern(filter), value)
}
