package search

import (
	"regexp"
	"strings"
)

// QueryKind is the entity kind a text query is restricted to.
type QueryKind int

const (
	KindAny QueryKind = iota
	KindCRE
	KindStandard
)

var (
	typedQuery = regexp.MustCompile(`(?i)^(cre|standard)[:\s]\s*(.+)$`)
	urlQuery   = regexp.MustCompile(`^https?://\S+$`)
	qualifiers = regexp.MustCompile(`[:\s]+`)
)

// Query is a parsed free-text search.
type Query struct {
	Kind QueryKind
	// Text is the query with the type prefix removed.
	Text string
	// URL is set when Text is a hyperlink.
	URL string
	// Qualifiers are the colon/space separated parts of Text, for typed queries.
	Qualifiers []string
}

// ParseQuery splits an optional "CRE:"/"Standard:" prefix (a space works as
// well) from the rest of the query.
func ParseQuery(raw string) Query {
	raw = strings.TrimSpace(raw)

	m := typedQuery.FindStringSubmatch(raw)
	if m == nil {
		q := Query{Kind: KindAny, Text: raw}
		if urlQuery.MatchString(raw) {
			q.URL = raw
		}
		return q
	}

	q := Query{Kind: KindCRE, Text: strings.TrimSpace(m[2])}
	if strings.EqualFold(m[1], "standard") {
		q.Kind = KindStandard
	}

	if urlQuery.MatchString(q.Text) {
		q.URL = q.Text
		return q
	}

	for _, part := range qualifiers.Split(q.Text, -1) {
		if part != "" {
			q.Qualifiers = append(q.Qualifiers, part)
		}
	}
	return q
}

// MatchStandardQualifiers aligns the qualifiers with a contiguous window of
// (name, section, subsection) and reports whether any window matches exactly.
func MatchStandardQualifiers(qs []string, name, section, subsection string) bool {
	fields := []string{name, section, subsection}
	if len(qs) == 0 || len(qs) > len(fields) {
		return false
	}

	for start := 0; start+len(qs) <= len(fields); start++ {
		matched := true
		for i, q := range qs {
			if fields[start+i] != q {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}
