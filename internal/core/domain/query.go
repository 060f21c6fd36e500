package domain

import "strings"

// Query is the parsed form of a raw search query. Inline tag tokens of the
// form "tag:<name>" or "#<name>" act as filters and are stripped from the
// text that gets embedded. The two token forms are strictly equivalent
// aliases. Queries are transient and never persisted.
type Query struct {
	// RawText is the query exactly as the user typed it.
	RawText string

	// Tags are the filter tags parsed out of the query, lowercased and
	// deduplicated in order of first appearance.
	Tags []string

	// ResidualText is the query with tag tokens removed.
	ResidualText string
}

// ParseQuery extracts inline tag tokens from a raw query string.
// Tokens are whitespace-separated, case-insensitive and order-independent.
func ParseQuery(raw string) Query {
	var tags, residual []string
	seen := make(map[string]bool)

	for _, field := range strings.Fields(raw) {
		tag := tagToken(field)
		if tag == "" {
			residual = append(residual, field)
			continue
		}
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}

	return Query{
		RawText:      raw,
		Tags:         tags,
		ResidualText: strings.Join(residual, " "),
	}
}

// EmbedText returns the text to embed for this query. When stripping tag
// tokens leaves nothing, the full original text is used instead so an
// empty string is never embedded.
func (q Query) EmbedText() string {
	if strings.TrimSpace(q.ResidualText) == "" {
		return q.RawText
	}
	return q.ResidualText
}

// tagToken returns the normalised tag name if field is a tag token,
// or "" if it is ordinary query text.
func tagToken(field string) string {
	lower := strings.ToLower(field)
	switch {
	case strings.HasPrefix(lower, "tag:") && len(lower) > len("tag:"):
		return lower[len("tag:"):]
	case strings.HasPrefix(lower, "#") && len(lower) > 1:
		return lower[1:]
	}
	return ""
}
