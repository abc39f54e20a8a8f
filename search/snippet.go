package search

import (
	"unicode/utf8"
)

// ContextRunes is the number of runes of context kept on each side of a match.
const ContextRunes = 60

// Snippet is an excerpt of a document around the first match.
type Snippet struct {
	Before           string `json:"before"`
	Match            string `json:"match"`
	After            string `json:"after"`
	LeadingEllipsis  bool   `json:"leadingEllipsis"`
	TrailingEllipsis bool   `json:"trailingEllipsis"`
}

// String renders the snippet on one line with "..." where the excerpt is cut.
func (s Snippet) String() string {
	text := s.Before + s.Match + s.After
	if s.LeadingEllipsis {
		text = "..." + text
	}
	if s.TrailingEllipsis {
		text += "..."
	}
	return text
}

// newSnippet cuts body around the byte span [start, end).
func newSnippet(body string, start int, end int) *Snippet {
	from := start
	for n := 0; n < ContextRunes && from > 0; n++ {
		_, size := utf8.DecodeLastRuneInString(body[:from])
		from -= size
	}

	to := end
	for n := 0; n < ContextRunes && to < len(body); n++ {
		_, size := utf8.DecodeRuneInString(body[to:])
		to += size
	}

	return &Snippet{
		Before:           body[from:start],
		Match:            body[start:end],
		After:            body[end:to],
		LeadingEllipsis:  from > 0,
		TrailingEllipsis: to < len(body),
	}
}
