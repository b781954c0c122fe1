// Package relevance decides whether discovered items are worth keeping.
package relevance

import "strings"

// Filter matches item text against a fixed keyword set and applies the
// depth-dependent leniency rules for nested replies.
type Filter struct {
	keywords []string
}

// New creates a filter. Keywords are matched as case-insensitive substrings.
func New(keywords []string) *Filter {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k == "" {
			continue
		}
		lowered = append(lowered, strings.ToLower(k))
	}
	return &Filter{keywords: lowered}
}

// Matches reports whether text contains at least one keyword. An empty
// keyword set matches nothing.
func (f *Filter) Matches(text string) bool {
	lowered := strings.ToLower(text)
	for _, k := range f.keywords {
		if strings.Contains(lowered, k) {
			return true
		}
	}
	return false
}

// KeepPost reports root-item relevance: a keyword match against the
// concatenated title and body. There is no depth or author exception for
// root items.
func (f *Filter) KeepPost(title, body string) bool {
	return f.Matches(title + " " + body)
}

// KeepReply reports nested-item relevance. Rules in order:
//  1. a reply by the post's author is always kept;
//  2. a direct reply (depth 0) needs a keyword match;
//  3. deeper replies are kept unconditionally when preserveContext is set,
//     otherwise they need a keyword match too.
func (f *Filter) KeepReply(body string, depth int, isAuthorReply, preserveContext bool) bool {
	if isAuthorReply {
		return true
	}
	if depth == 0 {
		return f.Matches(body)
	}
	if preserveContext {
		return true
	}
	return f.Matches(body)
}
