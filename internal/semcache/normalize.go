package semcache

import (
	"strings"
	"unicode"
)

// Normalize lowercases the question, strips punctuation and collapses
// whitespace. All cache tiers key off this form.
func Normalize(question string) string {
	lower := strings.ToLower(strings.TrimSpace(question))
	var b strings.Builder
	b.Grow(len(lower))
	lastSpace := false
	for _, r := range lower {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace && b.Len() > 0 {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "do": true, "does": true, "did": true,
	"have": true, "has": true, "had": true, "i": true, "you": true, "your": true,
	"my": true, "me": true, "we": true, "it": true, "its": true, "of": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "with": true,
	"and": true, "or": true, "not": true, "no": true, "can": true, "could": true,
	"would": true, "should": true, "will": true, "about": true, "this": true,
	"that": true, "what": true, "whats": true, "how": true, "why": true,
	"when": true, "where": true, "which": true, "who": true, "tell": true,
	"please": true, "ur": true, "u": true,
}

const maxKeywords = 10

// ExtractKeywords returns up to maxKeywords stopword-filtered terms from a
// normalized question, most frequent first.
func ExtractKeywords(normalized string) []string {
	fields := strings.Fields(normalized)
	freq := map[string]int{}
	var order []string
	for _, word := range fields {
		if len(word) < 2 || stopwords[word] {
			continue
		}
		if freq[word] == 0 {
			order = append(order, word)
		}
		freq[word]++
	}
	// Stable selection: frequency descending, first occurrence wins ties.
	for i := 0; i < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			if freq[order[j]] > freq[order[i]] {
				order[i], order[j] = order[j], order[i]
			}
		}
	}
	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}
	return order
}
