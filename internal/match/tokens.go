package match

import "strings"

// stopWordWeight down-weights filler words so that a window full of "the"
// and "is" cannot masquerade as a match
const stopWordWeight = 0.2

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "been": {}, "have": {}, "has": {}, "had": {}, "do": {},
	"does": {}, "did": {}, "will": {}, "would": {}, "could": {},
	"should": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"i": {}, "you": {}, "he": {}, "she": {}, "it": {}, "we": {}, "they": {},
}

// tokenize lowercases text, strips punctuation and splits on whitespace
func tokenize(text string) []string {
	var tokens []string
	var b strings.Builder

	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}

	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '\'':
			// keep contractions together: don't, i'm
		default:
			flush()
		}
	}
	flush()

	return tokens
}

// bag is a weighted multiset of tokens. Stop-words carry a reduced weight.
type bag struct {
	weights map[string]float64
	total   float64
	content int // count of non-stop-word tokens
}

func newBag(tokens []string) bag {
	b := bag{weights: make(map[string]float64, len(tokens))}
	for _, tok := range tokens {
		w := 1.0
		if _, ok := stopWords[tok]; ok {
			w = stopWordWeight
		} else {
			b.content++
		}
		b.weights[tok] += w
		b.total += w
	}
	return b
}

func (b *bag) add(other bag) {
	for tok, w := range other.weights {
		b.weights[tok] += w
	}
	b.total += other.total
	b.content += other.content
}

func (b *bag) remove(other bag) {
	for tok, w := range other.weights {
		b.weights[tok] -= w
		if b.weights[tok] <= 1e-9 {
			delete(b.weights, tok)
		}
	}
	b.total -= other.total
	b.content -= other.content
}

// coverage measures how much of the query's token weight the window
// accounts for, in [0,1]. Subtitles and speech-to-text rarely agree
// byte-for-byte, so overlap is measured per token, never per string.
func coverage(query, window bag) float64 {
	if query.total == 0 || query.content == 0 {
		return 0
	}

	covered := 0.0
	for tok, qw := range query.weights {
		ww, ok := window.weights[tok]
		if !ok {
			continue
		}
		if ww < qw {
			covered += ww
		} else {
			covered += qw
		}
	}

	return covered / query.total
}

// overlapsContent reports whether the line bag shares at least one
// non-stop-word token with the query
func overlapsContent(query, line bag) bool {
	for tok := range line.weights {
		if _, stop := stopWords[tok]; stop {
			continue
		}
		if _, ok := query.weights[tok]; ok {
			return true
		}
	}
	return false
}
