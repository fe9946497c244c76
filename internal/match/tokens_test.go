package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "Plain words",
			input:    "hello world",
			expected: []string{"hello", "world"},
		},
		{
			name:     "Punctuation stripped",
			input:    "Stop it! Stop it, you mean, old potato!",
			expected: []string{"stop", "it", "stop", "it", "you", "mean", "old", "potato"},
		},
		{
			name:     "Contractions collapse",
			input:    "Don't anybody move!",
			expected: []string{"dont", "anybody", "move"},
		},
		{
			name:     "Empty input",
			input:    "  ...  ",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tokenize(tt.input))
		})
	}
}

func TestCoverageIdenticalText(t *testing.T) {
	q := newBag(tokenize("hello world this is a test"))
	w := newBag(tokenize("hello world this is a test"))

	assert.InDelta(t, 1.0, coverage(q, w), 1e-9)
}

func TestCoverageSupersetWindow(t *testing.T) {
	q := newBag(tokenize("may the force be with you"))
	w := newBag(tokenize("use the force luke may the force be with you always"))

	// Window covers every query token
	assert.InDelta(t, 1.0, coverage(q, w), 1e-9)
}

func TestCoverageDisjoint(t *testing.T) {
	q := newBag(tokenize("empty that safe"))
	w := newBag(tokenize("completely unrelated dialogue"))

	assert.Equal(t, 0.0, coverage(q, w))
}

func TestCoverageAllStopWords(t *testing.T) {
	q := newBag(tokenize("this is the and a of"))
	w := newBag(tokenize("this is the and a of"))

	// Pure noise never scores, even against identical noise
	assert.Equal(t, 0.0, coverage(q, w))
	assert.Equal(t, 0, q.content)
}

func TestBagAddRemove(t *testing.T) {
	acc := bag{weights: map[string]float64{}}
	a := newBag(tokenize("money money money"))
	b := newBag(tokenize("empty that safe"))

	acc.add(a)
	acc.add(b)
	acc.remove(a)

	assert.InDelta(t, b.total, acc.total, 1e-9)
	assert.Equal(t, b.content, acc.content)
	assert.NotContains(t, acc.weights, "money")
	assert.Contains(t, acc.weights, "safe")
}

func TestOverlapsContent(t *testing.T) {
	q := newBag(tokenize("empty that safe"))

	assert.True(t, overlapsContent(q, newBag(tokenize("now empty the register"))))
	// Shared tokens are stop-words only
	assert.False(t, overlapsContent(q, newBag(tokenize("that is the way"))))
}
