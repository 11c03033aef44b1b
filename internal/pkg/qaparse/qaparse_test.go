package qaparse

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTwoPairs(t *testing.T) {
	cards := Parse("Q1: What? A1: Answer1. Q2: Why? A2: Answer2.")

	require.Len(t, cards, 2)
	assert.Equal(t, Card{Question: "What", Answer: "Answer1."}, cards[0])
	assert.Equal(t, Card{Question: "Why", Answer: "Answer2."}, cards[1])
}

func TestParseTrimsWhitespace(t *testing.T) {
	cards := Parse("Q1:   spaced question  ? A1:   spaced answer  ")

	require.Len(t, cards, 1)
	assert.Equal(t, "spaced question", cards[0].Question)
	assert.Equal(t, "spaced answer", cards[0].Answer)
}

func TestParseFallbackOnUnmarkedText(t *testing.T) {
	cards := Parse("this text has no markers at all")

	require.Len(t, cards, 5)
	for i, card := range cards {
		assert.Equal(t, fmt.Sprintf("Sample Question %d", i+1), card.Question)
		assert.Equal(t, fmt.Sprintf("Sample Answer %d", i+1), card.Answer)
	}
}

func TestParseFallbackOnEmptyInput(t *testing.T) {
	cards := Parse("")

	require.Len(t, cards, 5)
	assert.Equal(t, "Sample Question 1", cards[0].Question)
	assert.Equal(t, "Sample Answer 5", cards[4].Answer)
}

func TestParseSkipsMismatchedLabels(t *testing.T) {
	// A2 does not answer Q1; the Q3/A3 segment still parses.
	cards := Parse("Q1: First? A2: wrong label Q3: Third? A3: right label")

	require.Len(t, cards, 1)
	assert.Equal(t, "Third", cards[0].Question)
	assert.Equal(t, "right label", cards[0].Answer)
}

func TestParseKeepsMoreThanFivePairs(t *testing.T) {
	raw := ""
	for i := 1; i <= 7; i++ {
		raw += fmt.Sprintf("Q%d: Question %d? A%d: Answer %d. ", i, i, i, i)
	}

	cards := Parse(raw)

	require.Len(t, cards, 7)
	assert.Equal(t, "Question 7", cards[6].Question)
	assert.Equal(t, "Answer 7.", cards[6].Answer)
}

func TestParseLabelsFollowTextOrder(t *testing.T) {
	cards := Parse("Q5: Last first? A5: yes Q1: Then first? A1: also yes")

	require.Len(t, cards, 2)
	assert.Equal(t, "Last first", cards[0].Question)
	assert.Equal(t, "Then first", cards[1].Question)
}

func TestParseAnswerRunsToNextMarker(t *testing.T) {
	cards := Parse("Q1: One? A1: spans\nmultiple lines Q2: Two? A2: end")

	require.Len(t, cards, 2)
	assert.Equal(t, "spans\nmultiple lines", cards[0].Answer)
	assert.Equal(t, "end", cards[1].Answer)
}
