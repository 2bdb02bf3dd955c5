package tokenize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"the", "graph", "isn't", "a", "tree"}, Words("The Graph isn't a TREE!"))
	assert.Empty(t, Words("42 -- 7"))
}

func TestTerms_DropsStopwordsAndShortWords(t *testing.T) {
	assert.Equal(t, []string{"graph", "tree", "xy"}, Terms("The graph is a tree, x and xy"))
	assert.Nil(t, Terms(""))
}

func TestTerms_Unicode(t *testing.T) {
	assert.Equal(t, []string{"über", "straße"}, Terms("Über and Straße"))
}

func TestIsStopword(t *testing.T) {
	assert.True(t, IsStopword("the"))
	assert.False(t, IsStopword("embedding"))
}

func TestSentences(t *testing.T) {
	got := Sentences("First one. Second?  Third!\nTrailing words")
	assert.Equal(t, []string{"First one.", "Second?", "Third!"}, got)
	assert.Empty(t, Sentences("no terminator"))
}
