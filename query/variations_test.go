package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariations_StartsWithOriginal(t *testing.T) {
	c := NewClassifier()
	question := "What was the asking price for 156 Seymour?"

	vars := Variations(question, c.Classify(question), 4)
	require.NotEmpty(t, vars)
	assert.Equal(t, question, vars[0])
}

func TestVariations_BoundedAndDeduplicated(t *testing.T) {
	c := NewClassifier()
	question := "What was the asking price for 156 Seymour?"
	classification := c.Classify(question)

	vars := Variations(question, classification, 3)
	assert.LessOrEqual(t, len(vars), 3)

	seen := map[string]bool{}
	for _, v := range vars {
		assert.False(t, seen[v], "duplicate variation %q", v)
		seen[v] = true
	}

	// max 1 degenerates to just the original
	assert.Equal(t, []string{question}, Variations(question, classification, 1))
}

func TestVariations_KeywordFormStripsQuestionWords(t *testing.T) {
	c := NewClassifier()
	question := "What was the asking price for 156 Seymour?"

	vars := Variations(question, c.Classify(question), 4)
	require.Greater(t, len(vars), 1)
	assert.Equal(t, "asking price 156 seymour", vars[1])
}

func TestVariations_EntityForm(t *testing.T) {
	c := NewClassifier()
	question := "Did anyone mention $850,000 for 156 Seymour?"
	classification := c.Classify(question)
	require.NotEmpty(t, classification.Entities)

	vars := Variations(question, classification, 5)
	found := false
	for _, v := range vars {
		if v != question && strings.Contains(v, "$850,000") {
			found = true
		}
	}
	assert.True(t, found, "expected an entity-focused variation, got %v", vars)
}

func TestVariations_Deterministic(t *testing.T) {
	c := NewClassifier()
	question := "Why did the Hendricks deal stall?"
	classification := c.Classify(question)

	assert.Equal(t,
		Variations(question, classification, 4),
		Variations(question, classification, 4))
}
