package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPromptSubstitutesVerbatim(t *testing.T) {
	doc := "In loving memory of John \"Jack\" O'Malley, born 1884.\n\tSurvived by his wife Mary."
	prompt := BuildPrompt(doc)
	assert.Contains(t, prompt, doc)
	assert.NotContains(t, prompt, PromptPlaceholder)
}

func TestBuildPromptDeterministic(t *testing.T) {
	doc := "Parish register, 12 March 1884."
	require.Equal(t, BuildPrompt(doc), BuildPrompt(doc))
}

func TestBuildPromptEmptyDocument(t *testing.T) {
	prompt := BuildPrompt("")
	assert.NotEmpty(t, prompt)
	assert.NotContains(t, prompt, PromptPlaceholder)
}

func TestBuildPromptTemplateContract(t *testing.T) {
	prompt := BuildPrompt("x")
	// the instruction contract the backends are held to
	assert.Contains(t, prompt, "every person")
	assert.Contains(t, prompt, "JSON array")
	assert.True(t, strings.Contains(prompt, "YYYY-MM-DD"))
}
