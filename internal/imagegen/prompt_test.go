package imagegen

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt_Story(t *testing.T) {
	prompt := BuildPrompt(StoryRequest("Escape from Kepler Station", "Alarms blare.", "space"))

	assert.Contains(t, prompt, "a space adventure story titled 'Escape from Kepler Station'")
	assert.Contains(t, prompt, "Scene: Alarms blare.")
	assert.Contains(t, prompt, "book cover quality")
}

func TestBuildPrompt_Node(t *testing.T) {
	prompt := BuildPrompt(NodeRequest("You open the hatch.", "space"))

	assert.Contains(t, prompt, "a space story scene")
	assert.Contains(t, prompt, "Scene: You open the hatch.")
	assert.NotContains(t, prompt, "titled")
}

func TestBuildPrompt_DefaultTheme(t *testing.T) {
	assert.Contains(t, BuildPrompt(NodeRequest("x", "  ")), "a fantasy story scene")
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	req := NodeRequest("The dragon sleeps.", "fantasy")
	assert.Equal(t, BuildPrompt(req), BuildPrompt(req))
}

func TestBuildPrompt_TruncatesExcerptByRunes(t *testing.T) {
	text := strings.Repeat("ж", nodeExcerptLen+50)
	prompt := BuildPrompt(NodeRequest(text, "fantasy"))

	assert.Contains(t, prompt, strings.Repeat("ж", nodeExcerptLen)+".")
	assert.NotContains(t, prompt, strings.Repeat("ж", nodeExcerptLen+1))
	assert.True(t, utf8.ValidString(prompt))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 5))
	assert.Equal(t, "ab", truncateRunes("abc", 2))
	assert.Equal(t, "привет", truncateRunes("привет мир", 6))
}
