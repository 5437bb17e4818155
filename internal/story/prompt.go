package story

import (
	"fmt"
	"strings"
)

const defaultTheme = "fantasy"

// storyPromptTemplate - единственный шаблон запроса к LLM; параметризуется только темой.
const storyPromptTemplate = `Create a choose-your-own-adventure story with the theme: %s.

Requirements:
1. Give the story a short, evocative title.
2. The root node is the opening situation and offers 2-3 options.
3. Every non-ending node offers 2-3 options; each option leads to its own node.
4. The story is 3-4 levels deep, counting the root.
5. Every leaf is an ending. Some endings are losing, at least one is a winning ending.
6. Keep each node's content to a few vivid sentences.

Return the story strictly in this JSON format:
{
  "title": "Story title",
  "rootNode": {
    "content": "Opening situation",
    "isEnding": false,
    "isWinningEnding": false,
    "options": [
      {
        "text": "Option text",
        "nextNode": {
          "content": "What happens next",
          "isEnding": false,
          "isWinningEnding": false,
          "options": []
        }
      }
    ]
  }
}

An ending node has "isEnding": true and no options. Only an ending node may have "isWinningEnding": true.
Do not add any text outside of the JSON structure.`

// BuildStoryPrompt подставляет тему в шаблон.
func BuildStoryPrompt(theme string) string {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		theme = defaultTheme
	}
	return fmt.Sprintf(storyPromptTemplate, theme)
}
