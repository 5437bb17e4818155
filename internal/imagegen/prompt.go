package imagegen

import (
	"fmt"
	"strings"
)

// Scope - уровень иллюстрации.
type Scope string

const (
	ScopeStory Scope = "story"
	ScopeNode  Scope = "node"
)

// Длина отрывка текста в промпте (в символах, без учета границ слов).
const (
	storyExcerptLen = 200
	nodeExcerptLen  = 200
)

const defaultTheme = "fantasy"

// Request описывает, что нужно проиллюстрировать.
type Request struct {
	Scope Scope
	Title string // только для ScopeStory
	Text  string
	Theme string
}

// StoryRequest - иллюстрация обложки истории.
func StoryRequest(title, openingText, theme string) Request {
	return Request{Scope: ScopeStory, Title: title, Text: openingText, Theme: theme}
}

// NodeRequest - иллюстрация отдельной сцены.
func NodeRequest(text, theme string) Request {
	return Request{Scope: ScopeNode, Text: text, Theme: theme}
}

// BuildPrompt формирует детерминированный промпт для генератора изображений.
func BuildPrompt(req Request) string {
	theme := strings.TrimSpace(req.Theme)
	if theme == "" {
		theme = defaultTheme
	}

	if req.Scope == ScopeStory {
		return fmt.Sprintf(
			"Create a detailed, cinematic illustration for a %s adventure story titled '%s'. "+
				"Scene: %s. Style: book cover quality, atmospheric, mysterious, adventurous. "+
				"High detail, rich colors, fantasy art style.",
			theme, strings.TrimSpace(req.Title), truncateRunes(req.Text, storyExcerptLen),
		)
	}
	return fmt.Sprintf(
		"Create a detailed, cinematic illustration for a %s story scene. "+
			"Scene: %s. Style: story illustration, atmospheric, engaging, immersive. "+
			"High detail, rich colors, fantasy art style.",
		theme, truncateRunes(req.Text, nodeExcerptLen),
	)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
