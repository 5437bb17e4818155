package schema

import (
	"regexp"
	"strings"
)

const codeFence = "```"

// Первый полный блок ```lang ... ```; (?s) - точка совпадает с переносом строки.
var fencedBlockRegex = regexp.MustCompile(`(?s)` + codeFence + `(?:\w+)?\s*(.*?)\s*` + codeFence)

// Идентификатор языка сразу после открывающих ```.
var languageTagRegex = regexp.MustCompile(`^\w*`)

// StripCodeFence возвращает содержимое первого Markdown-блока кода.
// Если блока нет, возвращается исходный текст без пробелов по краям.
// Незакрытый блок обрезается только с начала.
func StripCodeFence(raw string) string {
	cleaned := strings.TrimSpace(raw)

	if matches := fencedBlockRegex.FindStringSubmatch(cleaned); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	start := strings.Index(cleaned, codeFence)
	if start == -1 {
		return cleaned
	}
	body := cleaned[start+len(codeFence):]
	body = languageTagRegex.ReplaceAllString(body, "")
	return strings.TrimSpace(body)
}
