package format

import "strings"

const mdV1Specials = "_*`["

// EscapeMarkdown escapes special characters for Telegram Markdown (v1).
func EscapeMarkdown(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r < 128 && strings.ContainsRune(mdV1Specials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
