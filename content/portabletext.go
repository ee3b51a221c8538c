package content

import (
	"strings"
	"unicode/utf8"

	"github.com/dmrmediateam/eagan-luxury-sub001/models"
)

// ExcerptLength is the rune limit of a derived excerpt, before the ellipsis.
const ExcerptLength = 150

const ellipsis = "..."

// PlainText concatenates the spans of every text block. Images, embeds and
// other non-"block" types are skipped. Blocks are joined with one space.
func PlainText(blocks []models.Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.Type != "block" {
			continue
		}
		var sb strings.Builder
		for _, span := range b.Children {
			sb.WriteString(span.Text)
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// Excerpt returns source unchanged when it has any non-space text.
// Otherwise it derives one from body, cut to ExcerptLength runes with an
// ellipsis appended when cut.
func Excerpt(source string, body []models.Block) string {
	if strings.TrimSpace(source) != "" {
		return source
	}
	return truncate(PlainText(body), ExcerptLength)
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:limit]), " ") + ellipsis
}
