package content

import (
	"fmt"
	"strings"

	"github.com/dmrmediateam/eagan-luxury-sub001/models"
)

// WordsPerMinute is the reading speed behind ReadTime.
const WordsPerMinute = 200

// ReadTime estimates "N min read" from the title, excerpt and body text.
// N is rounded up and never below 1.
func ReadTime(title, excerpt string, body []models.Block) string {
	words := len(strings.Fields(title)) +
		len(strings.Fields(excerpt)) +
		len(strings.Fields(PlainText(body)))
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}
