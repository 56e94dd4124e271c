package pipeline

import (
	"fmt"
	"strings"

	"sec-filing-rag/internal/models"
)

// BuildContext concatenates chunks into one bounded text blob with
// document/page annotations. Chunks are added whole, in order, until
// the next one would exceed the character budget; a chunk is never
// split mid-text.
func BuildContext(chunks []models.Chunk, maxChars int) string {
	var b strings.Builder
	total := 0

	for i, c := range chunks {
		snippet := fmt.Sprintf("[%d] %s, p. %d\n%s\n\n", i+1, c.Document, c.Page, c.Text)
		if total+len(snippet) > maxChars {
			break
		}
		b.WriteString(snippet)
		total += len(snippet)
	}
	return b.String()
}
