package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"hsrcal/internal/models"
)

// htmlRenderer leaves raw HTML disabled, so any markup that survives escaping
// is omitted rather than passed through.
var htmlRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// HTML renders the Markdown form of doc as an HTML fragment.
func HTML(doc models.Document) (string, error) {
	var buf bytes.Buffer
	if err := htmlRenderer.Convert([]byte(Markdown(doc)), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}

	return buf.String(), nil
}
