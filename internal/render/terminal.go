package render

import (
	"fmt"

	"github.com/charmbracelet/glamour"

	"hsrcal/internal/models"
)

const defaultTerminalWidth = 80

// Terminal renders doc for an ANSI terminal, wrapping at width columns.
// Extra options are applied after the defaults, so a style option overrides
// the automatic one.
func Terminal(doc models.Document, width int, opts ...glamour.TermRendererOption) (string, error) {
	if width <= 0 {
		width = defaultTerminalWidth
	}

	all := make([]glamour.TermRendererOption, 0, len(opts)+2)
	all = append(all, glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	all = append(all, opts...)

	tr, err := glamour.NewTermRenderer(all...)
	if err != nil {
		return "", fmt.Errorf("failed to create terminal renderer: %w", err)
	}

	out, err := tr.Render(Markdown(doc))
	if err != nil {
		return "", fmt.Errorf("failed to render for terminal: %w", err)
	}

	return out, nil
}
