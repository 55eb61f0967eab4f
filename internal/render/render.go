// Package render turns formatted description blocks into Markdown, HTML,
// aligned text tables, terminal previews and JSON.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"hsrcal/internal/models"
)

// ErrUnknownFormat is returned for an output format name that is not supported.
var ErrUnknownFormat = errors.New("unknown output format")

// Format names an output representation.
type Format string

// Supported formats.
const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatText     Format = "text"
	FormatTerminal Format = "terminal"
)

// Formats lists every supported format in help-text order.
var Formats = []Format{FormatJSON, FormatMarkdown, FormatHTML, FormatText, FormatTerminal}

// ParseFormat resolves a format name, accepting "md" and "txt" as aliases.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "text", "txt":
		return FormatText, nil
	case "terminal":
		return FormatTerminal, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Extension returns the file extension used when writing a document.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatHTML:
		return ".html"
	case FormatText, FormatTerminal:
		return ".txt"
	default:
		return ".json"
	}
}

// Options tunes Render.
type Options struct {
	// Width limits text table cells and terminal word wrap. Zero means no limit
	// for tables and 80 columns for the terminal.
	Width       int
	PrettyPrint bool
}

// Render writes doc in the requested format.
func Render(doc models.Document, format Format, opts Options) (string, error) {
	switch format {
	case FormatJSON:
		return JSON(doc, opts.PrettyPrint)
	case FormatMarkdown:
		return Markdown(doc), nil
	case FormatHTML:
		return HTML(doc)
	case FormatText:
		return Text(doc, opts.Width), nil
	case FormatTerminal:
		return Terminal(doc, opts.Width)
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// JSON encodes doc as {"documentType": ..., "blocks": [...]}.
func JSON(doc models.Document, pretty bool) (string, error) {
	var (
		data []byte
		err  error
	)

	if pretty {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}

	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}

	return string(data) + "\n", nil
}
