package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/glamour"

	"hsrcal/internal/models"
)

func doc(blocks ...models.Block) models.Document {
	return models.Document{Type: models.DocumentGeneric, Blocks: blocks}
}

func TestMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		doc      models.Document
		expected string
	}{
		{
			name:     "Empty document",
			doc:      doc(),
			expected: "",
		},
		{
			name: "Section with bullet list",
			doc: doc(
				models.SectionHeader{Text: "Event Period"},
				models.Bullet{Text: "First reward"},
				models.Bullet{Text: "Second reward"},
			),
			expected: "## Event Period\n\n- First reward\n- Second reward\n",
		},
		{
			name: "Numbered section with image",
			doc: doc(
				models.SectionHeader{Text: "1. New Story", Numbered: true, ImageURL: "https://x/a b.png"},
			),
			expected: "## **1. New Story**\n\n![1. New Story](https://x/a%20b.png)\n",
		},
		{
			name: "Subsection, note and requirement",
			doc: doc(
				models.SubsectionHeader{Text: "Sub"},
				models.Note{Text: "Mail"},
				models.Requirement{Text: "After Version 2.5"},
			),
			expected: "### Sub\n\n> ※ Mail\n\n**After Version 2.5**\n",
		},
		{
			name: "Contract item",
			doc: doc(
				models.ContractItem{
					Header:       "The Herta Contract: A",
					ContentLines: []string{"x", "y"},
					Price:        "Price: 1",
					MaxPurchase:  "A maximum of 2",
				},
			),
			expected: "#### The Herta Contract: A\n\nx y\n\n- Price: 1\n- A maximum of 2\n",
		},
		{
			name: "Contract item header only",
			doc: doc(
				models.ContractItem{Header: "The Herta Contract: A"},
			),
			expected: "#### The Herta Contract: A\n",
		},
		{
			name: "Escaping",
			doc: doc(
				models.Paragraph{Text: "Use *stars* and [links] <b>"},
				models.Paragraph{Text: "- not a list"},
				models.Paragraph{Text: "3. Item"},
				models.Bullet{Text: "a_b"},
			),
			expected: "Use \\*stars\\* and \\[links\\] \\<b\\>\n\n\\- not a list\n\n3\\. Item\n\n- a\\_b\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Markdown(tt.doc); got != tt.expected {
				t.Errorf("Markdown() =\n%q\nwant\n%q", got, tt.expected)
			}
		})
	}
}

func TestHTML(t *testing.T) {
	got, err := HTML(doc(
		models.SectionHeader{Text: "Event Period"},
		models.Paragraph{Text: "<script>alert(1)</script>"},
		models.Requirement{Text: "Level 21"},
	))
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}

	for _, want := range []string{"<h2>Event Period</h2>", "&lt;script&gt;", "<strong>Level 21</strong>"} {
		if !strings.Contains(got, want) {
			t.Errorf("HTML() = %q, missing %q", got, want)
		}
	}

	if strings.Contains(got, "<script>") {
		t.Errorf("HTML() passed raw HTML through: %q", got)
	}
}

func TestText(t *testing.T) {
	got := Text(doc(
		models.SectionHeader{Text: "Event Period"},
		models.Bullet{Text: "消防處"},
	), 0)

	expected := strings.Join([]string{
		"| #   | KIND          | TEXT         |",
		"| --- | ------------- | ------------ |",
		"| 1   | sectionHeader | Event Period |",
		"| 2   | bullet        | 消防處       |",
	}, "\n") + "\n"

	if got != expected {
		t.Errorf("Text() =\n%s\nwant\n%s", got, expected)
	}
}

func TestText_TruncatesAndEscapes(t *testing.T) {
	got := Text(doc(models.Paragraph{Text: "Event Period"}), 5)
	if !strings.Contains(got, "Even…") || strings.Contains(got, "Period") {
		t.Errorf("Text() did not truncate: %q", got)
	}

	got = Text(doc(models.Paragraph{Text: "a|b"}), 0)
	if !strings.Contains(got, `a\|b`) {
		t.Errorf("Text() did not escape pipe: %q", got)
	}
}

func TestTerminal(t *testing.T) {
	got, err := Terminal(doc(
		models.SectionHeader{Text: "Event Period"},
		models.Bullet{Text: "First reward"},
	), 60, glamour.WithStandardStyle("notty"))
	if err != nil {
		t.Fatalf("Terminal() error = %v", err)
	}

	for _, want := range []string{"Event Period", "First reward"} {
		if !strings.Contains(got, want) {
			t.Errorf("Terminal() = %q, missing %q", got, want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"md", FormatMarkdown, false},
		{" Markdown ", FormatMarkdown, false},
		{"html", FormatHTML, false},
		{"txt", FormatText, false},
		{"terminal", FormatTerminal, false},
		{"pdf", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFormat) {
					t.Errorf("ParseFormat(%q) error = %v, want ErrUnknownFormat", tt.input, err)
				}

				return
			}

			if err != nil || got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.input, got, err, tt.want)
			}
		})
	}
}

func TestRender(t *testing.T) {
	d := doc(models.Paragraph{Text: "hello"})

	got, err := Render(d, FormatJSON, Options{})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := `{"documentType":"Generic","blocks":[{"type":"paragraph","text":"hello"}]}` + "\n"
	if got != want {
		t.Errorf("Render(json) = %q, want %q", got, want)
	}

	got, err = Render(d, FormatMarkdown, Options{})
	if err != nil || got != "hello\n" {
		t.Errorf("Render(markdown) = %q, %v", got, err)
	}

	if _, err := Render(d, Format("pdf"), Options{}); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Render(pdf) error = %v, want ErrUnknownFormat", err)
	}
}

func TestFormatExtension(t *testing.T) {
	for format, ext := range map[Format]string{
		FormatJSON: ".json", FormatMarkdown: ".md", FormatHTML: ".html", FormatText: ".txt",
	} {
		if got := format.Extension(); got != ext {
			t.Errorf("%s.Extension() = %q, want %q", format, got, ext)
		}
	}
}
