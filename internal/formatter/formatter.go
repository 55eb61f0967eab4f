// Package formatter converts loosely structured game announcement text into
// an ordered sequence of typed content blocks.
//
// Parsing is pure: it performs no I/O, keeps no state between calls and never
// fails. A Parser may be shared by any number of goroutines.
package formatter

import (
	"strings"

	"hsrcal/internal/models"
	"hsrcal/internal/normalizer"
)

// Trace describes how one source line (or, for contract items, one range of
// lines) was classified.
type Trace struct {
	Grammar models.DocumentType
	Rule    string
	// Reason refines fallback matches ("in-description", "long-line", ...).
	Reason  string
	Line    int
	EndLine int
	Text    string
	Section string
	Kinds   []models.Kind
}

// Option configures a Parser.
type Option func(*Parser)

// WithTrace installs a hook called once per classified line.
func WithTrace(fn func(Trace)) Option {
	return func(p *Parser) {
		p.trace = fn
	}
}

// WithNormalizer replaces the default normalizer.
func WithNormalizer(n *normalizer.Normalizer) Option {
	return func(p *Parser) {
		p.normalizer = n
	}
}

// Parser holds the grammars. It is immutable after NewParser returns.
type Parser struct {
	normalizer *normalizer.Normalizer
	grammars   map[models.DocumentType]*grammar
	trace      func(Trace)
}

// NewParser creates a parser with all four grammars.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		normalizer: normalizer.New(),
		grammars:   make(map[models.DocumentType]*grammar),
	}

	for _, g := range []*grammar{standardEventGrammar(), versionGrammar(), shopGrammar(), genericGrammar()} {
		p.grammars[g.docType] = g
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

var defaultParser = NewParser()

// ParseDescription parses an event description with the default parser.
func ParseDescription(text string, images *SectionImages) models.Sequence {
	return defaultParser.Parse(text, images).Blocks
}

// Parse normalizes text, picks its grammar and classifies every line.
func (p *Parser) Parse(text string, images *SectionImages) models.Document {
	lines := p.normalizer.Lines(text)
	docType := Classify(strings.Join(lines, "\n"))

	return models.Document{
		Type:   docType,
		Blocks: p.ClassifyLines(lines, docType, images),
	}
}

// ClassifyLines runs the grammar for docType over already normalized lines.
func (p *Parser) ClassifyLines(lines []string, docType models.DocumentType, images *SectionImages) models.Sequence {
	g, ok := p.grammars[docType]
	if !ok {
		g = p.grammars[models.DocumentGeneric]
	}

	s := &state{
		lines:  lines,
		images: images,
		out:    make(models.Sequence, 0, len(lines)),
	}

	for s.cursor = 0; s.cursor < len(lines); s.cursor++ {
		line := lines[s.cursor]
		start, emitted := s.cursor, len(s.out)
		s.reason = ""

		r := g.ruleFor(line)
		r.apply(s, line)

		if p.trace != nil {
			p.trace(Trace{
				Grammar: g.docType,
				Rule:    r.name,
				Reason:  s.reason,
				Line:    start,
				EndLine: s.cursor,
				Text:    line,
				Section: s.section,
				Kinds:   kinds(s.out[emitted:]),
			})
		}
	}

	return s.out
}

func kinds(blocks models.Sequence) []models.Kind {
	out := make([]models.Kind, len(blocks))
	for i, b := range blocks {
		out[i] = b.Kind()
	}

	return out
}
