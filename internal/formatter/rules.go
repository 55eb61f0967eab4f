package formatter

import (
	"strings"

	"hsrcal/internal/models"
	"hsrcal/internal/normalizer"
)

const (
	glyphMajor  = normalizer.GlyphMajor
	glyphMinor  = normalizer.GlyphMinor
	glyphBullet = normalizer.GlyphBullet
	glyphNote   = normalizer.GlyphNote
	glyphDot    = "•"
)

// state is the per-parse cursor. It is created for each call and never shared.
type state struct {
	lines         []string
	cursor        int
	section       string
	inDescription bool
	images        *SectionImages
	out           models.Sequence
	// reason is set by fallback rules to explain why the line matched.
	reason string
}

func (s *state) emit(blocks ...models.Block) {
	s.out = append(s.out, blocks...)
}

// header emits a section header. Only headers taken from a "▌" line look up
// a section image.
func (s *state) header(text string, fromMajor bool) {
	h := models.SectionHeader{Text: text}
	if fromMajor {
		h.ImageURL, _ = s.images.Resolve(text)
	}

	s.section = text
	s.emit(h)
}

// rule maps one line predicate to the blocks it produces. apply may advance
// s.cursor past further lines it consumed.
type rule struct {
	name  string
	match func(line string) bool
	apply func(s *state, line string)
}

// grammar is an ordered rule table; the first matching rule wins and the
// last rule must match every line.
type grammar struct {
	docType models.DocumentType
	rules   []rule
}

func (g *grammar) ruleFor(line string) *rule {
	for i := range g.rules {
		if g.rules[i].match(line) {
			return &g.rules[i]
		}
	}

	return nil
}

// Shared predicates and constructors.

func always(string) bool { return true }

func hasPrefix(prefixes ...string) func(string) bool {
	return func(line string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(line, p) {
				return true
			}
		}

		return false
	}
}

func contains(subs ...string) func(string) bool {
	return func(line string) bool {
		return containsAny(line, subs...)
	}
}

func containsAny(line string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(line, sub) {
			return true
		}
	}

	return false
}

// strip removes leading occurrences of the given markers and surrounding blanks.
func strip(line string, markers ...string) string {
	for {
		trimmed := strings.TrimSpace(line)

		next := trimmed
		for _, m := range markers {
			next = strings.TrimPrefix(next, m)
		}

		if next == trimmed {
			return trimmed
		}

		line = next
	}
}

func sectionFrom(glyph string) func(s *state, line string) {
	return func(s *state, line string) {
		s.header(strip(line, glyph), strings.HasPrefix(line, glyphMajor))
	}
}

func subsectionFrom(glyph string) func(s *state, line string) {
	return func(s *state, line string) {
		s.emit(models.SubsectionHeader{Text: strip(line, glyph)})
	}
}

func bulletFrom(markers ...string) func(s *state, line string) {
	return func(s *state, line string) {
		s.emit(models.Bullet{Text: strip(line, markers...)})
	}
}

func paragraph(s *state, line string) {
	s.emit(models.Paragraph{Text: line})
}

func requirement(s *state, line string) {
	s.emit(models.Requirement{Text: strip(line, glyphMajor, glyphMinor, glyphBullet)})
}
