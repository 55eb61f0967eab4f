// Package normalizer repairs line-break and token-splitting artifacts in
// copied announcement text before it is classified.
package normalizer

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Structural glyphs that always begin their own line.
const (
	GlyphMajor  = "▌"
	GlyphMinor  = "■"
	GlyphBullet = "●"
	GlyphNote   = "※"
)

const contractMarker = "Herta Contract:"

var spaceReplacer = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"\u00a0", " ",
	"\u2007", " ",
	"\u202f", " ",
	"\u3000", " ",
	"\u200b", "",
	"\ufeff", "",
)

// Normalizer standardizes raw description text. It holds only compiled
// patterns and is safe for concurrent use.
type Normalizer struct {
	numberedHeader  *regexp.Regexp
	multiplierSplit *regexp.Regexp
}

// New creates a normalizer.
func New() *Normalizer {
	return &Normalizer{
		// "2. New Characters" appearing mid-line.
		numberedHeader: regexp.MustCompile(`\b\d{1,2}\.[ \t]+\p{Lu}`),
		// "×1,\n000": a thousands group pushed onto the next line.
		multiplierSplit: regexp.MustCompile(`×(\d+(?:,\d{3})*),\s+(\d{3})\b`),
	}
}

var defaultNormalizer = New()

// Normalize applies the default normalizer and returns newline-joined text.
func Normalize(raw string) string {
	return defaultNormalizer.Normalize(raw)
}

// Lines applies the default normalizer and returns the normalized lines.
func Lines(raw string) []string {
	return defaultNormalizer.Lines(raw)
}

// Normalize returns the normalized text, one structural unit per line.
// Normalizing already-normalized text returns it unchanged.
func (n *Normalizer) Normalize(raw string) string {
	return strings.Join(n.Lines(raw), "\n")
}

// Lines returns the trimmed, non-empty lines of the normalized text.
func (n *Normalizer) Lines(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	text := norm.NFC.String(spaceReplacer.Replace(raw))

	text = breakBefore(text, glyphOffsets(text), isBlank)
	text = breakBefore(text, n.numberedHeaderOffsets(text), isBlankOrGlyphs)
	text = breakBefore(text, contractOffsets(text), isBlankOrGlyphs)
	text = n.repairMultipliers(text)

	var lines []string

	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	return lines
}

// repairMultipliers rejoins thousands groups split across lines until no
// split remains. Each pass removes whitespace, so the loop is bounded.
func (n *Normalizer) repairMultipliers(text string) string {
	for {
		repaired := n.multiplierSplit.ReplaceAllString(text, "×${1},${2}")
		if repaired == text {
			return text
		}

		text = repaired
	}
}

func (n *Normalizer) numberedHeaderOffsets(text string) []int {
	var offsets []int

	for _, loc := range n.numberedHeader.FindAllStringIndex(text, -1) {
		start := loc[0]
		if start > 0 && text[start-1] != ' ' && text[start-1] != '\t' {
			continue
		}

		offsets = append(offsets, start)
	}

	return offsets
}

func glyphOffsets(text string) []int {
	var offsets []int

	for i, r := range text {
		switch string(r) {
		case GlyphMajor, GlyphMinor, GlyphBullet, GlyphNote:
			offsets = append(offsets, i)
		}
	}

	return offsets
}

// contractOffsets returns where each contract marker begins, including a
// directly preceding "The ".
func contractOffsets(text string) []int {
	var offsets []int

	from := 0

	for {
		idx := strings.Index(text[from:], contractMarker)
		if idx < 0 {
			return offsets
		}

		start := from + idx
		if strings.HasSuffix(text[:start], "The ") {
			start -= len("The ")
		}

		offsets = append(offsets, start)
		from += idx + len(contractMarker)
	}
}

// breakBefore inserts a line break before each offset unless the text between
// the previous line break and the offset satisfies atLineStart. Trailing
// blanks before an inserted break are dropped.
func breakBefore(text string, offsets []int, atLineStart func(prefix string) bool) string {
	if len(offsets) == 0 {
		return text
	}

	var b strings.Builder

	b.Grow(len(text) + len(offsets))

	last := 0

	for _, off := range offsets {
		lineStart := max(strings.LastIndexByte(text[:off], '\n')+1, last)
		if atLineStart(text[lineStart:off]) {
			continue
		}

		b.WriteString(strings.TrimRight(text[last:off], " \t"))
		b.WriteByte('\n')

		last = off
	}

	b.WriteString(text[last:])

	return b.String()
}

func isBlank(prefix string) bool {
	return strings.TrimSpace(prefix) == ""
}

func isBlankOrGlyphs(prefix string) bool {
	return strings.Trim(prefix, " \t"+GlyphMajor+GlyphMinor+GlyphBullet+GlyphNote+"•") == ""
}
