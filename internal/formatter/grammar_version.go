package formatter

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"hsrcal/internal/models"
)

var (
	numberedSectionPattern = regexp.MustCompile(
		`^\d+\.\s+(?:New\s+\p{Lu}[\p{L}\p{N}'’-]*(?:\s+\p{Lu}[\p{L}\p{N}'’-]*)*|Others)$`)
	fixesHeaderPattern = regexp.MustCompile(`^▌\s*(?:Bug Fixes|Adjustments and Optimizations)`)
	quotedAreaPattern  = regexp.MustCompile(`^(["“][^"”]+["”])\s*(.*)$`)
	starRarityPattern  = regexp.MustCompile(`^[■●]?\s*[45]-Star`)
)

// describedContent recognizes the prose of story, area and gameplay
// descriptions in version notes.
func describedContent(line string) bool {
	if containsAny(line, "Trailblaze Mission", "Shadow:", "Fiction:", "Chaos:", "Skill Lv") {
		return true
	}

	return hasPrefix("The spiritual", "This land of", "Enemies ", "Gameplay ")(line)
}

func mentionsCharacter(line string) bool {
	return strings.Contains(line, "Star") || strings.Contains(strings.ToLower(line), "character")
}

func versionGrammar() *grammar {
	return &grammar{
		docType: models.DocumentVersionUpdate,
		rules: []rule{
			{
				name:  "update-details",
				match: contains("Version Update Details", "Update Details"),
				apply: func(s *state, line string) {
					s.header(strip(line, glyphMajor, glyphMinor), strings.HasPrefix(line, glyphMajor))
				},
			},
			{
				name:  "numbered-section",
				match: numberedSectionPattern.MatchString,
				apply: func(s *state, line string) {
					s.section = line
					s.inDescription = false
					s.emit(models.SectionHeader{Text: line, Numbered: true})
				},
			},
			{
				name:  "fixes-header",
				match: fixesHeaderPattern.MatchString,
				apply: sectionFrom(glyphMajor),
			},
			{
				name:  "quoted-area",
				match: quotedAreaPattern.MatchString,
				apply: func(s *state, line string) {
					m := quotedAreaPattern.FindStringSubmatch(line)
					s.emit(models.SubsectionHeader{Text: m[1]})

					if body := strings.TrimSpace(m[2]); body != "" {
						s.emit(models.Paragraph{Text: body})
					}

					s.inDescription = true
				},
			},
			{
				name:  "described-content",
				match: describedContent,
				apply: describedParagraph,
			},
			{
				name:  "star-rarity",
				match: starRarityPattern.MatchString,
				apply: func(s *state, line string) {
					describedParagraph(s, strip(line, glyphMinor, glyphBullet))
				},
			},
			{
				name:  "minor-header",
				match: func(line string) bool { return strings.HasPrefix(line, glyphMinor) && !mentionsCharacter(line) },
				apply: func(s *state, line string) {
					s.inDescription = false
					s.emit(models.SubsectionHeader{Text: strip(line, glyphMinor)})
				},
			},
			{
				name:  "major-header",
				match: func(line string) bool { return strings.HasPrefix(line, glyphMajor) && !mentionsCharacter(line) },
				apply: func(s *state, line string) {
					s.inDescription = false
					s.header(strip(line, glyphMajor), true)
				},
			},
			{name: "requirement", match: contains("Event Period", "Requirement:"), apply: requirement},
			{name: "update-time", match: contains("Update Time"), apply: requirement},
			{
				name:  "note",
				match: contains(glyphNote),
				apply: func(s *state, line string) {
					s.emit(models.Note{Text: strip(line, glyphNote)})
				},
			},
			{name: "bullet", match: hasPrefix(glyphBullet, glyphDot, "."), apply: bulletFrom(glyphBullet, glyphDot, ".")},
			{name: "fallback", match: always, apply: versionFallback},
		},
	}
}

func describedParagraph(s *state, line string) {
	s.inDescription = true
	s.emit(models.Paragraph{Text: line})
}

// versionFallback never discards a line. The overlapping reasons are kept
// apart in traces only; every branch yields a paragraph.
func versionFallback(s *state, line string) {
	switch {
	case s.inDescription:
		s.reason = "in-description"
	case utf8.RuneCountInString(line) > 20:
		s.reason = "long-line"
	case strings.Contains(line, ":"):
		s.reason = "colon"
	case startsLikeSentence(line):
		s.reason = "sentence"
	default:
		s.reason = "default"
	}

	s.emit(models.Paragraph{Text: strip(line, glyphMajor, glyphMinor)})
}

func startsLikeSentence(line string) bool {
	first, size := utf8.DecodeRuneInString(line)
	second, _ := utf8.DecodeRuneInString(line[size:])

	return unicode.IsUpper(first) && unicode.IsLower(second)
}
