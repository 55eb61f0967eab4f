package render

import (
	"net/url"
	"regexp"
	"strings"

	"hsrcal/internal/models"
)

var (
	inlineEscaper = strings.NewReplacer(
		`\`, `\\`,
		"`", "\\`",
		"*", `\*`,
		"_", `\_`,
		"[", `\[`,
		"]", `\]`,
		"<", `\<`,
		">", `\>`,
		"#", `\#`,
		"|", `\|`,
		"~", `\~`,
	)
	orderedListPattern = regexp.MustCompile(`^(\d+)\.(\s)`)
)

// escape makes text render literally inside a line.
func escape(text string) string {
	return inlineEscaper.Replace(text)
}

// escapeLine also keeps text that opens a block from starting a list or
// setext heading.
func escapeLine(text string) string {
	text = escape(text)

	switch {
	case strings.HasPrefix(text, "-"), strings.HasPrefix(text, "+"), strings.HasPrefix(text, "="):
		return `\` + text
	case orderedListPattern.MatchString(text):
		return orderedListPattern.ReplaceAllString(text, `$1\.$2`)
	}

	return text
}

// imageURL keeps the link destination on one token.
func imageURL(raw string) string {
	if u, err := url.Parse(raw); err == nil {
		raw = u.String()
	}

	return strings.NewReplacer(" ", "%20", "(", "%28", ")", "%29").Replace(raw)
}

// Markdown renders the blocks of doc. Consecutive bullets form one list; every
// other block is its own paragraph.
func Markdown(doc models.Document) string {
	var (
		b    strings.Builder
		prev models.Kind
	)

	for i, block := range doc.Blocks {
		if i > 0 {
			if prev == models.KindBullet && block.Kind() == models.KindBullet {
				b.WriteString("\n")
			} else {
				b.WriteString("\n\n")
			}
		}

		writeBlock(&b, block)

		prev = block.Kind()
	}

	if b.Len() > 0 {
		b.WriteString("\n")
	}

	return b.String()
}

func writeBlock(b *strings.Builder, block models.Block) {
	switch v := block.(type) {
	case models.SectionHeader:
		if v.Numbered {
			b.WriteString("## **" + escape(v.Text) + "**")
		} else {
			b.WriteString("## " + escape(v.Text))
		}

		if v.ImageURL != "" {
			b.WriteString("\n\n![" + escape(v.Text) + "](" + imageURL(v.ImageURL) + ")")
		}
	case models.SubsectionHeader:
		b.WriteString("### " + escape(v.Text))
	case models.Paragraph:
		b.WriteString(escapeLine(v.Text))
	case models.Bullet:
		b.WriteString("- " + escapeLine(v.Text))
	case models.Note:
		b.WriteString("> ※ " + escape(v.Text))
	case models.Requirement:
		b.WriteString("**" + escape(v.Text) + "**")
	case models.ContractItem:
		b.WriteString("#### " + escape(v.Header))

		if body := v.Body(); body != "" {
			b.WriteString("\n\n" + escapeLine(body))
		}

		var facts []string
		if v.Price != "" {
			facts = append(facts, "- "+escapeLine(v.Price))
		}

		if v.MaxPurchase != "" {
			facts = append(facts, "- "+escapeLine(v.MaxPurchase))
		}

		if len(facts) > 0 {
			b.WriteString("\n\n" + strings.Join(facts, "\n"))
		}
	}
}
