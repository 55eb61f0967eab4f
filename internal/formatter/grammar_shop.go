package formatter

import (
	"strings"

	"hsrcal/internal/models"
)

func shopGrammar() *grammar {
	return &grammar{
		docType: models.DocumentContractShop,
		rules: []rule{
			{
				name:  "shop-update",
				match: contains("Contract Shop Update", "Shop Update"),
				apply: func(s *state, line string) {
					s.header(strip(line, glyphMajor, glyphMinor), strings.HasPrefix(line, glyphMajor))
				},
			},
			{
				name:  "release-time",
				match: contains("Release Time", "After the Version", "Event Period"),
				apply: func(s *state, line string) {
					s.emit(models.Requirement{
						Text:        strip(line, glyphMajor, glyphMinor, glyphBullet),
						ReleaseTime: true,
					})
				},
			},
			ruleMinorHeader,
			ruleMajorHeader,
			ruleBullet,
			{
				name:  "contract",
				match: contains(contractMarker),
				apply: func(s *state, _ string) {
					item, end := extractContract(s.lines, s.cursor)
					s.emit(item)
					s.cursor = end
				},
			},
			ruleParagraph,
		},
	}
}
