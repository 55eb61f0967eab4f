package formatter

import (
	"strings"

	"hsrcal/internal/models"
)

// Rules shared by standard event notices and unrecognized descriptions.
var (
	ruleMajorHeader = rule{name: "major-header", match: hasPrefix(glyphMajor), apply: sectionFrom(glyphMajor)}
	ruleMinorHeader = rule{name: "minor-header", match: hasPrefix(glyphMinor), apply: subsectionFrom(glyphMinor)}
	ruleBullet      = rule{name: "bullet", match: hasPrefix(glyphBullet), apply: bulletFrom(glyphBullet)}
	ruleParagraph   = rule{name: "paragraph", match: always, apply: paragraph}
)

// ruleVersionRequirement matches "After Version 2.5 Update – 2024/10/14 ..."
// style eligibility lines.
var ruleVersionRequirement = rule{
	name: "version-requirement",
	match: func(line string) bool {
		return strings.Contains(line, "After Version") &&
			strings.Contains(line, "Update") &&
			containsAny(line, "UTC+8", "—", "–")
	},
	apply: requirement,
}

func standardEventGrammar() *grammar {
	return &grammar{
		docType: models.DocumentStandardEvent,
		rules: []rule{
			ruleMajorHeader,
			ruleMinorHeader,
			ruleBullet,
			ruleVersionRequirement,
			ruleParagraph,
		},
	}
}

func genericGrammar() *grammar {
	return &grammar{
		docType: models.DocumentGeneric,
		rules: []rule{
			ruleMajorHeader,
			ruleMinorHeader,
			ruleBullet,
			ruleParagraph,
		},
	}
}
