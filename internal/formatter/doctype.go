package formatter

import (
	"regexp"
	"strings"

	"hsrcal/internal/models"
)

var numberedNewPattern = regexp.MustCompile(`\d+\.\s+New\s+`)

// Classify picks the grammar for a whole normalized description. The first
// matching document type wins.
func Classify(text string) models.DocumentType {
	switch {
	case isVersionUpdate(text):
		return models.DocumentVersionUpdate
	case strings.Contains(text, "Contract Shop Update") || strings.Contains(text, contractMarker):
		return models.DocumentContractShop
	case strings.Contains(text, "Event Period") &&
		(strings.Contains(text, "Event Details") || strings.Contains(text, "Event Rewards")):
		return models.DocumentStandardEvent
	default:
		return models.DocumentGeneric
	}
}

func isVersionUpdate(text string) bool {
	// "Update Details" also covers "Version Update Details".
	if strings.Contains(text, "Update Details") || strings.Contains(text, "New Story") {
		return true
	}

	if numberedNewPattern.MatchString(text) {
		return true
	}

	if strings.Contains(text, "New Characters") && strings.Contains(text, "5-Star") {
		return true
	}

	return strings.Contains(text, "Update Time") && strings.Contains(text, "Requirement:")
}
