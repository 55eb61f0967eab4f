package formatter

import (
	"strings"

	"hsrcal/internal/models"
)

const contractMarker = "Herta Contract:"

// contractStops end a contract listing.
var contractStops = []string{contractMarker, glyphMinor, glyphMajor}

// extractContract assembles the contract item introduced at lines[start] and
// returns it with the index of the last line it consumed. The scan never
// passes the end of lines.
func extractContract(lines []string, start int) (models.ContractItem, int) {
	header := lines[start]
	if !strings.HasPrefix(header, "The ") {
		header = "The " + header
	}

	item := models.ContractItem{Header: header}

	end := start

	for i := start + 1; i < len(lines); i++ {
		line := lines[i]
		if containsAny(line, contractStops...) {
			break
		}

		end = i

		switch {
		case line == "":
		case strings.Contains(line, "Price:"):
			item.Price = line
		case strings.Contains(line, "maximum"):
			item.MaxPurchase = strings.TrimSpace(strings.TrimPrefix(line, "."))
		default:
			item.ContentLines = append(item.ContentLines, line)
		}
	}

	return item, end
}
