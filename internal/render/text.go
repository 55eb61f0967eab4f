package render

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"hsrcal/internal/models"
)

const (
	minColumnWidth = 3
	ellipsis       = "…"
)

var cellEscaper = strings.NewReplacer("|", `\|`, "\n", " ")

// Text lists the blocks of doc as an aligned "| # | KIND | TEXT |" table.
// Columns are padded by display width so wide (CJK) characters line up.
// A positive width truncates the TEXT column.
func Text(doc models.Document, width int) string {
	table := [][]string{{"#", "KIND", "TEXT"}}

	for i, block := range doc.Blocks {
		text := cellEscaper.Replace(block.Content())
		if width > 0 {
			text = runewidth.Truncate(text, width, ellipsis)
		}

		table = append(table, []string{strconv.Itoa(i + 1), string(block.Kind()), text})
	}

	return strings.Join(alignTable(table), "\n") + "\n"
}

// alignTable pads every cell to its column's widest display width and puts a
// dash separator under the first row.
func alignTable(table [][]string) []string {
	if len(table) == 0 {
		return nil
	}

	colCount := 0
	for _, row := range table {
		colCount = max(colCount, len(row))
	}

	colWidths := make([]int, colCount)

	for _, row := range table {
		for i, cell := range row {
			colWidths[i] = max(colWidths[i], runewidth.StringWidth(cell))
		}
	}

	for i := range colWidths {
		colWidths[i] = max(colWidths[i], minColumnWidth)
	}

	result := make([]string, 0, len(table)+1)

	for i, row := range table {
		result = append(result, formatRow(row, colWidths))

		if i == 0 {
			dashes := make([]string, colCount)
			for j, w := range colWidths {
				dashes[j] = strings.Repeat("-", w)
			}

			result = append(result, formatRow(dashes, colWidths))
		}
	}

	return result
}

func formatRow(row []string, colWidths []int) string {
	var sb strings.Builder

	sb.WriteString("|")

	for j, w := range colWidths {
		content := ""
		if j < len(row) {
			content = row[j]
		}

		sb.WriteString(" ")
		sb.WriteString(content)

		if padding := w - runewidth.StringWidth(content); padding > 0 {
			sb.WriteString(strings.Repeat(" ", padding))
		}

		sb.WriteString(" |")
	}

	return sb.String()
}
