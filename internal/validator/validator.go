// Package validator checks a parsed block sequence against the normalized
// lines it came from.
package validator

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"hsrcal/internal/models"
	"hsrcal/pkg/metadata"
)

const contextWidth = 24

// ValidationError represents a single problem found in a block sequence.
// Block is the zero-based block index, or -1 for document-level problems.
type ValidationError struct {
	Block   int
	Kind    models.Kind
	Value   string
	Message string
}

// ValidationResult contains validation outcome.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
	Stats    ValidationStats
	IsValid  bool
}

// ValidationStats contains statistics about the checked sequence.
type ValidationStats struct {
	Lines       int
	Blocks      int
	ByKind      map[models.Kind]int
	ImagesBound int
}

// squashDrop holds runes ignored when comparing block content with lines:
// blanks, structural glyphs and periods the rules trim.
const squashDrop = " \t\r\n.▌■●•※"

// contractPrefix is the squashed article the contract extractor puts in
// front of headers that lack it.
const contractPrefix = "The"

func squash(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(squashDrop, r) {
			return -1
		}

		return r
	}, s)
}

// contractContent drops the article the extractor added to a contract header
// when the source at that point does not carry it.
func contractContent(got, rest []rune) []rune {
	header := contractPrefix + "HertaContract:"
	if strings.HasPrefix(string(got), header) && !strings.HasPrefix(string(rest), header) {
		return got[len([]rune(contractPrefix)):]
	}

	return got
}

// Check verifies that blocks reproduce the content of lines in order and
// reports structural oddities as warnings.
func Check(lines []string, blocks models.Sequence) *ValidationResult {
	result := &ValidationResult{
		IsValid: true,
		Stats: ValidationStats{
			Lines:  countNonEmpty(lines),
			Blocks: len(blocks),
			ByKind: blocks.Count(),
		},
	}

	checkCoverage(result, lines, blocks)
	checkBlocks(result, blocks)

	result.IsValid = len(result.Errors) == 0

	return result
}

func countNonEmpty(lines []string) int {
	n := 0

	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			n++
		}
	}

	return n
}

func checkCoverage(result *ValidationResult, lines []string, blocks models.Sequence) {
	want := []rune(squash(strings.Join(lines, "")))
	pos := 0

	for i, b := range blocks {
		got := []rune(squash(b.Content()))
		if b.Kind() == models.KindContractItem {
			got = contractContent(got, want[pos:])
		}

		span := want[pos:min(pos+len(got), len(want))]

		n := firstDiff(got, span)
		if n < 0 || (b.Kind() == models.KindContractItem && sameRunes(got, span)) {
			pos += len(span)

			continue
		}

		if n < len(span) {
			result.Errors = append(result.Errors, ValidationError{
				Block: i,
				Kind:  b.Kind(),
				Value: snippet(got[n:]),
				Message: fmt.Sprintf("block content diverges from source at offset %d, expected %q",
					pos+n, snippet(want[pos+n:])),
			})

			return
		}

		result.Errors = append(result.Errors, ValidationError{
			Block:   i,
			Kind:    b.Kind(),
			Value:   snippet(got[n:]),
			Message: "block content not present in source",
		})

		return
	}

	if pos < len(want) {
		result.Errors = append(result.Errors, ValidationError{
			Block:   -1,
			Value:   snippet(want[pos:]),
			Message: "source content missing from blocks",
		})
	}
}

// firstDiff returns the first index where a and b differ, len of the shorter
// one when it is a prefix of the other, or -1 when they are equal.
func firstDiff(a, b []rune) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}

	if len(a) == len(b) {
		return -1
	}

	return n
}

// sameRunes reports whether a and b hold the same runes in any order.
// Contract items list their price after the body lines wherever the price
// appeared in the source.
func sameRunes(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}

	counts := make(map[rune]int, len(a))
	for _, r := range a {
		counts[r]++
	}

	for _, r := range b {
		counts[r]--
		if counts[r] < 0 {
			return false
		}
	}

	return true
}

func checkBlocks(result *ValidationResult, blocks models.Sequence) {
	headersByURL := make(map[string][]string)

	var urls []string

	for i, b := range blocks {
		switch b := b.(type) {
		case models.SectionHeader:
			if strings.TrimSpace(b.Text) == "" {
				result.warn(i, b, "empty section header")
			}

			if b.ImageURL != "" {
				result.Stats.ImagesBound++

				if _, seen := headersByURL[b.ImageURL]; !seen {
					urls = append(urls, b.ImageURL)
				}

				headersByURL[b.ImageURL] = append(headersByURL[b.ImageURL], b.Text)
			}
		case models.SubsectionHeader:
			if strings.TrimSpace(b.Text) == "" {
				result.warn(i, b, "empty subsection header")
			}
		case models.ContractItem:
			if b.Price == "" {
				result.warn(i, b, "contract item has no price line")
			}
		}
	}

	for _, u := range urls {
		if headers := headersByURL[u]; len(headers) > 1 {
			result.Warnings = append(result.Warnings, ValidationError{
				Block:   -1,
				Kind:    models.KindSectionHeader,
				Value:   u,
				Message: fmt.Sprintf("image bound to %d headers: %s", len(headers), strings.Join(headers, ", ")),
			})
		}
	}
}

func (r *ValidationResult) warn(i int, b models.Block, msg string) {
	r.Warnings = append(r.Warnings, ValidationError{
		Block:   i,
		Kind:    b.Kind(),
		Value:   truncate(b.Content(), 60),
		Message: msg,
	})
}

// Passed reports whether the result is acceptable. Strict mode also fails
// on warnings.
func (r *ValidationResult) Passed(strict bool) bool {
	if !r.IsValid {
		return false
	}

	return !strict || len(r.Warnings) == 0
}

// CheckIntegrity verifies the metadata hash of a signed rendered document.
func CheckIntegrity(content string) error {
	if _, err := metadata.Verify(content); err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}

	return nil
}

func snippet(r []rune) string {
	return runewidth.Truncate(string(r), contextWidth, "…")
}

// truncate limits string length for display.
func truncate(s string, maxLen int) string {
	return runewidth.Truncate(s, maxLen, "...")
}

// String returns human-readable validation summary.
func (r *ValidationResult) String() string {
	status := "✅ VALID"
	if !r.IsValid {
		status = "❌ INVALID"
	}

	return fmt.Sprintf(
		"%s | Lines: %d | Blocks: %d | Images: %d | Errors: %d | Warnings: %d",
		status,
		r.Stats.Lines,
		r.Stats.Blocks,
		r.Stats.ImagesBound,
		len(r.Errors),
		len(r.Warnings),
	)
}

// PrintErrors writes validation errors in readable format.
func (r *ValidationResult) PrintErrors(w io.Writer) {
	if len(r.Errors) == 0 {
		return
	}

	fmt.Fprintln(w, "❌ Validation Errors:")

	for _, err := range r.Errors {
		printEntry(w, err)
	}
}

// PrintWarnings writes validation warnings.
func (r *ValidationResult) PrintWarnings(w io.Writer) {
	if len(r.Warnings) == 0 {
		return
	}

	fmt.Fprintln(w, "⚠️  Validation Warnings:")

	for _, warn := range r.Warnings {
		printEntry(w, warn)
	}
}

func printEntry(w io.Writer, e ValidationError) {
	if e.Block >= 0 {
		fmt.Fprintf(w, "  Block %d [%s]: %s\n", e.Block+1, e.Kind, e.Message)
	} else {
		fmt.Fprintf(w, "  %s\n", e.Message)
	}

	if e.Value != "" {
		fmt.Fprintf(w, "    Found: %q\n", e.Value)
	}
}
