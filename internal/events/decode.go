// Package events loads exported game events from files or URLs and resolves
// their periods from announcement text.
package events

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"hsrcal/internal/config"
	"hsrcal/internal/models"
)

// Decoding errors.
var (
	ErrUnknownFormat = errors.New("unknown event source format")
	ErrInvalidRecord = errors.New("invalid event record")
)

// DetectFormat picks a source format from the file extension, then from
// the content: a calendar header means ICS, a leading '[' a JSON array and
// anything else JSON lines.
func DetectFormat(name string, data []byte) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return config.SourceFormatJSON
	case ".jsonl", ".ndjson":
		return config.SourceFormatJSONL
	case ".ics", ".ical":
		return config.SourceFormatICS
	}

	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\ufeff")))

	switch {
	case bytes.HasPrefix(trimmed, []byte("BEGIN:VCALENDAR")):
		return config.SourceFormatICS
	case bytes.HasPrefix(trimmed, []byte("[")):
		return config.SourceFormatJSON
	default:
		return config.SourceFormatJSONL
	}
}

// Decode parses data in the given source format.
func Decode(format string, data []byte) ([]models.Event, error) {
	switch format {
	case config.SourceFormatJSON:
		return DecodeJSON(data)
	case config.SourceFormatJSONL:
		return DecodeJSONL(data)
	case config.SourceFormatICS:
		return ParseICS(data)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// DecodeJSON parses a JSON array of events.
func DecodeJSON(data []byte) ([]models.Event, error) {
	var events []models.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}

	for i, ev := range events {
		if ev.EventID == "" {
			return nil, fmt.Errorf("%w: event[%d] has no eventId", ErrInvalidRecord, i)
		}
	}

	return events, nil
}

// DecodeJSONL parses one event per line. Blank lines are skipped.
func DecodeJSONL(data []byte) ([]models.Event, error) {
	var events []models.Event

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNum := 0

	for scanner.Scan() {
		lineNum++

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var ev models.Event
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, fmt.Errorf("failed to decode line %d: %w", lineNum, err)
		}

		if ev.EventID == "" {
			return nil, fmt.Errorf("%w: line %d has no eventId", ErrInvalidRecord, lineNum)
		}

		events = append(events, ev)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lines: %w", err)
	}

	return events, nil
}
