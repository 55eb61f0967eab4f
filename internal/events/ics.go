package events

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"hsrcal/internal/models"
)

// ErrEmptyCalendar is returned for an ICS payload with no content.
var ErrEmptyCalendar = errors.New("empty ICS body")

// ParseICS maps every VEVENT with a UID to an event: UID, SUMMARY and
// DESCRIPTION become id, title and description, DTSTART and DTEND the
// period. Events without a UID are skipped.
func ParseICS(data []byte) ([]models.Event, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyCalendar
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar: %w", err)
	}

	events := make([]models.Event, 0, len(cal.Events()))

	for _, ve := range cal.Events() {
		if ev, ok := fromVEvent(ve); ok {
			events = append(events, ev)
		}
	}

	return events, nil
}

func fromVEvent(ve *ical.VEvent) (models.Event, bool) {
	var ev models.Event

	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return ev, false
	}

	ev.EventID = uid.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		ev.Title = p.Value
	}

	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		ev.Description = p.Value
	}

	if start, err := ve.GetStartAt(); err == nil {
		ev.StartDate = start.Format(time.RFC3339)
		ev.StartTimestamp = start.UnixMilli()
	}

	if end, err := ve.GetEndAt(); err == nil {
		ev.EndDate = end.Format(time.RFC3339)
		ev.EndTimestamp = end.UnixMilli()
	}

	if modified, err := ve.GetLastModifiedAt(); err == nil {
		ev.LastUpdated = modified.Format(time.RFC3339)
	}

	return ev, true
}
