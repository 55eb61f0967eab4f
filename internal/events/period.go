package events

import (
	"regexp"
	"strings"
	"time"

	"hsrcal/internal/models"
)

// Announcement times are written without a zone and mean server time.
const announcementLayout = "2006/1/2 15:04:05"

// DefaultLocation is the server time zone used by announcements.
var DefaultLocation = time.FixedZone("UTC+8", 8*60*60)

// DefaultMaintenance is the downtime between an update beginning and the
// new version going live.
const DefaultMaintenance = 5 * time.Hour

// VersionUpdate is the start of one game version.
type VersionUpdate struct {
	Version      string
	UpdateStart  time.Time
	VersionStart time.Time
}

// Versions indexes version updates by version number ("2.5").
type Versions map[string]VersionUpdate

// Period is a resolved event period. Version is set when the start was taken
// from a version update.
type Period struct {
	Start   time.Time
	End     time.Time
	Version string
}

// Apply copies the period onto ev.
func (p Period) Apply(ev *models.Event) {
	ev.StartDate = p.Start.Format(time.RFC3339)
	ev.EndDate = p.End.Format(time.RFC3339)
	ev.StartTimestamp = p.Start.UnixMilli()
	ev.EndTimestamp = p.End.UnixMilli()

	if p.Version != "" {
		ev.Version = p.Version
	}
}

// Keyword filters, matched case-insensitively against title and description.
var (
	versionUpdateKeywords = []string{
		"version update",
		"version maintenance",
		"paean of era nova",
		"welcome to version",
	}
	eventKeywords = []string{
		"event period",
		"period:",
		"▌event period",
		"limited-time event",
		"event details",
		"garden of plenty",
		"planar fissure",
		"warp",
	}
)

// IsVersionUpdateArticle reports whether ev announces a version update.
func IsVersionUpdateArticle(ev models.Event) bool {
	return mentionsAny(ev, versionUpdateKeywords)
}

// IsEventArticle reports whether ev describes a time-limited event.
func IsEventArticle(ev models.Event) bool {
	return mentionsAny(ev, eventKeywords)
}

func mentionsAny(ev models.Event, keywords []string) bool {
	title := strings.ToLower(ev.Title)
	description := strings.ToLower(ev.Description)

	for _, k := range keywords {
		if strings.Contains(title, k) || strings.Contains(description, k) {
			return true
		}
	}

	return false
}

// PeriodParser extracts version starts and event periods from announcement text.
type PeriodParser struct {
	versionPattern    *regexp.Regexp
	updateTimePattern *regexp.Regexp
	afterVersion      *regexp.Regexp
	endDatePattern    *regexp.Regexp
	startDatePattern  *regexp.Regexp
	location          *time.Location
	maintenance       time.Duration
}

// NewPeriodParser creates a parser. A nil location means DefaultLocation.
func NewPeriodParser(maintenance time.Duration, location *time.Location) *PeriodParser {
	if location == nil {
		location = DefaultLocation
	}

	return &PeriodParser{
		versionPattern:    regexp.MustCompile(`Version (\d+\.\d+)`),
		updateTimePattern: regexp.MustCompile(`Begins at (\d{4}/\d{1,2}/\d{1,2} \d{2}:\d{2}:\d{2})`),
		afterVersion:      regexp.MustCompile(`(?i)after the Version (\d+\.\d+) update`),
		endDatePattern:    regexp.MustCompile(`[–—]\s*(\d{4}/\d{1,2}/\d{1,2} \d{2}:\d{2}:\d{2})`),
		startDatePattern:  regexp.MustCompile(`(\d{4}/\d{1,2}/\d{1,2} \d{2}:\d{2}:\d{2})\s*[–—-]`),
		location:          location,
		maintenance:       maintenance,
	}
}

// ParseVersionUpdate reads "Version X.Y" and "Begins at <time>" from an
// update announcement.
func (p *PeriodParser) ParseVersionUpdate(text string) (VersionUpdate, bool) {
	version := p.versionPattern.FindStringSubmatch(text)
	begins := p.updateTimePattern.FindStringSubmatch(text)

	if version == nil || begins == nil {
		return VersionUpdate{}, false
	}

	start, err := time.ParseInLocation(announcementLayout, begins[1], p.location)
	if err != nil {
		return VersionUpdate{}, false
	}

	return VersionUpdate{
		Version:      version[1],
		UpdateStart:  start,
		VersionStart: start.Add(p.maintenance),
	}, true
}

// ParseEventPeriod finds the period of an event. The end is the time after
// an en dash. A reference to "after the Version X.Y update" takes the start
// from versions and fails when that version is unknown; without a reference,
// or when versions is empty, an explicit "<time> –" start is used. It
// returns false unless start is before end.
func (p *PeriodParser) ParseEventPeriod(text string, versions Versions) (Period, bool) {
	endMatch := p.endDatePattern.FindStringSubmatch(text)
	if endMatch == nil {
		return Period{}, false
	}

	end, err := time.ParseInLocation(announcementLayout, endMatch[1], p.location)
	if err != nil {
		return Period{}, false
	}

	if ref := p.afterVersion.FindStringSubmatch(text); ref != nil && len(versions) > 0 {
		update, ok := versions[ref[1]]
		if !ok || !update.VersionStart.Before(end) {
			return Period{}, false
		}

		return Period{Start: update.VersionStart, End: end, Version: ref[1]}, true
	}

	startMatch := p.startDatePattern.FindStringSubmatch(text)
	if startMatch == nil {
		return Period{}, false
	}

	start, err := time.ParseInLocation(announcementLayout, startMatch[1], p.location)
	if err != nil || !start.Before(end) {
		return Period{}, false
	}

	return Period{Start: start, End: end}, true
}

// Resolve fills missing periods in two passes: version starts are collected
// from every version-update article first, then event articles without a
// period take theirs from their description. Events are updated in place.
func (p *PeriodParser) Resolve(events []models.Event) Versions {
	versions := make(Versions)

	for _, ev := range events {
		if !IsVersionUpdateArticle(ev) {
			continue
		}

		if update, ok := p.ParseVersionUpdate(ev.Title + "\n" + ev.Description); ok {
			versions[update.Version] = update
		}
	}

	for i := range events {
		ev := &events[i]
		if ev.HasPeriod() || !IsEventArticle(*ev) {
			continue
		}

		if period, ok := p.ParseEventPeriod(ev.Description, versions); ok {
			period.Apply(ev)
		}
	}

	return versions
}
