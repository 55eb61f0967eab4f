package formatter

import (
	"sort"
	"strings"
)

// SectionImages maps section titles to illustrative image URLs. Titles keep
// their insertion order, which decides substring matches. A SectionImages is
// read-only while a parse is running; a nil *SectionImages resolves nothing.
type SectionImages struct {
	titles []string
	urls   map[string]string
}

// NewSectionImages creates an empty image map.
func NewSectionImages() *SectionImages {
	return &SectionImages{urls: make(map[string]string)}
}

// ImagesFromMap builds an image map from a Go map. Go maps are unordered, so
// titles are inserted in lexical order to keep resolution deterministic.
func ImagesFromMap(m map[string]string) *SectionImages {
	titles := make([]string, 0, len(m))
	for title := range m {
		titles = append(titles, title)
	}

	sort.Strings(titles)

	images := NewSectionImages()
	for _, title := range titles {
		images.Set(title, m[title])
	}

	return images
}

// Set adds or replaces the image for a title. Replacing keeps the original position.
func (m *SectionImages) Set(title, url string) {
	if m.urls == nil {
		m.urls = make(map[string]string)
	}

	if _, ok := m.urls[title]; !ok {
		m.titles = append(m.titles, title)
	}

	m.urls[title] = url
}

// Len returns the number of titles.
func (m *SectionImages) Len() int {
	if m == nil {
		return 0
	}

	return len(m.titles)
}

// Titles returns the titles in resolution order.
func (m *SectionImages) Titles() []string {
	if m == nil {
		return nil
	}

	return append([]string(nil), m.titles...)
}

// Resolve looks up the image for a header title: an exact match first, then
// the first title (in insertion order) that contains or is contained in the
// header. Entries are never consumed, so one image can attach to several
// similar headers.
func (m *SectionImages) Resolve(header string) (string, bool) {
	if m == nil || header == "" {
		return "", false
	}

	if url, ok := m.urls[header]; ok {
		return url, true
	}

	for _, title := range m.titles {
		if title == "" {
			continue
		}

		if strings.Contains(header, title) || strings.Contains(title, header) {
			return m.urls[title], true
		}
	}

	return "", false
}
