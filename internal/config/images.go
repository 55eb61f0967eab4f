package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"hsrcal/internal/formatter"
)

// ImageEntry binds a section title to an image URL.
type ImageEntry struct {
	Title string
	URL   string
}

// SectionImagesConfig is a YAML mapping decoded in document order. The order
// decides which title wins when several match a header by substring.
type SectionImagesConfig []ImageEntry

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *SectionImagesConfig) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!null" {
		*s = nil

		return nil
	}

	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: line %d", ErrInvalidSectionImages, value.Line)
	}

	entries := make(SectionImagesConfig, 0, len(value.Content)/2)

	for i := 0; i+1 < len(value.Content); i += 2 {
		var entry ImageEntry

		if err := value.Content[i].Decode(&entry.Title); err != nil {
			return fmt.Errorf("%w: line %d: %w", ErrInvalidSectionImages, value.Content[i].Line, err)
		}

		if err := value.Content[i+1].Decode(&entry.URL); err != nil {
			return fmt.Errorf("%w: line %d: %w", ErrInvalidSectionImages, value.Content[i+1].Line, err)
		}

		entries = append(entries, entry)
	}

	*s = entries

	return nil
}

// MarshalYAML implements yaml.Marshaler, keeping entry order.
func (s SectionImagesConfig) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	for _, e := range s {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Title},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.URL},
		)
	}

	return node, nil
}

// Images builds the resolver. A later duplicate title replaces the URL but
// keeps the first position.
func (s SectionImagesConfig) Images() *formatter.SectionImages {
	images := formatter.NewSectionImages()
	for _, e := range s {
		images.Set(e.Title, e.URL)
	}

	return images
}

// LoadSectionImages reads a standalone YAML mapping of title to URL.
func LoadSectionImages(path string) (*formatter.SectionImages, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read section images: %w", err)
	}

	var entries SectionImagesConfig
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse section images: %w", err)
	}

	for _, e := range entries {
		if e.Title == "" {
			return nil, ErrEmptyImageTitle
		}
	}

	return entries.Images(), nil
}
