package models

import (
	"encoding/json"
	"strings"
)

// DocumentType selects the grammar used to classify the lines of one description.
type DocumentType string

// Document types, chosen once per description.
const (
	DocumentStandardEvent DocumentType = "StandardEvent"
	DocumentVersionUpdate DocumentType = "VersionUpdate"
	DocumentContractShop  DocumentType = "ContractShop"
	DocumentGeneric       DocumentType = "Generic"
)

// Kind names a Block variant.
type Kind string

// Block kinds.
const (
	KindSectionHeader    Kind = "sectionHeader"
	KindSubsectionHeader Kind = "subsectionHeader"
	KindParagraph        Kind = "paragraph"
	KindBullet           Kind = "bullet"
	KindNote             Kind = "note"
	KindRequirement      Kind = "requirement"
	KindContractItem     Kind = "contractItem"
)

// Block is one typed unit of a formatted description.
// The set of implementations is closed; use a type switch to render.
type Block interface {
	Kind() Kind
	// Content returns the block's textual content without structural glyphs.
	Content() string
	block()
}

// SectionHeader is a top-level heading. Numbered marks the bold "1. New Story"
// style markers of version-update notes.
type SectionHeader struct {
	Text     string
	ImageURL string
	Numbered bool
}

// SubsectionHeader is a second-level heading.
type SubsectionHeader struct {
	Text string
}

// Paragraph is free text.
type Paragraph struct {
	Text string
}

// Bullet is a single list entry.
type Bullet struct {
	Text string
}

// Note is a "※" remark.
type Note struct {
	Text string
}

// Requirement is an eligibility or timing line. ReleaseTime marks the
// contract-shop flavour ("Release Time", "After the Version ...").
type Requirement struct {
	Text        string
	ReleaseTime bool
}

// ContractItem is one "Herta Contract:" listing with the lines that follow it.
type ContractItem struct {
	Header       string
	ContentLines []string
	Price        string
	MaxPurchase  string
}

func (SectionHeader) Kind() Kind    { return KindSectionHeader }
func (SubsectionHeader) Kind() Kind { return KindSubsectionHeader }
func (Paragraph) Kind() Kind        { return KindParagraph }
func (Bullet) Kind() Kind           { return KindBullet }
func (Note) Kind() Kind             { return KindNote }
func (Requirement) Kind() Kind      { return KindRequirement }
func (ContractItem) Kind() Kind     { return KindContractItem }

func (b SectionHeader) Content() string    { return b.Text }
func (b SubsectionHeader) Content() string { return b.Text }
func (b Paragraph) Content() string        { return b.Text }
func (b Bullet) Content() string           { return b.Text }
func (b Note) Content() string             { return b.Text }
func (b Requirement) Content() string      { return b.Text }

// Content joins header, body, price and purchase limit in source order.
func (b ContractItem) Content() string {
	parts := make([]string, 0, len(b.ContentLines)+3)
	parts = append(parts, b.Header)
	parts = append(parts, b.ContentLines...)

	if b.Price != "" {
		parts = append(parts, b.Price)
	}

	if b.MaxPurchase != "" {
		parts = append(parts, b.MaxPurchase)
	}

	return strings.Join(parts, " ")
}

// Body returns the content lines joined with single spaces.
func (b ContractItem) Body() string {
	return strings.Join(b.ContentLines, " ")
}

func (SectionHeader) block()    {}
func (SubsectionHeader) block() {}
func (Paragraph) block()        {}
func (Bullet) block()           {}
func (Note) block()             {}
func (Requirement) block()      {}
func (ContractItem) block()     {}

// Sequence is the ordered output of one parse.
type Sequence []Block

// Document pairs a block sequence with the grammar that produced it.
type Document struct {
	Type   DocumentType `json:"documentType"`
	Blocks Sequence     `json:"blocks"`
}

// blockJSON is the wire shape shared by every variant.
type blockJSON struct {
	Type         Kind     `json:"type"`
	Text         string   `json:"text,omitempty"`
	ImageURL     string   `json:"imageUrl,omitempty"`
	Numbered     bool     `json:"numbered,omitempty"`
	ReleaseTime  bool     `json:"releaseTime,omitempty"`
	Header       string   `json:"header,omitempty"`
	ContentLines []string `json:"contentLines,omitempty"`
	Price        string   `json:"price,omitempty"`
	MaxPurchase  string   `json:"maxPurchase,omitempty"`
}

// MarshalJSON encodes each block as an object tagged with its kind.
func (s Sequence) MarshalJSON() ([]byte, error) {
	out := make([]blockJSON, 0, len(s))

	for _, b := range s {
		v := blockJSON{Type: b.Kind()}

		switch b := b.(type) {
		case SectionHeader:
			v.Text, v.ImageURL, v.Numbered = b.Text, b.ImageURL, b.Numbered
		case Requirement:
			v.Text, v.ReleaseTime = b.Text, b.ReleaseTime
		case ContractItem:
			v.Header, v.ContentLines, v.Price, v.MaxPurchase = b.Header, b.ContentLines, b.Price, b.MaxPurchase
		default:
			v.Text = b.Content()
		}

		out = append(out, v)
	}

	return json.Marshal(out)
}

// Count returns the number of blocks of each kind.
func (s Sequence) Count() map[Kind]int {
	counts := make(map[Kind]int)
	for _, b := range s {
		counts[b.Kind()]++
	}

	return counts
}
