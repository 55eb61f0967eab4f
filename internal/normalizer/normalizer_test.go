package normalizer

import (
	"reflect"
	"testing"
)

func TestLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "Empty input",
			input:    "",
			expected: nil,
		},
		{
			name:     "Whitespace only",
			input:    " \n\t\u00a0\n ",
			expected: nil,
		},
		{
			name:     "Glyphs start their own line",
			input:    "Intro text ▌Event Period ●First reward ●Second reward",
			expected: []string{"Intro text", "▌Event Period", "●First reward", "●Second reward"},
		},
		{
			name:     "Glyph already at line start",
			input:    "Intro\n  ■ Details",
			expected: []string{"Intro", "■ Details"},
		},
		{
			name:     "Note glyph mid-line",
			input:    "Rewards are limited. ※ Only once per account.",
			expected: []string{"Rewards are limited.", "※ Only once per account."},
		},
		{
			name:     "Numbered section header mid-line",
			input:    "Version Update Details 1. New Story The Trailblaze continues. 2. New Characters",
			expected: []string{"Version Update Details", "1. New Story The Trailblaze continues.", "2. New Characters"},
		},
		{
			name:     "Numbered header after glyph stays on the glyph line",
			input:    "▌ 3. Others",
			expected: []string{"▌ 3. Others"},
		},
		{
			name:     "Version numbers are not headers",
			input:    "After the Version 2.5 update",
			expected: []string{"After the Version 2.5 update"},
		},
		{
			name:     "Contract marker with article",
			input:    "Shop items: The Herta Contract: Foo Price: 100",
			expected: []string{"Shop items:", "The Herta Contract: Foo Price: 100"},
		},
		{
			name:     "Contract marker without article",
			input:    "Now available Herta Contract: Bar",
			expected: []string{"Now available", "Herta Contract: Bar"},
		},
		{
			name:     "Contract marker already at line start",
			input:    "The Herta Contract: Foo\nPrice: 100",
			expected: []string{"The Herta Contract: Foo", "Price: 100"},
		},
		{
			name:     "Multiplier split across lines",
			input:    "Fuel ×1,\n000",
			expected: []string{"Fuel ×1,000"},
		},
		{
			name:     "Multiplier split twice",
			input:    "Credit ×1,\n000,\n000 and more",
			expected: []string{"Credit ×1,000,000 and more"},
		},
		{
			name:     "Intact multiplier untouched",
			input:    "Stellar Jade ×1,600, Fuel ×3",
			expected: []string{"Stellar Jade ×1,600, Fuel ×3"},
		},
		{
			name:     "Non-breaking spaces and CRLF",
			input:    "Line\u00a0one\r\nLine two\r\n",
			expected: []string{"Line one", "Line two"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Lines(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Lines() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"▌ Event Period\n●First reward\n●Second reward",
		"Intro ▌Event Period ●a ■b ※c",
		"Fuel ×1,\n000 Shop items: The Herta Contract: Foo Price: 100 A maximum of 3",
		"Version Update Details 1. New Story Text 2. New Characters ■ 5-Star ● Foo",
		"  spaced  \n\n\n  out  ",
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)

		if once != twice {
			t.Errorf("Normalize not idempotent for %q:\nonce:  %q\ntwice: %q", in, once, twice)
		}
	}
}

func TestNormalize_JoinsLines(t *testing.T) {
	got := Normalize("a ●b")
	if got != "a\n●b" {
		t.Errorf("Normalize() = %q, want %q", got, "a\n●b")
	}
}
