// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package identifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare digits", "0000000218250097", "0000-0002-1825-0097"},
		{"bare with checksum X", "000000021825009X", "0000-0002-1825-009X"},
		{"already canonical", "0000-0002-1825-0097", "0000-0002-1825-0097"},
		{"surrounding whitespace", "  0000-0002-1825-0097\t", "0000-0002-1825-0097"},
		{"inner spaces", "0000 0002 1825 0097", "0000-0002-1825-0097"},
		{"odd hyphenation regrouped", "00-00000218-250097", "0000-0002-1825-0097"},
		{"too short passes through", "0000-0002-1825", "0000-0002-1825"},
		{"too long passes through", "00000002182500971", "00000002182500971"},
		{"url passes through", "https://orcid.org/0000-0002-1825-0097", "https://orcid.org/0000-0002-1825-0097"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeSixteenDigitsAlwaysFourGroups(t *testing.T) {
	inputs := []string{
		"1234567890123456",
		"9999999999999999",
		"0000000000000000",
		"1111222233334444",
	}
	for _, in := range inputs {
		got := Normalize(in)
		groups := strings.Split(got, "-")
		if assert.Len(t, groups, 4, got) {
			for _, g := range groups {
				assert.Len(t, g, 4)
			}
		}
		assert.Equal(t, in, strings.Join(groups, ""))
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, in := range []string{"0000000218250097", "garbage", " 0000-0002-1825-0097 "} {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), in)
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"0000-0002-1825-0097", true},
		{"0000-0002-1825-009X", true},
		{"0000-0002-1825-009x", true},
		{"0000000218250097", true},
		{"0000-0002-1825-00X7", false},
		{"0000-0002-1825", false},
		{"abcd-efgh-ijkl-mnop", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Valid(tt.input); got != tt.want {
				t.Errorf("Valid(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractDOI(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"bare", "10.1038/s41586-024-07487-w", "10.1038/s41586-024-07487-w"},
		{"resolver url", "https://doi.org/10.1145/1234567.1234568", "10.1145/1234567.1234568"},
		{"doi prefix", "doi:10.1000/xyz123", "10.1000/xyz123"},
		{"closing paren", "(see 10.1234/abc.def)", "10.1234/abc.def"},
		{"sentence period", "Published as 10.1234/abc.", "10.1234/abc"},
		{"comma", "10.1234/abc, 2020", "10.1234/abc"},
		{"semicolon", "10.1234/abc;", "10.1234/abc"},
		{"bracket", "[10.1234/abc]", "10.1234/abc"},
		{"stacked punctuation", "(10.1234/abc).", "10.1234/abc"},
		{"stops at quote", `"10.1234/abc"`, "10.1234/abc"},
		{"stops at angle bracket", "<10.1234/abc>", "10.1234/abc"},
		{"first of two", "10.1111/first 10.2222/second", "10.1111/first"},
		{"nine digit registrant", "10.123456789/x", "10.123456789/x"},
		{"three digit registrant rejected", "10.123/x", ""},
		{"no slash", "10.12345", ""},
		{"no doi", "no identifier here", ""},
		{"blank", "   ", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractDOI(tt.text))
		})
	}
}

func TestExtractDOIExcludesTrailingPunctuation(t *testing.T) {
	dois := []string{"10.1234/abc", "10.55555/j.x-1", "10.1000/182"}
	for _, doi := range dois {
		for _, p := range []string{")", "."} {
			got := ExtractDOI("text " + doi + p + " more")
			assert.Equal(t, doi, got)
		}
	}
}

func TestDOIURL(t *testing.T) {
	assert.Equal(t, "https://doi.org/10.1234/abc", DOIURL("10.1234/abc"))
}
