package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize_SplitsOnDelimiterClass(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect []string
	}{
		{
			name:   "underscores",
			input:  "My_girl.mp4",
			expect: []string{"girl", "mp4", "my", "mygirlmp4"},
		},
		{
			name:   "hyphens",
			input:  "trip-photos-2024.zip",
			expect: []string{"2024", "photos", "trip", "tripphotos2024zip", "zip"},
		},
		{
			name:   "spaces",
			input:  "annual report.pdf",
			expect: []string{"annual", "annualreportpdf", "pdf", "report"},
		},
		{
			name:   "mixed delimiters",
			input:  "a_b-c d.e",
			expect: []string{"a", "abcde", "b", "c", "d", "e"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, Tokenize(tt.input))
		})
	}
}

func TestTokenize_AlnumRunsCoverUndelimitedNames(t *testing.T) {
	// Given: a camel-case name with no delimiter characters
	tokens := Tokenize("VacationPhotos2024")

	// Then: the alphanumeric run and stripped-name passes still yield the
	// whole-name token
	assert.Contains(t, tokens, "vacationphotos2024")
}

func TestTokenize_WholeNameTokenIgnoresDelimiterStyle(t *testing.T) {
	// The stripped whole-name token makes my_girl, my-girl, and "my girl"
	// all reachable by the query "mygirl".
	for _, name := range []string{"my_girl.mp4", "my-girl.mp4", "my girl.mp4"} {
		assert.Contains(t, Tokenize(name), "mygirlmp4", "name %q", name)
	}
}

func TestTokenize_Totality(t *testing.T) {
	// Every non-empty filename must yield a non-empty set of non-empty,
	// deduplicated tokens.
	names := []string{
		"a",
		"...",
		"___",
		"report.pdf",
		"ファイル.txt",
		"'%$#!",
		" ",
		"x-",
	}

	for _, name := range names {
		tokens := Tokenize(name)
		require.NotEmpty(t, tokens, "name %q", name)

		seen := make(map[string]struct{})
		for _, tok := range tokens {
			assert.NotEmpty(t, tok, "name %q", name)
			_, dup := seen[tok]
			assert.False(t, dup, "duplicate token %q for name %q", tok, name)
			seen[tok] = struct{}{}
		}
	}
}

func TestTokenize_EmptyInput(t *testing.T) {
	assert.Empty(t, Tokenize(""))
}

func TestTokenize_LowercasesEverything(t *testing.T) {
	for _, tok := range Tokenize("IMG_2024_Screenshot.PNG") {
		assert.Equal(t, tok, toLowerASCII(tok))
	}
}

// toLowerASCII avoids pulling strings into the assertion loop above.
func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 32
		}
	}
	return string(b)
}

func TestEntryTokens_IncludesTypeExtensionAndTags(t *testing.T) {
	// Given: an entry with category, extension, and tags
	e := Entry{
		FileID:       "f1",
		Name:         "beach_sunset.jpg",
		Extension:    "jpg",
		TypeCategory: TypeImage,
		Tags:         []string{"vacation", "summer-2024"},
	}

	// When: deriving the indexed token set
	tokens := EntryTokens(e)

	// Then: filename, category, extension, and tag tokens are all present
	assert.Contains(t, tokens, "beach")
	assert.Contains(t, tokens, "sunset")
	assert.Contains(t, tokens, "image")
	assert.Contains(t, tokens, "jpg")
	assert.Contains(t, tokens, "vacation")
	assert.Contains(t, tokens, "summer")
	assert.Contains(t, tokens, "2024")
}

func TestEntryTokens_Deterministic(t *testing.T) {
	e := Entry{FileID: "f1", Name: "a_b_c.txt", Extension: "txt", TypeCategory: TypeDocument}
	assert.Equal(t, EntryTokens(e), EntryTokens(e))
}

func TestClassifyExtension(t *testing.T) {
	tests := []struct {
		ext    string
		expect TypeCategory
	}{
		{"jpg", TypeImage},
		{".PNG", TypeImage},
		{"mp4", TypeVideo},
		{"flac", TypeAudio},
		{"pdf", TypeDocument},
		{"go", TypeCode},
		{"exe", TypeExecutable},
		{"zip", TypeCompressed},
		{"xyz", TypeOther},
		{"", TypeOther},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expect, ClassifyExtension(tt.ext), "ext %q", tt.ext)
	}
}

func TestParseTypeCategory(t *testing.T) {
	cat, ok := ParseTypeCategory("Image")
	require.True(t, ok)
	assert.Equal(t, TypeImage, cat)

	_, ok = ParseTypeCategory("holograms")
	assert.False(t, ok)
}
