package index

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// alnumRun matches maximal runs of letters and digits. Used as a fallback
// so filenames without delimiters (camel case, concatenated words) still
// produce searchable tokens.
var alnumRun = regexp.MustCompile(`[\p{L}\p{N}]+`)

// isTokenDelimiter reports whether r separates words in a filename.
// The delimiter class is underscore, hyphen, dot, and whitespace.
func isTokenDelimiter(r rune) bool {
	return r == '_' || r == '-' || r == '.' || unicode.IsSpace(r)
}

// Tokenize derives the searchable token set from a raw filename.
//
// The result is lower-cased, deduplicated, sorted, and never empty for
// non-empty input. Three extraction passes feed the set: a split on the
// delimiter class, maximal alphanumeric runs, and the whole name with all
// non-alphanumerics stripped (whole-name lookup regardless of delimiter
// style). No stemming is applied.
func Tokenize(name string) []string {
	if name == "" {
		return nil
	}

	lower := strings.ToLower(name)
	seen := make(map[string]struct{})

	for _, piece := range strings.FieldsFunc(lower, isTokenDelimiter) {
		seen[piece] = struct{}{}
	}

	for _, run := range alnumRun.FindAllString(lower, -1) {
		seen[run] = struct{}{}
	}

	if stripped := stripNonAlnum(lower); stripped != "" {
		seen[stripped] = struct{}{}
	}

	// Names made entirely of delimiters produce nothing above; keep the
	// tokenizer total by falling back to the raw lower-cased name.
	if len(seen) == 0 {
		seen[lower] = struct{}{}
	}

	tokens := make([]string, 0, len(seen))
	for t := range seen {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	return tokens
}

// EntryTokens returns the full token set indexed for an entry: filename
// tokens plus the type category, the extension, and tag tokens. This is the
// set the trie's posting invariant is maintained against.
func EntryTokens(e Entry) []string {
	seen := make(map[string]struct{})
	for _, t := range Tokenize(e.Name) {
		seen[t] = struct{}{}
	}
	if e.TypeCategory != "" {
		seen[string(e.TypeCategory)] = struct{}{}
	}
	if e.Extension != "" {
		seen[NormalizeExtension(e.Extension)] = struct{}{}
	}
	for _, tag := range e.Tags {
		for _, t := range Tokenize(tag) {
			seen[t] = struct{}{}
		}
	}

	tokens := make([]string, 0, len(seen))
	for t := range seen {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	return tokens
}

// stripNonAlnum removes every rune that is not a letter or digit.
func stripNonAlnum(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
