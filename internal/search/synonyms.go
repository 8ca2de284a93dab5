package search

import (
	"strings"

	"github.com/filesift/filesift/internal/index"
)

// FileSynonyms maps everyday file-search vocabulary onto the tokens that
// actually appear in filenames. Lookup is one-directional: the key is what
// the user typed, the values are what the index may contain. A term with no
// entry expands to nothing; the table never invents relations.
//
// Expansions are searched like literal query tokens but tagged semantic and
// weighted below exact and fuzzy hits.
var FileSynonyms = map[string][]string{
	// image vocabulary
	"photo":       {"image", "picture", "img", "pic", "jpg", "png", "screenshot"},
	"photos":      {"image", "picture", "img", "pic", "jpg", "png", "screenshot"},
	"picture":     {"image", "photo", "img", "pic"},
	"pictures":    {"image", "photo", "img", "pic"},
	"img":         {"image", "photo", "picture"},
	"pic":         {"image", "photo", "picture"},
	"image":       {"photo", "picture", "img"},
	"screenshot":  {"image", "capture", "screen"},
	"screenshots": {"image", "capture", "screen"},

	// video vocabulary
	"video":  {"movie", "film", "clip"},
	"videos": {"movie", "film", "clip"},
	"movie":  {"video", "film", "clip"},
	"movies": {"video", "film", "clip"},
	"film":   {"video", "movie", "clip"},
	"clip":   {"video", "movie"},
	"clips":  {"video", "movie"},

	// audio vocabulary
	"audio":    {"music", "song", "track", "sound"},
	"music":    {"audio", "song", "track"},
	"song":     {"audio", "music", "track"},
	"songs":    {"audio", "music", "track"},
	"track":    {"audio", "music", "song"},
	"podcast":  {"audio", "episode"},
	"podcasts": {"audio", "episode"},
	"sound":    {"audio", "music"},

	// document vocabulary
	"document":      {"doc", "pdf", "text", "report"},
	"documents":     {"doc", "pdf", "text", "report"},
	"doc":           {"document", "pdf", "text"},
	"docs":          {"document", "pdf", "text"},
	"pdf":           {"document", "doc"},
	"pdfs":          {"document", "doc"},
	"text":          {"document", "doc", "notes"},
	"report":        {"document", "summary"},
	"reports":       {"document", "summary"},
	"spreadsheet":   {"sheet", "xls", "csv", "table"},
	"spreadsheets":  {"sheet", "xls", "csv", "table"},
	"presentation":  {"slides", "deck", "ppt"},
	"presentations": {"slides", "deck", "ppt"},

	// code vocabulary
	"code":    {"script", "source", "program"},
	"script":  {"code", "source", "program"},
	"scripts": {"code", "source", "program"},
	"program": {"code", "script", "source"},
	"source":  {"code", "script"},

	// archive vocabulary
	"archive":    {"zip", "backup", "tar"},
	"archives":   {"zip", "backup", "tar"},
	"zip":        {"archive", "compressed"},
	"compressed": {"archive", "zip"},
}

// conceptCategories maps vocabulary terms to the TypeCategory they imply,
// so a bare "photos" query biases toward image files even when no filename
// token matches.
var conceptCategories = map[string]index.TypeCategory{
	"photo": index.TypeImage, "photos": index.TypeImage,
	"picture": index.TypeImage, "pictures": index.TypeImage,
	"img": index.TypeImage, "pic": index.TypeImage,
	"image": index.TypeImage, "images": index.TypeImage,
	"screenshot": index.TypeImage, "screenshots": index.TypeImage,

	"video": index.TypeVideo, "videos": index.TypeVideo,
	"movie": index.TypeVideo, "movies": index.TypeVideo,
	"film": index.TypeVideo, "clip": index.TypeVideo, "clips": index.TypeVideo,

	"audio": index.TypeAudio, "music": index.TypeAudio,
	"song": index.TypeAudio, "songs": index.TypeAudio,
	"track": index.TypeAudio, "podcast": index.TypeAudio,
	"podcasts": index.TypeAudio, "sound": index.TypeAudio,

	"document": index.TypeDocument, "documents": index.TypeDocument,
	"doc": index.TypeDocument, "docs": index.TypeDocument,
	"pdf": index.TypeDocument, "pdfs": index.TypeDocument,
	"text": index.TypeDocument, "report": index.TypeDocument,
	"reports": index.TypeDocument, "spreadsheet": index.TypeDocument,
	"spreadsheets": index.TypeDocument, "presentation": index.TypeDocument,
	"presentations": index.TypeDocument,

	"code": index.TypeCode, "script": index.TypeCode,
	"scripts": index.TypeCode, "program": index.TypeCode,
	"source": index.TypeCode,

	"archive": index.TypeCompressed, "archives": index.TypeCompressed,
	"zip": index.TypeCompressed, "compressed": index.TypeCompressed,
}

// Synonyms is the semantic expander: a fixed mapping from query vocabulary
// to filename tokens plus the file category each concept implies.
type Synonyms struct {
	expansions map[string][]string
	categories map[string]index.TypeCategory
}

// DefaultSynonyms returns an expander over the built-in file vocabulary.
func DefaultSynonyms() *Synonyms {
	return NewSynonyms(FileSynonyms, conceptCategories)
}

// NewSynonyms builds an expander from custom tables. Keys are lower-cased;
// nil maps are treated as empty.
func NewSynonyms(expansions map[string][]string, categories map[string]index.TypeCategory) *Synonyms {
	s := &Synonyms{
		expansions: make(map[string][]string, len(expansions)),
		categories: make(map[string]index.TypeCategory, len(categories)),
	}
	for k, v := range expansions {
		s.expansions[strings.ToLower(k)] = v
	}
	for k, v := range categories {
		s.categories[strings.ToLower(k)] = v
	}
	return s
}

// Expand returns the synonym tokens for a term, excluding the term itself.
// Unmapped terms return nil. The returned slice is a copy; callers may
// modify it.
func (s *Synonyms) Expand(term string) []string {
	term = strings.ToLower(term)
	syns, ok := s.expansions[term]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(syns))
	for _, syn := range syns {
		if syn != term {
			out = append(out, syn)
		}
	}
	return out
}

// ImpliedCategory reports the TypeCategory a term implies, if any.
func (s *Synonyms) ImpliedCategory(term string) (index.TypeCategory, bool) {
	cat, ok := s.categories[strings.ToLower(term)]
	return cat, ok
}
