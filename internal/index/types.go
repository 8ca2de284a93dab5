// Package index implements the token index at the core of filesift: a
// filename tokenizer, a trie with per-token posting sets, and a bounded
// trie+Levenshtein fuzzy matcher.
//
// The structures in this package are CPU-bound and perform no I/O. They are
// not safe for concurrent use on their own; the engine serializes access
// through a single readers-writer lock so that searches always observe a
// consistent trie and metadata cache.
package index

import (
	"strings"
	"time"
)

// TypeCategory classifies a file into one of the coarse search categories.
type TypeCategory string

const (
	// TypeImage covers raster and vector image formats.
	TypeImage TypeCategory = "image"
	// TypeVideo covers video container formats.
	TypeVideo TypeCategory = "video"
	// TypeAudio covers audio formats.
	TypeAudio TypeCategory = "audio"
	// TypeDocument covers text, office, and PDF documents.
	TypeDocument TypeCategory = "document"
	// TypeCode covers source code and scripts.
	TypeCode TypeCategory = "code"
	// TypeExecutable covers binaries and installers.
	TypeExecutable TypeCategory = "executable"
	// TypeCompressed covers archives.
	TypeCompressed TypeCategory = "compressed"
	// TypeOther is the fallback for everything else.
	TypeOther TypeCategory = "other"
)

// ParseTypeCategory maps a string onto a TypeCategory.
// Unknown values return TypeOther and ok=false so callers can degrade
// gracefully instead of erroring.
func ParseTypeCategory(s string) (TypeCategory, bool) {
	switch TypeCategory(strings.ToLower(s)) {
	case TypeImage, TypeVideo, TypeAudio, TypeDocument, TypeCode, TypeExecutable, TypeCompressed, TypeOther:
		return TypeCategory(strings.ToLower(s)), true
	default:
		return TypeOther, false
	}
}

// Entry is the denormalized, cached view of one file's searchable
// attributes. It is owned by the engine's metadata cache and refreshed only
// by explicit Index/Remove/ReindexAll calls, never mutated in place.
type Entry struct {
	FileID       string       // opaque stable identifier
	Name         string       // original filename, as reported by the source
	Extension    string       // lower-cased, without leading dot
	SizeBytes    int64        // file size in bytes
	CreatedAt    time.Time    // creation or upload time
	TypeCategory TypeCategory // coarse classification
	Tags         []string     // free-form labels from the source
	Description  string       // optional text, searched as tokens
}

// extensionCategories maps lower-cased extensions to their TypeCategory.
// The table mirrors the categories the metadata sources report so that a
// directory scan and a database-backed source classify identically.
var extensionCategories = map[string]TypeCategory{
	// image
	"jpg": TypeImage, "jpeg": TypeImage, "png": TypeImage, "gif": TypeImage,
	"bmp": TypeImage, "webp": TypeImage, "svg": TypeImage, "tiff": TypeImage,
	"heic": TypeImage, "ico": TypeImage,
	// video
	"mp4": TypeVideo, "mkv": TypeVideo, "avi": TypeVideo, "mov": TypeVideo,
	"wmv": TypeVideo, "flv": TypeVideo, "webm": TypeVideo, "mpeg": TypeVideo,
	"mpg": TypeVideo, "m4v": TypeVideo,
	// audio
	"mp3": TypeAudio, "wav": TypeAudio, "flac": TypeAudio, "aac": TypeAudio,
	"ogg": TypeAudio, "m4a": TypeAudio, "wma": TypeAudio, "opus": TypeAudio,
	// document
	"pdf": TypeDocument, "doc": TypeDocument, "docx": TypeDocument,
	"xls": TypeDocument, "xlsx": TypeDocument, "ppt": TypeDocument,
	"pptx": TypeDocument, "txt": TypeDocument, "md": TypeDocument,
	"rtf": TypeDocument, "odt": TypeDocument, "csv": TypeDocument,
	"epub": TypeDocument,
	// code
	"go": TypeCode, "py": TypeCode, "js": TypeCode, "ts": TypeCode,
	"java": TypeCode, "c": TypeCode, "cpp": TypeCode, "h": TypeCode,
	"rs": TypeCode, "rb": TypeCode, "sh": TypeCode, "sql": TypeCode,
	"html": TypeCode, "css": TypeCode, "json": TypeCode, "yaml": TypeCode,
	"yml": TypeCode, "toml": TypeCode, "xml": TypeCode,
	// executable
	"exe": TypeExecutable, "msi": TypeExecutable, "dmg": TypeExecutable,
	"deb": TypeExecutable, "rpm": TypeExecutable, "apk": TypeExecutable,
	"bin": TypeExecutable, "app": TypeExecutable,
	// compressed
	"zip": TypeCompressed, "tar": TypeCompressed, "gz": TypeCompressed,
	"bz2": TypeCompressed, "xz": TypeCompressed, "7z": TypeCompressed,
	"rar": TypeCompressed, "zst": TypeCompressed,
}

// ClassifyExtension returns the TypeCategory for a file extension.
// The extension may carry a leading dot and any casing.
func ClassifyExtension(ext string) TypeCategory {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if cat, ok := extensionCategories[ext]; ok {
		return cat
	}
	return TypeOther
}

// NormalizeExtension lower-cases an extension and strips the leading dot,
// producing the form stored on Entry and compared by the @ext filter.
func NormalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
