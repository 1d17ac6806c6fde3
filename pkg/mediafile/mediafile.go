// Package mediafile holds the value records passed between the scanner, the
// archive codec, and the chapter extractor.
package mediafile

import (
	"fmt"

	"github.com/shishobooks/toshokan/pkg/pagerange"
)

// Sentinels used by the scanner when a file's position in a series is unknown.
const (
	// DefaultChapter marks a file with no chapter information.
	DefaultChapter = "0"
	// LooseLeafVolume marks a file that does not belong to a numbered volume.
	LooseLeafVolume = "0"
)

// FileMetadata identifies one archive plus an optional projection over its
// pages. It is the codec's primary cache key: identity is (Path, PageRange).
type FileMetadata struct {
	// Path is the absolute filesystem path of the archive.
	Path string
	// PageRange, when present, selects a window over the filtered image list
	// (not over the raw archive entries).
	PageRange pagerange.Range
	// FileSize is informational; -1 means unknown.
	FileSize int64
	// CoverFile, when set, names the cover entry verbatim instead of electing
	// one by heuristic.
	CoverFile string
}

// NewFileMetadata returns metadata for a whole archive with unknown size.
func NewFileMetadata(path string) FileMetadata {
	return FileMetadata{Path: path, FileSize: -1}
}

// Key returns the codec cache key.
func (m FileMetadata) Key() string {
	return m.Path + "#" + m.PageRange.String()
}

func (m FileMetadata) String() string {
	if m.PageRange.Present() {
		return fmt.Sprintf("%s[%s]", m.Path, m.PageRange)
	}
	return m.Path
}

// PageInfo describes one page of an archive: the entry name, the zero-based
// index into the filtered image list, and the compressed size in bytes.
type PageInfo struct {
	Name  string
	Index int
	Size  int64
}

// ParsedChapter is one logical chapter sliced out of a volume archive.
type ParsedChapter struct {
	// Page is the zero-based index of the chapter's first page.
	Page int
	// Chapter is the parsed chapter label ("1", "12.5", ...).
	Chapter string
	// Title is the human title when one was found ("The Fall" from
	// "Chapter 1: The Fall").
	Title string
}

// ParserInfo is the scanner's result record for one file.
type ParserInfo struct {
	Series    string
	Volumes   string
	Chapters  string
	Title     string
	IsSpecial bool
	Format    string

	Metadata FileMetadata
}

// Clone returns a deep copy; FileMetadata and pagerange.Range are value types
// so assignment suffices.
func (p ParserInfo) Clone() ParserInfo {
	return p
}
