package archive

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shishobooks/toshokan/pkg/comicpath"
	"github.com/shishobooks/toshokan/pkg/errcodes"
	"github.com/shishobooks/toshokan/pkg/mediafile"
	"github.com/shishobooks/toshokan/pkg/naturalsort"
)

// SelectPages turns an archive's raw entries into the ordered sequence an
// operation consumes.
//
// With forceImages false and no page range requested, the result is the raw
// entries minus blacklisted folders and macOS sidecars, in archive order; this
// mode serves sidecar probes that need non-image entries. Otherwise only image
// entries survive, sorted by the natural order of their extension-stripped
// full names.
//
// When a page range is present, the cover entry (the metadata's explicit
// CoverFile, else the first entry classified as a cover) is split off before
// slicing; ranges therefore index the cover-free list. The cover is appended
// back after the slice iff the range starts at 0 — downstream repackaging
// preserves order, and the cover travels as an appendix only when the slice
// includes the start of the book. Out-of-range windows fail; nothing clamps.
func SelectPages(entries []Entry, meta mediafile.FileMetadata, forceImages bool, classifier *comicpath.Classifier) ([]Entry, error) {
	if classifier == nil {
		classifier = comicpath.Default()
	}

	raw := rawFilter(entries, classifier)

	if !forceImages && !meta.PageRange.Present() {
		return raw, nil
	}

	images := imageFilter(raw, classifier)
	naturalsort.SortBy(images, func(e Entry) string {
		return stripExtension(e.FullName())
	})

	if !meta.PageRange.Present() {
		return images, nil
	}

	cover, rest := splitCover(images, meta, classifier)

	min, max := meta.PageRange.Min, meta.PageRange.Max
	if min >= len(rest) || max >= len(rest) {
		return nil, errcodes.RangeOutOfBounds(fmt.Sprintf("requested %s of %d pages", meta.PageRange, len(rest)))
	}

	slice := make([]Entry, 0, max-min+2)
	slice = append(slice, rest[min:max+1]...)
	if cover != nil && min == 0 {
		slice = append(slice, cover)
	}
	return slice, nil
}

// rawFilter drops entries inside blacklisted folders and macOS resource
// forks, preserving archive order.
func rawFilter(entries []Entry, classifier *comicpath.Classifier) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		name := e.FullName()
		if classifier.HasBlacklistedFolder(name) || classifier.IsMacOSSidecar(name) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func imageFilter(entries []Entry, classifier *comicpath.Classifier) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.IsDirectory() || !classifier.IsImage(e.FullName()) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// splitCover removes the cover entry from the sorted image list. An explicit
// CoverFile is matched verbatim against the full entry name; otherwise the
// first entry whose name classifies as a cover wins.
func splitCover(images []Entry, meta mediafile.FileMetadata, classifier *comicpath.Classifier) (Entry, []Entry) {
	coverIdx := -1
	for i, e := range images {
		if meta.CoverFile != "" {
			if e.FullName() == meta.CoverFile {
				coverIdx = i
				break
			}
			continue
		}
		if classifier.IsCover(e.FullName()) {
			coverIdx = i
			break
		}
	}
	if coverIdx < 0 {
		return nil, images
	}
	rest := make([]Entry, 0, len(images)-1)
	rest = append(rest, images[:coverIdx]...)
	rest = append(rest, images[coverIdx+1:]...)
	return images[coverIdx], rest
}

// stripExtension removes the final extension from an entry path.
func stripExtension(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
