package archive

import (
	"path/filepath"
	"strings"

	"github.com/shishobooks/toshokan/pkg/comicpath"
	"github.com/shishobooks/toshokan/pkg/naturalsort"
)

// FindCover elects the single entry that is the archive's cover. Priority:
//
//  1. an image whose base name classifies as a cover, first by natural order
//     of the base name;
//  2. the first image at the archive root (no directory component, or a
//     directory equal to the archive's own base name), by natural order;
//  3. the first image of the naturally-first directory, by natural order of
//     the base name;
//  4. the first image overall by natural order of the base name.
//
// Blacklisted folders and macOS sidecars never participate. The second return
// is false iff no image survives filtering.
func FindCover(entries []Entry, archivePath string, classifier *comicpath.Classifier) (Entry, bool) {
	if classifier == nil {
		classifier = comicpath.Default()
	}

	images := imageFilter(rawFilter(entries, classifier), classifier)
	if len(images) == 0 {
		return nil, false
	}

	// 1. Conventional cover filenames.
	if e := firstBy(images, baseName, func(e Entry) bool {
		return classifier.IsCover(e.FullName())
	}); e != nil {
		return e, true
	}

	// 2. Images at the archive root.
	root := stripExtension(filepath.Base(archivePath))
	if e := firstBy(images, func(e Entry) string { return e.FullName() }, func(e Entry) bool {
		dir := dirComponent(e.FullName())
		return dir == "" || dir == root
	}); e != nil {
		return e, true
	}

	// 3. First image of the naturally-first directory.
	firstDir := ""
	for _, e := range images {
		dir := dirComponent(e.FullName())
		if firstDir == "" || naturalsort.Less(dir, firstDir) {
			firstDir = dir
		}
	}
	if e := firstBy(images, baseName, func(e Entry) bool {
		return dirComponent(e.FullName()) == firstDir
	}); e != nil {
		return e, true
	}

	// 4. Fall back to the first image by base name.
	return firstBy(images, baseName, func(Entry) bool { return true }), true
}

// firstBy returns the entry minimal under the natural order of key among
// those matching pred, or nil.
func firstBy(entries []Entry, key func(Entry) string, pred func(Entry) bool) Entry {
	var best Entry
	for _, e := range entries {
		if !pred(e) {
			continue
		}
		if best == nil || naturalsort.Less(key(e), key(best)) {
			best = e
		}
	}
	return best
}

func baseName(e Entry) string {
	name := strings.ReplaceAll(e.FullName(), "\\", "/")
	return stripExtension(filepath.Base(name))
}

func dirComponent(name string) string {
	normalized := strings.ReplaceAll(name, "\\", "/")
	dir := filepath.Dir(normalized)
	if dir == "." {
		return ""
	}
	return dir
}
