// Package comicpath contains the path predicates shared by the archive codec:
// which entries are images, which files are archives, which folders never
// contribute pages, and which filenames count as a cover.
package comicpath

import (
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultCoverPattern matches the conventional cover/folder filenames, allowing
// separators around the keyword ("cover", "folder", "001-cover", "cover_v2").
const DefaultCoverPattern = `(?i)(?:^|[\s_-])(?:cover|folder)(?:[\s_-]|$)`

// MacOSSidecarPrefix marks AppleDouble resource forks.
const MacOSSidecarPrefix = "._"

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {},
	".avif": {}, ".jxl": {}, ".bmp": {}, ".tiff": {},
}

var archiveExtensions = map[string]struct{}{
	".cbz": {}, ".zip": {}, ".cbr": {}, ".rar": {},
	".cb7": {}, ".7z": {}, ".cbt": {}, ".tar.gz": {},
}

var rarExtensions = map[string]struct{}{
	".cbr": {}, ".rar": {},
}

// Classifier answers path predicates. The zero value is not usable; construct
// with New or use the package-level functions which share a default instance.
type Classifier struct {
	coverRE *regexp.Regexp
}

// New compiles a classifier with a custom cover pattern. An empty pattern
// selects DefaultCoverPattern.
func New(coverPattern string) (*Classifier, error) {
	if coverPattern == "" {
		coverPattern = DefaultCoverPattern
	}
	re, err := regexp.Compile(coverPattern)
	if err != nil {
		return nil, err
	}
	return &Classifier{coverRE: re}, nil
}

var defaultClassifier = &Classifier{coverRE: regexp.MustCompile(DefaultCoverPattern)}

// Default returns the shared classifier built from DefaultCoverPattern.
func Default() *Classifier {
	return defaultClassifier
}

// ext returns the lowercased final extension, with the ".tar.gz" double suffix
// kept whole so it classifies as one archive extension.
func ext(name string) string {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".tar.gz") {
		return ".tar.gz"
	}
	return filepath.Ext(lower)
}

// IsImage reports whether the final extension belongs to a page image.
func (c *Classifier) IsImage(name string) bool {
	_, ok := imageExtensions[ext(name)]
	return ok
}

// IsArchive reports whether the extension belongs to a comic archive.
func (c *Classifier) IsArchive(name string) bool {
	_, ok := archiveExtensions[ext(name)]
	return ok
}

// IsRarExtension reports whether the extension names the RAR family outright.
func (c *Classifier) IsRarExtension(name string) bool {
	_, ok := rarExtensions[ext(name)]
	return ok
}

// IsEpub reports whether the extension is .epub.
func (c *Classifier) IsEpub(name string) bool {
	return ext(name) == ".epub"
}

// IsCover reports whether the base name (extension stripped, case-insensitive)
// is exactly "cover" or "folder", or matches the configured cover pattern.
func (c *Classifier) IsCover(name string) bool {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	lower := strings.ToLower(base)
	if lower == "cover" || lower == "folder" {
		return true
	}
	return c.coverRE.MatchString(base)
}

// HasBlacklistedFolder reports whether any path segment is __MACOSX or starts
// with a dot. Both slash styles are honored since archive entries carry
// whatever separator the packer used.
func (c *Classifier) HasBlacklistedFolder(path string) bool {
	normalized := strings.ReplaceAll(path, "\\", "/")
	segments := strings.Split(normalized, "/")
	// The final segment is the filename, not a folder.
	for _, segment := range segments[:len(segments)-1] {
		if segment == "__MACOSX" {
			return true
		}
		if strings.HasPrefix(segment, ".") && segment != "." && segment != ".." {
			return true
		}
	}
	return false
}

// IsMacOSSidecar reports whether the entry's base name begins with "._".
func (c *Classifier) IsMacOSSidecar(name string) bool {
	normalized := strings.ReplaceAll(name, "\\", "/")
	return strings.HasPrefix(filepath.Base(normalized), MacOSSidecarPrefix)
}

func IsImage(name string) bool              { return defaultClassifier.IsImage(name) }
func IsArchive(name string) bool            { return defaultClassifier.IsArchive(name) }
func IsRarExtension(name string) bool       { return defaultClassifier.IsRarExtension(name) }
func IsEpub(name string) bool               { return defaultClassifier.IsEpub(name) }
func IsCover(name string) bool              { return defaultClassifier.IsCover(name) }
func HasBlacklistedFolder(path string) bool { return defaultClassifier.HasBlacklistedFolder(path) }
func IsMacOSSidecar(name string) bool       { return defaultClassifier.IsMacOSSidecar(name) }
