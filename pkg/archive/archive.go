// Package archive is the comic archive codec: a uniform read interface over
// the ZIP and RAR families, page selection with range projection, cover
// election, sidecar extraction, and repackaging into CBZ.
package archive

import (
	"io"
	"time"

	"github.com/shishobooks/toshokan/pkg/comicpath"
	"github.com/shishobooks/toshokan/pkg/errcodes"
)

// Family tags which backend owns an archive.
type Family string

const (
	FamilyZip         Family = "zip"
	FamilyRar         Family = "rar"
	FamilyUnsupported Family = "unsupported"
)

// Entry is one member of an opened archive.
type Entry interface {
	// FullName is the entry path as stored, separators included.
	FullName() string
	IsDirectory() bool
	CompressedSize() int64
	UncompressedSize() int64
	Modified() time.Time
	// Open returns the entry's byte stream. Callers must close it before
	// opening another entry of the same handle.
	Open() (io.ReadCloser, error)
}

// Handle is an opened archive. It is scoped to a single operation and must be
// closed on every exit path.
type Handle interface {
	Entries() []Entry
	Family() Family
	Close() error
}

// Open probes path and returns a handle from the first backend that accepts
// it. The probe order is fixed: a RAR-family extension goes straight to the
// RAR backend, anything else is tried as ZIP first and then handed to the
// universal backend. The probe may open the file up to three times: the ZIP
// attempt, then, for an extension the universal backend does not recognize, a
// content sniff followed by the matching backend.
func Open(path string, classifier *comicpath.Classifier) (Handle, error) {
	if classifier == nil {
		classifier = comicpath.Default()
	}

	if classifier.IsRarExtension(path) {
		return openRar(path)
	}

	h, err := openZip(path)
	if err == nil {
		return h, nil
	}
	if errcodes.KindOf(err) == errcodes.KindIo {
		// The file itself is unreadable; trying more backends cannot help.
		return nil, err
	}

	h, err = openUniversal(path)
	if err == nil {
		return h, nil
	}
	if errcodes.KindOf(err) == errcodes.KindIo {
		return nil, err
	}
	return nil, errcodes.Unsupported(path)
}

// DetectFamily reports which family would claim path, without keeping a
// handle. This is the codec's can-open probe.
func DetectFamily(path string, classifier *comicpath.Classifier) Family {
	if classifier == nil {
		classifier = comicpath.Default()
	}
	if !classifier.IsArchive(path) && !classifier.IsEpub(path) {
		return FamilyUnsupported
	}
	h, err := Open(path, classifier)
	if err != nil {
		return FamilyUnsupported
	}
	family := h.Family()
	h.Close()
	return family
}
