package archive

import (
	"archive/tar"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bodgit/sevenzip"
	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/gzip"
	"github.com/nwaples/rardecode/v2"
	"github.com/pkg/errors"

	"github.com/shishobooks/toshokan/pkg/errcodes"
)

// openUniversal handles everything that is not plain ZIP: rar, 7z, and
// tar.gz. Extension decides first; content sniffing covers mislabeled files.
// All of these report as the RAR family, matching the probe's "general
// backend" step.
func openUniversal(path string) (Handle, error) {
	switch {
	case hasSuffixFold(path, ".rar"), hasSuffixFold(path, ".cbr"):
		return openRar(path)
	case hasSuffixFold(path, ".7z"), hasSuffixFold(path, ".cb7"):
		return openSevenZip(path)
	case hasSuffixFold(path, ".tar.gz"), hasSuffixFold(path, ".cbt"):
		return openTarGz(path)
	}

	mime, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, errcodes.Io(path, err)
	}
	switch {
	case mime.Is("application/x-rar-compressed") || mime.Is("application/x-rar"):
		return openRar(path)
	case mime.Is("application/x-7z-compressed"):
		return openSevenZip(path)
	case mime.Is("application/gzip") || mime.Is("application/x-tar"):
		return openTarGz(path)
	}
	return nil, errcodes.NotAnArchive(path)
}

func hasSuffixFold(path, suffix string) bool {
	return strings.HasSuffix(strings.ToLower(path), suffix)
}

// ---- RAR ----

func openRar(path string) (Handle, error) {
	r, err := rardecode.OpenReader(path)
	if err != nil {
		if os.IsNotExist(err) || os.IsPermission(err) {
			return nil, errcodes.Io(path, err)
		}
		return nil, errcodes.Corrupt(path, err)
	}
	defer r.Close()

	var entries []Entry
	for {
		h, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errcodes.Corrupt(path, err)
		}
		entries = append(entries, &rarEntry{
			path:     path,
			name:     h.Name,
			isDir:    h.IsDir,
			packed:   h.PackedSize,
			unpacked: h.UnPackedSize,
			modified: h.ModificationTime,
		})
	}
	return &scanHandle{entries: entries}, nil
}

// rarEntry reads its bytes by re-walking the archive; rardecode exposes a
// sequential reader only.
type rarEntry struct {
	path     string
	name     string
	isDir    bool
	packed   int64
	unpacked int64
	modified time.Time
}

func (e *rarEntry) FullName() string        { return e.name }
func (e *rarEntry) IsDirectory() bool       { return e.isDir }
func (e *rarEntry) CompressedSize() int64   { return e.packed }
func (e *rarEntry) UncompressedSize() int64 { return e.unpacked }
func (e *rarEntry) Modified() time.Time     { return e.modified }

func (e *rarEntry) Open() (io.ReadCloser, error) {
	r, err := rardecode.OpenReader(e.path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	for {
		h, err := r.Next()
		if err != nil {
			r.Close()
			if err == io.EOF {
				return nil, errcodes.EntryMissing(e.name)
			}
			return nil, errors.WithStack(err)
		}
		if h.Name == e.name {
			return &sequentialStream{Reader: r, closer: r}, nil
		}
	}
}

// ---- 7z ----

func openSevenZip(path string) (Handle, error) {
	rc, err := sevenzip.OpenReader(path)
	if err != nil {
		if os.IsNotExist(err) || os.IsPermission(err) {
			return nil, errcodes.Io(path, err)
		}
		return nil, errcodes.Corrupt(path, err)
	}

	entries := make([]Entry, 0, len(rc.File))
	for _, f := range rc.File {
		entries = append(entries, &sevenZipEntry{f: f})
	}
	return &sevenZipHandle{rc: rc, entries: entries}, nil
}

type sevenZipHandle struct {
	rc      *sevenzip.ReadCloser
	entries []Entry
}

func (h *sevenZipHandle) Entries() []Entry { return h.entries }
func (h *sevenZipHandle) Family() Family   { return FamilyRar }
func (h *sevenZipHandle) Close() error     { return h.rc.Close() }

type sevenZipEntry struct {
	f *sevenzip.File
}

func (e *sevenZipEntry) FullName() string  { return e.f.Name }
func (e *sevenZipEntry) IsDirectory() bool { return e.f.FileInfo().IsDir() }

// 7z compresses solid blocks, not entries, so no per-entry packed size exists;
// the uncompressed size stands in for both.
func (e *sevenZipEntry) CompressedSize() int64   { return int64(e.f.UncompressedSize) }
func (e *sevenZipEntry) UncompressedSize() int64 { return int64(e.f.UncompressedSize) }
func (e *sevenZipEntry) Modified() time.Time     { return e.f.Modified }

func (e *sevenZipEntry) Open() (io.ReadCloser, error) {
	return e.f.Open()
}

// ---- tar.gz ----

func openTarGz(path string) (Handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errcodes.Io(path, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, errcodes.NotAnArchive(path)
	}
	defer gz.Close()

	var entries []Entry
	tr := tar.NewReader(gz)
	for {
		h, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errcodes.Corrupt(path, err)
		}
		entries = append(entries, &tarEntry{
			path:     path,
			name:     h.Name,
			isDir:    h.FileInfo().IsDir(),
			size:     h.Size,
			modified: h.ModTime,
		})
	}
	return &scanHandle{entries: entries}, nil
}

type tarEntry struct {
	path     string
	name     string
	isDir    bool
	size     int64
	modified time.Time
}

func (e *tarEntry) FullName() string  { return e.name }
func (e *tarEntry) IsDirectory() bool { return e.isDir }

// gzip compresses the whole stream; per-entry sizes are uncompressed.
func (e *tarEntry) CompressedSize() int64   { return e.size }
func (e *tarEntry) UncompressedSize() int64 { return e.size }
func (e *tarEntry) Modified() time.Time     { return e.modified }

func (e *tarEntry) Open() (io.ReadCloser, error) {
	f, err := os.Open(e.path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, errors.WithStack(err)
	}
	tr := tar.NewReader(gz)
	for {
		h, err := tr.Next()
		if err != nil {
			gz.Close()
			f.Close()
			if err == io.EOF {
				return nil, errcodes.EntryMissing(e.name)
			}
			return nil, errors.WithStack(err)
		}
		if h.Name == e.name {
			return &sequentialStream{Reader: tr, closer: multiCloser{gz, f}}, nil
		}
	}
}

// scanHandle serves formats whose readers are stream-only: the entry list is
// gathered by one pass at open time and entry streams re-walk the file.
type scanHandle struct {
	entries []Entry
}

func (h *scanHandle) Entries() []Entry { return h.entries }
func (h *scanHandle) Family() Family   { return FamilyRar }
func (h *scanHandle) Close() error     { return nil }

type sequentialStream struct {
	io.Reader
	closer io.Closer
}

func (s *sequentialStream) Close() error {
	return s.closer.Close()
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var first error
	for _, c := range m {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
