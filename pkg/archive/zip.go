package archive

import (
	"archive/zip"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shishobooks/toshokan/pkg/errcodes"
)

// openZip opens the ZIP family (cbz, zip, epub).
func openZip(path string) (Handle, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		if os.IsNotExist(err) || os.IsPermission(err) {
			return nil, errcodes.Io(path, err)
		}
		return nil, errcodes.NotAnArchive(path)
	}

	entries := make([]Entry, 0, len(rc.File))
	for _, f := range rc.File {
		entries = append(entries, &zipEntry{f: f})
	}
	return &zipHandle{rc: rc, entries: entries}, nil
}

type zipHandle struct {
	rc      *zip.ReadCloser
	entries []Entry
}

func (h *zipHandle) Entries() []Entry { return h.entries }
func (h *zipHandle) Family() Family   { return FamilyZip }
func (h *zipHandle) Close() error     { return h.rc.Close() }

type zipEntry struct {
	f *zip.File
}

func (e *zipEntry) FullName() string { return e.f.Name }

func (e *zipEntry) IsDirectory() bool {
	return strings.HasSuffix(e.f.Name, "/") || e.f.FileInfo().IsDir()
}

func (e *zipEntry) CompressedSize() int64   { return int64(e.f.CompressedSize64) }
func (e *zipEntry) UncompressedSize() int64 { return int64(e.f.UncompressedSize64) }
func (e *zipEntry) Modified() time.Time     { return e.f.Modified }

func (e *zipEntry) Open() (io.ReadCloser, error) {
	return e.f.Open()
}
