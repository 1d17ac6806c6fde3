package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/pkg/errors"

	"github.com/shishobooks/toshokan/pkg/errcodes"
	"github.com/shishobooks/toshokan/pkg/mediafile"
)

// RepackZipStream projects the metadata's page window into a fresh in-memory
// ZIP and returns the stream positioned at 0. Without a page range the file
// is returned as-is. With one, the selected pages (cover appendix rules
// included) plus — when the range starts at 0 — the ComicInfo.xml sidecar are
// copied into a new deflated ZIP preserving entry name, uncompressed size,
// and modification time.
//
// This is the one operation that buffers an archive's worth of data; callers
// size their worker pools accordingly. On failure the stream is nil and the
// failure has been reported.
func (s *Service) RepackZipStream(ctx context.Context, meta mediafile.FileMetadata) io.ReadCloser {
	if !meta.PageRange.Present() {
		f, err := s.dirs.Fs().Open(meta.Path)
		if err != nil {
			s.report(meta.Path, "unable to open archive", errcodes.Io(meta.Path, err))
			return nil
		}
		return f
	}

	h, err := Open(meta.Path, s.classifier)
	if err != nil {
		s.report(meta.Path, "unable to open archive", err)
		return nil
	}
	defer h.Close()

	selected, err := SelectPages(h.Entries(), meta, true, s.classifier)
	if err != nil {
		s.report(meta.Path, "unable to select pages", err)
		return nil
	}
	selected = appendSidecarEntry(selected, h.Entries(), meta, s.classifier)

	buf := &bytes.Buffer{}
	if err := writeZip(ctx, buf, selected); err != nil {
		s.report(meta.Path, "unable to repackage archive", err)
		return nil
	}
	return io.NopCloser(bytes.NewReader(buf.Bytes()))
}

// writeZip copies the entries into w as a deflated ZIP. Cancellation is
// honored between entries, never mid-copy.
func writeZip(ctx context.Context, w io.Writer, entries []Entry) error {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			zw.Close()
			return errors.WithStack(err)
		}
		if e.IsDirectory() {
			continue
		}
		header := &zip.FileHeader{
			Name:     e.FullName(),
			Method:   zip.Deflate,
			Modified: e.Modified(),
		}
		header.UncompressedSize64 = uint64(e.UncompressedSize())
		out, err := zw.CreateHeader(header)
		if err != nil {
			zw.Close()
			return errors.WithStack(err)
		}
		if err := copyEntry(e, out); err != nil {
			zw.Close()
			return err
		}
	}
	return errors.WithStack(zw.Close())
}
