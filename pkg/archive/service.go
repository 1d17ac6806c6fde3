package archive

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"

	"github.com/shishobooks/toshokan/pkg/comicinfo"
	"github.com/shishobooks/toshokan/pkg/comicpath"
	"github.com/shishobooks/toshokan/pkg/covers"
	"github.com/shishobooks/toshokan/pkg/fileutils"
	"github.com/shishobooks/toshokan/pkg/mediaerrors"
	"github.com/shishobooks/toshokan/pkg/mediafile"
)

const sidecarFilename = "comicinfo.xml"

// Service is the archive codec. It is stateless aside from its collaborators,
// so a single instance is safe under caller-imposed concurrency; every
// operation opens and closes its own handle.
type Service struct {
	log        logger.Logger
	classifier *comicpath.Classifier
	encoder    covers.Encoder
	reporter   mediaerrors.Reporter
	dirs       *fileutils.Directories
}

func NewService(log logger.Logger, classifier *comicpath.Classifier, encoder covers.Encoder, reporter mediaerrors.Reporter, dirs *fileutils.Directories) *Service {
	if classifier == nil {
		classifier = comicpath.Default()
	}
	return &Service{
		log:        log,
		classifier: classifier,
		encoder:    encoder,
		reporter:   reporter,
		dirs:       dirs,
	}
}

// Classifier exposes the service's classifier for collaborators that need
// matching verdicts (chapter extraction, scanners).
func (s *Service) Classifier() *comicpath.Classifier {
	return s.classifier
}

// CanOpen reports whether any backend claims the file.
func (s *Service) CanOpen(path string) bool {
	return DetectFamily(path, s.classifier) != FamilyUnsupported
}

// PageCount counts the filtered images the metadata selects. Failures are
// reported and count as zero so one bad archive cannot poison a scan.
func (s *Service) PageCount(ctx context.Context, meta mediafile.FileMetadata) int {
	return len(s.ListPages(ctx, meta))
}

// ListPages returns (name, index, compressed size) for every page the
// metadata selects, in reading order. Empty on any failure, with a report.
func (s *Service) ListPages(ctx context.Context, meta mediafile.FileMetadata) []mediafile.PageInfo {
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

	pages := make([]mediafile.PageInfo, 0, len(selected))
	for i, e := range selected {
		pages = append(pages, mediafile.PageInfo{
			Name:  e.FullName(),
			Index: i,
			Size:  e.CompressedSize(),
		})
	}
	return pages
}

// CoverImage resolves the cover entry, streams it to the image encoder, and
// returns the final thumbnail path. Empty string on failure.
func (s *Service) CoverImage(ctx context.Context, meta mediafile.FileMetadata, outName, outDir, format string, size int) string {
	h, err := Open(meta.Path, s.classifier)
	if err != nil {
		s.report(meta.Path, "unable to open archive", err)
		return ""
	}
	defer h.Close()

	entry := s.resolveCover(h.Entries(), meta)
	if entry == nil {
		s.report(meta.Path, "no cover image found", nil)
		return ""
	}

	stream, err := entry.Open()
	if err != nil {
		s.report(meta.Path, "unable to read cover entry "+entry.FullName(), err)
		return ""
	}
	defer stream.Close()

	path, err := s.encoder.WriteCoverThumbnail(stream, outName, outDir, format, size)
	if err != nil {
		s.report(meta.Path, "unable to encode cover thumbnail", err)
		return ""
	}
	return path
}

// resolveCover honors an explicit cover override before falling back to the
// election heuristic. A missing override falls through to the heuristic
// rather than failing the operation.
func (s *Service) resolveCover(entries []Entry, meta mediafile.FileMetadata) Entry {
	if meta.CoverFile != "" {
		for _, e := range rawFilter(entries, s.classifier) {
			if e.FullName() == meta.CoverFile {
				return e
			}
		}
		s.log.Warn("explicit cover entry missing, electing one", logger.Data{
			"path":  meta.Path,
			"cover": meta.CoverFile,
		})
	}
	entry, ok := FindCover(entries, meta.Path, s.classifier)
	if !ok {
		return nil
	}
	return entry
}

// ComicInfo parses the archive's sidecar, or returns nil when there is none.
// A malformed sidecar is treated as absent and not reported; they are common
// in the wild.
func (s *Service) ComicInfo(ctx context.Context, meta mediafile.FileMetadata) *comicinfo.ComicInfo {
	h, err := Open(meta.Path, s.classifier)
	if err != nil {
		s.report(meta.Path, "unable to open archive", err)
		return nil
	}
	defer h.Close()

	entry := findSidecar(h.Entries(), s.classifier)
	if entry == nil {
		return nil
	}

	stream, err := entry.Open()
	if err != nil {
		s.report(meta.Path, "unable to read "+entry.FullName(), err)
		return nil
	}
	defer stream.Close()

	b, err := io.ReadAll(stream)
	if err != nil {
		s.report(meta.Path, "unable to read "+entry.FullName(), err)
		return nil
	}

	info, err := comicinfo.Parse(b)
	if err != nil {
		s.log.Warn("malformed ComicInfo.xml, ignoring", logger.Data{"path": meta.Path})
		return nil
	}
	return info
}

// findSidecar returns the first entry named ComicInfo.xml (case-insensitive)
// outside blacklisted folders, or nil.
func findSidecar(entries []Entry, classifier *comicpath.Classifier) Entry {
	for _, e := range rawFilter(entries, classifier) {
		if e.IsDirectory() {
			continue
		}
		name := strings.ReplaceAll(e.FullName(), "\\", "/")
		if strings.EqualFold(filepath.Base(name), sidecarFilename) {
			return e
		}
	}
	return nil
}

func (s *Service) report(path, message string, cause error) {
	s.reporter.Report(path, mediaerrors.ProducerArchiveService, message, cause)
}

// appendSidecarEntry adds the ComicInfo.xml entry to selected when the
// requested range is present and starts at the cover page; the projection
// that keeps the cover also keeps the bibliographic record.
func appendSidecarEntry(selected []Entry, all []Entry, meta mediafile.FileMetadata, classifier *comicpath.Classifier) []Entry {
	if !meta.PageRange.Present() || meta.PageRange.Min != 0 {
		return selected
	}
	sidecar := findSidecar(all, classifier)
	if sidecar == nil {
		return selected
	}
	return append(selected, sidecar)
}

// copyEntry streams one entry into w. Cancellation is checked by callers
// between entries, never mid-read.
func copyEntry(e Entry, w io.Writer) error {
	stream, err := e.Open()
	if err != nil {
		return errors.WithStack(err)
	}
	defer stream.Close()
	_, err = io.Copy(w, stream)
	return errors.WithStack(err)
}
