package archive

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/robinjoseph08/golib/logger"

	"github.com/shishobooks/toshokan/pkg/errcodes"
	"github.com/shishobooks/toshokan/pkg/mediafile"
)

// ExtractToDir writes the metadata's selected entries under dest, preserving
// each entry's relative path. Idempotent: when dest already exists the call
// returns immediately. When the archive nests everything in a single root
// folder the extracted tree is flattened one level. When a page range
// starting at 0 is present the ComicInfo.xml sidecar is extracted too.
//
// Unlike the other operations this one propagates its failure (after
// reporting it) because callers must abort the surrounding task; partial
// output is removed on error and on cancellation.
func (s *Service) ExtractToDir(ctx context.Context, meta mediafile.FileMetadata, dest string) error {
	if s.dirs.Exists(dest) {
		return nil
	}

	if err := s.extract(ctx, meta, dest); err != nil {
		s.report(meta.Path, "unable to extract archive", err)
		if cleanupErr := s.dirs.ClearAndDelete(dest); cleanupErr != nil {
			s.log.Warn("unable to remove partial extraction", logger.Data{"dest": dest})
		}
		return errcodes.ExtractFailed(meta.Path, err)
	}
	return nil
}

func (s *Service) extract(ctx context.Context, meta mediafile.FileMetadata, dest string) error {
	h, err := Open(meta.Path, s.classifier)
	if err != nil {
		return err
	}
	defer h.Close()

	selected, err := SelectPages(h.Entries(), meta, false, s.classifier)
	if err != nil {
		return err
	}
	selected = appendSidecarEntry(selected, h.Entries(), meta, s.classifier)

	if err := s.dirs.EnsureDirectory(dest); err != nil {
		return err
	}

	for _, e := range selected {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.IsDirectory() {
			continue
		}
		relative := filepath.FromSlash(strings.ReplaceAll(e.FullName(), "\\", "/"))
		target := filepath.Join(dest, relative)

		stream, err := e.Open()
		if err != nil {
			return err
		}
		err = s.dirs.WriteFile(target, stream)
		stream.Close()
		if err != nil {
			return err
		}
	}

	if nestedRoot(selected) {
		return s.dirs.Flatten(dest)
	}
	return nil
}

// nestedRoot reports whether every entry lives under one shared top-level
// directory, in which case that level is redundant after extraction.
func nestedRoot(entries []Entry) bool {
	root := ""
	seen := false
	for _, e := range entries {
		name := strings.ReplaceAll(e.FullName(), "\\", "/")
		i := strings.Index(name, "/")
		if i < 0 {
			return false
		}
		top := name[:i]
		if !seen {
			root = top
			seen = true
			continue
		}
		if top != root {
			return false
		}
	}
	return seen
}
