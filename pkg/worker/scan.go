// Package worker fans a scan out over archives: one task per file, a bounded
// pool, and per-file failure isolation so a corrupt archive becomes one report
// instead of a dead scan.
package worker

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/robinjoseph08/golib/logger"
	"golang.org/x/sync/errgroup"

	"github.com/shishobooks/toshokan/pkg/archive"
	"github.com/shishobooks/toshokan/pkg/chapters"
	"github.com/shishobooks/toshokan/pkg/comicinfo"
	"github.com/shishobooks/toshokan/pkg/epub"
	"github.com/shishobooks/toshokan/pkg/mediaerrors"
	"github.com/shishobooks/toshokan/pkg/mediafile"
)

// ScanResult is the outcome of scanning one archive: its page count and the
// per-chapter ParserInfos the extractor produced (a single entry when the
// file is not sliceable).
type ScanResult struct {
	Path      string
	PageCount int
	Infos     []mediafile.ParserInfo
}

type Scanner struct {
	log       logger.Logger
	codec     *archive.Service
	books     *epub.Service
	extractor *chapters.Extractor
	reporter  mediaerrors.Reporter
	processes int
}

func NewScanner(log logger.Logger, codec *archive.Service, books *epub.Service, reporter mediaerrors.Reporter, processes int) *Scanner {
	if processes < 1 {
		processes = 1
	}
	return &Scanner{
		log:       log,
		codec:     codec,
		books:     books,
		extractor: chapters.New(log),
		reporter:  reporter,
		processes: processes,
	}
}

// Scan processes paths with a bounded worker pool. Results arrive in path
// order. The scan finishes even when individual files fail; only context
// cancellation stops it early.
func (s *Scanner) Scan(ctx context.Context, paths []string) []ScanResult {
	results := make([]ScanResult, len(paths))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.processes)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result := s.scanOne(ctx, path)
			mu.Lock()
			results[i] = result
			mu.Unlock()
			return nil
		})
	}
	// Worker errors are only ever cancellation; per-file failures are
	// already isolated inside scanOne.
	_ = g.Wait()

	out := make([]ScanResult, 0, len(results))
	for _, r := range results {
		if r.Path != "" {
			out = append(out, r)
		}
	}
	return out
}

func (s *Scanner) scanOne(ctx context.Context, path string) ScanResult {
	result := ScanResult{Path: path}

	classifier := s.codec.Classifier()
	if classifier.IsEpub(path) {
		info, err := s.books.ParseInfo(path)
		if err != nil {
			s.reporter.Report(path, mediaerrors.ProducerBookService, "unable to parse epub", err)
			return result
		}
		if info != nil {
			result.Infos = []mediafile.ParserInfo{*info}
		}
		return result
	}

	if !s.codec.CanOpen(path) {
		s.reporter.Report(path, mediaerrors.ProducerArchiveService, "unsupported archive", nil)
		return result
	}

	meta := mediafile.NewFileMetadata(path)
	pages := s.codec.ListPages(ctx, meta)
	result.PageCount = len(pages)
	if len(pages) == 0 {
		return result
	}

	ci := s.codec.ComicInfo(ctx, meta)
	info := parseInfoFromFile(path, ci)
	result.Infos = s.extractor.Extract(info, pages, ci)
	return result
}

var (
	// parensRE strips parenthesized release metadata before volume parsing.
	parensRE = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)
	// volumeREs match "#7", "v7", or a bare trailing number, decimals allowed.
	volumeREs = []*regexp.Regexp{
		regexp.MustCompile(`(?i)#(\d+(?:\.\d+)?)$`),
		regexp.MustCompile(`(?i)\bv(?:ol\.?)?\s*(\d+(?:\.\d+)?)$`),
		regexp.MustCompile(`(?i)\s(\d+(?:\.\d+)?)$`),
	}
	multiSpaceRE = regexp.MustCompile(`\s+`)
)

// parseInfoFromFile builds the base ParserInfo for an archive, preferring
// sidecar fields and falling back to filename heuristics.
func parseInfoFromFile(path string, ci *comicinfo.ComicInfo) mediafile.ParserInfo {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	stripped := strings.TrimSpace(parensRE.ReplaceAllString(name, ""))
	stripped = multiSpaceRE.ReplaceAllString(stripped, " ")

	info := mediafile.ParserInfo{
		Volumes:  mediafile.LooseLeafVolume,
		Chapters: mediafile.DefaultChapter,
		Format:   strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
		Metadata: mediafile.NewFileMetadata(path),
	}

	series, volume := parseSeriesAndVolume(stripped)
	info.Series = series
	info.Volumes = volume

	if ci != nil {
		if ci.Series != "" {
			info.Series = ci.Series
		}
		if ci.Volume != "" {
			info.Volumes = ci.Volume
		}
		if ci.Number != "" {
			info.Chapters = ci.Number
		}
		if ci.Title != "" {
			info.Title = ci.Title
		}
		if strings.EqualFold(ci.Format, "special") {
			info.IsSpecial = true
		}
	}
	return info
}

// parseSeriesAndVolume splits "Series v03" style names into the series text
// and a normalized volume label.
func parseSeriesAndVolume(name string) (string, string) {
	for _, re := range volumeREs {
		loc := re.FindStringSubmatchIndex(name)
		if loc == nil {
			continue
		}
		volume := normalizeVolume(name[loc[2]:loc[3]])
		series := strings.TrimSpace(name[:loc[0]])
		if series == "" {
			series = name
		}
		return series, volume
	}
	return name, mediafile.LooseLeafVolume
}

func normalizeVolume(raw string) string {
	out := strings.TrimLeft(raw, "0")
	if out == "" || strings.HasPrefix(out, ".") {
		out = "0" + out
	}
	if out == "0" {
		return mediafile.LooseLeafVolume
	}
	return out
}
