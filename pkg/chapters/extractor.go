// Package chapters slices a single volume archive into logical chapters.
// When a volume file carries no chapter information of its own, sidecar
// bookmarks — or failing that, page filenames — reveal where chapters begin.
package chapters

import (
	"strings"

	"github.com/robinjoseph08/golib/logger"

	"github.com/shishobooks/toshokan/pkg/comicinfo"
	"github.com/shishobooks/toshokan/pkg/mediafile"
	"github.com/shishobooks/toshokan/pkg/pagerange"
)

type Extractor struct {
	log logger.Logger
}

func New(log logger.Logger) *Extractor {
	return &Extractor{log: log}
}

// Extract slices info's archive into per-chapter ParserInfos. pages is the
// archive's full ordered page list and ci its sidecar (nil when absent).
//
// Extraction only applies to plain volumes with unknown chapters: specials,
// files that already have a chapter, and loose-leaf files pass through
// unchanged, as does anything whose pages yield no chapter boundaries.
func (e *Extractor) Extract(info mediafile.ParserInfo, pages []mediafile.PageInfo, ci *comicinfo.ComicInfo) []mediafile.ParserInfo {
	if info.IsSpecial || info.Chapters != mediafile.DefaultChapter || info.Volumes == mediafile.LooseLeafVolume {
		return []mediafile.ParserInfo{info}
	}
	if len(pages) == 0 {
		return []mediafile.ParserInfo{info}
	}

	parsed := chaptersFromBookmarks(ci)
	if len(parsed) == 0 {
		parsed = chaptersFromFilenames(pages)
	}
	parsed = dedupeByLabel(parsed)
	if len(parsed) == 0 {
		return []mediafile.ParserInfo{info}
	}

	e.log.Info("sliced volume into chapters", logger.Data{
		"path":     info.Metadata.Path,
		"chapters": len(parsed),
	})

	out := make([]mediafile.ParserInfo, 0, len(parsed))
	for i, ch := range parsed {
		start := 0
		if i > 0 {
			start = ch.Page
		}
		end := len(pages) - 1
		if i < len(parsed)-1 {
			end = parsed[i+1].Page - 1
		}
		if end < start {
			continue
		}

		var size int64
		for _, p := range pages[start : end+1] {
			size += p.Size
		}

		clone := info.Clone()
		clone.Chapters = ch.Chapter
		if ch.Title != "" {
			clone.Title = ch.Title
		}
		clone.Metadata.PageRange = pagerange.New(start, end)
		clone.Metadata.FileSize = size
		clone.Metadata.CoverFile = chapterCover(pages, ci, start, end)
		out = append(out, clone)
	}
	if len(out) == 0 {
		return []mediafile.ParserInfo{info}
	}
	return out
}

// chaptersFromBookmarks reads sidecar page bookmarks, keeping only pages
// whose bookmark parses to a real chapter label.
func chaptersFromBookmarks(ci *comicinfo.ComicInfo) []mediafile.ParsedChapter {
	if ci == nil {
		return nil
	}
	var out []mediafile.ParsedChapter
	for _, p := range ci.Pages.Page {
		if p.Bookmark == "" {
			continue
		}
		label := ParseChapterLabel(p.Bookmark)
		if label == mediafile.DefaultChapter {
			continue
		}
		out = append(out, mediafile.ParsedChapter{
			Page:    p.Image,
			Chapter: label,
			Title:   ParseBookmarkTitle(p.Bookmark),
		})
	}
	return out
}

// chaptersFromFilenames parses chapter labels out of the page filenames, and
// titles out of any path segment carrying one.
func chaptersFromFilenames(pages []mediafile.PageInfo) []mediafile.ParsedChapter {
	var out []mediafile.ParsedChapter
	for _, p := range pages {
		label := ParseChapterFromFilename(p.Name)
		if label == mediafile.DefaultChapter {
			continue
		}
		out = append(out, mediafile.ParsedChapter{
			Page:    p.Index,
			Chapter: label,
			Title:   titleFromSegments(p.Name),
		})
	}
	return out
}

func titleFromSegments(name string) string {
	normalized := strings.ReplaceAll(name, "\\", "/")
	for _, segment := range strings.Split(normalized, "/") {
		if title := ParseBookmarkTitle(editionTagRE.ReplaceAllString(segment, "")); title != "" {
			return title
		}
	}
	return ""
}

// dedupeByLabel keeps the first occurrence of each chapter label, preserving
// order.
func dedupeByLabel(parsed []mediafile.ParsedChapter) []mediafile.ParsedChapter {
	seen := make(map[string]struct{}, len(parsed))
	out := parsed[:0:0]
	for _, ch := range parsed {
		if _, ok := seen[ch.Chapter]; ok {
			continue
		}
		seen[ch.Chapter] = struct{}{}
		out = append(out, ch)
	}
	return out
}

// chapterCover names the first page in [start, end] the sidecar marks as a
// front or inner cover; empty when none is marked.
func chapterCover(pages []mediafile.PageInfo, ci *comicinfo.ComicInfo, start, end int) string {
	if ci == nil {
		return ""
	}
	cover := ""
	coverIdx := -1
	for _, p := range ci.Pages.Page {
		if p.Image < start || p.Image > end || p.Image >= len(pages) {
			continue
		}
		if p.Type != comicinfo.PageTypeFrontCover && p.Type != comicinfo.PageTypeInnerCover {
			continue
		}
		if coverIdx < 0 || p.Image < coverIdx {
			coverIdx = p.Image
			cover = pages[p.Image].Name
		}
	}
	return cover
}
