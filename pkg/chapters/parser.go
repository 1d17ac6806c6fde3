package chapters

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/shishobooks/toshokan/pkg/mediafile"
)

// chapterRE matches "ch"/"chapter"/"c" followed by a number, with optional
// separators, case-insensitive. Decimals cover half-chapters ("ch 12.5").
var chapterRE = regexp.MustCompile(`(?i)(?:\b|_)c(?:h(?:apter)?)?[\s._-]*(\d+(?:\.\d+)?)`)

// editionTagRE matches bracketed release metadata: "(Digital)", "[group]",
// "{2020}". Stripped before chapter parsing so tag numbers don't read as
// chapter numbers.
var editionTagRE = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]|\{[^}]*\}`)

// titleSeparatorRE trims the joiners between a chapter token and its title.
var titleSeparatorRE = regexp.MustCompile(`^[\s:._-]+`)

// ParseChapterLabel extracts a chapter label from free text, normalizing away
// leading zeros ("Chapter 007" yields "7"). It returns the default-chapter
// sentinel when no chapter token is present.
func ParseChapterLabel(text string) string {
	matches := chapterRE.FindStringSubmatch(text)
	if matches == nil {
		return mediafile.DefaultChapter
	}
	return normalizeNumber(matches[1])
}

// ParseChapterFromFilename parses a chapter label from a page path,
// stripping edition tags and the extension first. The filename is tried
// before its folders so "Chapter 2/ch3-page.jpg" reads as chapter 3.
func ParseChapterFromFilename(name string) string {
	normalized := strings.ReplaceAll(name, "\\", "/")
	segments := strings.Split(normalized, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		segment := segments[i]
		if i == len(segments)-1 {
			segment = strings.TrimSuffix(segment, filepath.Ext(segment))
		}
		segment = editionTagRE.ReplaceAllString(segment, "")
		if label := ParseChapterLabel(segment); label != mediafile.DefaultChapter {
			return label
		}
	}
	return mediafile.DefaultChapter
}

// ParseBookmarkTitle extracts the human title trailing a chapter token:
// "Chapter 3 - The Fall" yields "The Fall". Empty when the text is only the
// token or carries no token at all.
func ParseBookmarkTitle(text string) string {
	loc := chapterRE.FindStringSubmatchIndex(text)
	if loc == nil {
		return ""
	}
	rest := text[loc[1]:]
	return strings.TrimSpace(titleSeparatorRE.ReplaceAllString(rest, ""))
}

// normalizeNumber strips leading zeros from the integer part, preserving any
// decimal part ("007" -> "7", "012.5" -> "12.5").
func normalizeNumber(num string) string {
	intPart, fracPart, hasFrac := strings.Cut(num, ".")
	n, err := strconv.Atoi(intPart)
	if err != nil {
		return num
	}
	out := strconv.Itoa(n)
	if hasFrac {
		out += "." + fracPart
	}
	return out
}
