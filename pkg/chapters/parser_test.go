package chapters

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shishobooks/toshokan/pkg/mediafile"
)

func TestParseChapterLabel(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Chapter 1", "1"},
		{"chapter 007", "7"},
		{"ch. 12", "12"},
		{"Ch_3", "3"},
		{"c12", "12"},
		{"Chapter 12.5", "12.5"},
		{"The Fall", mediafile.DefaultChapter},
		{"", mediafile.DefaultChapter},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseChapterLabel(tt.text), "text %q", tt.text)
	}
}

func TestParseChapterFromFilename(t *testing.T) {
	assert.Equal(t, "3", ParseChapterFromFilename("Series v1 ch003 p001.jpg"))
	assert.Equal(t, "3", ParseChapterFromFilename("vol1/Chapter 3/001.jpg"))
	// Edition tags never read as chapter numbers.
	assert.Equal(t, mediafile.DefaultChapter, ParseChapterFromFilename("page 001 (c2020).jpg"))
	assert.Equal(t, mediafile.DefaultChapter, ParseChapterFromFilename("001.jpg"))
}

func TestParseBookmarkTitle(t *testing.T) {
	assert.Equal(t, "The Fall", ParseBookmarkTitle("Chapter 3 - The Fall"))
	assert.Equal(t, "The Fall", ParseBookmarkTitle("Chapter 3: The Fall"))
	assert.Empty(t, ParseBookmarkTitle("Chapter 3"))
	assert.Empty(t, ParseBookmarkTitle("no token here"))
}
