package mediafile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shishobooks/toshokan/pkg/pagerange"
)

func TestFileMetadataKey(t *testing.T) {
	meta := NewFileMetadata("/library/vol1.cbz")
	assert.Equal(t, "/library/vol1.cbz#", meta.Key())
	assert.Equal(t, int64(-1), meta.FileSize)

	meta.PageRange = pagerange.New(0, 9)
	assert.Equal(t, "/library/vol1.cbz#0-9", meta.Key())
}

func TestParserInfoClone(t *testing.T) {
	info := ParserInfo{Series: "Btooom!", Metadata: NewFileMetadata("/a.cbz")}
	clone := info.Clone()
	clone.Metadata.PageRange = pagerange.New(0, 1)
	clone.Series = "changed"

	assert.Equal(t, "Btooom!", info.Series)
	assert.False(t, info.Metadata.PageRange.Present())
}
