package archive

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shishobooks/toshokan/pkg/errcodes"
	"github.com/shishobooks/toshokan/pkg/mediafile"
	"github.com/shishobooks/toshokan/pkg/pagerange"
)

type fakeEntry struct {
	name string
	dir  bool
	data []byte
}

func (e *fakeEntry) FullName() string        { return e.name }
func (e *fakeEntry) IsDirectory() bool       { return e.dir }
func (e *fakeEntry) CompressedSize() int64   { return int64(len(e.data)) }
func (e *fakeEntry) UncompressedSize() int64 { return int64(len(e.data)) }
func (e *fakeEntry) Modified() time.Time     { return time.Time{} }
func (e *fakeEntry) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytesReader(e.data)), nil
}

func bytesReader(b []byte) io.Reader {
	return readerFunc(func(p []byte) (int, error) {
		if len(b) == 0 {
			return 0, io.EOF
		}
		n := copy(p, b)
		b = b[n:]
		return n, nil
	})
}

type readerFunc func([]byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) { return f(p) }

func fakes(names ...string) []Entry {
	out := make([]Entry, 0, len(names))
	for _, n := range names {
		out = append(out, &fakeEntry{name: n, data: []byte(n)})
	}
	return out
}

func names(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.FullName())
	}
	return out
}

func TestSelectPagesPassThroughWithoutRange(t *testing.T) {
	entries := fakes("ComicInfo.xml", "002.jpg", "001.jpg", "__MACOSX/001.jpg", "._junk.jpg")
	meta := mediafile.NewFileMetadata("/a.cbz")

	selected, err := SelectPages(entries, meta, false, nil)
	require.NoError(t, err)
	// Archive order preserved, junk removed, non-images kept.
	assert.Equal(t, []string{"ComicInfo.xml", "002.jpg", "001.jpg"}, names(selected))
}

func TestSelectPagesImagesSorted(t *testing.T) {
	entries := fakes("p10.jpg", "p2.jpg", "ComicInfo.xml", "p1.jpg")
	meta := mediafile.NewFileMetadata("/a.cbz")

	selected, err := SelectPages(entries, meta, true, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1.jpg", "p2.jpg", "p10.jpg"}, names(selected))
}

func TestSelectPagesRangeKeepsCoverAtStart(t *testing.T) {
	entries := fakes("001.jpg", "002.jpg", "003.jpg", "cover.jpg")
	meta := mediafile.NewFileMetadata("/a.cbz")
	meta.PageRange = pagerange.New(0, 1)

	selected, err := SelectPages(entries, meta, true, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"001.jpg", "002.jpg", "cover.jpg"}, names(selected))
}

func TestSelectPagesRangeDropsCoverPastStart(t *testing.T) {
	entries := fakes("001.jpg", "002.jpg", "003.jpg", "cover.jpg")
	meta := mediafile.NewFileMetadata("/a.cbz")
	meta.PageRange = pagerange.New(1, 2)

	selected, err := SelectPages(entries, meta, true, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"002.jpg", "003.jpg"}, names(selected))
}

func TestSelectPagesExplicitCoverFile(t *testing.T) {
	entries := fakes("001.jpg", "002.jpg", "003.jpg")
	meta := mediafile.NewFileMetadata("/a.cbz")
	meta.CoverFile = "002.jpg"
	meta.PageRange = pagerange.New(0, 1)

	selected, err := SelectPages(entries, meta, true, nil)
	require.NoError(t, err)
	// 002.jpg is split off as the cover; the remainder is sliced and the
	// cover re-appended because the range starts at 0.
	assert.Equal(t, []string{"001.jpg", "003.jpg", "002.jpg"}, names(selected))
}

func TestSelectPagesRangeOutOfBounds(t *testing.T) {
	entries := fakes("001.jpg", "002.jpg", "cover.jpg")
	meta := mediafile.NewFileMetadata("/a.cbz")
	meta.PageRange = pagerange.New(0, 2) // only 2 pages once the cover is removed

	_, err := SelectPages(entries, meta, true, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errcodes.RangeOutOfBounds("")))
}

func TestSelectPagesEmptyArchive(t *testing.T) {
	meta := mediafile.NewFileMetadata("/a.cbz")
	selected, err := SelectPages(nil, meta, true, nil)
	require.NoError(t, err)
	assert.Empty(t, selected)
}

func TestSelectPagesRangeSliceCounts(t *testing.T) {
	// Property: any window (a, b) over n filtered images yields b-a+1 entries,
	// plus the cover when a == 0.
	entries := fakes("001.jpg", "002.jpg", "003.jpg", "004.jpg", "005.jpg", "cover.jpg")
	n := 5
	for a := 0; a < n; a++ {
		for b := a; b < n; b++ {
			meta := mediafile.NewFileMetadata("/a.cbz")
			meta.PageRange = pagerange.New(a, b)
			selected, err := SelectPages(entries, meta, true, nil)
			require.NoError(t, err, "range %d-%d", a, b)
			want := b - a + 1
			if a == 0 {
				want++
			}
			assert.Len(t, selected, want, "range %d-%d", a, b)
		}
	}
}

func TestFindCoverPriorities(t *testing.T) {
	// 1: conventional cover name wins.
	e, ok := FindCover(fakes("a/001.jpg", "zcover.jpg", "cover.jpg"), "/vol1.cbz", nil)
	require.True(t, ok)
	assert.Equal(t, "cover.jpg", e.FullName())

	// 2: no cover name, prefer the archive root.
	e, ok = FindCover(fakes("sub/000.jpg", "010.jpg", "002.jpg"), "/vol1.cbz", nil)
	require.True(t, ok)
	assert.Equal(t, "002.jpg", e.FullName())

	// 2 also matches a folder named like the archive.
	e, ok = FindCover(fakes("other/000.jpg", "vol1/003.jpg"), "/vol1.cbz", nil)
	require.True(t, ok)
	assert.Equal(t, "vol1/003.jpg", e.FullName())

	// 3: nothing at the root; naturally-first directory wins.
	e, ok = FindCover(fakes("ch10/001.jpg", "ch2/005.jpg", "ch2/001.jpg"), "/vol1.cbz", nil)
	require.True(t, ok)
	assert.Equal(t, "ch2/001.jpg", e.FullName())
}

func TestFindCoverSkipsJunk(t *testing.T) {
	e, ok := FindCover(fakes("__MACOSX/cover.jpg", "._cover.jpg", "001.jpg"), "/vol1.cbz", nil)
	require.True(t, ok)
	assert.Equal(t, "001.jpg", e.FullName())
}

func TestFindCoverNone(t *testing.T) {
	_, ok := FindCover(fakes("ComicInfo.xml"), "/vol1.cbz", nil)
	assert.False(t, ok)

	_, ok = FindCover(nil, "/vol1.cbz", nil)
	assert.False(t, ok)
}

func TestNestedRoot(t *testing.T) {
	assert.True(t, nestedRoot(fakes("root/001.jpg", "root/sub/002.jpg")))
	assert.False(t, nestedRoot(fakes("root/001.jpg", "other/002.jpg")))
	assert.False(t, nestedRoot(fakes("001.jpg", "root/002.jpg")))
	assert.False(t, nestedRoot(nil))
}
