package worker

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/robinjoseph08/golib/logger"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shishobooks/toshokan/pkg/archive"
	"github.com/shishobooks/toshokan/pkg/comicinfo"
	"github.com/shishobooks/toshokan/pkg/covers"
	"github.com/shishobooks/toshokan/pkg/epub"
	"github.com/shishobooks/toshokan/pkg/fileutils"
	"github.com/shishobooks/toshokan/pkg/mediaerrors"
	"github.com/shishobooks/toshokan/pkg/mediafile"
)

func writeCBZ(t *testing.T, path string, files map[string]string, order []string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for _, name := range order {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func newScanner(t *testing.T) (*Scanner, *mediaerrors.LogReporter) {
	t.Helper()
	log := logger.New()
	fs := afero.NewOsFs()
	reporter := mediaerrors.NewLogReporter(log)
	codec := archive.NewService(log, nil, covers.NewThumbnailEncoder(fs), reporter, fileutils.NewWithFs(fs, t.TempDir()))
	return NewScanner(log, codec, epub.NewService(), reporter, 2), reporter
}

func TestScanIsolatesFailures(t *testing.T) {
	scanner, reporter := newScanner(t)
	dir := t.TempDir()

	good := filepath.Join(dir, "Btooom! v01.cbz")
	writeCBZ(t, good, map[string]string{
		"001.jpg": "a", "002.jpg": "b",
	}, []string{"001.jpg", "002.jpg"})

	bad := filepath.Join(dir, "broken.cbz")
	require.NoError(t, os.WriteFile(bad, []byte("not an archive"), 0644))

	results := scanner.Scan(context.Background(), []string{good, bad})
	require.Len(t, results, 2)

	assert.Equal(t, 2, results[0].PageCount)
	require.Len(t, results[0].Infos, 1)
	assert.Equal(t, "Btooom!", results[0].Infos[0].Series)
	assert.Equal(t, "1", results[0].Infos[0].Volumes)

	assert.Zero(t, results[1].PageCount)
	assert.NotEmpty(t, reporter.Reports())
}

func TestScanSlicesVolumesWithBookmarks(t *testing.T) {
	scanner, _ := newScanner(t)
	dir := t.TempDir()

	path := filepath.Join(dir, "Series v01.cbz")
	files := map[string]string{"ComicInfo.xml": `<ComicInfo>
  <Series>Series</Series>
  <Volume>1</Volume>
  <Pages>
    <Page Image="0" Bookmark="Chapter 1" />
    <Page Image="2" Bookmark="Chapter 2" />
  </Pages>
</ComicInfo>`}
	order := []string{"ComicInfo.xml"}
	for _, n := range []string{"001.jpg", "002.jpg", "003.jpg", "004.jpg"} {
		files[n] = "x"
		order = append(order, n)
	}
	writeCBZ(t, path, files, order)

	results := scanner.Scan(context.Background(), []string{path})
	require.Len(t, results, 1)
	require.Len(t, results[0].Infos, 2)
	assert.Equal(t, "1", results[0].Infos[0].Chapters)
	assert.Equal(t, "0-1", results[0].Infos[0].Metadata.PageRange.String())
	assert.Equal(t, "2", results[0].Infos[1].Chapters)
	assert.Equal(t, "2-3", results[0].Infos[1].Metadata.PageRange.String())
}

func TestScanCancelled(t *testing.T) {
	scanner, _ := newScanner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := scanner.Scan(ctx, []string{"/nope1.cbz", "/nope2.cbz"})
	assert.Empty(t, results)
}

func TestParseInfoFromFile(t *testing.T) {
	info := parseInfoFromFile("/lib/[Author] Btooom! v03 (Digital).cbz", nil)
	assert.Equal(t, "Btooom!", info.Series)
	assert.Equal(t, "3", info.Volumes)
	assert.Equal(t, mediafile.DefaultChapter, info.Chapters)
	assert.Equal(t, "cbz", info.Format)

	ci := &comicinfo.ComicInfo{Series: "Real Series", Volume: "2", Number: "12", Title: "The Fall", Format: "Special"}
	info = parseInfoFromFile("/lib/whatever.cbz", ci)
	assert.Equal(t, "Real Series", info.Series)
	assert.Equal(t, "2", info.Volumes)
	assert.Equal(t, "12", info.Chapters)
	assert.Equal(t, "The Fall", info.Title)
	assert.True(t, info.IsSpecial)
}

func TestParseSeriesAndVolume(t *testing.T) {
	series, volume := parseSeriesAndVolume("Series v07")
	assert.Equal(t, "Series", series)
	assert.Equal(t, "7", volume)

	series, volume = parseSeriesAndVolume("Series #1.5")
	assert.Equal(t, "Series", series)
	assert.Equal(t, "1.5", volume)

	series, volume = parseSeriesAndVolume("Oneshot")
	assert.Equal(t, "Oneshot", series)
	assert.Equal(t, mediafile.LooseLeafVolume, volume)
}
