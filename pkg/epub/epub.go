// Package epub is the minimal book-parsing contract the scanner consumes for
// .epub files: enough OPF reading to pre-populate a ParserInfo with title and
// series placement. Full EPUB handling lives with the reading surface, not
// here.
package epub

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/shishobooks/toshokan/pkg/mediafile"
)

// Service parses EPUB metadata.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// opfPackage binds the slice of the OPF document this probe needs.
type opfPackage struct {
	XMLName  xml.Name `xml:"package"`
	Metadata struct {
		Title []struct {
			Text string `xml:",chardata"`
		} `xml:"title"`
		Meta []struct {
			Name     string `xml:"name,attr"`
			Content  string `xml:"content,attr"`
			Property string `xml:"property,attr"`
			Text     string `xml:",chardata"`
		} `xml:"meta"`
	} `xml:"metadata"`
}

// ParseInfo reads the OPF and returns a pre-populated ParserInfo, or nil when
// the file carries no usable metadata.
func (s *Service) ParseInfo(path string) (*mediafile.ParserInfo, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rc.Close()

	var opfFile *zip.File
	for _, f := range rc.File {
		if strings.EqualFold(filepath.Ext(f.Name), ".opf") {
			opfFile = f
			break
		}
	}
	if opfFile == nil {
		return nil, nil
	}

	r, err := opfFile.Open()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer r.Close()

	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	pkg := &opfPackage{}
	if err := xml.Unmarshal(b, pkg); err != nil {
		return nil, errors.WithStack(err)
	}

	info := &mediafile.ParserInfo{
		Volumes:  mediafile.LooseLeafVolume,
		Chapters: mediafile.DefaultChapter,
		Format:   "epub",
		Metadata: mediafile.NewFileMetadata(path),
	}
	if len(pkg.Metadata.Title) > 0 {
		info.Title = strings.TrimSpace(pkg.Metadata.Title[0].Text)
	}
	for _, meta := range pkg.Metadata.Meta {
		switch {
		case meta.Name == "calibre:series":
			info.Series = strings.TrimSpace(meta.Content)
		case meta.Name == "calibre:series_index":
			info.Volumes = normalizeSeriesIndex(meta.Content)
		case meta.Property == "belongs-to-collection" && info.Series == "":
			info.Series = strings.TrimSpace(meta.Text)
		case meta.Property == "group-position" && info.Volumes == mediafile.LooseLeafVolume:
			info.Volumes = normalizeSeriesIndex(meta.Text)
		}
	}
	if info.Series == "" {
		info.Series = info.Title
	}
	if info.Title == "" && info.Series == "" {
		return nil, nil
	}
	return info, nil
}

// normalizeSeriesIndex renders calibre's float series index as a volume label
// ("1.0" -> "1", "1.5" stays).
func normalizeSeriesIndex(raw string) string {
	raw = strings.TrimSpace(raw)
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return mediafile.LooseLeafVolume
	}
	if f == float64(int(f)) {
		return strconv.Itoa(int(f))
	}
	return raw
}
