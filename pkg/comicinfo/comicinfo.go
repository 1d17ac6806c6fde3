// Package comicinfo parses the ComicInfo.xml sidecar as written by ComicRack
// and its descendants. Parsing is lenient: unknown elements are ignored and
// empty leaves are stripped before binding so half-filled sidecars from the
// wild do not fail deserialization.
package comicinfo

import (
	"encoding/xml"
	"strings"

	"github.com/beevik/etree"
	"github.com/pkg/errors"

	"github.com/shishobooks/toshokan/pkg/errcodes"
)

// Page types carried by the Pages[].Type attribute.
const (
	PageTypeFrontCover    = "FrontCover"
	PageTypeInnerCover    = "InnerCover"
	PageTypeRoundup       = "Roundup"
	PageTypeStory         = "Story"
	PageTypeAdvertisement = "Advertisement"
	PageTypeEditorial     = "Editorial"
	PageTypeLetters       = "Letters"
	PageTypePreview       = "Preview"
	PageTypeBackCover     = "BackCover"
	PageTypeOther         = "Other"
	PageTypeDeleted       = "Deleted"
)

type ComicInfo struct {
	XMLName         xml.Name `xml:"ComicInfo"`
	Title           string   `xml:"Title"`
	Series          string   `xml:"Series"`
	LocalizedSeries string   `xml:"LocalizedSeries"`
	Number          string   `xml:"Number"`
	Volume          string   `xml:"Volume"`
	TitleSort       string   `xml:"TitleSort"`
	AlternateSeries string   `xml:"AlternateSeries"`
	AlternateNumber string   `xml:"AlternateNumber"`
	SeriesGroup     string   `xml:"SeriesGroup"`
	StoryArc        string   `xml:"StoryArc"`
	Summary         string   `xml:"Summary"`
	Year            string   `xml:"Year"`
	Month           string   `xml:"Month"`
	Day             string   `xml:"Day"`
	Writer          string   `xml:"Writer"`
	Penciller       string   `xml:"Penciller"`
	Inker           string   `xml:"Inker"`
	Colorist        string   `xml:"Colorist"`
	Letterer        string   `xml:"Letterer"`
	CoverArtist     string   `xml:"CoverArtist"`
	Editor          string   `xml:"Editor"`
	Translator      string   `xml:"Translator"`
	Publisher       string   `xml:"Publisher"`
	Imprint         string   `xml:"Imprint"`
	Genre           string   `xml:"Genre"`
	Tags            string   `xml:"Tags"`
	Web             string   `xml:"Web"`
	PageCount       int      `xml:"PageCount"`
	LanguageISO     string   `xml:"LanguageISO"`
	Format          string   `xml:"Format"`
	AgeRating       string   `xml:"AgeRating"`
	Manga           string   `xml:"Manga"`
	Characters      string   `xml:"Characters"`
	Teams           string   `xml:"Teams"`
	Locations       string   `xml:"Locations"`
	GTIN            string   `xml:"GTIN"`
	Pages           Pages    `xml:"Pages"`
}

type Pages struct {
	Page []PageInfo `xml:"Page"`
}

type PageInfo struct {
	Image       int    `xml:"Image,attr"`
	Type        string `xml:"Type,attr"`
	Bookmark    string `xml:"Bookmark,attr"`
	DoublePage  bool   `xml:"DoublePage,attr"`
	ImageSize   int64  `xml:"ImageSize,attr"`
	ImageWidth  string `xml:"ImageWidth,attr"`
	ImageHeight string `xml:"ImageHeight,attr"`
	Key         string `xml:"Key,attr"`
}

// canonicalPageTypes maps lowercased page types back to their canonical casing.
var canonicalPageTypes = map[string]string{}

func init() {
	for _, t := range []string{
		PageTypeFrontCover, PageTypeInnerCover, PageTypeRoundup, PageTypeStory,
		PageTypeAdvertisement, PageTypeEditorial, PageTypeLetters, PageTypePreview,
		PageTypeBackCover, PageTypeOther, PageTypeDeleted,
	} {
		canonicalPageTypes[strings.ToLower(t)] = t
	}
}

// Parse reads a ComicInfo document from raw XML bytes. Empty or
// whitespace-only leaf elements are removed before binding, except elements
// named Page which stay meaningful even when empty. A parse failure is
// reported as a malformed-sidecar error; callers treat that as "no sidecar".
func Parse(b []byte) (*ComicInfo, error) {
	cleaned, err := stripEmptyLeaves(b)
	if err != nil {
		return nil, errcodes.MalformedSidecar(err)
	}

	info := &ComicInfo{}
	if err := xml.Unmarshal(cleaned, info); err != nil {
		return nil, errcodes.MalformedSidecar(err)
	}

	info.clean()
	return info, nil
}

// stripEmptyLeaves removes every empty or whitespace-only leaf element other
// than Page from the document and re-serializes it.
func stripEmptyLeaves(b []byte) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(b); err != nil {
		return nil, errors.WithStack(err)
	}
	if root := doc.Root(); root != nil {
		pruneEmpty(root)
	}
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return out, nil
}

func pruneEmpty(el *etree.Element) {
	for _, child := range el.ChildElements() {
		pruneEmpty(child)
	}
	for _, child := range el.ChildElements() {
		if child.Tag == "Page" {
			continue
		}
		if len(child.ChildElements()) == 0 && len(child.Attr) == 0 && strings.TrimSpace(child.Text()) == "" {
			el.RemoveChild(child)
		}
	}
}

// clean trims whitespace on string fields and normalizes page-type casing.
func (c *ComicInfo) clean() {
	fields := []*string{
		&c.Title, &c.Series, &c.LocalizedSeries, &c.Number, &c.Volume,
		&c.TitleSort, &c.AlternateSeries, &c.AlternateNumber, &c.SeriesGroup,
		&c.StoryArc, &c.Summary, &c.Writer, &c.Penciller, &c.Inker, &c.Colorist,
		&c.Letterer, &c.CoverArtist, &c.Editor, &c.Translator, &c.Publisher,
		&c.Imprint, &c.Genre, &c.Tags, &c.Web, &c.LanguageISO, &c.Format,
		&c.AgeRating, &c.Manga, &c.Characters, &c.Teams, &c.Locations, &c.GTIN,
	}
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
	for i := range c.Pages.Page {
		p := &c.Pages.Page[i]
		p.Bookmark = strings.TrimSpace(p.Bookmark)
		if canonical, ok := canonicalPageTypes[strings.ToLower(strings.TrimSpace(p.Type))]; ok {
			p.Type = canonical
		}
	}
}
