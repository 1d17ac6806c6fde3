package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"

	"github.com/shishobooks/toshokan/pkg/archive"
	"github.com/shishobooks/toshokan/pkg/chapters"
	"github.com/shishobooks/toshokan/pkg/comicpath"
	"github.com/shishobooks/toshokan/pkg/config"
	"github.com/shishobooks/toshokan/pkg/covers"
	"github.com/shishobooks/toshokan/pkg/downloadcache"
	"github.com/shishobooks/toshokan/pkg/epub"
	"github.com/shishobooks/toshokan/pkg/fileutils"
	"github.com/shishobooks/toshokan/pkg/mediaerrors"
	"github.com/shishobooks/toshokan/pkg/mediafile"
	"github.com/shishobooks/toshokan/pkg/pagerange"
	"github.com/shishobooks/toshokan/pkg/version"
	"github.com/shishobooks/toshokan/pkg/worker"
)

type services struct {
	log      logger.Logger
	cfg      *config.Config
	codec    *archive.Service
	scanner  *worker.Scanner
	cache    *downloadcache.Cache
	reporter *mediaerrors.LogReporter
}

func build(log logger.Logger) (*services, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}

	classifier, err := comicpath.New(cfg.CoverPattern)
	if err != nil {
		return nil, err
	}

	osFs := afero.NewOsFs()
	dirs := fileutils.NewWithFs(osFs, cfg.CacheDir)
	reporter := mediaerrors.NewLogReporter(log)
	codec := archive.NewService(log, classifier, covers.NewThumbnailEncoder(osFs), reporter, dirs)

	return &services{
		log:      log,
		cfg:      cfg,
		codec:    codec,
		scanner:  worker.NewScanner(log, codec, epub.NewService(), reporter, cfg.WorkerProcesses),
		cache:    downloadcache.New(log, dirs),
		reporter: reporter,
	}, nil
}

func main() {
	log := logger.New()
	log.Info("starting toshokan", logger.Data{"version": version.Version})

	ctx, cancel := context.WithCancel(context.Background())
	graceful := signals.Setup()
	go func() {
		<-graceful
		cancel()
	}()

	app := &cli.App{
		Name:        "toshokan",
		Usage:       "comic archive codec and chapter extraction",
		Description: "Inspect, slice, and repackage comic archives.",
		Commands: []*cli.Command{
			scanCommand(ctx, log),
			pagesCommand(ctx, log),
			coverCommand(ctx, log),
			repackCommand(ctx, log),
			downloadCommand(ctx, log),
			extractCommand(ctx, log),
			chaptersCommand(ctx, log),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Err(err).Fatal("command failed")
	}
}

func metaFromFlags(c *cli.Context) (mediafile.FileMetadata, error) {
	meta := mediafile.NewFileMetadata(c.Args().First())
	r, err := pagerange.Parse(c.String("range"))
	if err != nil {
		return meta, err
	}
	meta.PageRange = r
	return meta, nil
}

var rangeFlag = &cli.StringFlag{
	Name:  "range",
	Usage: "inclusive zero-based page window, e.g. 0-9",
}

func scanCommand(ctx context.Context, log logger.Logger) *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "scan a directory of archives",
		ArgsUsage: "[dir]",
		Action: func(c *cli.Context) error {
			svcs, err := build(log)
			if err != nil {
				return err
			}
			root := c.Args().First()
			if root == "" {
				root = svcs.cfg.LibraryDir
			}

			var paths []string
			classifier := svcs.codec.Classifier()
			err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && (classifier.IsArchive(path) || classifier.IsEpub(path)) {
					paths = append(paths, path)
				}
				return nil
			})
			if err != nil {
				return err
			}

			results := svcs.scanner.Scan(ctx, paths)
			for _, r := range results {
				for _, info := range r.Infos {
					fmt.Printf("%s\tseries=%q volume=%s chapter=%s pages=%d range=%q\n",
						r.Path, info.Series, info.Volumes, info.Chapters, r.PageCount, info.Metadata.PageRange)
				}
			}
			log.Info("scan finished", logger.Data{
				"files":  len(results),
				"errors": len(svcs.reporter.Reports()),
			})
			return nil
		},
	}
}

func pagesCommand(ctx context.Context, log logger.Logger) *cli.Command {
	return &cli.Command{
		Name:      "pages",
		Usage:     "list an archive's pages",
		ArgsUsage: "<archive>",
		Flags:     []cli.Flag{rangeFlag},
		Action: func(c *cli.Context) error {
			svcs, err := build(log)
			if err != nil {
				return err
			}
			meta, err := metaFromFlags(c)
			if err != nil {
				return err
			}
			for _, p := range svcs.codec.ListPages(ctx, meta) {
				fmt.Printf("%d\t%s\t%d bytes\n", p.Index, p.Name, p.Size)
			}
			return nil
		},
	}
}

func coverCommand(ctx context.Context, log logger.Logger) *cli.Command {
	return &cli.Command{
		Name:      "cover",
		Usage:     "extract an archive's cover thumbnail",
		ArgsUsage: "<archive>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Usage: "output base name", Value: "cover"},
		},
		Action: func(c *cli.Context) error {
			svcs, err := build(log)
			if err != nil {
				return err
			}
			meta := mediafile.NewFileMetadata(c.Args().First())
			path := svcs.codec.CoverImage(ctx, meta, c.String("out"), svcs.cfg.CoverDir, svcs.cfg.ThumbnailFormat, svcs.cfg.ThumbnailHeight)
			if path == "" {
				return fmt.Errorf("no cover could be extracted from %s", meta.Path)
			}
			fmt.Println(path)
			return nil
		},
	}
}

func repackCommand(ctx context.Context, log logger.Logger) *cli.Command {
	return &cli.Command{
		Name:      "repack",
		Usage:     "repackage a page window into a new cbz",
		ArgsUsage: "<archive>",
		Flags: []cli.Flag{
			rangeFlag,
			&cli.StringFlag{Name: "out", Usage: "output file (default: stdout)"},
		},
		Action: func(c *cli.Context) error {
			svcs, err := build(log)
			if err != nil {
				return err
			}
			meta, err := metaFromFlags(c)
			if err != nil {
				return err
			}
			stream := svcs.codec.RepackZipStream(ctx, meta)
			if stream == nil {
				return fmt.Errorf("unable to repack %s", meta.Path)
			}
			defer stream.Close()

			var out io.Writer = os.Stdout
			if name := c.String("out"); name != "" {
				f, err := os.Create(name)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			_, err = io.Copy(out, stream)
			return err
		},
	}
}

func downloadCommand(ctx context.Context, log logger.Logger) *cli.Command {
	return &cli.Command{
		Name:      "download",
		Usage:     "materialize a page window as a cached cbz artifact",
		ArgsUsage: "<archive>",
		Flags:     []cli.Flag{rangeFlag},
		Action: func(c *cli.Context) error {
			svcs, err := build(log)
			if err != nil {
				return err
			}
			meta, err := metaFromFlags(c)
			if err != nil {
				return err
			}
			label := strings.TrimSuffix(filepath.Base(meta.Path), filepath.Ext(meta.Path))
			if meta.PageRange.Present() {
				label += "_" + meta.PageRange.String()
			}
			path, err := svcs.cache.Archive(ctx, svcs.codec, meta, label, time.Now())
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
}

func extractCommand(ctx context.Context, log logger.Logger) *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Usage:     "extract an archive's pages to a directory",
		ArgsUsage: "<archive>",
		Flags: []cli.Flag{
			rangeFlag,
			&cli.StringFlag{Name: "dest", Usage: "destination directory", Required: true},
		},
		Action: func(c *cli.Context) error {
			svcs, err := build(log)
			if err != nil {
				return err
			}
			meta, err := metaFromFlags(c)
			if err != nil {
				return err
			}
			return svcs.codec.ExtractToDir(ctx, meta, c.String("dest"))
		},
	}
}

func chaptersCommand(ctx context.Context, log logger.Logger) *cli.Command {
	return &cli.Command{
		Name:      "chapters",
		Usage:     "slice a volume archive into chapters",
		ArgsUsage: "<archive>",
		Action: func(c *cli.Context) error {
			svcs, err := build(log)
			if err != nil {
				return err
			}
			meta := mediafile.NewFileMetadata(c.Args().First())
			pages := svcs.codec.ListPages(ctx, meta)
			ci := svcs.codec.ComicInfo(ctx, meta)

			info := mediafile.ParserInfo{
				Volumes:  "1",
				Chapters: mediafile.DefaultChapter,
				Metadata: meta,
			}
			extractor := chapters.New(log)
			for _, sliced := range extractor.Extract(info, pages, ci) {
				fmt.Printf("chapter=%s\trange=%q\tsize=%d\tcover=%q\n",
					sliced.Chapters, sliced.Metadata.PageRange, sliced.Metadata.FileSize, sliced.Metadata.CoverFile)
			}
			return nil
		},
	}
}
