package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/kpauljoseph/pdf2cbz/internal/config"
	"github.com/kpauljoseph/pdf2cbz/internal/convert"
	"github.com/kpauljoseph/pdf2cbz/internal/scanner"
	"github.com/kpauljoseph/pdf2cbz/pkg/logger"
	"github.com/kpauljoseph/pdf2cbz/pkg/models"
	"github.com/kpauljoseph/pdf2cbz/pkg/version"
)

func main() {
	configPath := flag.StringP("config", "c", "", "path to config file")
	outPath := flag.StringP("out", "o", "", "output CBZ path (default: input path with .cbz extension)")
	height := flag.IntP("height", "H", 0, "output page height in pixels (default: native size)")
	limit := flag.IntP("limit", "l", 0, "convert only the first N pages")
	format := flag.StringP("format", "f", "", "output image format: jpeg or png (default jpeg)")
	quality := flag.IntP("quality", "q", 0, "JPEG quality 1-100 (default 85)")
	workers := flag.IntP("workers", "w", 0, "parallel render workers (default: available CPUs)")
	retry := flag.Bool("retry", false, "retry failed pages once")
	verbose := flag.BoolP("verbose", "v", false, "enable verbose logging")
	debug := flag.Bool("debug", false, "enable debug mode with trace logging")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetDetailedVersionInfo())
		return
	}

	log := logger.New(logger.WithPrefix("[pdf2cbz] "))
	log.SetVerbose(*verbose)
	if *debug {
		log.SetLevel(logger.LevelTrace)
	}

	// Error ignored: maxprocs.Set only fails on an invalid GOMAXPROCS
	// env value, in which case runtime defaults apply.
	_, _ = maxprocs.Set(maxprocs.Logger(log.Debug))

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: pdf2cbz [flags] <file.pdf | directory>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	input := flag.Arg(0)

	opts := convert.Options{
		TargetHeight:   *height,
		Quality:        *quality,
		Workers:        *workers,
		PageLimit:      *limit,
		RetryTransient: *retry,
	}
	formatName := *format

	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatal("Error loading config: %v", err)
		}
		if opts.TargetHeight == 0 {
			opts.TargetHeight = cfg.TargetHeight
		}
		if opts.Quality == 0 {
			opts.Quality = cfg.Quality
		}
		if opts.Workers == 0 {
			opts.Workers = cfg.Workers
		}
		if formatName == "" {
			formatName = cfg.Format
		}
		if !opts.RetryTransient {
			opts.RetryTransient = cfg.Retry
		}
		if *outPath == "" && cfg.OutputDir != "" {
			*outPath = cfg.OutputDir
		}
	}

	parsedFormat, err := models.ParseFormat(formatName)
	if err != nil {
		log.Fatal("%v", err)
	}
	opts.Format = parsedFormat

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	info, err := os.Stat(input)
	if err != nil {
		log.Fatal("Cannot read input: %v", err)
	}

	if info.IsDir() {
		if err := runBatch(ctx, input, *outPath, opts, log); err != nil {
			log.Fatal("%v", err)
		}
		return
	}

	target := *outPath
	if target == "" {
		target = cbzPath(input)
	}

	summary, err := convert.Run(ctx, input, target, opts, log)
	if err != nil {
		log.Fatal("%v", err)
	}

	log.Info("Completed: %s (%d/%d pages)", target, summary.SucceededCount(), summary.TotalPages)
	for _, failure := range summary.Failed {
		log.Warn("page %d: %s", failure.Index, failure.Reason)
	}
}

// runBatch converts every PDF under dir. outDir empty means each CBZ
// lands next to its source PDF.
func runBatch(ctx context.Context, dir, outDir string, opts convert.Options, log *logger.Logger) error {
	dirScanner := scanner.New(log)

	log.Info("Scanning directory: %s", dir)
	pdfs, err := dirScanner.FindPDFs(ctx, dir)
	if err != nil {
		return err
	}
	log.Info("Found %d PDFs to convert", len(pdfs))

	var failed int
	for _, pdf := range pdfs {
		target := cbzPath(pdf.AbsolutePath)
		if outDir != "" {
			target = filepath.Join(outDir, cbzPath(pdf.RelativePath))
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
		}

		summary, err := convert.Run(ctx, pdf.AbsolutePath, target, opts, log)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("Error converting %s: %v", pdf.RelativePath, err)
			failed++
			continue
		}
		log.Info("Converted %s (%d/%d pages)", pdf.RelativePath, summary.SucceededCount(), summary.TotalPages)
	}

	if failed > 0 {
		log.Warn("%d of %d documents failed", failed, len(pdfs))
	}
	return nil
}

// cbzPath swaps a .pdf extension for .cbz, mirroring the input name.
func cbzPath(pdfPath string) string {
	ext := filepath.Ext(pdfPath)
	if strings.EqualFold(ext, ".pdf") {
		return strings.TrimSuffix(pdfPath, ext) + ".cbz"
	}
	return pdfPath + ".cbz"
}
