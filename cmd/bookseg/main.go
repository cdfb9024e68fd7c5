// Command bookseg segments a book file into chapters offline.
//
// Usage examples:
//
//	bookseg -in book.html -out view.html
//	bookseg -in book.epub -format json
//	bookseg -in book.docx -out contents.xlsx -page-words 250
//
// The format defaults to the extension of -out, or html when writing to
// stdout. TITLE_CLASSES, TITLE_CLASS_MATCH, TITLE_SELECTOR, BLOCK_SELECTOR
// and ANNOTATE are read from the environment as the server does.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/bookseg/internal/book"
	"github.com/dgallion1/bookseg/internal/config"
	"github.com/dgallion1/bookseg/internal/paginate"
	"github.com/dgallion1/bookseg/internal/parser"
	"github.com/dgallion1/bookseg/internal/pipeline"
	"github.com/dgallion1/bookseg/internal/render"
	"github.com/dgallion1/bookseg/internal/segment"
)

type options struct {
	in        string
	out       string
	format    string
	title     string
	pageWords int
	pdftotext bool
	segment   segment.Options
}

func main() {
	var opts options
	flag.StringVar(&opts.in, "in", "", "Input file (.html, .txt, .md, .pdf, .docx, .epub) (required)")
	flag.StringVar(&opts.out, "out", "", "Output file path; stdout when empty")
	flag.StringVar(&opts.format, "format", "", "Output format: html, json or xlsx")
	flag.StringVar(&opts.title, "title", "", "Book title override")
	flag.IntVar(&opts.pageWords, "page-words", paginate.DefaultConfig().PageWords, "Target words per page")
	flag.BoolVar(&opts.pdftotext, "pdftotext", true, "Fall back to pdftotext for PDFs")
	flag.Parse()

	if opts.in == "" {
		flag.Usage()
		os.Exit(2)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// Segmentation settings come from the same environment as the server.
	cfg := config.Load()
	opts.segment = cfg.SegmentOptions()

	if err := run(opts, os.Stdout, log); err != nil {
		log.Error("bookseg failed", "error", err)
		os.Exit(1)
	}
}

func run(opts options, stdout io.Writer, log *slog.Logger) error {
	format, err := outputFormat(opts.format, opts.out)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(opts.in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	p, err := parser.ForFile(opts.in, parser.Options{PDFFallbackPdftotext: opts.pdftotext})
	if err != nil {
		return err
	}
	src, err := p.Parse(bytes.NewReader(data), filepath.Base(opts.in))
	if err != nil {
		return fmt.Errorf("parse %s: %w", opts.in, err)
	}
	if opts.title != "" {
		src.Title = opts.title
	}

	b, err := buildBook(src, opts.segment, paginate.Config{PageWords: opts.pageWords})
	if err != nil {
		return err
	}
	log.Info("segmented",
		"input", opts.in,
		"blocks", b.Blocks,
		"chapters", len(b.Chapters),
		"discarded", b.Discarded,
		"pages", len(b.Pages),
	)

	var buf bytes.Buffer
	switch format {
	case "html":
		err = render.Book(&buf, b)
	case "json":
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		err = enc.Encode(map[string]any{
			"title":     b.Title,
			"blocks":    b.Blocks,
			"discarded": b.Discarded,
			"toc":       render.TOC(b),
			"chapters":  b.Chapters,
		})
	case "xlsx":
		err = render.WriteTOCWorkbook(&buf, b)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}

	if opts.out == "" {
		_, err = buf.WriteTo(stdout)
		return err
	}
	if err := os.WriteFile(opts.out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	log.Info("wrote", "out", opts.out, "format", format, "bytes", buf.Len())
	return nil
}

func buildBook(src *book.Source, segOpts segment.Options, pageCfg paginate.Config) (*book.Book, error) {
	seg, err := segment.New(segOpts)
	if err != nil {
		return nil, fmt.Errorf("segmentation settings: %w", err)
	}
	res, err := seg.Segment(src.Markup)
	if err != nil {
		return nil, fmt.Errorf("segment: %w", err)
	}
	return &book.Book{
		ID:        pipeline.ContentHashHex([]byte(src.Markup))[:16],
		Title:     src.Title,
		Chapters:  res.Chapters,
		Pages:     paginate.Paginate(res.Chapters, pageCfg),
		Blocks:    res.Blocks,
		Discarded: res.Discarded,
		Annotated: res.Annotated,
		CreatedAt: time.Now(),
	}, nil
}

var errFormat = errors.New("format must be html, json or xlsx")

func outputFormat(format, out string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), ".")
		if format == "" || format == "htm" {
			format = "html"
		}
	}
	switch format {
	case "html", "json", "xlsx":
		return format, nil
	}
	return "", fmt.Errorf("%w, got %q", errFormat, format)
}
