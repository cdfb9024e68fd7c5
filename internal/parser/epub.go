package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgallion1/bookseg/internal/book"
	"github.com/taylorskalyo/goreader/epub"
	"golang.org/x/net/html"
)

// EPUBParser handles .epub files. Spine documents are concatenated in
// reading order and their h1–h3 headings marked as chapter titles.
type EPUBParser struct{}

func (p *EPUBParser) Parse(r io.Reader, filename string) (*book.Source, error) {
	// goreader opens by path, so we write to a temp file.
	tmp, err := os.CreateTemp("", "bookseg-epub-*.epub")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	rc, err := epub.OpenReader(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("open epub: %w", err)
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return nil, fmt.Errorf("no rootfiles found in epub")
	}
	rf := rc.Rootfiles[0]

	src := &book.Source{Title: strings.TrimSpace(rf.Metadata.Title)}
	if src.Title == "" {
		src.Title = trimExt(filename)
	}

	var buf strings.Builder
	for _, ref := range rf.Spine.Itemrefs {
		if ref.Item == nil {
			continue
		}
		markup, err := spineMarkup(ref.Item)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", ref.Item.HREF, err)
		}
		buf.WriteString(markup)
	}
	src.Markup = buf.String()
	return src, nil
}

func spineMarkup(item *epub.Item) (string, error) {
	r, err := item.Open()
	if err != nil {
		return "", err
	}
	defer r.Close()

	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}
	body := findBody(doc)
	if body == nil {
		return "", nil
	}
	markHeadings(body)
	return innerHTML(body)
}
