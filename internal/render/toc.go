package render

import (
	"fmt"

	"github.com/dgallion1/bookseg/internal/book"
	"github.com/dgallion1/bookseg/internal/paginate"
	"golang.org/x/text/unicode/norm"
)

// TOCEntry is one line of the table of contents.
type TOCEntry struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Href      string `json:"href"`
	Blocks    int    `json:"blocks"`
	Words     int    `json:"words"`
	FirstPage int    `json:"first_page"`
	Pages     int    `json:"pages"`
}

// ChapterID is the anchor id of chapter idx (0-based).
func ChapterID(idx int) string {
	return fmt.Sprintf("chapter-%d", idx+1)
}

// TOC builds the table of contents for b.
func TOC(b *book.Book) []TOCEntry {
	entries := make([]TOCEntry, 0, len(b.Chapters))
	for i, ch := range b.Chapters {
		id := ChapterID(i)
		words := paginate.EstimateWords(ch.TitleBlock.Text)
		for _, blk := range ch.Body {
			words += paginate.EstimateWords(blk.Text)
		}
		title := norm.NFC.String(ch.Title)
		if title == "" {
			title = id
		}
		entries = append(entries, TOCEntry{
			ID:        id,
			Title:     title,
			Href:      "#" + id,
			Blocks:    len(ch.Body) + 1,
			Words:     words,
			FirstPage: b.FirstPage(i),
			Pages:     b.PageCount(i),
		})
	}
	return entries
}
