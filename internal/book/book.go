package book

import (
	"time"

	"github.com/dgallion1/bookseg/internal/segment"
)

// Source is a parsed input document reduced to HTML markup.
type Source struct {
	Title  string // From metadata, or the filename without extension
	Markup string // HTML fragment fed to the segmenter
}

// Page is a run of consecutive blocks from one chapter.
type Page struct {
	Number  int             `json:"number"`  // 1-based, across the whole book
	Chapter int             `json:"chapter"` // 0-based chapter index
	Blocks  []segment.Block `json:"blocks"`
	Words   int             `json:"words"`
}

// Book is a segmented, paginated document ready for rendering.
type Book struct {
	ID        string              `json:"id"`
	Title     string              `json:"title"`
	Chapters  segment.ChapterList `json:"chapters"`
	Pages     []Page              `json:"pages"`
	Blocks    int                 `json:"blocks"`
	Discarded int                 `json:"discarded"`
	Annotated int                 `json:"annotated"`
	CreatedAt time.Time           `json:"created_at"`
}

// FirstPage returns the number of the first page of chapter idx, or 0.
func (b *Book) FirstPage(idx int) int {
	for _, p := range b.Pages {
		if p.Chapter == idx {
			return p.Number
		}
	}
	return 0
}

// PageCount returns how many pages chapter idx spans.
func (b *Book) PageCount(idx int) int {
	n := 0
	for _, p := range b.Pages {
		if p.Chapter == idx {
			n++
		}
	}
	return n
}
