package paginate

import (
	"github.com/dgallion1/bookseg/internal/book"
	"github.com/dgallion1/bookseg/internal/segment"
)

// Config controls pagination.
type Config struct {
	PageWords int // Target page size in words.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		PageWords: 350,
	}
}

// Paginate lays chapters out on pages of roughly cfg.PageWords words.
// Blocks are never split, pages never span two chapters, and each
// chapter's title shares its page with at least the first body block.
func Paginate(chapters segment.ChapterList, cfg Config) []book.Page {
	if cfg.PageWords <= 0 {
		cfg.PageWords = 350
	}

	var pages []book.Page
	number := 1

	for idx, ch := range chapters {
		blocks := make([]segment.Block, 0, len(ch.Body)+1)
		blocks = append(blocks, ch.TitleBlock)
		blocks = append(blocks, ch.Body...)

		cur := book.Page{Number: number, Chapter: idx}
		for i, b := range blocks {
			words := EstimateWords(b.Text)

			// Would adding this block overflow the page? A page holding only
			// the title always takes the next block.
			if len(cur.Blocks) > 0 && i > 1 && cur.Words+words > cfg.PageWords {
				pages = append(pages, cur)
				number++
				cur = book.Page{Number: number, Chapter: idx}
			}

			cur.Blocks = append(cur.Blocks, b)
			cur.Words += words
		}
		pages = append(pages, cur)
		number++
	}

	return pages
}
