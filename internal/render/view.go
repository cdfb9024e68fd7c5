// Package render turns a segmented book into a reader page, single pages
// and a spreadsheet table of contents.
package render

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/dgallion1/bookseg/internal/book"
	"github.com/dgallion1/bookseg/internal/segment"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// policy strips scripts, handlers and unknown elements from block markup
// but keeps the class tokens the source uses for styling.
var policy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	return p
}()

type chapterView struct {
	ID    string
	Title string
	Body  template.HTML
	Open  bool
}

type bookView struct {
	Title     string
	TOC       []TOCEntry
	Chapters  []chapterView
	Blocks    int
	Discarded int
}

type pageView struct {
	Title        string
	ChapterTitle string
	ChapterID    string
	Number       int
	Total        int
	Prev         int
	Next         int
	Body         template.HTML
}

// Book writes the full reader page for b. The first chapter starts open.
func Book(w io.Writer, b *book.Book) error {
	v := bookView{
		Title:     b.Title,
		TOC:       TOC(b),
		Blocks:    b.Blocks,
		Discarded: b.Discarded,
	}
	for i, ch := range b.Chapters {
		v.Chapters = append(v.Chapters, chapterView{
			ID:    ChapterID(i),
			Title: ch.Title,
			Body:  blocksHTML(ch.Body),
			Open:  i == 0,
		})
	}
	if err := bookTmpl.Execute(w, v); err != nil {
		return fmt.Errorf("render book: %w", err)
	}
	return nil
}

// Page writes page n (1-based) of b.
func Page(w io.Writer, b *book.Book, n int) error {
	if n < 1 || n > len(b.Pages) {
		return fmt.Errorf("page %d out of range (1-%d)", n, len(b.Pages))
	}
	p := b.Pages[n-1]

	blocks := p.Blocks
	ch := b.Chapters[p.Chapter]
	v := pageView{
		Title:     b.Title,
		ChapterID: ChapterID(p.Chapter),
		Number:    n,
		Total:     len(b.Pages),
	}
	// The chapter title is shown as the page heading, not as a body block.
	if b.FirstPage(p.Chapter) == n && len(blocks) > 0 {
		v.ChapterTitle = ch.Title
		blocks = blocks[1:]
	}
	if n > 1 {
		v.Prev = n - 1
	}
	if n < len(b.Pages) {
		v.Next = n + 1
	}
	v.Body = blocksHTML(blocks)

	if err := pageTmpl.Execute(w, v); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

// blocksHTML rebuilds each block's element around its markup and
// sanitizes the result.
func blocksHTML(blocks []segment.Block) template.HTML {
	var buf strings.Builder
	for _, b := range blocks {
		tag := b.Tag
		if tag == "" {
			tag = "p"
		}
		buf.WriteString("<" + tag)
		if len(b.Classes) > 0 {
			buf.WriteString(` class="` + html.EscapeString(strings.Join(b.Classes, " ")) + `"`)
		}
		buf.WriteString(">")
		buf.WriteString(b.Markup)
		buf.WriteString("</" + tag + ">\n")
	}
	return template.HTML(policy.Sanitize(buf.String()))
}

const style = `
body{font-family:"Noto Serif Devanagari",Georgia,serif;margin:0;display:flex;line-height:1.6}
#toc{width:16rem;padding:1rem;border-right:1px solid #ddd;height:100vh;overflow-y:auto;position:sticky;top:0}
#toc a{display:block;padding:.25rem 0;color:inherit;text-decoration:none}
main{flex:1;padding:1rem 2rem;max-width:48rem}
.chapter h3{display:inline;cursor:pointer}
.pager{display:flex;justify-content:space-between;margin-top:2rem}
.empty{color:#666}
`

var bookTmpl = template.Must(template.New("book").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>` + style + `</style>
</head>
<body>
<nav id="toc">
<h2>{{.Title}}</h2>
{{range .TOC}}<a class="toc-link" href="{{.Href}}">{{.Title}}</a>
{{end}}</nav>
<main id="chapters">
{{range .Chapters}}<section class="chapter" id="{{.ID}}">
<details{{if .Open}} open{{end}}>
<summary><h3>{{.Title}}</h3></summary>
<div class="body">
{{.Body}}</div>
</details>
</section>
{{else}}<p class="empty">No chapter titles detected; {{.Discarded}} of {{.Blocks}} blocks were not attributed to a chapter.</p>
{{end}}</main>
</body>
</html>
`))

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}} ({{.Number}}/{{.Total}})</title>
<style>` + style + `</style>
</head>
<body>
<main id="{{.ChapterID}}">
{{if .ChapterTitle}}<h3>{{.ChapterTitle}}</h3>
{{end}}<div class="body">
{{.Body}}</div>
<nav class="pager">
{{if .Prev}}<a rel="prev" href="{{.Prev}}">&larr; {{.Prev}}</a>{{else}}<span></span>{{end}}
<span>{{.Number}} / {{.Total}}</span>
{{if .Next}}<a rel="next" href="{{.Next}}">{{.Next}} &rarr;</a>{{else}}<span></span>{{end}}
</nav>
</main>
</body>
</html>
`))
