package render

import (
	"fmt"
	"io"

	"github.com/dgallion1/bookseg/internal/book"
	"github.com/xuri/excelize/v2"
)

const tocSheet = "Contents"

// WriteTOCWorkbook writes b's table of contents as an xlsx workbook.
func WriteTOCWorkbook(w io.Writer, b *book.Book) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", tocSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(tocSheet)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}

	header := []interface{}{"chapter", "id", "title", "blocks", "words", "first_page", "pages"}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}
	for i, e := range TOC(b) {
		row := []interface{}{i + 1, e.ID, e.Title, e.Blocks, e.Words, e.FirstPage, e.Pages}
		cell, _ := excelize.CoordinatesToCellName(1, i+2) // A2, A3, ...
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
