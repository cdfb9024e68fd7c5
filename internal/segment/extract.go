package segment

// Extract partitions blocks into chapters. Each title opens a new chapter;
// other blocks join the open chapter. Blocks seen before the first title
// belong to no chapter and are counted in discarded.
func Extract(blocks []Block, c *Classifier) (ChapterList, int) {
	chapters := ChapterList{}
	discarded := 0
	current := -1

	for _, b := range blocks {
		switch {
		case c.IsTitle(b):
			chapters = append(chapters, Chapter{
				Title:      b.Text,
				TitleBlock: b,
				Body:       []Block{},
			})
			current = len(chapters) - 1
		case current >= 0:
			chapters[current].Body = append(chapters[current].Body, b)
		default:
			discarded++
		}
	}

	return chapters, discarded
}
