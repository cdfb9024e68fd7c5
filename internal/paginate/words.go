package paginate

import "strings"

// EstimateWords counts whitespace-separated words. Annotation markers stick
// to the first word and do not add to the count.
func EstimateWords(text string) int {
	if text == "" {
		return 0
	}
	return len(strings.Fields(text))
}
