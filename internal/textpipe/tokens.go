package textpipe

import "strings"

// TokenCounter estimates the model token length of a text span. The chunker
// uses it to keep each classifier call under the model's context budget.
type TokenCounter interface {
	CountTokens(text string) int
}

// heuristicCounter approximates subword token counts from whitespace-split
// words. Transformer tokenizers average roughly 4 tokens per 3 English words,
// so the estimate rounds up on that ratio. Overshooting slightly is safe; the
// budget only has to stay under the model context.
type heuristicCounter struct{}

// NewHeuristicCounter returns the default token estimator.
func NewHeuristicCounter() TokenCounter {
	return heuristicCounter{}
}

func (heuristicCounter) CountTokens(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return (words*4 + 2) / 3
}
