package textpipe

import "strings"

// chunk is one classifier-sized slice of the input text.
type chunk struct {
	Text   string
	Tokens int
}

// splitChunks cuts text into chunks of at most maxTokens estimated tokens,
// preferring sentence boundaries. A single sentence that alone exceeds the
// budget falls back to word-level splitting so no chunk ever overruns.
func splitChunks(text string, maxTokens int, counter TokenCounter) []chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if counter.CountTokens(text) <= maxTokens {
		return []chunk{{Text: text, Tokens: counter.CountTokens(text)}}
	}

	var chunks []chunk
	var current []string
	currentTokens := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		joined := strings.TrimSpace(strings.Join(current, " "))
		chunks = append(chunks, chunk{Text: joined, Tokens: counter.CountTokens(joined)})
		current = current[:0]
		currentTokens = 0
	}

	for _, sentence := range splitSentences(text) {
		tokens := counter.CountTokens(sentence)
		if tokens > maxTokens {
			flush()
			for _, piece := range splitWords(sentence, maxTokens, counter) {
				chunks = append(chunks, piece)
			}
			continue
		}
		if currentTokens+tokens > maxTokens {
			flush()
		}
		current = append(current, sentence)
		currentTokens += tokens
	}
	flush()
	return chunks
}

// splitSentences breaks text on terminal punctuation followed by whitespace,
// keeping the punctuation with its sentence.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '.' && runes[i] != '!' && runes[i] != '?' {
			continue
		}
		// Consume a run of terminal punctuation ("?!", "...").
		end := i
		for end+1 < len(runes) && (runes[end+1] == '.' || runes[end+1] == '!' || runes[end+1] == '?') {
			end++
		}
		if end+1 < len(runes) && runes[end+1] != ' ' && runes[end+1] != '\n' && runes[end+1] != '\t' {
			i = end
			continue
		}
		sentence := strings.TrimSpace(string(runes[start : end+1]))
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = end + 1
		i = end
	}
	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

// splitWords greedily packs whitespace-delimited words into budget-sized
// chunks. Used only for pathological single sentences.
func splitWords(text string, maxTokens int, counter TokenCounter) []chunk {
	words := strings.Fields(text)
	var chunks []chunk
	var current []string
	for _, word := range words {
		candidate := strings.Join(append(current, word), " ")
		if len(current) > 0 && counter.CountTokens(candidate) > maxTokens {
			joined := strings.Join(current, " ")
			chunks = append(chunks, chunk{Text: joined, Tokens: counter.CountTokens(joined)})
			current = current[:0]
		}
		current = append(current, word)
	}
	if len(current) > 0 {
		joined := strings.Join(current, " ")
		chunks = append(chunks, chunk{Text: joined, Tokens: counter.CountTokens(joined)})
	}
	return chunks
}
