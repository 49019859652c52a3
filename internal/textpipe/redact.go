package textpipe

import (
	"regexp"
	"sort"

	"introspect/internal/services/modelserve"
)

const (
	redactedPlaceholder = "[REDACTED]"
	phonePlaceholder    = "[PHONE]"
	emailPlaceholder    = "[EMAIL]"
)

// piiLabels is the set of entity labels treated as personally identifying.
var piiLabels = map[string]bool{
	"PERSON": true,
	"ORG":    true,
	"GPE":    true,
	"FAC":    true,
	"LOC":    true,
}

var (
	phonePattern = regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
)

// Redact replaces identifying entity spans and phone/email patterns with
// fixed placeholders. Entity spans are byte offsets into the original text
// and are applied in reverse order so earlier replacements do not shift
// later offsets.
func Redact(text string, entities []modelserve.Entity) string {
	spans := make([]modelserve.Entity, 0, len(entities))
	for _, entity := range entities {
		if !piiLabels[entity.Label] {
			continue
		}
		if entity.Start < 0 || entity.End > len(text) || entity.Start >= entity.End {
			continue
		}
		spans = append(spans, entity)
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start > spans[j].Start })

	out := text
	for _, span := range spans {
		out = out[:span.Start] + redactedPlaceholder + out[span.End:]
	}
	out = phonePattern.ReplaceAllString(out, phonePlaceholder)
	out = emailPattern.ReplaceAllString(out, emailPlaceholder)
	return out
}
