package prompt

import (
	"fmt"
	"strings"

	"casperlearn/backend/internal/retrieval"
)

const separator = "────────────────────────────────────────────────────────────────────────────────"

// Assembler formats ranked retrieved chunks into one labeled context block
// for prompt injection. maxChars bounds the block so large nContext values
// cannot exceed the provider window; 0 disables the bound. When the budget
// is exceeded, whole contexts are dropped from the tail — the list arrives
// in relevance order, so the least relevant go first. At least one context
// is always kept.
type Assembler struct {
	maxChars int
}

func NewAssembler(maxChars int) *Assembler {
	return &Assembler{maxChars: maxChars}
}

func (a *Assembler) Format(contexts []retrieval.RetrievedContext) string {
	var blocks []string
	total := 0

	for i, ctx := range contexts {
		block := fmt.Sprintf("[Source %d] %s\nURL: %s\nRelevance: %.2f%%\n\n%s\n%s",
			i+1, orUntitled(ctx.Title), orNA(ctx.URL), ctx.Relevance*100, ctx.Content, separator)

		if a.maxChars > 0 && len(blocks) > 0 && total+len(block)+1 > a.maxChars {
			break
		}
		blocks = append(blocks, block)
		total += len(block) + 1
	}

	return strings.Join(blocks, "\n")
}

func orUntitled(title string) string {
	if title == "" {
		return "Untitled"
	}
	return title
}

func orNA(url string) string {
	if url == "" {
		return "N/A"
	}
	return url
}
