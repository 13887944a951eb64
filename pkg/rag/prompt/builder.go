package prompt

import (
	"fmt"
	"strings"

	"spinach-be/internal/repository/contract"
)

// ContextualBuilder assembles the user prompt with retrieved reference blocks.
type ContextualBuilder struct {
	question string
	sources  []*contract.ScoredDocumentChunk
}

func NewContextualBuilder(question string, sources []*contract.ScoredDocumentChunk) *ContextualBuilder {
	return &ContextualBuilder{
		question: question,
		sources:  sources,
	}
}

// Build returns the question followed by numbered 参考資料 blocks. Without
// sources the question passes through untouched, so the model answers from
// its own knowledge.
func (b *ContextualBuilder) Build() string {
	if len(b.sources) == 0 {
		return b.question
	}

	var prompt strings.Builder
	prompt.WriteString(b.question)
	prompt.WriteString("\n\n参考資料:\n")

	for i, s := range b.sources {
		filename := s.Chunk.Filename
		if filename == "" {
			filename = "不明"
		}
		prompt.WriteString(fmt.Sprintf("[参考資料 %d: %s]\n", i+1, filename))
		prompt.WriteString(s.Chunk.Content)
		if i < len(b.sources)-1 {
			prompt.WriteString("\n\n")
		}
	}

	return prompt.String()
}
