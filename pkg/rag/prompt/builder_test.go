package prompt

import (
	"strings"
	"testing"

	"spinach-be/internal/entity"
	"spinach-be/internal/repository/contract"

	"github.com/stretchr/testify/assert"
)

func scored(filename, content string, similarity float64) *contract.ScoredDocumentChunk {
	return &contract.ScoredDocumentChunk{
		Chunk: &entity.DocumentChunk{
			Filename: filename,
			Content:  content,
		},
		Similarity: similarity,
	}
}

func TestBuildWithoutSources(t *testing.T) {
	b := NewContextualBuilder("こんにちは", nil)
	assert.Equal(t, "こんにちは", b.Build())
}

func TestBuildWithSources(t *testing.T) {
	b := NewContextualBuilder("就業規則を教えて", []*contract.ScoredDocumentChunk{
		scored("rules.md", "第1条 勤務時間は9時から18時まで", 0.91),
		scored("handbook.md", "休暇は申請制です", 0.72),
	})

	got := b.Build()

	assert.Contains(t, got, "就業規則を教えて")
	assert.Contains(t, got, "参考資料:")
	assert.Contains(t, got, "[参考資料 1: rules.md]")
	assert.Contains(t, got, "[参考資料 2: handbook.md]")
	assert.Contains(t, got, "第1条 勤務時間は9時から18時まで")
	assert.Contains(t, got, "休暇は申請制です")

	// Question comes before the reference blocks.
	assert.Less(t, strings.Index(got, "就業規則を教えて"), strings.Index(got, "参考資料:"))
}

func TestBuildMissingFilename(t *testing.T) {
	b := NewContextualBuilder("q", []*contract.ScoredDocumentChunk{
		scored("", "content without origin", 0.6),
	})

	assert.Contains(t, b.Build(), "[参考資料 1: 不明]")
}
