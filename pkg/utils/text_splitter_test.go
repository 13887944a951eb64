package utils

import (
	"strings"
	"testing"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		chunkSize  int
		overlap    int
		wantChunks int
	}{
		{
			name:       "short text stays in one chunk",
			text:       "hello world",
			chunkSize:  100,
			overlap:    20,
			wantChunks: 1,
		},
		{
			name:       "exact chunk size stays in one chunk",
			text:       strings.Repeat("a", 100),
			chunkSize:  100,
			overlap:    20,
			wantChunks: 1,
		},
		{
			name:       "multibyte text at chunk size stays in one chunk",
			text:       strings.Repeat("あ", 100),
			chunkSize:  100,
			overlap:    20,
			wantChunks: 1,
		},
		{
			name:       "long text splits with overlap",
			text:       strings.Repeat("a", 250),
			chunkSize:  100,
			overlap:    20,
			wantChunks: 3,
		},
		{
			name:       "overlap larger than chunk falls back to plain steps",
			text:       strings.Repeat("a", 300),
			chunkSize:  100,
			overlap:    150,
			wantChunks: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitText(tt.text, tt.chunkSize, tt.overlap)

			if len(chunks) != tt.wantChunks {
				t.Errorf("chunk count = %d, want %d", len(chunks), tt.wantChunks)
			}

			for i, chunk := range chunks {
				if len([]rune(chunk)) > tt.chunkSize {
					t.Errorf("chunk %d length = %d, exceeds chunk size %d", i, len([]rune(chunk)), tt.chunkSize)
				}
			}
		})
	}
}

func TestSplitTextOverlapPreservesBoundary(t *testing.T) {
	text := "0123456789abcdefghij"
	chunks := SplitText(text, 10, 4)

	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}

	// The tail of the first chunk must reappear at the head of the second.
	first := chunks[0]
	second := chunks[1]
	if !strings.HasPrefix(second, first[len(first)-4:]) {
		t.Errorf("second chunk %q does not start with overlap of first chunk %q", second, first)
	}
}

func TestSplitTextMultibyte(t *testing.T) {
	text := strings.Repeat("あ", 150)
	chunks := SplitText(text, 100, 10)

	for i, chunk := range chunks {
		if n := len([]rune(chunk)); n > 100 {
			t.Errorf("chunk %d rune count = %d, want <= 100", i, n)
		}
		for _, r := range chunk {
			if r != 'あ' {
				t.Fatalf("chunk %d contains mangled rune %q", i, r)
			}
		}
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "windows line endings",
			in:   "line1\r\nline2",
			want: "line1\nline2",
		},
		{
			name: "collapses blank runs",
			in:   "a\n\n\n\nb",
			want: "a\n\nb",
		},
		{
			name: "trims trailing whitespace per line",
			in:   "a  \nb\t",
			want: "a\nb",
		},
		{
			name: "trims surrounding whitespace",
			in:   "\n\n  hello  \n\n",
			want: "hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.in); got != tt.want {
				t.Errorf("CleanText() = %q, want %q", got, tt.want)
			}
		})
	}
}
