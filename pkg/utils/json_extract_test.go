package utils

import "testing"

func TestExtractJSONBlock(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    map[string]string
		wantErr bool
	}{
		{
			name: "fenced json block",
			text: "はい、要約しました。\n```json\n{\"業務内容\": \"資料作成\", \"成果\": \"完了\"}\n```\n以上です。",
			want: map[string]string{"業務内容": "資料作成", "成果": "完了"},
		},
		{
			name: "fence without language tag",
			text: "```\n{\"key\": \"value\"}\n```",
			want: map[string]string{"key": "value"},
		},
		{
			name: "multiline json",
			text: "```json\n{\n  \"a\": \"1\",\n  \"b\": \"2\"\n}\n```",
			want: map[string]string{"a": "1", "b": "2"},
		},
		{
			name:    "no block",
			text:    "just prose, no code fence",
			wantErr: true,
		},
		{
			name:    "fence with invalid json",
			text:    "```json\n{not json}\n```",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONBlock(tt.text)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(got) != len(tt.want) {
				t.Fatalf("got %d keys, want %d", len(got), len(tt.want))
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("key %q = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestExtractJSONBlockTakesFirstBlock(t *testing.T) {
	text := "```json\n{\"first\": \"1\"}\n```\nand later\n```json\n{\"second\": \"2\"}\n```"

	got, err := ExtractJSONBlock(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["first"] != "1" {
		t.Errorf("expected first block, got %v", got)
	}
}
