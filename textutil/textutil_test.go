package textutil

import (
	"strings"
	"testing"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"plain text", "hello world", "hello world"},
		{"trims whitespace", "  hello  ", "hello"},
		{"keeps newlines and tabs", "line1\n\tline2", "line1\n\tline2"},
		{"strips null bytes", "hel\x00lo", "hello"},
		{"strips low controls", "a\x01\x02\x03b", "ab"},
		{"strips vertical tab and form feed", "a\x0b\x0cb", "ab"},
		{"strips delete", "a\x7fb", "ab"},
		{"keeps unicode", "héllo wörld", "héllo wörld"},
		{"only controls", "\x00\x01\x02", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanText(tt.input)
			if got != tt.expected {
				t.Errorf("CleanText(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCleanText_RepairsInvalidUTF8(t *testing.T) {
	input := "valid \xff\xfe invalid"
	got := CleanText(input)

	if strings.ContainsRune(got, 0xff) {
		t.Errorf("expected invalid bytes to be replaced, got %q", got)
	}
	if !strings.Contains(got, "valid") || !strings.Contains(got, "invalid") {
		t.Errorf("expected surrounding text preserved, got %q", got)
	}
}

func TestCleanText_Idempotent(t *testing.T) {
	inputs := []string{
		"  hello\x00 world  ",
		"a\x01b\x02c",
		"normal text",
		"bad utf8 \xff here",
		"\ttabbed\n",
	}

	for _, input := range inputs {
		once := CleanText(input)
		twice := CleanText(once)
		if once != twice {
			t.Errorf("CleanText not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name          string
		content       string
		maxChars      int
		expected      string
		wantTruncated bool
	}{
		{"empty", "", 100, "", false},
		{"under limit", "short", 100, "short", false},
		{"exactly at limit", "12345", 5, "12345", false},
		{"cut without nearby space", "abcdefghij", 5, "abcde", true},
		{"zero budget", "hello", 0, "", true},
		{"keeps leading space", " abcdefghij", 5, " abcd", true},
		{"keeps trailing space", "abcd efghij", 5, "abcd ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated := Truncate(tt.content, tt.maxChars)
			if got != tt.expected {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.content, tt.maxChars, got, tt.expected)
			}
			if truncated != tt.wantTruncated {
				t.Errorf("Truncate(%q, %d) truncated = %v, want %v", tt.content, tt.maxChars, truncated, tt.wantTruncated)
			}
		})
	}
}

func TestTruncate_WordBoundary(t *testing.T) {
	// Space at index 9 of a 10 rune budget: inside the last fifth, so
	// the cut backtracks to it.
	content := "123456789 ABCDEF"
	got, truncated := Truncate(content, 10)
	if !truncated {
		t.Fatal("expected truncation")
	}
	if got != "123456789" {
		t.Errorf("expected cut at word boundary, got %q", got)
	}

	// Space early in the budget: ignored, hard cut instead.
	content = "ab cdefghijklmnop"
	got, truncated = Truncate(content, 10)
	if !truncated {
		t.Fatal("expected truncation")
	}
	if got != "ab cdefghi" {
		t.Errorf("expected hard cut, got %q", got)
	}
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]any
		keys     []string
		expected *string
	}{
		{"nil metadata", nil, []string{"text"}, nil},
		{"missing keys", map[string]any{"other": "x"}, []string{"text", "chunk"}, nil},
		{"first key wins", map[string]any{"text": "first", "chunk": "second"}, []string{"text", "chunk"}, ptr("first")},
		{"falls through empty", map[string]any{"text": "  ", "chunk": "second"}, []string{"text", "chunk"}, ptr("second")},
		{"skips nil value", map[string]any{"text": nil, "chunk": "second"}, []string{"text", "chunk"}, ptr("second")},
		{"trims value", map[string]any{"text": "  padded  "}, []string{"text"}, ptr("padded")},
		{"renders non-string", map[string]any{"text": 42}, []string{"text"}, ptr("42")},
		{"skips zero number", map[string]any{"text": float64(0), "chunk": "second"}, []string{"text", "chunk"}, ptr("second")},
		{"skips false", map[string]any{"text": false, "chunk": "second"}, []string{"text", "chunk"}, ptr("second")},
		{"skips empty list", map[string]any{"text": []any{}, "chunk": "second"}, []string{"text", "chunk"}, ptr("second")},
		{"no keys", map[string]any{"text": "x"}, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractText(tt.metadata, tt.keys)
			switch {
			case got == nil && tt.expected != nil:
				t.Errorf("expected %q, got nil", *tt.expected)
			case got != nil && tt.expected == nil:
				t.Errorf("expected nil, got %q", *got)
			case got != nil && tt.expected != nil && *got != *tt.expected:
				t.Errorf("expected %q, got %q", *tt.expected, *got)
			}
		})
	}
}

func TestSnippet(t *testing.T) {
	short := "a short snippet"
	if got := Snippet(short, 200); got != short {
		t.Errorf("expected %q unchanged, got %q", short, got)
	}

	long := strings.Repeat("word ", 100)
	got := Snippet(long, 200)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected ellipsis on truncated snippet, got %q", got)
	}
	if len([]rune(got)) > 203 {
		t.Errorf("snippet too long: %d runes", len([]rune(got)))
	}

	dirty := "  control\x00 chars  "
	if got := Snippet(dirty, 200); got != "control chars" {
		t.Errorf("expected cleaned snippet, got %q", got)
	}
}

func ptr(s string) *string {
	return &s
}
