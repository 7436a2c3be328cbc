// Package textutil provides the text normalization helpers shared by the
// search and fetch pipelines: control character stripping, UTF-8 repair,
// word-boundary truncation, and metadata text extraction.
package textutil

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultSnippetLength is the rune budget for result snippets.
const DefaultSnippetLength = 200

// wordBoundaryRatio controls how far Truncate may backtrack to a space.
// A space earlier than this fraction of the budget is ignored so short
// words near the start never shrink the output to almost nothing.
const wordBoundaryRatio = 0.8

// CleanText strips control characters (keeping newlines and tabs),
// repairs invalid UTF-8 by substitution, and trims surrounding
// whitespace. It is idempotent and never fails.
func CleanText(s string) string {
	if s == "" {
		return ""
	}

	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, string(utf8.RuneError))
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isStrippedControl(r) {
			continue
		}
		b.WriteRune(r)
	}

	return strings.TrimSpace(b.String())
}

// isStrippedControl reports whether r is a control character removed by
// CleanText: 0x00-0x08, 0x0B, 0x0C, 0x0E-0x1F, 0x7F. Newline (0x0A) and
// tab (0x09) survive.
func isStrippedControl(r rune) bool {
	switch {
	case r == '\n' || r == '\t':
		return false
	case r < 0x20:
		return true
	case r == 0x7F:
		return true
	default:
		return false
	}
}

// Truncate cuts content to at most maxChars runes, preferring a word
// boundary when one falls in the last fifth of the budget. The cut text
// is returned as is, without trimming. The second return value reports
// whether anything was cut.
func Truncate(content string, maxChars int) (string, bool) {
	if content == "" {
		return "", false
	}
	if maxChars <= 0 {
		return "", true
	}

	runes := []rune(content)
	if len(runes) <= maxChars {
		return content, false
	}

	cut := runes[:maxChars]
	lastSpace := -1
	for i := len(cut) - 1; i >= 0; i-- {
		if cut[i] == ' ' {
			lastSpace = i
			break
		}
	}
	if float64(lastSpace) > wordBoundaryRatio*float64(maxChars) {
		cut = cut[:lastSpace]
	}

	return string(cut), true
}

// ExtractText returns the first non-empty text value found in metadata,
// checking keys in order. Values are rendered as strings and trimmed;
// nil means no key held usable text.
func ExtractText(metadata map[string]any, keys []string) *string {
	if len(metadata) == 0 {
		return nil
	}

	for _, key := range keys {
		value, ok := metadata[key]
		if !ok || isEmptyValue(value) {
			continue
		}

		var text string
		if s, ok := value.(string); ok {
			text = s
		} else {
			text = fmt.Sprintf("%v", value)
		}

		text = strings.TrimSpace(text)
		if text != "" {
			return &text
		}
	}

	return nil
}

// isEmptyValue reports whether a metadata value carries no usable text:
// nil, false, numeric zero, or an empty container. Blank strings are
// handled by the trim check above.
func isEmptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case bool:
		return !v
	case float64:
		return v == 0
	case float32:
		return v == 0
	case int:
		return v == 0
	case int64:
		return v == 0
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}

// Snippet produces a short display string: cleaned, word-boundary
// truncated to maxLength runes, with "..." appended only when content
// was actually cut.
func Snippet(text string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultSnippetLength
	}

	cleaned := CleanText(text)
	cut, truncated := Truncate(cleaned, maxLength)
	if truncated {
		return cut + "..."
	}
	return cut
}
