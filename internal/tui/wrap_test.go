package tui

import (
	"reflect"
	"testing"
	"unicode/utf8"
)

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"fits", "print(x)", 20, []string{"print(x)"}},
		{"exact width", "abcde", 5, []string{"abcde"}},
		{"hard wrap", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"newlines", "f <- function() {\n  1\n}", 40, []string{"f <- function() {", "  1", "}"}},
		{"keeps indentation", "    x", 3, []string{"   ", " x"}},
		{"empty line", "a\n\nb", 10, []string{"a", "", "b"}},
		{"tabs expand", "\tx", 10, []string{"    x"}},
		{"zero width", "abc", 0, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapText(tt.text, tt.width)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("WrapText(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}

func TestWrapText_Unicode(t *testing.T) {
	result := WrapText("héllo wörld ünïcode", 6)
	for i, line := range result {
		if n := utf8.RuneCountInString(line); n > 6 {
			t.Errorf("Line %d exceeds width: %q (%d runes)", i, line, n)
		}
	}
	if len(result) != 4 {
		t.Errorf("Expected 4 lines, got %d: %q", len(result), result)
	}
}

func TestLastLines(t *testing.T) {
	lines := []string{"a", "b", "c"}

	if got := lastLines(lines, 2); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Errorf("lastLines(2) = %v", got)
	}
	if got := lastLines(lines, 5); len(got) != 3 {
		t.Errorf("lastLines(5) = %v, want all lines", got)
	}
	if got := lastLines(lines, 0); got != nil {
		t.Errorf("lastLines(0) = %v, want nil", got)
	}
}
