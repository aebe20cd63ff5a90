package inputs

import (
	"testing"
)

func seed(t *testing.T, m *Manager, codes ...string) {
	t.Helper()
	log, err := m.LoadLog("r")
	if err != nil {
		t.Fatalf("LoadLog() error: %v", err)
	}
	for _, code := range codes {
		if _, err := m.Commit("r", log, code); err != nil {
			t.Fatalf("Commit(%q) error: %v", code, err)
		}
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModePrefix, false},
		{"prefix", ModePrefix, false},
		{"INFIX", ModeInfix, false},
		{"regex", ModeRegex, false},
		{"fuzzy", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSearchModes(t *testing.T) {
	m := newTestManager(t, 10)
	seed(t, m, "ls()", "ls(all=TRUE)", "print(x)", "ls()", "x <- ls()")

	tests := []struct {
		mode  Mode
		query string
		want  []string
	}{
		{ModePrefix, "ls", []string{"ls(all=TRUE)", "ls()"}},
		{ModeInfix, "ls", []string{"ls(all=TRUE)", "ls()", "x <- ls()"}},
		{ModeRegex, `ls\(\)$`, []string{"ls()", "x <- ls()"}},
		{ModeRegex, "LS", nil},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String()+"/"+tt.query, func(t *testing.T) {
			matches, err := m.Search("r", tt.mode, tt.query)
			if err != nil {
				t.Fatalf("Search() error: %v", err)
			}
			var got []string
			for _, match := range matches {
				got = append(got, match.Input)
			}
			if !equal(got, tt.want) {
				t.Errorf("Search() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegexSearchSpan(t *testing.T) {
	m := newTestManager(t, 10)
	seed(t, m, "x <- ls()")

	matches, err := m.Search("r", ModeRegex, `ls\(`)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("Search() = %+v, want one match", matches)
	}
	if matches[0].Start != 5 || matches[0].End != 8 {
		t.Errorf("span = [%d,%d), want [5,8)", matches[0].Start, matches[0].End)
	}
}

func TestRegexSearchInvalidPattern(t *testing.T) {
	m := newTestManager(t, 10)
	if _, err := m.Search("r", ModeRegex, "("); err == nil {
		t.Error("Expected error for invalid pattern")
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"ls()", 20, "ls()"},
		{"for (i in 1:3) {\n  print(i)\n}", 80, "for (i in 1:3) { print(i) }"},
		{"abcdefghij", 8, "abcde..."},
		{"héllo wörld", 8, "héllo..."},
		{"  \n ", 10, "[empty]"},
		{"abc", 2, ".."},
	}
	for _, tt := range tests {
		if got := Summarize(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("Summarize(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}
