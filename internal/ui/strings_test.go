package ui

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		value string
		limit int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly ten..", 13, "exactly ten.."},
		{"a very long book title indeed", 10, "a very ..."},
		{"  padded  ", 20, "padded"},
		{"abc", 2, "ab"},
		{"anything", 0, "anything"},
	}
	for _, tt := range tests {
		if got := truncate(tt.value, tt.limit); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.value, tt.limit, got, tt.want)
		}
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"want-to-read", "Want To Read"},
		{"reading", "Reading"},
		{"ACTIVE", "Active"},
		{"some_status", "Some Status"},
		{"", ""},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := titleCase(tt.value); got != tt.want {
			t.Errorf("titleCase(%q) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 5); got != "ab   " {
		t.Fatalf("padRight = %q", got)
	}
	if got := padRight("abcdef", 3); got != "abcdef" {
		t.Fatalf("padRight over-width = %q", got)
	}
	if got := padRight("ab", 0); got != "ab" {
		t.Fatalf("padRight zero = %q", got)
	}
}
