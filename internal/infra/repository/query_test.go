package repository

import "testing"

func TestContainsPattern(t *testing.T) {
	tests := map[string]string{
		"Test":   "%test%",
		"a_b":    `%a\_b%`,
		"50%":    `%50\%%`,
		`back\s`: `%back\\s%`,
	}
	for in, want := range tests {
		if got := containsPattern(in); got != want {
			t.Errorf("containsPattern(%q) = %q, want %q", in, got, want)
		}
	}
}
