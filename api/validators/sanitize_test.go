package validators

import "testing"

func TestSanitizeString(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"trims whitespace", "  Summer sale \n", 0, "Summer sale"},
		{"truncates", "abcdefgh", 4, "abcd"},
		{"truncates on rune boundary", "héllo wörld", 5, "héllo"},
		{"zero disables truncation", "abcdefgh", 0, "abcdefgh"},
		{"short input untouched", "ok", 10, "ok"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeString(tc.input, tc.maxLen); got != tc.want {
				t.Fatalf("SanitizeString(%q, %d) = %q, want %q", tc.input, tc.maxLen, got, tc.want)
			}
		})
	}
}
