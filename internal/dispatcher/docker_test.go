package dispatcher

import "testing"

func TestSanitizeReplacesPathSeparatorsAndSpaces(t *testing.T) {
	cases := map[string]string{
		"design":          "design",
		"design/review":   "design-review",
		"a b c":           "a-b-c",
		"phase/0 retry 2": "phase-0-retry-2",
	}
	for in, want := range cases {
		if got := sanitize(in); got != want {
			t.Errorf("sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}
