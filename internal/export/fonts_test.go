package export

import "testing"

func TestPrimaryFamily(t *testing.T) {
	cases := []struct {
		stack string
		want  string
	}{
		{"Inter, sans-serif", "Inter"},
		{`"Playfair Display", serif`, "Playfair Display"},
		{`"Roboto Mono", monospace`, "Roboto Mono"},
		{"Pacifico, cursive", "Pacifico"},
		{"", ""},
	}
	for _, c := range cases {
		if got := primaryFamily(c.stack); got != c.want {
			t.Errorf("primaryFamily(%q) = %q, want %q", c.stack, got, c.want)
		}
	}
}
