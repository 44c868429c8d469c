package models

import (
	"testing"
)

func TestSplitOrigins(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", nil},
		{"single", "https://app.cepho.io", []string{"https://app.cepho.io"}},
		{"comma", "https://a.com, https://b.com", []string{"https://a.com", "https://b.com"}},
		{"dedup", "x, x, y", []string{"x", "y"}},
		{"trim", "  a  ,  b  ", []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := SplitOrigins(tt.raw)
			if len(got) != len(tt.want) {
				t.Errorf("SplitOrigins(%q) length = %d, want %d", tt.raw, len(got), len(tt.want))
				return
			}
			seen := make(map[string]bool)
			for _, s := range got {
				seen[s] = true
			}
			for _, w := range tt.want {
				if !seen[w] {
					t.Errorf("SplitOrigins(%q) missing %q", tt.raw, w)
				}
			}
		})
	}
}

func TestCorsConfigOrigins(t *testing.T) {
	t.Parallel()
	c := &CorsConfig{AllowedOrigins: "https://app.cepho.io, http://localhost:3000"}
	got := c.Origins()
	if len(got) != 2 || got[0] != "https://app.cepho.io" || got[1] != "http://localhost:3000" {
		t.Errorf("Origins() = %v, want two trimmed origins in order", got)
	}
}
