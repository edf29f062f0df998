package htmlsanitize_test

import (
	"testing"

	"github.com/dalemusser/quickmatch/internal/app/system/htmlsanitize"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Sunday Futsal", "Sunday Futsal"},
		{"trims", "  Riverside Park  ", "Riverside Park"},
		{"strips tags", "<b>Futsal</b> night", "Futsal night"},
		{"drops script", "Run<script>alert('x')</script>", "Run"},
		{"keeps ampersand", "Tom & Jerry", "Tom & Jerry"},
		{"non-ascii", "한강 러닝", "한강 러닝"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := htmlsanitize.PlainText(tc.in); got != tc.want {
				t.Errorf("PlainText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
