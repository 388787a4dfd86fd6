package htmlsanitize_test

import (
	"testing"

	"github.com/dalemusser/whoseturn/internal/app/system/htmlsanitize"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "Dishes", "Dishes"},
		{"trims", "  Dishes  ", "Dishes"},
		{"strips tags", "<b>Dishes</b>", "Dishes"},
		{"drops script", "<script>alert('xss')</script>Dishes", "Dishes"},
		{"strips attributes", `<a href="javascript:alert(1)">Trash</a> night`, "Trash night"},
		{"keeps ampersand", "Tom & Jerry", "Tom & Jerry"},
		{"keeps apostrophe", "It's Bob's week", "It's Bob's week"},
		{"only markup", "<p></p>", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := htmlsanitize.PlainText(tc.input); got != tc.want {
				t.Errorf("PlainText(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
