package htmlsanitize_test

import (
	"testing"

	"github.com/dalemusser/visitdesk/internal/app/system/htmlsanitize"
)

func TestStripTags(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"empty", "", ""},
		{"plain text unchanged", "Flat 4B, Palm Residency", "Flat 4B, Palm Residency"},
		{"tags removed", "<b>Delivery</b> for <i>Mehta</i>", "Delivery for Mehta"},
		{"script removed with body", "Hi<script>alert('xss')</script>", "Hi"},
		{"entities decoded", "Tom &amp; Jerry", "Tom & Jerry"},
		{"ampersand kept", "Tom & Jerry", "Tom & Jerry"},
		{"trimmed", "  guest  ", "guest"},
		{"onclick dropped", `<button onclick="alert(1)">Open</button>`, "Open"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := htmlsanitize.StripTags(tc.in); got != tc.want {
				t.Errorf("StripTags(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestIsPlainText(t *testing.T) {
	if !htmlsanitize.IsPlainText("") {
		t.Error("expected empty string to be plain text")
	}
	if !htmlsanitize.IsPlainText("Hello, World!") {
		t.Error("expected string without tags to be plain text")
	}
	if htmlsanitize.IsPlainText("<p>Hello</p>") {
		t.Error("expected string with tags to NOT be plain text")
	}
}
