package git

import (
	"strings"
	"testing"
)

func TestGuessMimeType(t *testing.T) {
	if got := guessMimeType("config/settings.json"); !strings.HasPrefix(got, "application/json") {
		t.Errorf("guessMimeType(.json) = %q, want application/json", got)
	}
	if got := guessMimeType("docs/index.html"); !strings.HasPrefix(got, "text/html") {
		t.Errorf("guessMimeType(.html) = %q, want text/html", got)
	}
	if got := guessMimeType("bin/data.qqzz"); got != "application/octet-stream" {
		t.Errorf("guessMimeType(unknown) = %q, want application/octet-stream", got)
	}
	if got := guessMimeType("Makefile"); got != "application/octet-stream" {
		t.Errorf("guessMimeType(no extension) = %q, want application/octet-stream", got)
	}
}
