package httputil

import (
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestReadSnippet(t *testing.T) {
	tests := []struct {
		name, in string
		wantLen  int
		suffix   string
	}{
		{"empty", "", len("(empty body)"), "(empty body)"},
		{"short", "bad gateway", len("bad gateway"), "gateway"},
		{"exact", strings.Repeat("y", 199), 199, "y"},
		{"truncated", strings.Repeat("x", 300), 203, "..."},
	}
	for _, tt := range tests {
		got := ReadSnippet(strings.NewReader(tt.in))
		if len(got) != tt.wantLen || !strings.HasSuffix(got, tt.suffix) {
			t.Errorf("%s: ReadSnippet = %q (len %d), want len %d ending %q", tt.name, got, len(got), tt.wantLen, tt.suffix)
		}
	}
}

func TestCheckStatus(t *testing.T) {
	ok := &http.Response{StatusCode: 204, Body: io.NopCloser(strings.NewReader(""))}
	if err := CheckStatus(ok, "webhook"); err != nil {
		t.Errorf("204: unexpected error %v", err)
	}

	bad := &http.Response{StatusCode: 503, Body: io.NopCloser(strings.NewReader("maintenance"))}
	err := CheckStatus(bad, "webhook")
	if err == nil {
		t.Fatal("503: expected error")
	}
	if got := err.Error(); got != "webhook returned 503: maintenance" {
		t.Errorf("error = %q", got)
	}
}
