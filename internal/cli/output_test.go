package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDocumentName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.example.com/pricing", "example.com-pricing.json"},
		{"https://example.com/", "example.com.json"},
		{"https://example.com", "example.com.json"},
		{"https://docs.example.com/guide/v1.2/intro", "docs.example.com-guide-v1-2-intro.json"},
		{"http://localhost:8080/app", "localhost-app.json"},
		{"not a url", "page.json"},
		{"", "page.json"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := documentName(tt.url); got != tt.want {
				t.Errorf("documentName(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestDerivedPath(t *testing.T) {
	tests := []struct {
		input  string
		suffix string
		want   string
	}{
		{"page.json", ".ops.json", "page.ops.json"},
		{"out/page.json", ".min.json", "out/page.min.json"},
		{"snapshot", ".doc.json", "snapshot.doc.json"},
		{"page.merged.json", ".ops.json", "page.merged.ops.json"},
	}

	for _, tt := range tests {
		if got := derivedPath(tt.input, tt.suffix); got != tt.want {
			t.Errorf("derivedPath(%q, %q) = %q, want %q", tt.input, tt.suffix, got, tt.want)
		}
	}
}

func TestWriteJSONCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "out.json")
	if err := writeJSON(path, map[string]int{"nodes": 3}); err != nil {
		t.Fatalf("writeJSON() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := "{\n  \"nodes\": 3\n}\n"; string(data) != want {
		t.Errorf("writeJSON() wrote %q, want %q", data, want)
	}
}
