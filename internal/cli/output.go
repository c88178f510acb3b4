package cli

import (
	"encoding/json"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/pageprint/pkg/canon"
	"github.com/matzehuels/pageprint/pkg/errors"
)

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput opens path for writing; "-" is stdout.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	return f, nil
}

// writeDocument writes doc to path.
func writeDocument(path string, doc *canon.Document) error {
	w, err := openOutput(path)
	if err != nil {
		return err
	}
	if err := canon.Encode(w, doc); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// writeJSON writes v as indented JSON to path.
func writeJSON(path string, v any) error {
	w, err := openOutput(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// documentName derives an output file name from a page URL:
// https://www.example.com/pricing becomes example.com-pricing.json.
func documentName(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "page.json"
	}
	name := strings.TrimPrefix(u.Hostname(), "www.")
	if p := strings.Trim(u.Path, "/"); p != "" {
		name += "-" + strings.NewReplacer("/", "-", ".", "-").Replace(p)
	}
	return name + ".json"
}

// derivedPath replaces input's extension with suffix: page.json becomes
// page.ops.json for suffix ".ops.json".
func derivedPath(input, suffix string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}
