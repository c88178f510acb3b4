package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/pageprint/pkg/cache"
	"github.com/matzehuels/pageprint/pkg/canon"
	"github.com/matzehuels/pageprint/pkg/errors"
	"github.com/matzehuels/pageprint/pkg/reconstruct"
	"github.com/matzehuels/pageprint/pkg/source"
)

// runCLI runs the root command with isolated config and cache
// directories and returns the status output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, "cache"))

	var buf bytes.Buffer
	swapOut(t, &buf)

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&buf)
	root.SetErr(&buf)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func writeDoc(t *testing.T, dir, name string, doc *canon.Document) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := canon.WriteFile(path, doc); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVersionCommand(t *testing.T) {
	output, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version error: %v", err)
	}
	for _, want := range []string{
		"version:",
		fmt.Sprintf("v%d", canon.FormatVersion),
		fmt.Sprintf("v%d", reconstruct.PayloadVersion),
	} {
		if !strings.Contains(output, want) {
			t.Errorf("version output %q missing %q", output, want)
		}
	}
}

func TestMergeCommand(t *testing.T) {
	dir := t.TempDir()
	a := writeDoc(t, dir, "default.json", stateDocument("default", false))
	b := writeDoc(t, dir, "menu.json", stateDocument("menu", true))

	output, err := runCLI(t, "merge", a, b)
	if err != nil {
		t.Fatalf("merge error: %v", err)
	}
	if !strings.Contains(output, "Merged 2 states into 4 nodes") {
		t.Errorf("merge output = %q", output)
	}

	merged, err := canon.ReadFile(filepath.Join(dir, "default.merged.json"))
	if err != nil {
		t.Fatalf("read merged document: %v", err)
	}
	if !reflect.DeepEqual(merged.States, []string{"default", "menu"}) {
		t.Errorf("States = %v, want [default menu]", merged.States)
	}
	if merged.BaseState != "default" {
		t.Errorf("BaseState = %q, want default", merged.BaseState)
	}
}

func TestMergeCommandBase(t *testing.T) {
	dir := t.TempDir()
	a := writeDoc(t, dir, "default.json", stateDocument("default", false))
	b := writeDoc(t, dir, "menu.json", stateDocument("menu", true))
	dst := filepath.Join(dir, "out", "merged.json")

	if _, err := runCLI(t, "merge", a, b, "--base", "menu", "-o", dst); err != nil {
		t.Fatalf("merge error: %v", err)
	}
	merged, err := canon.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if merged.BaseState != "menu" {
		t.Errorf("BaseState = %q, want menu", merged.BaseState)
	}
}

func TestReconstructCommand(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "page.json", stateDocument("default", true))

	output, err := runCLI(t, "reconstruct", doc)
	if err != nil {
		t.Fatalf("reconstruct error: %v", err)
	}
	if !strings.Contains(output, "for 4 nodes") {
		t.Errorf("reconstruct output = %q", output)
	}

	data, err := os.ReadFile(filepath.Join(dir, "page.ops.json"))
	if err != nil {
		t.Fatal(err)
	}
	var payload reconstruct.Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Version != reconstruct.PayloadVersion {
		t.Errorf("Version = %d, want %d", payload.Version, reconstruct.PayloadVersion)
	}
	if len(payload.Ops) == 0 || payload.Ops[0].Parent != "" {
		t.Fatalf("first op = %+v, want a top-level create", payload.Ops)
	}
}

func TestCompactCommand(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "page.json", stateDocument("default", true))

	output, err := runCLI(t, "compact", doc, "--strip-debug")
	if err != nil {
		t.Fatalf("compact error: %v", err)
	}
	if !strings.Contains(output, "Compacted") {
		t.Errorf("compact output = %q", output)
	}
	small, err := canon.ReadFile(filepath.Join(dir, "page.min.json"))
	if err != nil {
		t.Fatalf("read compacted document: %v", err)
	}
	if small.Tree.Count() != 4 {
		t.Errorf("Count() = %d, want 4", small.Tree.Count())
	}
}

func TestInspectCommand(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "page.json", stateDocument("default", true))
	dot := filepath.Join(dir, "tree.dot")

	output, err := runCLI(t, "inspect", doc, "--dot", dot, "--detailed")
	if err != nil {
		t.Fatalf("inspect error: %v", err)
	}
	for _, want := range []string{"https://example.com/", "frame", dot} {
		if !strings.Contains(output, want) {
			t.Errorf("inspect output missing %q:\n%s", want, output)
		}
	}

	data, err := os.ReadFile(dot)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "digraph") || !strings.Contains(string(data), "logo") {
		t.Errorf("dot output = %q", data)
	}
}

func TestExtractCommand(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, s := range []*source.Snapshot{snapshot("default", false), snapshot("menu", true)} {
		path := filepath.Join(dir, s.State+".snap.json")
		if err := source.WriteFile(path, s); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, path)
	}
	ops := filepath.Join(dir, "ops.json")

	args := append([]string{"extract", "--offline", "--ops", ops}, paths...)
	output, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("extract error: %v", err)
	}
	if !strings.Contains(output, "Merged 2 states") {
		t.Errorf("extract output = %q", output)
	}

	doc, err := canon.ReadFile(filepath.Join(dir, "default.snap.doc.json"))
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	if !reflect.DeepEqual(doc.States, []string{"default", "menu"}) {
		t.Errorf("States = %v, want [default menu]", doc.States)
	}
	if doc.Tree.Count() != 3 {
		t.Errorf("Count() = %d, want 3", doc.Tree.Count())
	}
	if _, err := os.Stat(ops); err != nil {
		t.Errorf("ops file not written: %v", err)
	}
}

func TestExtractCommandDuplicateState(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "default.snap.json")
	if err := source.WriteFile(path, snapshot("default", false)); err != nil {
		t.Fatal(err)
	}

	_, err := runCLI(t, "extract", "--offline", path, path)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("extract error = %v, want %v", err, errors.ErrCodeInvalidInput)
	}
}

func TestCommandErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"missing document", []string{"reconstruct", filepath.Join(dir, "missing.json")}, errors.ErrCodeInvalidPath},
		{"malformed document", []string{"compact", bad}, errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v (%v), want %v", err, errors.GetCode(err), tt.code)
			}
		})
	}
}

func TestConfigFlag(t *testing.T) {
	dir := t.TempDir()

	if _, err := runCLI(t, "--config", filepath.Join(dir, "missing.toml"), "version"); err == nil {
		t.Error("missing --config file expected error")
	}

	cfg := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfg, []byte("[cache]\nbackend = \"file\"\ndir = \""+filepath.ToSlash(filepath.Join(dir, "c"))+"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	output, err := runCLI(t, "--config", cfg, "cache", "path")
	if err != nil {
		t.Fatalf("cache path error: %v", err)
	}
	if got := strings.TrimSpace(output); got != filepath.ToSlash(filepath.Join(dir, "c")) {
		t.Errorf("cache path = %q, want the configured dir", got)
	}
}

func TestCacheCommands(t *testing.T) {
	output, err := runCLI(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path error: %v", err)
	}
	dir := strings.TrimSpace(output)
	if filepath.Base(dir) != appName {
		t.Fatalf("cache path = %q, want a %s directory", dir, appName)
	}

	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"snapshot:a", "asset:b"} {
		if err := fc.Set(context.Background(), k, []byte("x"), 0); err != nil {
			t.Fatal(err)
		}
	}

	// runCLI points XDG_CACHE_HOME at a fresh directory, so clear through
	// a config that names this one.
	cfg := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfg, []byte("[cache]\ndir = \""+filepath.ToSlash(dir)+"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	output, err = runCLI(t, "--config", cfg, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear error: %v", err)
	}
	if !strings.Contains(output, "Cleared 2 cached entries") {
		t.Errorf("cache clear output = %q", output)
	}
	if n, _ := fc.Len(); n != 0 {
		t.Errorf("Len() after clear = %d, want 0", n)
	}
}

func TestCompletion(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"document args", []string{"__complete", "merge", ""}, []string{"json", ":8"}},
		{"config flag", []string{"__complete", "--config", ""}, []string{"toml", "yaml", ":8"}},
		{"state flag", []string{"__complete", "capture", "https://example.com", "--state", ""}, []string{"default", ":4"}},
		{"bash script", []string{"completion", "bash"}, []string{"pageprint"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := runCLI(t, tt.args...)
			if err != nil {
				t.Fatalf("%v error: %v", tt.args, err)
			}
			for _, want := range tt.want {
				if !strings.Contains(output, want) {
					t.Errorf("%v output missing %q:\n%s", tt.args, want, output)
				}
			}
		})
	}
}
