package source

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/pageprint/pkg/errors"
	"github.com/matzehuels/pageprint/pkg/geom"
)

func sample() *Snapshot {
	return &Snapshot{
		URL:      "https://example.com/",
		State:    DefaultState,
		Viewport: geom.Size{Width: 800, Height: 600},
		Ready:    true,
		Root: &Node{
			Tag:  "body",
			Size: geom.Size{Width: 800, Height: 1200},
			Children: []*Node{
				{Tag: "h1", Text: "Hello", Offset: geom.Point{X: 8, Y: 8}, Size: geom.Size{Width: 200, Height: 40},
					Style: map[string]string{"font-size": "32px"}},
				{Tag: TextTag, Text: "tail"},
			},
		},
	}
}

func TestSnapshotCount(t *testing.T) {
	if got := sample().Count(); got != 3 {
		t.Errorf("Count() = %d, want 3", got)
	}
	if got := (&Snapshot{}).Count(); got != 0 {
		t.Errorf("Count(empty) = %d, want 0", got)
	}
}

func TestNodeGet(t *testing.T) {
	s := sample()
	if got := s.Root.Children[0].Get("font-size"); got != "32px" {
		t.Errorf("Get(font-size) = %q", got)
	}
	if got := s.Root.Get("color"); got != "" {
		t.Errorf("Get on nil style = %q, want empty", got)
	}
	if !s.Root.Children[1].IsText() {
		t.Error("#text node should report IsText")
	}
}

func TestStatic(t *testing.T) {
	p := Static{DefaultState: sample()}
	ctx := context.Background()
	if snap, err := p.Snapshot(ctx, StateSpec{}); err != nil || snap.URL != "https://example.com/" {
		t.Errorf("Snapshot(default) = %v, %v", snap, err)
	}
	if _, err := p.Snapshot(ctx, StateSpec{Name: "hovered"}); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Snapshot(hovered) = %v, want NOT_FOUND", err)
	}
	cctx, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := p.Snapshot(cctx, StateSpec{}); err == nil {
		t.Error("Snapshot should honor cancellation")
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	if err := WriteFile(path, sample()); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Count() != 3 || got.Root.Children[0].Offset.X != 8 {
		t.Errorf("ReadFile() = %+v", got.Root)
	}
}

func TestDecodeRejects(t *testing.T) {
	if _, err := Decode(strings.NewReader("not json")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Decode(garbage) = %v, want INVALID_FORMAT", err)
	}
	if _, err := Decode(strings.NewReader(`{"url":"x"}`)); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Decode(no root) = %v, want INVALID_INPUT", err)
	}
	snap, err := Decode(strings.NewReader(`{"root":{"tag":"body"}}`))
	if err != nil || snap.State != DefaultState {
		t.Errorf("Decode() state = %v, %v, want default", snap, err)
	}
}
