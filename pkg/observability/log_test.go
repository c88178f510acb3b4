package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	h := NewLogHooks(logger)
	ctx := context.Background()

	h.OnExtractComplete(ctx, "default", 12, time.Millisecond, nil)
	h.OnCaptureComplete(ctx, "https://example.com", "menu", time.Second, errors.New("timeout"))
	h.OnCacheHit(ctx, "snapshot")

	out := buf.String()
	for _, want := range []string{"extract done", "nodes=12", "WARN", "capture done", "err=timeout", "cache hit", "type=snapshot"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLogHooksInstall(t *testing.T) {
	defer Reset()
	h := NewLogHooks(nil)
	h.Install()
	if Pipeline() != h || Cache() != h || HTTP() != h {
		t.Error("Install should register the hooks globally")
	}
}
