package observability

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnCaptureStart(ctx, "https://example.com", "default")
	p.OnCaptureComplete(ctx, "https://example.com", "default", time.Second, nil)
	p.OnExtractStart(ctx, "default")
	p.OnExtractComplete(ctx, "default", 100, time.Second, nil)
	p.OnMergeStart(ctx, 2)
	p.OnMergeComplete(ctx, 120, 1, time.Millisecond)
	p.OnReconstructStart(ctx, 120)
	p.OnReconstructComplete(ctx, 480, 0, time.Second, errors.New("font missing"))

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "asset")
	c.OnCacheMiss(ctx, "document")
	c.OnCacheSet(ctx, "snapshot", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "cdn.example.com", "/hero.webp")
	h.OnResponse(ctx, "GET", "cdn.example.com", "/hero.webp", 200, time.Second)
	h.OnError(ctx, "GET", "cdn.example.com", "/hero.webp", nil)
}

// mergeCounter counts merge events and ignores the rest.
type mergeCounter struct {
	NoopPipelineHooks
	mu     sync.Mutex
	merges int
}

func (m *mergeCounter) OnMergeStart(context.Context, int) {
	m.mu.Lock()
	m.merges++
	m.mu.Unlock()
}

type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }

func TestHooksRegistry(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() default is not a no-op")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() default is not a no-op")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() default is not a no-op")
	}

	pipeline, cache, http := &mergeCounter{}, &testCacheHooks{}, &testHTTPHooks{}
	SetPipelineHooks(pipeline)
	SetCacheHooks(cache)
	SetHTTPHooks(http)
	if Pipeline() != pipeline || Cache() != cache || HTTP() != http {
		t.Fatal("Set*Hooks did not register the hooks")
	}

	SetPipelineHooks(nil)
	SetCacheHooks(nil)
	SetHTTPHooks(nil)
	if Pipeline() != pipeline || Cache() != cache || HTTP() != http {
		t.Error("Set*Hooks(nil) replaced registered hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() did not restore the no-op pipeline hooks")
	}
}

func TestHooksConcurrentUse(t *testing.T) {
	t.Cleanup(Reset)
	counter := &mergeCounter{}
	SetPipelineHooks(counter)

	// Jobs report while other goroutines re-register; the registry must
	// hand out a usable value every time.
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				if i == 0 {
					SetPipelineHooks(counter)
					continue
				}
				Pipeline().OnMergeStart(context.Background(), 2)
			}
		}()
	}
	wg.Wait()

	if counter.merges != 700 {
		t.Errorf("merges = %d, want 700", counter.merges)
	}
}
