package observability

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every pipeline, cache and HTTP event to a logger at
// debug level. Errors are logged at warn level.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks writing to logger. A nil logger discards.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &LogHooks{Logger: logger.WithPrefix("events")}
}

// Install registers h for all three event categories.
func (h *LogHooks) Install() {
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) done(msg string, err error, kv ...any) {
	if err != nil {
		h.Logger.Warn(msg, append(kv, "err", err)...)
		return
	}
	h.Logger.Debug(msg, kv...)
}

func (h *LogHooks) OnCaptureStart(_ context.Context, url, state string) {
	h.Logger.Debug("capture start", "url", url, "state", state)
}

func (h *LogHooks) OnCaptureComplete(_ context.Context, url, state string, d time.Duration, err error) {
	h.done("capture done", err, "url", url, "state", state, "took", d)
}

func (h *LogHooks) OnExtractStart(_ context.Context, state string) {
	h.Logger.Debug("extract start", "state", state)
}

func (h *LogHooks) OnExtractComplete(_ context.Context, state string, nodes int, d time.Duration, err error) {
	h.done("extract done", err, "state", state, "nodes", nodes, "took", d)
}

func (h *LogHooks) OnMergeStart(_ context.Context, states int) {
	h.Logger.Debug("merge start", "states", states)
}

func (h *LogHooks) OnMergeComplete(_ context.Context, nodes, conflicts int, d time.Duration) {
	h.Logger.Debug("merge done", "nodes", nodes, "conflicts", conflicts, "took", d)
}

func (h *LogHooks) OnReconstructStart(_ context.Context, nodes int) {
	h.Logger.Debug("reconstruct start", "nodes", nodes)
}

func (h *LogHooks) OnReconstructComplete(_ context.Context, ops, failures int, d time.Duration, err error) {
	h.done("reconstruct done", err, "ops", ops, "failures", failures, "took", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.Logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.Logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "took", d)
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.Logger.Warn("http error", "method", method, "host", host, "path", path, "err", err)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
