package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. Failed stages
// are logged as warnings.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to logger, or to log.Default when nil.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{logger: logger.WithPrefix("obs")}
}

func (h *LogHooks) OnBuildStart(_ context.Context, tagCount int) {
	h.logger.Debug("build start", "tags", tagCount)
}

func (h *LogHooks) OnBuildComplete(_ context.Context, nodeCount int, d time.Duration, err error) {
	h.complete("build", err, "nodes", nodeCount, "duration", d)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, layout string, nodeCount int) {
	h.logger.Debug("layout start", "layout", layout, "nodes", nodeCount)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, layout string, ticks int, d time.Duration, err error) {
	h.complete("layout", err, "layout", layout, "ticks", ticks, "duration", d)
}

func (h *LogHooks) OnExportStart(_ context.Context, formats []string) {
	h.logger.Debug("export start", "formats", formats)
}

func (h *LogHooks) OnExportComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.complete("export", err, "formats", formats, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Debug("request", "method", method, "route", route, "status", status, "duration", d)
}

func (h *LogHooks) OnSessionOpen(_ context.Context, id string) {
	h.logger.Debug("session open", "id", id)
}

func (h *LogHooks) OnSessionClose(_ context.Context, id string) {
	h.logger.Debug("session close", "id", id)
}

func (h *LogHooks) complete(stage string, err error, kv ...any) {
	if err != nil {
		h.logger.Warn(stage+" failed", append(kv, "err", err)...)
		return
	}
	h.logger.Debug(stage+" done", kv...)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ ServerHooks   = (*LogHooks)(nil)
)
