package assets

import (
	"context"
	"log/slog"
	"sync"

	"talisman/internal/logging"
)

// SkipReason classifies why a record was dropped without failing the run.
type SkipReason int

const (
	// SkipMissingWord: a unique record's display-name index has no Words row.
	SkipMissingWord SkipReason = iota
	// SkipMissingVisualIdentity: the visual identity foreign key dangles.
	SkipMissingVisualIdentity
	// SkipAlternateArt: the resolved visual identity is an alternate-art
	// variant, which shares the canonical name and must never overwrite it.
	SkipAlternateArt
	// SkipInvalidName: the record's name handle does not decode.
	SkipInvalidName
	// SkipInvalidSourcePath: the visual identity's dds_file handle does not
	// decode.
	SkipInvalidSourcePath
	// SkipMissingImage: the source image path is absent from the bundle.
	SkipMissingImage
	// SkipImageDecode: the source image bytes do not decode.
	SkipImageDecode
	// SkipPostprocess: a postprocess transform failed on the record.
	SkipPostprocess
)

func (r SkipReason) String() string {
	switch r {
	case SkipMissingWord:
		return "missing word"
	case SkipMissingVisualIdentity:
		return "missing visual identity"
	case SkipAlternateArt:
		return "alternate art"
	case SkipInvalidName:
		return "invalid name"
	case SkipInvalidSourcePath:
		return "invalid source path"
	case SkipMissingImage:
		return "missing source image"
	case SkipImageDecode:
		return "undecodable source image"
	case SkipPostprocess:
		return "postprocess failed"
	default:
		return "unknown"
	}
}

// Reporter receives structured pipeline events. The pipeline itself holds no
// ambient logging state; inject a Reporter to observe a run.
type Reporter interface {
	RecordSkipped(ctx context.Context, file *File, reason SkipReason, err error)
	RecordWritten(ctx context.Context, file *File, path string)
	RunCompleted(ctx context.Context, total int)
}

// LogReporter logs pipeline events through slog. Skips log at warning level
// except alternate art, which is expected for most unique items and logs at
// debug.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a Reporter over logger.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	return &LogReporter{logger: logging.NewComponentLogger(logger, "pipeline")}
}

func (r *LogReporter) RecordSkipped(ctx context.Context, file *File, reason SkipReason, err error) {
	attrs := []logging.Attr{
		logging.String("reason", reason.String()),
		logging.String("kind", file.Kind.String()),
		logging.String("id", file.ID.String()),
		logging.String("name", file.Name.String()),
	}
	if err != nil {
		attrs = append(attrs, logging.Error(err))
	}
	if reason == SkipAlternateArt {
		r.logger.DebugContext(ctx, "skipping record", logging.Args(attrs...)...)
		return
	}
	r.logger.WarnContext(ctx, "skipping record", logging.Args(attrs...)...)
}

func (r *LogReporter) RecordWritten(ctx context.Context, file *File, path string) {
	r.logger.DebugContext(ctx, "generated file",
		logging.String("name", file.Name.String()),
		logging.String("path", path),
	)
}

func (r *LogReporter) RunCompleted(ctx context.Context, total int) {
	r.logger.InfoContext(ctx, "extraction complete", logging.Int("total", total))
}

// CountingReporter tallies events per skip reason while forwarding them to
// another Reporter. The CLI renders its totals as the run summary.
type CountingReporter struct {
	next Reporter

	mu      sync.Mutex
	skips   map[SkipReason]int
	written int
}

// NewCountingReporter wraps next with event counting. next may be nil.
func NewCountingReporter(next Reporter) *CountingReporter {
	return &CountingReporter{next: next, skips: make(map[SkipReason]int)}
}

func (c *CountingReporter) RecordSkipped(ctx context.Context, file *File, reason SkipReason, err error) {
	c.mu.Lock()
	c.skips[reason]++
	c.mu.Unlock()
	if c.next != nil {
		c.next.RecordSkipped(ctx, file, reason, err)
	}
}

func (c *CountingReporter) RecordWritten(ctx context.Context, file *File, path string) {
	c.mu.Lock()
	c.written++
	c.mu.Unlock()
	if c.next != nil {
		c.next.RecordWritten(ctx, file, path)
	}
}

func (c *CountingReporter) RunCompleted(ctx context.Context, total int) {
	if c.next != nil {
		c.next.RunCompleted(ctx, total)
	}
}

// Written returns the number of files reported written.
func (c *CountingReporter) Written() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.written
}

// Skips returns a copy of the per-reason skip tallies.
func (c *CountingReporter) Skips() map[SkipReason]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[SkipReason]int, len(c.skips))
	for reason, count := range c.skips {
		out[reason] = count
	}
	return out
}
