// Package cli implements the domgraph command-line interface.
//
// The commands mirror the stages of the pipeline:
//   - extract: pull tag-grouped elements out of an HTML page
//   - build: turn a tag-groups payload into a containment graph
//   - layout: position the graph with the force or radial layout
//   - render: export SVG, PNG, JSON, CSV or DOT artifacts
//   - watch: re-render whenever the input changes
//   - explore: search and select nodes in the terminal
//   - serve: run the visualizer HTTP API
//
// All commands support --verbose (-v) for debug-level logging through
// charmbracelet/log.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger writing timestamps as "HH:MM:SS.ms".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs completion of a step with its elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time rounded to the millisecond,
// e.g. "Rendered 3 artifacts (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
