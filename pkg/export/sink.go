package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"

	"github.com/matzehuels/domgraph/pkg/errors"
)

// Sink delivers downloads.
type Sink interface {
	Deliver(ctx context.Context, d Download) error
}

// DirSink writes each download into Dir under its filename.
type DirSink struct {
	Dir string
}

func (s DirSink) Deliver(ctx context.Context, d Download) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := errors.ValidateFilename(d.Filename); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", s.Dir, err)
	}
	path := filepath.Join(s.Dir, d.Filename)
	if err := os.WriteFile(path, d.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriterSink writes download bytes to W back to back.
type WriterSink struct {
	W io.Writer
}

func (s WriterSink) Deliver(ctx context.Context, d Download) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.W.Write(d.Data)
	return err
}

// ClipboardSink copies text downloads to the system clipboard.
type ClipboardSink struct{}

func (ClipboardSink) Deliver(ctx context.Context, d Download) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !d.IsText() {
		return errors.New(errors.ErrCodeInvalidFormat, "cannot copy %s (%s) to the clipboard", d.Filename, d.MIME)
	}
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard not available on this system")
	}
	if err := clipboard.WriteAll(string(d.Data)); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}

// DeliverAll hands every download to sink, stopping at the first error.
func DeliverAll(ctx context.Context, sink Sink, downloads []Download) error {
	for _, d := range downloads {
		if err := sink.Deliver(ctx, d); err != nil {
			return fmt.Errorf("deliver %s: %w", d.Filename, err)
		}
	}
	return nil
}

var (
	_ Sink = DirSink{}
	_ Sink = WriterSink{}
	_ Sink = ClipboardSink{}
)
