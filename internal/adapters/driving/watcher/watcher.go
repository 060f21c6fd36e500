// Package watcher ingests documents dropped into a watched directory.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/casedex/internal/core/domain"
	"github.com/custodia-labs/casedex/internal/core/ports/driving"
	"github.com/custodia-labs/casedex/internal/logger"
)

// settleDelay gives the writer time to finish the file after the create
// event fires.
const settleDelay = 500 * time.Millisecond

// Watcher ingests files as they appear in a directory. One file's
// failure never stops the watch loop.
type Watcher struct {
	ingest driving.IngestService
	tags   []string
	settle time.Duration
}

// New creates a Watcher that applies tags to every ingested file.
func New(ingest driving.IngestService, tags []string) *Watcher {
	return &Watcher{ingest: ingest, tags: tags, settle: settleDelay}
}

// Watch blocks ingesting new files in dir until ctx is cancelled.
// Files with unsupported extensions are skipped.
func (w *Watcher) Watch(ctx context.Context, dir string) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(dir); err != nil {
		return err
	}
	logger.Info("Watching %s", dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			w.handle(ctx, event.Name)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watch error: %v", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, path string) {
	format, err := domain.FormatFromPath(path)
	if err != nil {
		logger.Debug("Skipping %s: unsupported extension", path)
		return
	}

	select {
	case <-ctx.Done():
		return
	case <-time.After(w.settle):
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	content, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Reading %s: %v", path, err)
		return
	}

	doc, err := w.ingest.Ingest(ctx, domain.IngestRequest{
		Filename: filepath.Base(path),
		Format:   format,
		Content:  content,
		Tags:     w.tags,
	})
	if err != nil {
		logger.Warn("Ingesting %s: %v", path, err)
		return
	}
	logger.Info("Ingested %s (%s)", doc.Filename, doc.ID)
}
