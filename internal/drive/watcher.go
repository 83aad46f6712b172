package drive

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Watcher imports files from a Drive folder as they appear or change.
type Watcher struct {
	files    FileSource
	ingest   *IngestService
	folderID string

	mu   sync.Mutex
	seen map[string]string // file id -> modified time
}

// NewWatcher creates a Watcher for folderID.
func NewWatcher(files FileSource, ingestSvc *IngestService, folderID string) *Watcher {
	return &Watcher{
		files:    files,
		ingest:   ingestSvc,
		folderID: folderID,
		seen:     make(map[string]string),
	}
}

// Scan imports every importable file that is new or modified since the last
// scan. A file whose import fails is retried on the next scan.
func (w *Watcher) Scan(ctx context.Context) ([]SheetResult, error) {
	files, err := w.files.ListFiles(ctx, w.folderID)
	if err != nil {
		return nil, err
	}

	var results []SheetResult
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if !f.Importable() || !w.changed(f) {
			continue
		}

		res, err := w.ingest.ingest(ctx, f, "")
		if err != nil {
			log.Warn().Err(err).Str("file", f.Name).Msg("drive: import failed")
			continue
		}
		w.mark(f)
		results = append(results, res...)
	}
	return results, nil
}

// Run scans every interval until ctx is done.
func (w *Watcher) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := w.Scan(ctx); err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Str("folder_id", w.folderID).Msg("drive: scan failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *Watcher) changed(f *File) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	modified, ok := w.seen[f.ID]
	return !ok || modified != f.ModifiedTime
}

func (w *Watcher) mark(f *File) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seen[f.ID] = f.ModifiedTime
}
