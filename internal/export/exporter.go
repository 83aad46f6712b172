package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
)

// uploadPrefix is the bucket folder exported workbooks are written to.
const uploadPrefix = "exports/"

// Exporter saves workbooks to the export directory and, when object storage
// is configured, uploads a copy.
type Exporter struct {
	dir     string
	objects storage.ObjectStorage
}

// NewExporter creates an Exporter. objects may be nil.
func NewExporter(dir string, objects storage.ObjectStorage) *Exporter {
	return &Exporter{dir: dir, objects: objects}
}

// Saved reports where a workbook ended up.
type Saved struct {
	Path string `json:"path,omitempty"`
	Key  string `json:"key,omitempty"`
}

// Save writes wb and closes it.
func (e *Exporter) Save(ctx context.Context, wb *Workbook) (Saved, error) {
	defer wb.Close()

	data, err := wb.Bytes()
	if err != nil {
		return Saved{}, err
	}

	var out Saved
	if e.dir != "" {
		if err := os.MkdirAll(e.dir, 0o755); err != nil {
			return Saved{}, fmt.Errorf("failed to create export dir: %w", err)
		}
		out.Path = filepath.Join(e.dir, wb.Name)
		if err := os.WriteFile(out.Path, data, 0o644); err != nil {
			return Saved{}, fmt.Errorf("failed to write %s: %w", out.Path, err)
		}
	}

	if e.objects != nil {
		key := uploadPrefix + wb.Name
		if err := e.objects.UploadObject(ctx, key, data); err != nil {
			return out, fmt.Errorf("failed to upload %s: %w", key, err)
		}
		out.Key = key
	}

	log.Info().
		Str("workbook", wb.Name).
		Str("path", out.Path).
		Str("key", out.Key).
		Int("bytes", len(data)).
		Msg("export: workbook saved")
	return out, nil
}
