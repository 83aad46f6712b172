package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/ingest"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/service"
	"github.com/rs/zerolog/log"
)

// Kind is the collection an import file feeds.
type Kind string

const (
	KindMaterials Kind = "materials"
	KindProducts  Kind = "products"
	KindSales     Kind = "sales"
)

var ErrUnknownKind = errors.New("cannot tell what the sheet contains")

// kindHints map words found in file and sheet names to a collection.
var kindHints = []struct {
	kind  Kind
	words []string
}{
	{KindMaterials, []string{"raw", "material", "bahan", "rm"}},
	{KindProducts, []string{"finish", "product", "produk", "fg", "sku"}},
	{KindSales, []string{"sales", "penjualan", "jual"}},
}

// ParseKind maps a request parameter to a Kind. Empty means detect.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "", KindMaterials, KindProducts, KindSales:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// DetectKind guesses the collection from a file or sheet name.
func DetectKind(name string) (Kind, bool) {
	lower := strings.ToLower(name)
	tokens := strings.FieldsFunc(lower, func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	})
	for _, hint := range kindHints {
		for _, w := range hint.words {
			for _, tok := range tokens {
				if tok == w || (len(w) > 3 && strings.HasPrefix(tok, w)) {
					return hint.kind, true
				}
			}
		}
	}
	return "", false
}

// FileSource lists and downloads Drive files.
type FileSource interface {
	ListFiles(ctx context.Context, folderID string) ([]*File, error)
	GetFile(ctx context.Context, fileID string) (*File, error)
	DownloadFile(ctx context.Context, file *File, w io.Writer) error
}

// MasterImporter merges decoded rows into master data.
type MasterImporter interface {
	ImportMaterials(ctx context.Context, rows []ingest.Row) (service.ImportResult, error)
	ImportProducts(ctx context.Context, rows []ingest.Row) (service.ImportResult, error)
	ImportSales(ctx context.Context, rows []ingest.Row) (service.ImportResult, error)
}

// SheetResult reports the import of one sheet.
type SheetResult struct {
	File  string `json:"file"`
	Sheet string `json:"sheet"`
	Kind  Kind   `json:"kind"`
	service.ImportResult
}

type IngestService struct {
	files  FileSource
	master MasterImporter
}

func NewIngestService(files FileSource, master MasterImporter) *IngestService {
	return &IngestService{
		files:  files,
		master: master,
	}
}

// IngestFile downloads one file and imports its sheets. With an empty kind
// each sheet is routed by its own name, then by the file name; sheets that
// match nothing are skipped.
func (s *IngestService) IngestFile(ctx context.Context, fileID string, kind Kind) ([]SheetResult, error) {
	file, err := s.files.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	return s.ingest(ctx, file, kind)
}

func (s *IngestService) ingest(ctx context.Context, file *File, kind Kind) ([]SheetResult, error) {
	if !file.Importable() {
		return nil, fmt.Errorf("file %s is not a csv or xlsx file", file.Name)
	}

	var buf bytes.Buffer
	if err := s.files.DownloadFile(ctx, file, &buf); err != nil {
		return nil, err
	}

	name := file.Name
	if file.MimeType == mimeSpreadsheet {
		name += ".xlsx"
	}
	sheets, err := ReadFile(name, buf.Bytes())
	if err != nil {
		return nil, err
	}

	var results []SheetResult
	for _, sh := range sheets {
		k := kind
		if k == "" {
			var ok bool
			if k, ok = DetectKind(sh.Name); !ok {
				if k, ok = DetectKind(file.Name); !ok {
					log.Debug().Str("file", file.Name).Str("sheet", sh.Name).Msg("drive: sheet skipped")
					continue
				}
			}
		}

		res, err := s.importRows(ctx, k, sh.Rows)
		if err != nil {
			return results, fmt.Errorf("failed to import sheet %s of %s: %w", sh.Name, file.Name, err)
		}
		results = append(results, SheetResult{File: file.Name, Sheet: sh.Name, Kind: k, ImportResult: res})

		log.Info().
			Str("file", file.Name).
			Str("sheet", sh.Name).
			Str("kind", string(k)).
			Int("imported", res.Imported).
			Msg("drive: sheet imported")
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, file.Name)
	}
	return results, nil
}

func (s *IngestService) importRows(ctx context.Context, kind Kind, rows []ingest.Row) (service.ImportResult, error) {
	switch kind {
	case KindMaterials:
		return s.master.ImportMaterials(ctx, rows)
	case KindProducts:
		return s.master.ImportProducts(ctx, rows)
	case KindSales:
		return s.master.ImportSales(ctx, rows)
	default:
		return service.ImportResult{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}
