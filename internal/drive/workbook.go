package drive

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/ingest"
	"github.com/xuri/excelize/v2"
)

// Sheet is one table read from an import file: the header row keys every
// following row.
type Sheet struct {
	Name string
	Rows []ingest.Row
}

// ReadFile parses CSV or XLSX content. name decides the format; native
// spreadsheets arrive exported as XLSX.
func ReadFile(name string, data []byte) ([]Sheet, error) {
	if fileExt(name) == ".csv" {
		rows, err := readCSV(data)
		if err != nil {
			return nil, fmt.Errorf("failed to read csv %s: %w", name, err)
		}
		return []Sheet{{Name: strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)), Rows: rows}}, nil
	}
	return readWorkbook(data)
}

func readWorkbook(data []byte) ([]Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}

	out := make([]Sheet, 0, len(sheets))
	for _, name := range sheets {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read rows from sheet %s: %w", name, err)
		}
		out = append(out, Sheet{Name: name, Rows: table(rows)})
	}
	return out, nil
}

func readCSV(data []byte) ([]ingest.Row, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	return table(records), nil
}

// table keys each record by the header row. Blank records are skipped and
// short records leave trailing fields unset.
func table(records [][]string) []ingest.Row {
	if len(records) < 2 {
		return []ingest.Row{}
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}

	out := make([]ingest.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(ingest.Row, len(header))
		empty := true
		for i, cell := range rec {
			if i >= len(header) || header[i] == "" {
				continue
			}
			if strings.TrimSpace(cell) != "" {
				empty = false
			}
			row[header[i]] = cell
		}
		if !empty {
			out = append(out, row)
		}
	}
	return out
}

func fileExt(name string) string {
	return strings.ToLower(filepath.Ext(name))
}
