// Package export renders planning results and master-data templates as XLSX
// workbooks.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Workbook is a rendered XLSX file with the name it should be saved under.
type Workbook struct {
	Name string
	File *excelize.File

	headerStyle int
}

// Bytes serializes the workbook.
func (w *Workbook) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := w.File.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook %s: %w", w.Name, err)
	}
	return buf.Bytes(), nil
}

func (w *Workbook) Close() error {
	return w.File.Close()
}

// sheetWriter writes rows top-down into one sheet.
type sheetWriter struct {
	f      *excelize.File
	sheet  string
	row    int
	header int
}

func newWorkbook(name string) (*Workbook, error) {
	f := excelize.NewFile()
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	return &Workbook{Name: name, File: f, headerStyle: header}, nil
}

// sheet returns a writer for name. The default sheet is renamed for the
// first call.
func (w *Workbook) sheet(name string) (*sheetWriter, error) {
	name = sheetName(name)
	list := w.File.GetSheetList()
	if len(list) == 1 && list[0] == "Sheet1" && name != "Sheet1" {
		if err := w.File.SetSheetName("Sheet1", name); err != nil {
			return nil, err
		}
	} else if _, err := w.File.NewSheet(name); err != nil {
		return nil, err
	}
	return &sheetWriter{f: w.File, sheet: name, row: 1, header: w.headerStyle}, nil
}

func (s *sheetWriter) writeHeader(cols ...interface{}) error {
	start := s.row
	if err := s.write(cols...); err != nil {
		return err
	}
	first, _ := excelize.CoordinatesToCellName(1, start)
	last, _ := excelize.CoordinatesToCellName(len(cols), start)
	return s.f.SetCellStyle(s.sheet, first, last, s.header)
}

func (s *sheetWriter) write(cols ...interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return err
	}
	if err := s.f.SetSheetRow(s.sheet, cell, &cols); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", s.sheet, s.row, err)
	}
	s.row++
	return nil
}

func (s *sheetWriter) blank() {
	s.row++
}

func (s *sheetWriter) widths(widths ...float64) {
	for i, wdt := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		s.f.SetColWidth(s.sheet, col, col, wdt)
	}
}
