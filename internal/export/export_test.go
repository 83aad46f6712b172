package export

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/pipeline/schedule"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func reopen(t *testing.T, wb *Workbook) *excelize.File {
	t.Helper()
	data, err := wb.Bytes()
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestFormatIDFloat(t *testing.T) {
	tests := []struct {
		v        float64
		decimals int
		want     string
	}{
		{1234.5, 2, "1.234,50"},
		{1000, 2, "1.000"},
		{999, 0, "999"},
		{1234567.891, 1, "1.234.567,9"},
		{-25000, 0, "-25.000"},
		{-0.001, 2, "0"},
		{0.05, 2, "0,05"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatIDFloat(tt.v, tt.decimals))
	}
	assert.Equal(t, "Rp 120.000", FormatRupiah(120000))
	assert.Equal(t, 1.23, roundFloat(1.2345, 2))
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "FG-01", sheetName("FG/01"))
	assert.Equal(t, "Sheet", sheetName("  "))
	assert.Len(t, []rune(sheetName("a very long product code that exceeds the limit")), 31)
}

func TestSchedule(t *testing.T) {
	days := schedule.WeekDates("2024-03-04")
	rows := []schedule.Row{
		{SKUID: "FG001", Name: "Bakso", QtyPerBatch: 40, Days: []int{2, 0, 1, 0, 0, 0, 0}, TargetBatch: 4},
		{SKUID: "FG003", Name: "Sosis", QtyPerBatch: 25, Days: []int{0, 1, 0, 0, 0, 0, 0}},
	}

	wb, err := Schedule("2024-03-04", days, rows)
	require.NoError(t, err)
	assert.Equal(t, "schedule-2024-03-04.xlsx", wb.Name)

	f := reopen(t, wb)
	assert.Equal(t, []string{"Batch", "Pack"}, f.GetSheetList())

	batch, err := f.GetRows("Batch")
	require.NoError(t, err)
	require.Len(t, batch, 4)
	assert.Equal(t, "SKU", batch[0][0])
	assert.Equal(t, "FG001", batch[1][0])
	assert.Equal(t, "2", batch[1][3])
	assert.Equal(t, "3", batch[1][10], "total")
	assert.Equal(t, "4", batch[1][11], "target")
	assert.Equal(t, "4", batch[3][10], "grand total")

	pack, err := f.GetRows("Pack")
	require.NoError(t, err)
	assert.Equal(t, "80", pack[1][3])
	assert.Equal(t, "120", pack[1][10])
	assert.Equal(t, "160", pack[1][11])
	assert.Equal(t, "25", pack[2][4])
}

func TestRequirement(t *testing.T) {
	materials := []domain.RawMaterial{{ID: "RM1", Name: "Daging", UsageUnit: "g"}}
	goods := []domain.FinishGood{{ID: "FG001", Name: "Bakso"}}
	global := map[string]float64{"RM1": 30, "RM9": 1.234}
	perSKU := map[string]map[string]float64{"FG001": {"RM1": 30}, "FG/X": {"RM9": 1.234}}

	wb, err := Requirement("2024-03-04", global, perSKU, materials, goods)
	require.NoError(t, err)
	f := reopen(t, wb)
	assert.Equal(t, []string{"Global", "FG-X", "FG001"}, f.GetSheetList())

	rows, err := f.GetRows("Global")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"RM1", "Daging", "30", "g"}, rows[1])
	assert.Equal(t, "RM9", rows[2][1], "unknown materials fall back to the id")
	assert.Equal(t, "1.23", rows[2][2])

	rows, err = f.GetRows("FG001")
	require.NoError(t, err)
	assert.Equal(t, "FG001 - Bakso", rows[0][0])
}

func TestRequestOrder(t *testing.T) {
	o := domain.RequestOrder{
		ID: "RO-600123", Date: "2024-03-04", Deadline: "2024-03-07", Status: domain.OrderSent,
		Items: []domain.RequestOrderItem{
			{MaterialID: "RM1", MaterialName: "Daging", Quantity: 10, ReceivedQuantity: 5, Unit: "kg", Status: domain.ItemPartial},
		},
	}
	wb, err := RequestOrder(o)
	require.NoError(t, err)
	assert.Equal(t, "RO-600123.xlsx", wb.Name)

	f := reopen(t, wb)
	rows, err := f.GetRows("Request Order")
	require.NoError(t, err)
	assert.Equal(t, []string{"Request Order", "RO-600123"}, rows[0])
	assert.Equal(t, "No", rows[5][0])
	assert.Equal(t, "Daging", rows[6][2])
	assert.Equal(t, "50%", rows[6][6])
}

func TestTemplate(t *testing.T) {
	for _, kind := range []string{TemplateMaterials, TemplateProducts, " Sales "} {
		wb, err := Template(kind)
		require.NoError(t, err, kind)
		f := reopen(t, wb)
		rows, err := f.GetRows(f.GetSheetList()[0])
		require.NoError(t, err)
		assert.Len(t, rows, 2, kind)
	}

	_, err := Template("stock")
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

type memObjects struct {
	uploads map[string][]byte
}

func (m *memObjects) ListObjects(context.Context, string) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func (m *memObjects) DownloadObject(context.Context, string, string) error {
	return nil
}

func (m *memObjects) UploadObject(_ context.Context, key string, data []byte) error {
	m.uploads[key] = data
	return nil
}

func TestExporter_Save(t *testing.T) {
	dir := t.TempDir()
	objects := &memObjects{uploads: map[string][]byte{}}
	e := NewExporter(dir, objects)

	wb, err := Template(TemplateSales)
	require.NoError(t, err)
	saved, err := e.Save(context.Background(), wb)
	require.NoError(t, err)

	assert.Equal(t, "exports/template-sales.xlsx", saved.Key)
	written, err := os.ReadFile(saved.Path)
	require.NoError(t, err)
	assert.Equal(t, written, objects.uploads[saved.Key])

	wb, err = Template(TemplateSales)
	require.NoError(t, err)
	saved, err = NewExporter("", nil).Save(context.Background(), wb)
	require.NoError(t, err)
	assert.Empty(t, saved.Path)
	assert.Empty(t, saved.Key)
}
