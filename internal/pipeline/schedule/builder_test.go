package schedule

import (
	"testing"
	"time"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func products() []domain.FinishGood {
	return []domain.FinishGood{
		{ID: "FG001", Name: "Bakso Halus", QtyPerBatch: 40, IsProductionReady: true},
		{ID: "FG002", Name: "Bakso Urat", QtyPerBatch: 30, IsProductionReady: true},
		{ID: "FG003", Name: "Sosis", IsProductionReady: false},
	}
}

func TestNew_StartsEmptyAndKeepsTargetsAside(t *testing.T) {
	s := New(products(), "2024-03-04", map[string]int{"FG001": 4}, map[string]int{"FG001": 3})

	assert.False(t, s.Editing())
	assert.Equal(t, map[string][]int{
		"FG001": {0, 0, 0, 0, 0, 0, 0},
		"FG002": {0, 0, 0, 0, 0, 0, 0},
	}, s.Grid())

	rows := s.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, 4, rows[0].TargetBatch)
	assert.Zero(t, rows[0].ScheduledBatch)
	require.NotNil(t, rows[0].RecommendedDay)
	assert.Equal(t, 3, *rows[0].RecommendedDay)
	assert.Nil(t, rows[1].RecommendedDay)
}

func TestSession_Set(t *testing.T) {
	s := New(products(), "2024-03-04", nil, nil)

	require.NoError(t, s.Set("FG001", 0, "2"))
	require.NoError(t, s.Set("FG001", 3, "3 batch"))
	require.NoError(t, s.Set("FG001", 4, "x"))
	require.NoError(t, s.Set("FG001", 5, "-1"))

	assert.Equal(t, []int{2, 0, 0, 3, 0, 0, 0}, s.Grid()["FG001"])
	assert.Equal(t, 5, s.Scheduled("FG001"))

	assert.ErrorIs(t, s.Set("FG003", 0, "1"), ErrUnknownProduct)
	assert.ErrorIs(t, s.Set("FG001", 7, "1"), ErrDayOutOfRange)
}

func TestSession_RefreshKeepsEdits(t *testing.T) {
	s := New(products()[:1], "2024-03-04", nil, nil)
	require.NoError(t, s.Set("FG001", 1, "5"))

	s.Refresh(products())

	assert.Equal(t, []int{0, 5, 0, 0, 0, 0, 0}, s.Grid()["FG001"])
	assert.Contains(t, s.Grid(), "FG002")
}

func TestSession_RecordDropsInactiveProducts(t *testing.T) {
	s := New(products(), "2024-03-04", map[string]int{"FG001": 4, "FG002": 1}, nil)
	require.NoError(t, s.Set("FG001", 0, "2"))
	require.NoError(t, s.Set("FG002", 6, "1"))

	catalog := products()
	catalog[1].IsProductionReady = false
	s.Refresh(catalog)

	rec := s.Record(time.Date(2024, 3, 3, 10, 0, 0, 0, time.UTC))

	assert.Empty(t, rec.ID)
	assert.Equal(t, "2024-03-04", rec.StartDate)
	assert.Equal(t, "2024-03-03T10:00:00Z", rec.CreatedAt)
	assert.Equal(t, map[string][]int{"FG001": {2, 0, 0, 0, 0, 0, 0}}, rec.Data)
	assert.Equal(t, map[string]int{"FG001": 4}, rec.Targets)
	assert.Equal(t, 2, rec.TotalBatches)
}

func TestLoad_RoundTrip(t *testing.T) {
	saved := domain.SavedSchedule{
		ID:           "sched-1",
		StartDate:    "2024-03-04",
		Data:         map[string][]int{"FG001": {1, 2, 0, 0, 0, 0, 0}, "FG002": {0, 0, 0, 0, 0, 0, 3}},
		Targets:      map[string]int{"FG001": 3, "FG002": 3},
		TotalBatches: 6,
	}

	s := Load(saved, products())
	assert.True(t, s.Editing())

	rec := s.Record(time.Now())

	assert.Equal(t, saved.ID, rec.ID)
	assert.Equal(t, saved.Data, rec.Data)
	assert.Equal(t, saved.Targets, rec.Targets)
	assert.Equal(t, saved.TotalBatches, rec.TotalBatches)
}

func TestLoad_FillsMissingProducts(t *testing.T) {
	saved := domain.SavedSchedule{
		ID:        "sched-2",
		StartDate: "2024-03-04",
		Data:      map[string][]int{"FG001": {1}},
	}

	s := Load(saved, products())

	assert.Equal(t, []int{1, 0, 0, 0, 0, 0, 0}, s.Grid()["FG001"])
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0, 0}, s.Grid()["FG002"])
}

func TestLoad_ClampsNegativeCells(t *testing.T) {
	saved := domain.SavedSchedule{
		ID:        "sched-3",
		StartDate: "2024-03-04",
		Data:      map[string][]int{"FG001": {-3, 2, 0, 0, 0, 0, -1}},
	}

	s := Load(saved, products())

	assert.Equal(t, []int{0, 2, 0, 0, 0, 0, 0}, s.Grid()["FG001"])
	assert.Equal(t, 2, s.Scheduled("FG001"))
	assert.Equal(t, 2, s.Record(time.Now()).TotalBatches)
}

func TestWeekDates(t *testing.T) {
	days := WeekDates("2024-03-04")

	require.Len(t, days, 7)
	assert.Equal(t, Day{Date: "2024-03-04", DayIdx: 1, DayName: "Senin"}, days[0])
	assert.Equal(t, Day{Date: "2024-03-10", DayIdx: 0, DayName: "Minggu"}, days[6])

	assert.Nil(t, WeekDates("04/03/2024"))
}

func TestSession_SetStartDate(t *testing.T) {
	s := New(nil, "2024-03-04", nil, nil)

	assert.ErrorIs(t, s.SetStartDate("soon"), ErrInvalidStart)
	require.NoError(t, s.SetStartDate("2024-03-11"))
	assert.Equal(t, "2024-03-11", s.StartDate)
}
