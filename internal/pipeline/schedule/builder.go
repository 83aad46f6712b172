// Package schedule holds the editable weekly batch grid.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/ingest"
)

// DaysPerWeek is the number of columns in the grid.
const DaysPerWeek = 7

const dateLayout = "2006-01-02"

var (
	ErrUnknownProduct = errors.New("product is not production-ready")
	ErrDayOutOfRange  = errors.New("day index out of range")
	ErrInvalidStart   = errors.New("start date must be YYYY-MM-DD")
)

// Session is one schedule being edited. A session with an ID edits a saved
// schedule; saving it updates that record instead of creating a new one.
type Session struct {
	ID              string
	StartDate       string
	Targets         map[string]int
	Recommendations map[string]int

	products []domain.FinishGood
	grid     map[string][]int
}

// New starts an empty grid for the production-ready products. targets are
// shown alongside the grid and never copied into it.
func New(products []domain.FinishGood, startDate string, targets, recommendations map[string]int) *Session {
	s := &Session{
		StartDate:       startDate,
		Targets:         copyCounts(targets),
		Recommendations: copyCounts(recommendations),
		grid:            make(map[string][]int),
	}
	s.Refresh(products)
	return s
}

// Load opens a saved schedule for editing. Active products missing from the
// saved data start with an empty row.
func Load(saved domain.SavedSchedule, products []domain.FinishGood) *Session {
	s := &Session{
		ID:              saved.ID,
		StartDate:       saved.StartDate,
		Targets:         copyCounts(saved.Targets),
		Recommendations: map[string]int{},
		grid:            make(map[string][]int),
	}
	for _, p := range domain.ActiveGoods(products) {
		if row, ok := saved.Data[p.ID]; ok {
			s.grid[p.ID] = normalizeRow(row)
		}
	}
	s.Refresh(products)
	return s
}

// Refresh swaps in a new product snapshot. Rows already in the grid keep
// their edits; newly active products get an empty row.
func (s *Session) Refresh(products []domain.FinishGood) {
	s.products = domain.ActiveGoods(products)
	for _, p := range s.products {
		if _, ok := s.grid[p.ID]; !ok {
			s.grid[p.ID] = make([]int, DaysPerWeek)
		}
	}
}

// Editing reports whether the session updates an existing record.
func (s *Session) Editing() bool {
	return s.ID != ""
}

// SetStartDate changes the first day of the schedule.
func (s *Session) SetStartDate(date string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidStart, date)
	}
	s.StartDate = date
	return nil
}

// Set stores the integer prefix of value in one cell. Values without one,
// and negative values, are stored as 0.
func (s *Session) Set(sku string, day int, value string) error {
	if !s.isActive(sku) {
		return fmt.Errorf("%w: %s", ErrUnknownProduct, sku)
	}
	if day < 0 || day >= DaysPerWeek {
		return fmt.Errorf("%w: %d", ErrDayOutOfRange, day)
	}
	n := ingest.Int(value)
	if n < 0 {
		n = 0
	}
	s.grid[sku][day] = n
	return nil
}

// Scheduled returns the batches planned for sku over the week.
func (s *Session) Scheduled(sku string) int {
	return sum(s.grid[sku])
}

// Grid returns a copy of the rows for production-ready products.
func (s *Session) Grid() map[string][]int {
	out := make(map[string][]int, len(s.products))
	for _, p := range s.products {
		out[p.ID] = append([]int(nil), s.grid[p.ID]...)
	}
	return out
}

// Products returns the production-ready products the grid is built for.
func (s *Session) Products() []domain.FinishGood {
	return s.products
}

// Row is one product line of the schedule view.
type Row struct {
	SKUID          string  `json:"skuId"`
	Name           string  `json:"name"`
	QtyPerBatch    float64 `json:"qtyPerBatch"`
	Days           []int   `json:"days"`
	TargetBatch    int     `json:"targetBatch"`
	ScheduledBatch int     `json:"scheduledBatch"`
	RecommendedDay *int    `json:"recommendedDay,omitempty"`
}

func (s *Session) Rows() []Row {
	rows := make([]Row, 0, len(s.products))
	for _, p := range s.products {
		r := Row{
			SKUID:          p.ID,
			Name:           p.Name,
			QtyPerBatch:    p.BatchSize(),
			Days:           append([]int(nil), s.grid[p.ID]...),
			TargetBatch:    s.Targets[p.ID],
			ScheduledBatch: s.Scheduled(p.ID),
		}
		if idx, ok := s.Recommendations[p.ID]; ok {
			r.RecommendedDay = &idx
		}
		rows = append(rows, r)
	}
	return rows
}

// Day is one column header of the grid.
type Day struct {
	Date    string `json:"date"`
	DayIdx  int    `json:"dayIdx"`
	DayName string `json:"dayName"`
}

// Dates lists the seven calendar days starting at StartDate.
func (s *Session) Dates() []Day {
	return WeekDates(s.StartDate)
}

// WeekDates lists the seven calendar days starting at start. An invalid start
// gives no days.
func WeekDates(start string) []Day {
	t, err := time.Parse(dateLayout, start)
	if err != nil {
		return nil
	}
	days := make([]Day, 0, DaysPerWeek)
	for i := 0; i < DaysPerWeek; i++ {
		d := t.AddDate(0, 0, i)
		days = append(days, Day{
			Date:    d.Format(dateLayout),
			DayIdx:  int(d.Weekday()),
			DayName: domain.DayName(int(d.Weekday())),
		})
	}
	return days
}

// Record builds the schedule to persist. Only production-ready products are
// written and the batch total is recomputed from the written rows.
func (s *Session) Record(now time.Time) domain.SavedSchedule {
	data := s.Grid()

	targets := make(map[string]int, len(s.Targets))
	for _, p := range s.products {
		if t, ok := s.Targets[p.ID]; ok {
			targets[p.ID] = t
		}
	}

	return domain.SavedSchedule{
		ID:           s.ID,
		StartDate:    s.StartDate,
		CreatedAt:    now.UTC().Format(time.RFC3339Nano),
		Data:         data,
		Targets:      targets,
		TotalBatches: TotalBatches(data),
	}
}

// MarkSaved binds the session to a stored record so later saves update it.
func (s *Session) MarkSaved(id string) {
	s.ID = id
}

// TotalBatches sums every cell of data.
func TotalBatches(data map[string][]int) int {
	total := 0
	for _, row := range data {
		total += sum(row)
	}
	return total
}

func (s *Session) isActive(sku string) bool {
	for _, p := range s.products {
		if p.ID == sku {
			return true
		}
	}
	return false
}

// normalizeRow pads or truncates row to a week and clamps negative cells.
func normalizeRow(row []int) []int {
	out := make([]int, DaysPerWeek)
	copy(out, row)
	for i, v := range out {
		if v < 0 {
			out[i] = 0
		}
	}
	return out
}

func sum(row []int) int {
	total := 0
	for _, v := range row {
		total += v
	}
	return total
}

func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
