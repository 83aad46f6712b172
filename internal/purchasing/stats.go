package purchasing

import (
	"math"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
)

// Stats summarizes the request order book.
type Stats struct {
	Total      int `json:"total"`
	Draft      int `json:"draft"`
	TotalItems int `json:"totalItems"`
}

func Summarize(orders []domain.RequestOrder) Stats {
	s := Stats{Total: len(orders)}
	for _, o := range orders {
		if o.Status == domain.OrderDraft {
			s.Draft++
		}
		s.TotalItems += len(o.Items)
	}
	return s
}

// FilterByDate keeps orders whose date lies in [start, end]. Empty bounds are
// open.
func FilterByDate(orders []domain.RequestOrder, start, end string) []domain.RequestOrder {
	out := make([]domain.RequestOrder, 0, len(orders))
	for _, o := range orders {
		if inRange(o.Date, start, end) {
			out = append(out, o)
		}
	}
	return out
}

// Progress is the received share of an item's target in percent, capped at
// 100.
func Progress(it domain.RequestOrderItem) float64 {
	target := it.Target()
	if target <= 0 || math.IsNaN(target) {
		return 0
	}
	return math.Min(100, it.ReceivedQuantity/target*100)
}

// IsLate reports whether any item is expected after the order deadline.
func IsLate(o domain.RequestOrder) bool {
	if o.Deadline == "" {
		return false
	}
	for _, it := range o.Items {
		if it.EstimatedArrival != "" && it.EstimatedArrival > o.Deadline {
			return true
		}
	}
	return false
}

func inRange(date, start, end string) bool {
	if start != "" && date < start {
		return false
	}
	if end != "" && date > end {
		return false
	}
	return true
}
