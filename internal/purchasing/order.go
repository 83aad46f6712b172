// Package purchasing builds request orders from reorder analysis and moves
// them through Draft, Sent and Completed.
package purchasing

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/pipeline/reorder"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// Options configures a Desk.
type Options struct {
	// DeadlineDays is added to the creation day to get the default deadline.
	DeadlineDays int
	// ReceiverName is recorded on every delivery.
	ReceiverName string
	Location     *time.Location
	Now          func() time.Time
}

// DefaultOptions mirror the purchasing team's standard terms.
func DefaultOptions() Options {
	return Options{
		DeadlineDays: 3,
		ReceiverName: "Staff Logistik",
		Location:     time.Local,
		Now:          time.Now,
	}
}

// Desk applies purchasing transitions. Orders are values; every method
// returns the updated copy and leaves its argument untouched.
type Desk struct {
	opts Options
}

func NewDesk(opts Options) *Desk {
	def := DefaultOptions()
	if opts.DeadlineDays <= 0 {
		opts.DeadlineDays = def.DeadlineDays
	}
	if opts.ReceiverName == "" {
		opts.ReceiverName = def.ReceiverName
	}
	if opts.Location == nil {
		opts.Location = def.Location
	}
	if opts.Now == nil {
		opts.Now = def.Now
	}
	return &Desk{opts: opts}
}

func (d *Desk) now() time.Time {
	return d.opts.Now().In(d.opts.Location)
}

// OrderQuantity converts a usage-unit shortage to whole purchase units.
func OrderQuantity(row reorder.Analysis) float64 {
	cf := row.ConversionFactor
	if cf == 0 || math.IsNaN(cf) {
		cf = 1
	}
	q := math.Ceil((row.ROPThreshold - row.CurrentStock) / cf)
	if math.IsNaN(q) || q < 0 {
		return 0
	}
	return q
}

// CreateOrder drafts one request order covering every flagged row.
func (d *Desk) CreateOrder(rows []reorder.Analysis) (domain.RequestOrder, error) {
	flagged := reorder.Flagged(rows)
	if len(flagged) == 0 {
		return domain.RequestOrder{}, ErrNothingToOrder
	}

	items := make([]domain.RequestOrderItem, 0, len(flagged))
	for _, r := range flagged {
		items = append(items, domain.RequestOrderItem{
			MaterialID:   r.ID,
			MaterialName: r.Name,
			Quantity:     OrderQuantity(r),
			Unit:         r.PurchaseUnit,
			Status:       domain.ItemPending,
			Deliveries:   []domain.DeliveryBatch{},
		})
	}

	now := d.now()
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	return domain.RequestOrder{
		ID:        "RO-" + ms[len(ms)-6:],
		Date:      now.Format(dateLayout),
		CreatedAt: now.UTC().Format(time.RFC3339Nano),
		Deadline:  now.AddDate(0, 0, d.opts.DeadlineDays).Format(dateLayout),
		Items:     items,
		Status:    domain.OrderDraft,
	}, nil
}

// Finalize sends a draft order. An empty deadline keeps the current one.
func (d *Desk) Finalize(o domain.RequestOrder, deadline string) (domain.RequestOrder, error) {
	if o.Status != domain.OrderDraft {
		return o, fmt.Errorf("%w: finalize %s order %s", ErrInvalidTransition, o.Status, o.ID)
	}
	if deadline != "" {
		if err := checkDate(deadline); err != nil {
			return o, err
		}
		o.Deadline = deadline
	}

	items := cloneItems(o.Items)
	for i := range items {
		items[i].Status = domain.ItemOrdered
	}
	o.Items = items
	o.Status = domain.OrderSent
	return o, nil
}

// UpdateDeadline changes only the deadline.
func UpdateDeadline(o domain.RequestOrder, deadline string) (domain.RequestOrder, error) {
	if err := checkDate(deadline); err != nil {
		return o, err
	}
	o.Deadline = deadline
	o.Items = cloneItems(o.Items)
	return o, nil
}

// Receipt is one physical delivery against an order item.
type Receipt struct {
	MaterialID string  `json:"materialId" binding:"required"`
	Quantity   float64 `json:"quantity" binding:"required,gt=0"`
	// ArrivalDate defaults to today.
	ArrivalDate      string   `json:"arrivalDate" binding:"omitempty,isodate"`
	ActualOrderDate  string   `json:"actualOrderDate" binding:"omitempty,isodate"`
	EstimatedArrival string   `json:"estimatedArrival" binding:"omitempty,isodate"`
	ActualOrderQty   *float64 `json:"actualOrderQty" binding:"omitempty,gte=0"`
}

// Receive books a delivery. The item is Received once the received total
// reaches its target; the order completes when every item is Received.
func (d *Desk) Receive(o domain.RequestOrder, r Receipt) (domain.RequestOrder, error) {
	if r.Quantity <= 0 || math.IsNaN(r.Quantity) || math.IsInf(r.Quantity, 0) {
		return o, ErrInvalidQuantity
	}
	if o.Status != domain.OrderSent {
		return o, fmt.Errorf("%w: receive on %s order %s", ErrInvalidTransition, o.Status, o.ID)
	}

	items := cloneItems(o.Items)
	idx := -1
	for i := range items {
		if items[i].MaterialID == r.MaterialID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return o, fmt.Errorf("%w: %s in %s", ErrItemNotFound, r.MaterialID, o.ID)
	}

	now := d.now()
	arrival := r.ArrivalDate
	if arrival == "" {
		arrival = now.Format(dateLayout)
	}

	item := items[idx]
	item.Deliveries = append(item.Deliveries, domain.DeliveryBatch{
		ID:         deliveryID(now),
		Date:       arrival,
		Quantity:   r.Quantity,
		ReceivedBy: d.opts.ReceiverName,
	})
	if r.ActualOrderDate != "" {
		item.ActualOrderDate = r.ActualOrderDate
	}
	if r.EstimatedArrival != "" {
		item.EstimatedArrival = r.EstimatedArrival
	}
	if r.ActualOrderQty != nil {
		item.ActualOrderQty = *r.ActualOrderQty
	}
	item.ReceivedQuantity += r.Quantity

	if item.ReceivedQuantity >= item.Target() {
		item.Status = domain.ItemReceived
	} else {
		item.Status = domain.ItemPartial
	}
	items[idx] = item

	o.Items = items
	o.Status = domain.OrderSent
	if allReceived(items) {
		o.Status = domain.OrderCompleted
	}
	return o, nil
}

// Find returns the order with id.
func Find(orders []domain.RequestOrder, id string) (domain.RequestOrder, error) {
	for _, o := range orders {
		if o.ID == id {
			return o, nil
		}
	}
	return domain.RequestOrder{}, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
}

func allReceived(items []domain.RequestOrderItem) bool {
	for _, it := range items {
		if it.Status != domain.ItemReceived {
			return false
		}
	}
	return true
}

func cloneItems(items []domain.RequestOrderItem) []domain.RequestOrderItem {
	out := make([]domain.RequestOrderItem, len(items))
	for i, it := range items {
		it.Deliveries = append([]domain.DeliveryBatch{}, it.Deliveries...)
		out[i] = it
	}
	return out
}

func checkDate(s string) error {
	if _, err := time.Parse(dateLayout, s); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return nil
}

// deliveryID keeps the millisecond stamp for ordering and adds a random
// suffix so receipts booked in the same millisecond stay distinct.
func deliveryID(now time.Time) string {
	return "DEL-" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + uuid.NewString()[:8]
}
