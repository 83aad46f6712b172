package domain

import "strings"

// OrderStatus is the request order lifecycle state.
type OrderStatus string

const (
	OrderDraft     OrderStatus = "Draft"
	OrderSent      OrderStatus = "Sent"
	OrderCompleted OrderStatus = "Completed"
)

// ItemStatus is the per-line state of a request order item.
type ItemStatus string

const (
	ItemPending  ItemStatus = "Pending"
	ItemApproved ItemStatus = "Approved"
	ItemOrdered  ItemStatus = "Ordered"
	ItemPartial  ItemStatus = "Partial"
	ItemReceived ItemStatus = "Received"
)

var orderStatusLabels = map[OrderStatus]string{
	OrderDraft:     "Draft",
	OrderSent:      "Dikirim",
	OrderCompleted: "Selesai",
}

var orderStatusCodes = map[string]OrderStatus{
	"draft":     OrderDraft,
	"sent":      OrderSent,
	"completed": OrderCompleted,
}

var itemStatusCodes = map[string]ItemStatus{
	"pending":  ItemPending,
	"approved": ItemApproved,
	"ordered":  ItemOrdered,
	"partial":  ItemPartial,
	"received": ItemReceived,
}

// OrderStatusLabel returns a human-readable label for an order status.
func OrderStatusLabel(status OrderStatus) string {
	if label, ok := orderStatusLabels[status]; ok {
		return label
	}

	return "Draft"
}

// ParseOrderStatus returns the status for a given label (case-insensitive).
func ParseOrderStatus(label string) (OrderStatus, bool) {
	status, ok := orderStatusCodes[strings.ToLower(strings.TrimSpace(label))]

	return status, ok
}

// ParseItemStatus returns the item status for a given label (case-insensitive).
func ParseItemStatus(label string) (ItemStatus, bool) {
	status, ok := itemStatusCodes[strings.ToLower(strings.TrimSpace(label))]

	return status, ok
}

// TargetStatus classifies produced batches against the planned target.
type TargetStatus string

const (
	TargetNone     TargetStatus = "No Target"
	TargetBelow    TargetStatus = "Below Target"
	TargetReached  TargetStatus = "Target Reached"
	TargetExceeded TargetStatus = "Above Target"
)

// ClassifyTarget compares produced batches with a reference target.
func ClassifyTarget(produced, target int) TargetStatus {
	switch {
	case target <= 0:
		return TargetNone
	case produced > target:
		return TargetExceeded
	case produced == target:
		return TargetReached
	default:
		return TargetBelow
	}
}

// DayNames are Indonesian weekday names indexed by Go's time.Weekday.
var DayNames = [7]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}

// DayName returns the weekday name for idx, or "-" when idx is out of range.
func DayName(idx int) string {
	if idx < 0 || idx > 6 {
		return "-"
	}
	return DayNames[idx]
}
