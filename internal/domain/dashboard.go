package domain

// TrafficPoint is one day of material inflow vs product outflow.
type TrafficPoint struct {
	Date  string  `json:"date"`
	RMIn  float64 `json:"rmIn"`
	FGOut float64 `json:"fgOut"`
}

// OrderTraffic summarizes open purchase orders.
type OrderTraffic struct {
	ActiveCount int `json:"activeCount"`
	DueToday    int `json:"dueToday"`
	LateCount   int `json:"lateCount"`
}

// StockRatio is the share of items at or above their safe stock level.
type StockRatio struct {
	Safe    int `json:"safe"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}

type StockHealth struct {
	RawMaterials StockRatio `json:"rawMaterials"`
	FinishGoods  StockRatio `json:"finishGoods"`
}

// ProducedSKU is a product's total scheduled batches across history.
type ProducedSKU struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Batches int    `json:"batches"`
}

// DashboardFilter bounds the dashboard's traffic window.
type DashboardFilter struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

type DashboardSummary struct {
	StartDate        string         `json:"startDate"`
	EndDate          string         `json:"endDate"`
	Traffic          []TrafficPoint `json:"traffic"`
	Orders           OrderTraffic   `json:"orders"`
	StockHealth      StockHealth    `json:"stockHealth"`
	TopProduced      []ProducedSKU  `json:"topProduced"`
	TotalProduction  int            `json:"totalProduction"`
	InventoryValueRM float64        `json:"inventoryValueRm"`
	InventoryValueFG float64        `json:"inventoryValueFg"`
}
