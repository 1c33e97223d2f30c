package models

// ConsumptionEntry represents one logged consumption event.
// Entries are append-only; they are never mutated or deleted.
type ConsumptionEntry struct {
	ID        string  `json:"consumption_id"`
	ItemID    string  `json:"item_id"`
	UserID    string  `json:"user_id"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
	Timestamp string  `json:"timestamp"` // TimestampLayout
}

// Forecast is the outcome of a depletion prediction for one item
type Forecast struct {
	ItemID              string  `json:"item_id"`
	Name                string  `json:"name"`
	CurrentQuantity     float64 `json:"current_quantity"`
	Unit                string  `json:"unit"`
	Prediction          string  `json:"prediction"`
	AvgDailyConsumption float64 `json:"avg_daily_consumption"`
	DaysUntilDepletion  *int    `json:"days_until_depletion"`
	DepletionDate       string  `json:"depletion_date,omitempty"`
	Confidence          string  `json:"confidence"`
}

// Confidence tiers for depletion forecasts
const (
	ConfidenceVeryLow = "very low"
	ConfidenceLow     = "low"
	ConfidenceMedium  = "medium"
	ConfidenceHigh    = "high"
)

// Replenishment recommends purchasing an item before it runs out
type Replenishment struct {
	ItemID              string  `json:"item_id"`
	Name                string  `json:"name"`
	CurrentQuantity     float64 `json:"current_quantity"`
	Unit                string  `json:"unit"`
	AvgDailyConsumption float64 `json:"avg_daily_consumption"`
	DaysUntilDepletion  int     `json:"days_until_depletion"`
	DepletionDate       string  `json:"depletion_date,omitempty"`
	PurchaseUrgency     string  `json:"purchase_urgency"` // "high" or "medium"
}
