package models

// ShoppingList represents a generated purchase list for one user.
// EstimatedTotal always equals the sum of EstimatedCost over Items.
type ShoppingList struct {
	ID               string         `json:"list_id"`
	UserID           string         `json:"user_id"`
	CreationDate     string         `json:"creation_date"`
	Items            []ShoppingItem `json:"items"`
	EstimatedTotal   float64        `json:"estimated_total"`
	BudgetConstraint float64        `json:"budget_constraint"`
	StorePreference  string         `json:"store_preference,omitempty"`
	Notes            string         `json:"notes,omitempty"`
}

// ShoppingItem represents one line of a shopping list
type ShoppingItem struct {
	ItemID         string  `json:"item_id"`
	Name           string  `json:"name"`
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit"`
	EstimatedPrice float64 `json:"estimated_price"`
	EstimatedCost  float64 `json:"estimated_cost"`
	Store          string  `json:"store,omitempty"`
	Category       string  `json:"category,omitempty"`
	Reason         string  `json:"reason,omitempty"`
}

// OptimizeCriteria names a shopping list ordering strategy
type OptimizeCriteria string

const (
	// Optimization criteria
	OptimizeCost      OptimizeCriteria = "cost"
	OptimizeWaste     OptimizeCriteria = "waste"
	OptimizeNutrition OptimizeCriteria = "nutrition"
)

// PurchaseHistory groups a user's recorded purchases
type PurchaseHistory struct {
	UserID    string     `json:"user_id"`
	Purchases []Purchase `json:"purchases"`
}

// Purchase records a single past purchase of an item
type Purchase struct {
	ItemID string `json:"item_id"`
	Date   string `json:"date"` // YYYY-MM-DD
}
