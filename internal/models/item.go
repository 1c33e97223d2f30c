package models

// InventoryItem represents a stocked item in the household inventory
type InventoryItem struct {
	ID          string   `json:"item_id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Quantity    float64  `json:"quantity"`
	Unit        string   `json:"unit"`
	Price       float64  `json:"price"`
	ExpiryDate  string   `json:"expiry_date,omitempty"` // YYYY-MM-DD, empty when unknown
	AllergyTags []string `json:"allergy_tags,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Store       string   `json:"store,omitempty"`
}

// ItemCategory represents the category of an inventory item
type ItemCategory string

const (
	// Item categories
	CategoryDairy     ItemCategory = "Dairy"
	CategoryBakery    ItemCategory = "Bakery"
	CategoryProduce   ItemCategory = "Produce"
	CategoryMeat      ItemCategory = "Meat"
	CategorySeafood   ItemCategory = "Seafood"
	CategoryPantry    ItemCategory = "Pantry"
	CategoryFrozen    ItemCategory = "Frozen"
	CategoryBeverages ItemCategory = "Beverages"
	CategorySnacks    ItemCategory = "Snacks"
	CategoryPrepared  ItemCategory = "Prepared"
)

// DateLayout is the calendar date format used across every collection
const DateLayout = "2006-01-02"

// TimestampLayout is the format of consumption log timestamps
const TimestampLayout = "2006-01-02 15:04:05"
