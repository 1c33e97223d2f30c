package models

// Recipe represents a recipe in the planning collection
type Recipe struct {
	ID              string             `json:"recipe_id"`
	Name            string             `json:"name"`
	Ingredients     []Ingredient       `json:"ingredients"`
	Steps           []string           `json:"steps,omitempty"`
	DietaryInfo     DietaryInfo        `json:"dietary_info,omitempty"`
	NutritionalInfo map[string]float64 `json:"nutritional_info,omitempty"`
	PrepTime        string             `json:"prep_time,omitempty"`
	CookTime        string             `json:"cook_time,omitempty"`
	Servings        int                `json:"servings,omitempty"`
	Cuisine         string             `json:"cuisine,omitempty"`
}

// Ingredient represents a single ingredient requirement within a recipe
type Ingredient struct {
	ItemID   string  `json:"item_id"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit,omitempty"`
	Category string  `json:"category,omitempty"`
}

// DietaryInfo captures the diet classification and allergens of a recipe
type DietaryInfo struct {
	Diet      string   `json:"diet,omitempty"`
	Allergens []string `json:"allergens,omitempty"`
}

// MissingIngredient describes an ingredient shortfall relative to inventory
type MissingIngredient struct {
	ItemID string  `json:"item_id"`
	Name   string  `json:"name"`
	Have   float64 `json:"have"`
	Need   float64 `json:"need"`
	Unit   string  `json:"unit,omitempty"`
}
