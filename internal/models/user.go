package models

// User represents a household member with stored preferences
type User struct {
	ID          string          `json:"user_id"`
	Name        string          `json:"name,omitempty"`
	Preferences UserPreferences `json:"preferences"`
}

// UserPreferences holds the dietary and budget settings used by the
// shopping and planning pipelines
type UserPreferences struct {
	Diet             string             `json:"diet,omitempty"`
	Allergies        []string           `json:"allergies,omitempty"`
	Budget           float64            `json:"budget,omitempty"`
	NutritionalGoals map[string]float64 `json:"nutritional_goals,omitempty"`
}

// Diet represents a recognized dietary restriction
type Diet string

const (
	// Diet values
	DietNone       Diet = ""
	DietVegetarian Diet = "vegetarian"
	DietVegan      Diet = "vegan"
)
