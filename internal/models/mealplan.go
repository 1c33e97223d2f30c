package models

// MealPlanEntry is the flat persisted form of a planned meal.
// One entry exists per user/date/meal-type; rewriting a plan for the
// same key replaces the previous entry.
type MealPlanEntry struct {
	Date     string `json:"date"` // YYYY-MM-DD
	UserID   string `json:"user_id"`
	RecipeID string `json:"recipe_id"`
	MealType string `json:"meal_type"`
}

// MealPlan is the assembled multi-day plan returned to callers
type MealPlan struct {
	PlanID    string        `json:"plan_id"`
	UserID    string        `json:"user_id"`
	StartDate string        `json:"start_date"`
	EndDate   string        `json:"end_date"`
	Days      []MealPlanDay `json:"days"`
}

// MealPlanDay groups the meals planned for one calendar day
type MealPlanDay struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Meals   []Meal `json:"meals"`
}

// Meal assigns a recipe to a slot within a day
type Meal struct {
	MealType           string              `json:"meal_type"`
	RecipeID           string              `json:"recipe_id"`
	RecipeName         string              `json:"recipe_name"`
	MissingIngredients []MissingIngredient `json:"missing_ingredients,omitempty"`
}
