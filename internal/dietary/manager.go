// Package dietary manages user preferences and checks items, recipes,
// and meal plans against diets, allergies, and nutritional goals.
package dietary

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"larder/internal/dates"
	"larder/internal/models"
	"larder/internal/store"
)

// The diversity score saturates once this many distinct ingredient
// categories appear in the analyzed meals.
const diversityCategories = 8

// Manager answers dietary questions against the stored collections
type Manager struct {
	store store.Store
	now   func() time.Time
}

// NewManager creates a dietary manager backed by s
func NewManager(s store.Store) *Manager {
	return &Manager{store: s, now: time.Now}
}

func (m *Manager) user(userID string) ([]models.User, int, error) {
	var users []models.User
	if err := m.store.Load(store.CollectionUsers, &users); err != nil {
		return nil, 0, err
	}
	for i := range users {
		if users[i].ID == userID {
			return users, i, nil
		}
	}
	return nil, 0, fmt.Errorf("%w: user %s", models.ErrNotFound, userID)
}

// UpdatePreferences replaces the stored preferences for userID
func (m *Manager) UpdatePreferences(userID string, prefs models.UserPreferences) error {
	users, i, err := m.user(userID)
	if err != nil {
		return err
	}
	users[i].Preferences = prefs
	return m.store.Save(store.CollectionUsers, users)
}

// Compatibility is the verdict on one item for one user
type Compatibility struct {
	ItemID               string   `json:"item_id"`
	Name                 string   `json:"name"`
	DietCompatible       bool     `json:"diet_compatible"`
	DietReason           string   `json:"diet_reason,omitempty"`
	AllergySafe          bool     `json:"allergy_safe"`
	ConflictingAllergens []string `json:"conflicting_allergens,omitempty"`
	Compatible           bool     `json:"compatible"`
}

// CheckItemCompatibility reports whether an inventory item suits the
// user's diet and allergies. The item is compatible only when both
// checks pass.
func (m *Manager) CheckItemCompatibility(userID, itemID string) (*Compatibility, error) {
	users, i, err := m.user(userID)
	if err != nil {
		return nil, err
	}
	prefs := users[i].Preferences

	var inventory []models.InventoryItem
	if err := m.store.Load(store.CollectionInventory, &inventory); err != nil {
		return nil, err
	}
	var item *models.InventoryItem
	for j := range inventory {
		if inventory[j].ID == itemID {
			item = &inventory[j]
			break
		}
	}
	if item == nil {
		return nil, fmt.Errorf("%w: item %s not in inventory", models.ErrNotFound, itemID)
	}

	result := &Compatibility{
		ItemID:         itemID,
		Name:           item.Name,
		DietCompatible: true,
		AllergySafe:    true,
	}
	if excluded, reason := dietExcludes(prefs.Diet, item.Category); excluded {
		result.DietCompatible = false
		result.DietReason = reason
	}
	for _, allergy := range prefs.Allergies {
		for _, tag := range item.AllergyTags {
			if strings.EqualFold(allergy, tag) {
				result.ConflictingAllergens = append(result.ConflictingAllergens, allergy)
			}
		}
	}
	result.AllergySafe = len(result.ConflictingAllergens) == 0
	result.Compatible = result.DietCompatible && result.AllergySafe
	return result, nil
}

// Substitution is a suggested replacement for an incompatible item
type Substitution struct {
	ItemID string  `json:"item_id"`
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// SuggestSubstitutions proposes inventory items that can stand in for
// an item the user's diet excludes. Meat and seafood map to
// plant-based proteins, dairy maps to non-dairy alternatives for
// vegans. Substitutes carrying the user's allergens are dropped.
func (m *Manager) SuggestSubstitutions(userID, itemID string) ([]Substitution, error) {
	users, i, err := m.user(userID)
	if err != nil {
		return nil, err
	}
	prefs := users[i].Preferences

	var inventory []models.InventoryItem
	if err := m.store.Load(store.CollectionInventory, &inventory); err != nil {
		return nil, err
	}
	var item *models.InventoryItem
	for j := range inventory {
		if inventory[j].ID == itemID {
			item = &inventory[j]
			break
		}
	}
	if item == nil {
		return nil, fmt.Errorf("%w: item %s not in inventory", models.ErrNotFound, itemID)
	}

	diet := models.Diet(prefs.Diet)
	substitutions := []Substitution{}
	for _, candidate := range inventory {
		if candidate.ID == itemID {
			continue
		}
		if hasAnyTag(candidate.AllergyTags, prefs.Allergies) {
			continue
		}
		switch item.Category {
		case string(models.CategoryMeat), string(models.CategorySeafood):
			if diet != models.DietVegetarian && diet != models.DietVegan {
				continue
			}
			if hasAnyTag(candidate.Tags, []string{"plant-based", "protein"}) {
				substitutions = append(substitutions, Substitution{
					ItemID: candidate.ID,
					Name:   candidate.Name,
					Score:  0.8,
					Reason: "Plant-based protein alternative",
				})
			}
		case string(models.CategoryDairy):
			if diet != models.DietVegan {
				continue
			}
			if hasAnyTag(candidate.Tags, []string{"non-dairy", "plant-based"}) {
				substitutions = append(substitutions, Substitution{
					ItemID: candidate.ID,
					Name:   candidate.Name,
					Score:  0.9,
					Reason: "Non-dairy alternative",
				})
			}
		}
	}

	sort.SliceStable(substitutions, func(a, b int) bool {
		return substitutions[a].Score > substitutions[b].Score
	})
	return substitutions, nil
}

// NutritionalAnalysis summarizes how planned meals track the user's
// nutritional goals.
type NutritionalAnalysis struct {
	UserID            string             `json:"user_id"`
	PeriodStart       string             `json:"period_start"`
	PeriodEnd         string             `json:"period_end"`
	MealsAnalyzed     int                `json:"meals_analyzed"`
	AvgPerMeal        map[string]float64 `json:"avg_per_meal,omitempty"`
	GoalAdherence     map[string]float64 `json:"goal_adherence,omitempty"`
	OverallAdherence  float64            `json:"overall_adherence"`
	AdherenceRating   string             `json:"adherence_rating"`
	CategoryDiversity float64            `json:"category_diversity"`
	BalanceRating     string             `json:"balance_rating"`
	Recommendations   []string           `json:"recommendations"`
}

// AnalyzeNutritionalAlignment averages the nutrients of the user's
// planned meals over the next days days and scores them against the
// user's nutritional goals. Adherence per goal is the ratio of
// average to goal, penalizing overshoot symmetrically.
func (m *Manager) AnalyzeNutritionalAlignment(userID string, days int) (*NutritionalAnalysis, error) {
	if days < 1 {
		return nil, fmt.Errorf("%w: analysis window must be at least one day", models.ErrInvalidInput)
	}
	users, i, err := m.user(userID)
	if err != nil {
		return nil, err
	}
	prefs := users[i].Preferences

	var entries []models.MealPlanEntry
	if err := m.store.Load(store.CollectionMealPlans, &entries); err != nil {
		return nil, err
	}
	var recipes []models.Recipe
	if err := m.store.Load(store.CollectionRecipes, &recipes); err != nil {
		return nil, err
	}
	recipesByID := make(map[string]models.Recipe, len(recipes))
	for _, r := range recipes {
		recipesByID[r.ID] = r
	}

	today := dates.Midnight(m.now())
	analysis := &NutritionalAnalysis{
		UserID:      userID,
		PeriodStart: dates.Format(today),
		PeriodEnd:   dates.Format(today.AddDate(0, 0, days-1)),
	}

	totals := map[string]float64{}
	categories := map[string]bool{}
	for _, entry := range entries {
		if entry.UserID != userID {
			continue
		}
		date, err := dates.Parse(entry.Date)
		if err != nil {
			continue
		}
		offset := dates.DaysBetween(today, date)
		if offset < 0 || offset >= days {
			continue
		}
		recipe, ok := recipesByID[entry.RecipeID]
		if !ok {
			continue
		}
		analysis.MealsAnalyzed++
		for nutrient, amount := range recipe.NutritionalInfo {
			totals[nutrient] += amount
		}
		for _, ing := range recipe.Ingredients {
			if ing.Category != "" {
				categories[ing.Category] = true
			}
		}
	}

	if analysis.MealsAnalyzed == 0 {
		analysis.AdherenceRating = "low"
		analysis.BalanceRating = "low"
		analysis.Recommendations = []string{
			"No planned meals found in the analysis window. Create a meal plan first.",
		}
		return analysis, nil
	}

	analysis.AvgPerMeal = make(map[string]float64, len(totals))
	for nutrient, total := range totals {
		analysis.AvgPerMeal[nutrient] = round2(total / float64(analysis.MealsAnalyzed))
	}

	if len(prefs.NutritionalGoals) > 0 {
		analysis.GoalAdherence = make(map[string]float64, len(prefs.NutritionalGoals))
		sum := 0.0
		for nutrient, goal := range prefs.NutritionalGoals {
			current := analysis.AvgPerMeal[nutrient]
			adherence := 0.0
			if goal > 0 {
				if current <= goal {
					adherence = current / goal
				} else {
					adherence = math.Max(0, 1-((current-goal)/goal))
				}
			}
			analysis.GoalAdherence[nutrient] = round2(adherence)
			sum += adherence
			switch {
			case adherence < 0.6 && current < goal:
				analysis.Recommendations = append(analysis.Recommendations,
					fmt.Sprintf("Increase %s intake to approach the goal of %.0f per meal", nutrient, goal))
			case adherence < 0.6:
				analysis.Recommendations = append(analysis.Recommendations,
					fmt.Sprintf("Reduce %s intake to approach the goal of %.0f per meal", nutrient, goal))
			}
		}
		analysis.OverallAdherence = round2(sum / float64(len(prefs.NutritionalGoals)))
	}

	analysis.CategoryDiversity = round2(math.Min(1, float64(len(categories))/diversityCategories))
	analysis.AdherenceRating = rating(analysis.OverallAdherence, 0.8, 0.6)
	analysis.BalanceRating = rating(analysis.CategoryDiversity, 0.75, 0.5)

	if analysis.CategoryDiversity < 0.5 {
		analysis.Recommendations = append(analysis.Recommendations,
			"Add meals from more ingredient categories for a more balanced plan")
	}
	if len(analysis.Recommendations) == 0 {
		analysis.Recommendations = []string{"Planned meals align well with the stored nutritional goals"}
	}
	sort.Strings(analysis.Recommendations)
	return analysis, nil
}

func rating(score, high, medium float64) string {
	switch {
	case score >= high:
		return "high"
	case score >= medium:
		return "medium"
	default:
		return "low"
	}
}

// dietExcludes mirrors the category rules used by the shopping and
// planning pipelines.
func dietExcludes(diet, category string) (bool, string) {
	switch models.Diet(diet) {
	case models.DietVegetarian:
		if category == string(models.CategoryMeat) || category == string(models.CategorySeafood) {
			return true, fmt.Sprintf("%s items are excluded by a vegetarian diet", category)
		}
	case models.DietVegan:
		if category == string(models.CategoryMeat) || category == string(models.CategorySeafood) ||
			category == string(models.CategoryDairy) {
			return true, fmt.Sprintf("%s items are excluded by a vegan diet", category)
		}
	}
	return false, ""
}

func hasAnyTag(tags, wanted []string) bool {
	for _, w := range wanted {
		for _, tag := range tags {
			if strings.EqualFold(tag, w) {
				return true
			}
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
