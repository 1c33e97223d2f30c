// Package planner scores recipes against the current inventory and
// assembles multi-day meal plans from the ranked results.
package planner

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"larder/internal/dates"
	"larder/internal/models"
	"larder/internal/store"
)

// Scoring weights. Availability dominates, expiring stock breaks
// ties toward recipes that reduce waste, and a caller-specified item
// filter reweights the combined score.
const (
	availabilityWeight = 0.6
	expiringWeight     = 0.4
	combinedWeight     = 0.7
	specifiedWeight    = 0.3
)

// Items expiring within this many days count toward the expiring score
const expiringHorizonDays = 5

// Planner ranks recipes and builds meal plans
type Planner struct {
	store store.Store
	now   func() time.Time
}

// NewPlanner creates a planner backed by s
func NewPlanner(s store.Store) *Planner {
	return &Planner{store: s, now: time.Now}
}

// ItemFilter narrows recipe suggestions to recipes using the named item
type ItemFilter struct {
	ItemID string `json:"item_id"`
	Name   string `json:"name"`
}

// RecipeMatch is a scored recipe suggestion
type RecipeMatch struct {
	RecipeID           string                     `json:"recipe_id"`
	Name               string                     `json:"name"`
	AvailabilityScore  float64                    `json:"availability_score"`
	ExpiringScore      float64                    `json:"expiring_score"`
	SpecifiedScore     float64                    `json:"specified_score,omitempty"`
	FinalScore         float64                    `json:"final_score"`
	MissingIngredients []models.MissingIngredient `json:"missing_ingredients"`
}

// SuggestRecipes ranks recipes for userID by how well the inventory
// covers their ingredients, favoring recipes that consume stock about
// to expire. A non-nil preferences argument overrides the stored
// preferences. When filter is non-empty, only recipes using at least
// one of the filtered items survive and the item coverage reweights
// the score. Every filter entry must carry both an item id and a
// name; a malformed entry fails the whole call.
func (p *Planner) SuggestRecipes(userID string, filter []ItemFilter, preferences *models.UserPreferences) ([]RecipeMatch, error) {
	for _, f := range filter {
		if f.ItemID == "" || f.Name == "" {
			return nil, fmt.Errorf("%w: filter entries require both item_id and name", models.ErrInvalidInput)
		}
	}

	prefs := models.UserPreferences{}
	if preferences != nil {
		prefs = *preferences
	} else {
		var users []models.User
		if err := p.store.Load(store.CollectionUsers, &users); err != nil {
			return nil, err
		}
		found := false
		for _, u := range users {
			if u.ID == userID {
				prefs = u.Preferences
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: user %s", models.ErrNotFound, userID)
		}
	}

	var recipes []models.Recipe
	if err := p.store.Load(store.CollectionRecipes, &recipes); err != nil {
		return nil, err
	}
	var inventory []models.InventoryItem
	if err := p.store.Load(store.CollectionInventory, &inventory); err != nil {
		return nil, err
	}

	byID := make(map[string]models.InventoryItem, len(inventory))
	expiring := map[string]bool{}
	today := dates.Midnight(p.now())
	for _, item := range inventory {
		byID[item.ID] = item
		if item.ExpiryDate == "" {
			continue
		}
		expiry, err := dates.Parse(item.ExpiryDate)
		if err != nil {
			continue
		}
		d := dates.DaysBetween(today, expiry)
		if d >= 0 && d <= expiringHorizonDays {
			expiring[item.ID] = true
		}
	}

	matches := []RecipeMatch{}
	for _, recipe := range recipes {
		if len(recipe.Ingredients) == 0 {
			continue
		}
		if !dietAllows(prefs.Diet, recipe.DietaryInfo.Diet) {
			continue
		}
		if hasAllergen(prefs.Allergies, recipe.DietaryInfo.Allergens) {
			continue
		}

		available := 0
		expiringCount := 0
		missing := []models.MissingIngredient{}
		for _, ing := range recipe.Ingredients {
			item, stocked := byID[ing.ItemID]
			if stocked && item.Quantity >= ing.Quantity {
				available++
				if expiring[ing.ItemID] {
					expiringCount++
				}
				continue
			}
			have := 0.0
			if stocked {
				have = item.Quantity
			}
			missing = append(missing, models.MissingIngredient{
				ItemID: ing.ItemID,
				Name:   ing.Name,
				Have:   have,
				Need:   ing.Quantity,
				Unit:   ing.Unit,
			})
		}

		total := len(recipe.Ingredients)
		availability := float64(available) / float64(total)
		expiringScore := float64(expiringCount) / float64(max(1, total))
		match := RecipeMatch{
			RecipeID:           recipe.ID,
			Name:               recipe.Name,
			AvailabilityScore:  round2(availability),
			ExpiringScore:      round2(expiringScore),
			FinalScore:         round2(availabilityWeight*availability + expiringWeight*expiringScore),
			MissingIngredients: missing,
		}
		matches = append(matches, match)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].FinalScore > matches[j].FinalScore
	})

	if len(filter) > 0 {
		ingredientIDs := map[string]map[string]bool{}
		for _, recipe := range recipes {
			ids := make(map[string]bool, len(recipe.Ingredients))
			for _, ing := range recipe.Ingredients {
				ids[ing.ItemID] = true
			}
			ingredientIDs[recipe.ID] = ids
		}

		filtered := matches[:0]
		for _, match := range matches {
			matched := 0
			for _, f := range filter {
				if ingredientIDs[match.RecipeID][f.ItemID] {
					matched++
				}
			}
			if matched == 0 {
				continue
			}
			match.SpecifiedScore = round2(float64(matched) / float64(len(filter)))
			match.FinalScore = round2(combinedWeight*match.FinalScore + specifiedWeight*match.SpecifiedScore)
			filtered = append(filtered, match)
		}
		matches = filtered
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].FinalScore > matches[j].FinalScore
		})
	}

	return matches, nil
}

// CreateMealPlan plans one dinner per day for days days starting at
// startDate, cycling through the ranked recipe suggestions. Existing
// entries for the same user, date, and meal type are replaced.
func (p *Planner) CreateMealPlan(userID, startDate string, days int) (*models.MealPlan, error) {
	start, err := dates.Parse(startDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start date %q is not a valid YYYY-MM-DD date", models.ErrInvalidInput, startDate)
	}
	if days < 1 {
		return nil, fmt.Errorf("%w: plan length must be at least one day", models.ErrInvalidInput)
	}

	suggestions, err := p.SuggestRecipes(userID, nil, nil)
	if err != nil {
		return nil, err
	}
	if len(suggestions) == 0 {
		return nil, fmt.Errorf("%w: no suitable recipes for user %s", models.ErrNotFound, userID)
	}

	var entries []models.MealPlanEntry
	if err := p.store.Load(store.CollectionMealPlans, &entries); err != nil {
		return nil, err
	}

	plan := &models.MealPlan{
		PlanID:    uuid.NewString(),
		UserID:    userID,
		StartDate: dates.Format(start),
		EndDate:   dates.Format(start.AddDate(0, 0, days-1)),
	}

	next := 0
	for offset := 0; offset < days; offset++ {
		date := start.AddDate(0, 0, offset)
		dateStr := dates.Format(date)
		pick := suggestions[next]
		next++
		if next >= len(suggestions) {
			next = 0
		}

		entries = upsertEntry(entries, models.MealPlanEntry{
			Date:     dateStr,
			UserID:   userID,
			RecipeID: pick.RecipeID,
			MealType: "dinner",
		})
		plan.Days = append(plan.Days, models.MealPlanDay{
			Date:    dateStr,
			Weekday: date.Weekday().String(),
			Meals: []models.Meal{{
				MealType:           "dinner",
				RecipeID:           pick.RecipeID,
				RecipeName:         pick.Name,
				MissingIngredients: pick.MissingIngredients,
			}},
		})
	}

	if err := p.store.Save(store.CollectionMealPlans, entries); err != nil {
		return nil, err
	}
	return plan, nil
}

func upsertEntry(entries []models.MealPlanEntry, entry models.MealPlanEntry) []models.MealPlanEntry {
	for i := range entries {
		if entries[i].UserID == entry.UserID && entries[i].Date == entry.Date && entries[i].MealType == entry.MealType {
			entries[i] = entry
			return entries
		}
	}
	return append(entries, entry)
}

// AvailableIngredients returns the stocked, unexpired inventory.
// Items with unparseable expiry dates are kept rather than dropped.
func (p *Planner) AvailableIngredients() ([]models.InventoryItem, error) {
	var inventory []models.InventoryItem
	if err := p.store.Load(store.CollectionInventory, &inventory); err != nil {
		return nil, err
	}
	today := dates.Midnight(p.now())
	available := []models.InventoryItem{}
	for _, item := range inventory {
		if item.Quantity <= 0 {
			continue
		}
		if item.ExpiryDate != "" {
			if expiry, err := dates.Parse(item.ExpiryDate); err == nil && expiry.Before(today) {
				continue
			}
		}
		available = append(available, item)
	}
	return available, nil
}

// IngredientMatch pairs a recipe with the fraction of its
// ingredients covered by the queried item ids.
type IngredientMatch struct {
	RecipeID           string                     `json:"recipe_id"`
	Name               string                     `json:"name"`
	MatchScore         float64                    `json:"match_score"`
	MissingIngredients []models.MissingIngredient `json:"missing_ingredients"`
}

// FindRecipesByIngredients returns recipes whose ingredients are
// covered by itemIDs at or above threshold, best match first.
func (p *Planner) FindRecipesByIngredients(itemIDs []string, threshold float64) ([]IngredientMatch, error) {
	var recipes []models.Recipe
	if err := p.store.Load(store.CollectionRecipes, &recipes); err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(itemIDs))
	for _, id := range itemIDs {
		have[id] = true
	}

	matches := []IngredientMatch{}
	for _, recipe := range recipes {
		if len(recipe.Ingredients) == 0 {
			continue
		}
		covered := 0
		missing := []models.MissingIngredient{}
		for _, ing := range recipe.Ingredients {
			if have[ing.ItemID] {
				covered++
				continue
			}
			missing = append(missing, models.MissingIngredient{
				ItemID: ing.ItemID,
				Name:   ing.Name,
				Need:   ing.Quantity,
				Unit:   ing.Unit,
			})
		}
		score := float64(covered) / float64(len(recipe.Ingredients))
		if score < threshold {
			continue
		}
		matches = append(matches, IngredientMatch{
			RecipeID:           recipe.ID,
			Name:               recipe.Name,
			MatchScore:         round2(score),
			MissingIngredients: missing,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})
	return matches, nil
}

// RecipeByID returns the stored recipe with the given id
func (p *Planner) RecipeByID(recipeID string) (*models.Recipe, error) {
	var recipes []models.Recipe
	if err := p.store.Load(store.CollectionRecipes, &recipes); err != nil {
		return nil, err
	}
	for i := range recipes {
		if recipes[i].ID == recipeID {
			return &recipes[i], nil
		}
	}
	return nil, fmt.Errorf("%w: recipe %s", models.ErrNotFound, recipeID)
}

// AddRecipe appends a new recipe to the planning collection. The id,
// name, ingredients, and steps are required, and the id must be new.
func (p *Planner) AddRecipe(recipe models.Recipe) error {
	if recipe.ID == "" || recipe.Name == "" || len(recipe.Ingredients) == 0 || len(recipe.Steps) == 0 {
		return fmt.Errorf("%w: recipe requires an id, name, ingredients, and steps", models.ErrInvalidInput)
	}
	var recipes []models.Recipe
	if err := p.store.Load(store.CollectionRecipes, &recipes); err != nil {
		return err
	}
	for _, existing := range recipes {
		if existing.ID == recipe.ID {
			return fmt.Errorf("%w: recipe %s already exists", models.ErrInvalidInput, recipe.ID)
		}
	}
	recipes = append(recipes, recipe)
	return p.store.Save(store.CollectionRecipes, recipes)
}

// dietAllows reports whether a recipe classified as recipeDiet suits
// a user on userDiet. Vegetarians accept vegetarian and vegan
// recipes, vegans accept vegan only.
func dietAllows(userDiet, recipeDiet string) bool {
	switch models.Diet(userDiet) {
	case models.DietVegetarian:
		d := strings.ToLower(recipeDiet)
		return d == string(models.DietVegetarian) || d == string(models.DietVegan)
	case models.DietVegan:
		return strings.ToLower(recipeDiet) == string(models.DietVegan)
	}
	return true
}

func hasAllergen(allergies, allergens []string) bool {
	for _, allergy := range allergies {
		for _, allergen := range allergens {
			if strings.EqualFold(allergy, allergen) {
				return true
			}
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
