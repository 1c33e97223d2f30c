// Package shopping builds and reorders shopping lists from depletion
// forecasts, upcoming meal plans, and user preferences.
package shopping

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"larder/internal/consumption"
	"larder/internal/dates"
	"larder/internal/freshness"
	"larder/internal/models"
	"larder/internal/store"
)

// Restocking horizon for phase one candidates, in days
const restockDays = 14

// Generator assembles shopping lists for a user
type Generator struct {
	store   store.Store
	tracker *consumption.Tracker
	monitor *freshness.Monitor
	now     func() time.Time
}

// NewGenerator creates a shopping list generator backed by s
func NewGenerator(s store.Store, tracker *consumption.Tracker, monitor *freshness.Monitor) *Generator {
	return &Generator{store: s, tracker: tracker, monitor: monitor, now: time.Now}
}

// Preferences returns the stored preferences for userID
func (g *Generator) Preferences(userID string) (models.UserPreferences, error) {
	var users []models.User
	if err := g.store.Load(store.CollectionUsers, &users); err != nil {
		return models.UserPreferences{}, err
	}
	for _, u := range users {
		if u.ID == userID {
			return u.Preferences, nil
		}
	}
	return models.UserPreferences{}, fmt.Errorf("%w: user %s", models.ErrNotFound, userID)
}

// CreateShoppingList builds a new list for userID from two candidate
// sources: items forecast to deplete within ten days, then ingredient
// shortfalls for meals planned over the coming week. A nil budget
// falls back to the user's stored budget; zero means unconstrained.
// Candidates that would push the running total past the budget are
// skipped, not truncated, and ingredients with no inventory record
// are ignored. The list is appended to the shopping
// collection, never overwriting earlier lists.
func (g *Generator) CreateShoppingList(userID string, budget *float64, storePreference string) (*models.ShoppingList, error) {
	prefs, err := g.Preferences(userID)
	if err != nil {
		return nil, err
	}
	budgetConstraint := prefs.Budget
	if budget != nil {
		budgetConstraint = *budget
	}

	var inventory []models.InventoryItem
	if err := g.store.Load(store.CollectionInventory, &inventory); err != nil {
		return nil, err
	}
	byID := make(map[string]models.InventoryItem, len(inventory))
	for _, item := range inventory {
		byID[item.ID] = item
	}

	list := &models.ShoppingList{
		ID:               uuid.NewString(),
		UserID:           userID,
		CreationDate:     dates.Format(dates.Midnight(g.now())),
		Items:            []models.ShoppingItem{},
		BudgetConstraint: budgetConstraint,
		StorePreference:  storePreference,
	}
	total := 0.0
	listed := map[string]bool{}

	add := func(candidate models.ShoppingItem) {
		if budgetConstraint > 0 && total+candidate.EstimatedCost > budgetConstraint {
			return
		}
		list.Items = append(list.Items, candidate)
		total += candidate.EstimatedCost
		listed[candidate.ItemID] = true
	}

	// Phase one: replenish items running out
	recommendations, err := g.tracker.ShoppingRecommendations(userID, 10)
	if err != nil {
		return nil, err
	}
	for _, rec := range recommendations {
		item, ok := byID[rec.ItemID]
		if !ok || listed[rec.ItemID] {
			continue
		}
		if violatesDiet(prefs.Diet, item.Category) || violatesAllergies(prefs.Allergies, item.AllergyTags) {
			continue
		}
		quantity := 1.0
		if rec.AvgDailyConsumption > 0 {
			quantity = math.Max(1, math.Round(rec.AvgDailyConsumption*restockDays))
		}
		add(models.ShoppingItem{
			ItemID:         item.ID,
			Name:           item.Name,
			Quantity:       quantity,
			Unit:           item.Unit,
			EstimatedPrice: item.Price,
			EstimatedCost:  round2(item.Price * quantity),
			Store:          preferredStore(storePreference, item.Store),
			Category:       item.Category,
			Reason:         fmt.Sprintf("Predicted to deplete in %d days", rec.DaysUntilDepletion),
		})
	}

	// Phase two: cover ingredient shortfalls for the coming week
	planned, err := g.plannedMeals(userID, 7)
	if err != nil {
		return nil, err
	}
	for _, meal := range planned {
		for _, ing := range meal.recipe.Ingredients {
			if listed[ing.ItemID] {
				continue
			}
			item, stocked := byID[ing.ItemID]
			if !stocked {
				continue
			}
			if item.Quantity >= ing.Quantity {
				continue
			}
			if violatesDiet(prefs.Diet, item.Category) || violatesAllergies(prefs.Allergies, item.AllergyTags) {
				continue
			}
			shortfall := ing.Quantity - item.Quantity
			add(models.ShoppingItem{
				ItemID:         ing.ItemID,
				Name:           ing.Name,
				Quantity:       shortfall,
				Unit:           ing.Unit,
				EstimatedPrice: item.Price,
				EstimatedCost:  round2(item.Price * shortfall),
				Store:          preferredStore(storePreference, item.Store),
				Category:       item.Category,
				Reason:         fmt.Sprintf("Needed for %s on %s", meal.recipe.Name, meal.date),
			})
		}
	}

	list.EstimatedTotal = round2(total)
	list.Notes = buildNotes(prefs)

	var lists []models.ShoppingList
	if err := g.store.Load(store.CollectionShopping, &lists); err != nil {
		return nil, err
	}
	lists = append(lists, *list)
	if err := g.store.Save(store.CollectionShopping, lists); err != nil {
		return nil, err
	}
	return list, nil
}

type plannedMeal struct {
	date   string
	recipe models.Recipe
}

// plannedMeals resolves the user's meal plan entries dated within the
// next horizon days to their recipes, skipping dangling recipe ids.
func (g *Generator) plannedMeals(userID string, horizon int) ([]plannedMeal, error) {
	var entries []models.MealPlanEntry
	if err := g.store.Load(store.CollectionMealPlans, &entries); err != nil {
		return nil, err
	}
	var recipes []models.Recipe
	if err := g.store.Load(store.CollectionRecipes, &recipes); err != nil {
		return nil, err
	}
	recipesByID := make(map[string]models.Recipe, len(recipes))
	for _, r := range recipes {
		recipesByID[r.ID] = r
	}

	today := dates.Midnight(g.now())
	meals := []plannedMeal{}
	for _, entry := range entries {
		if entry.UserID != userID {
			continue
		}
		date, err := dates.Parse(entry.Date)
		if err != nil {
			continue
		}
		offset := dates.DaysBetween(today, date)
		if offset < 0 || offset > horizon {
			continue
		}
		recipe, ok := recipesByID[entry.RecipeID]
		if !ok {
			continue
		}
		meals = append(meals, plannedMeal{date: entry.Date, recipe: recipe})
	}
	return meals, nil
}

// OptimizeShoppingList reorders the items of an existing list in
// place. "cost" orders ascending by unit price, "waste" puts items
// that complement soon-expiring stock first, "nutrition" keeps the
// stored order. The reordered list is persisted.
func (g *Generator) OptimizeShoppingList(listID string, criteria models.OptimizeCriteria) (*models.ShoppingList, error) {
	switch criteria {
	case models.OptimizeCost, models.OptimizeWaste, models.OptimizeNutrition:
	default:
		return nil, fmt.Errorf("%w: unknown optimization criteria %q", models.ErrInvalidInput, criteria)
	}

	var lists []models.ShoppingList
	if err := g.store.Load(store.CollectionShopping, &lists); err != nil {
		return nil, err
	}
	index := -1
	for i := range lists {
		if lists[i].ID == listID {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, fmt.Errorf("%w: shopping list %s", models.ErrNotFound, listID)
	}
	list := &lists[index]

	switch criteria {
	case models.OptimizeCost:
		sort.SliceStable(list.Items, func(i, j int) bool {
			return unitPrice(list.Items[i]) < unitPrice(list.Items[j])
		})
		list.Notes = appendNote(list.Notes, "Cost-optimized version.")
	case models.OptimizeWaste:
		scores, err := g.complementScores(list.Items)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(list.Items, func(i, j int) bool {
			return scores[list.Items[i].ItemID] > scores[list.Items[j].ItemID]
		})
		list.Notes = appendNote(list.Notes, "Waste-optimized version.")
	case models.OptimizeNutrition:
		// Per-item nutrition data is not tracked yet, so the stored
		// order is kept.
		list.Notes = appendNote(list.Notes, "Nutrition-optimized version.")
	}

	if err := g.store.Save(store.CollectionShopping, lists); err != nil {
		return nil, err
	}
	result := *list
	return &result, nil
}

// complementScores counts, for every listed item, how many
// soon-expiring inventory items appear alongside it in some recipe.
// Buying high scorers helps use up stock before it spoils.
func (g *Generator) complementScores(items []models.ShoppingItem) (map[string]int, error) {
	expiring, err := g.monitor.ExpiringWithin(10)
	if err != nil {
		return nil, err
	}
	expiringIDs := make(map[string]bool, len(expiring))
	for _, e := range expiring {
		expiringIDs[e.ID] = true
	}

	var recipes []models.Recipe
	if err := g.store.Load(store.CollectionRecipes, &recipes); err != nil {
		return nil, err
	}

	scores := make(map[string]int, len(items))
	for _, item := range items {
		for _, recipe := range recipes {
			uses := false
			expiringCount := 0
			for _, ing := range recipe.Ingredients {
				if ing.ItemID == item.ItemID {
					uses = true
				}
				if expiringIDs[ing.ItemID] {
					expiringCount++
				}
			}
			if uses {
				scores[item.ItemID] += expiringCount
			}
		}
	}
	return scores, nil
}

// preferredStore picks the user's requested store when given, falling
// back to where the item is usually bought.
func preferredStore(preference, itemStore string) string {
	if preference != "" {
		return preference
	}
	return itemStore
}

func unitPrice(item models.ShoppingItem) float64 {
	return item.EstimatedPrice / math.Max(1, item.Quantity)
}

// violatesDiet reports whether an item category is excluded by the
// diet. Vegetarians avoid meat and seafood, vegans additionally dairy.
func violatesDiet(diet, category string) bool {
	switch models.Diet(diet) {
	case models.DietVegetarian:
		return category == string(models.CategoryMeat) || category == string(models.CategorySeafood)
	case models.DietVegan:
		return category == string(models.CategoryMeat) || category == string(models.CategorySeafood) ||
			category == string(models.CategoryDairy)
	}
	return false
}

func violatesAllergies(allergies, tags []string) bool {
	for _, allergy := range allergies {
		for _, tag := range tags {
			if strings.EqualFold(allergy, tag) {
				return true
			}
		}
	}
	return false
}

func buildNotes(prefs models.UserPreferences) string {
	parts := []string{"Generated from depletion forecasts and upcoming meal plans."}
	if prefs.Diet != "" {
		parts = append(parts, fmt.Sprintf("Respects %s diet.", prefs.Diet))
	}
	if len(prefs.Allergies) > 0 {
		parts = append(parts, fmt.Sprintf("Avoids: %s.", strings.Join(prefs.Allergies, ", ")))
	}
	return strings.Join(parts, " ")
}

func appendNote(notes, suffix string) string {
	if notes == "" {
		return suffix
	}
	return notes + " " + suffix
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
