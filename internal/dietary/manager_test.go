package dietary

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"larder/internal/models"
	"larder/internal/store"
)

var testNow = time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T) (*Manager, store.Store) {
	t.Helper()
	s, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	m := NewManager(s)
	m.now = func() time.Time { return testNow }
	return m, s
}

func seedVeganUser(t *testing.T, s store.Store) {
	t.Helper()
	require.NoError(t, s.Save(store.CollectionUsers, []models.User{
		{ID: "user-1", Name: "Sam", Preferences: models.UserPreferences{
			Diet:      "vegan",
			Allergies: []string{"nuts"},
			NutritionalGoals: map[string]float64{
				"protein":  30,
				"calories": 700,
			},
		}},
	}))
}

func TestUpdatePreferences(t *testing.T) {
	m, s := newTestManager(t)
	seedVeganUser(t, s)

	newPrefs := models.UserPreferences{Diet: "vegetarian", Budget: 80}
	require.NoError(t, m.UpdatePreferences("user-1", newPrefs))

	var users []models.User
	require.NoError(t, s.Load(store.CollectionUsers, &users))
	assert.Equal(t, newPrefs, users[0].Preferences)
}

func TestUpdatePreferences_UnknownUser(t *testing.T) {
	m, s := newTestManager(t)
	require.NoError(t, s.Save(store.CollectionUsers, []models.User{}))

	err := m.UpdatePreferences("ghost", models.UserPreferences{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestCheckItemCompatibility(t *testing.T) {
	m, s := newTestManager(t)
	seedVeganUser(t, s)
	require.NoError(t, s.Save(store.CollectionInventory, []models.InventoryItem{
		{ID: "milk", Name: "Milk", Category: "Dairy"},
		{ID: "granola", Name: "Granola", Category: "Snacks", AllergyTags: []string{"nuts"}},
		{ID: "beans", Name: "Beans", Category: "Pantry"},
	}))

	result, err := m.CheckItemCompatibility("user-1", "milk")
	require.NoError(t, err)
	assert.False(t, result.DietCompatible)
	assert.True(t, result.AllergySafe)
	assert.False(t, result.Compatible)
	assert.Contains(t, result.DietReason, "vegan")

	result, err = m.CheckItemCompatibility("user-1", "granola")
	require.NoError(t, err)
	assert.True(t, result.DietCompatible)
	assert.False(t, result.AllergySafe)
	assert.Equal(t, []string{"nuts"}, result.ConflictingAllergens)
	assert.False(t, result.Compatible)

	result, err = m.CheckItemCompatibility("user-1", "beans")
	require.NoError(t, err)
	assert.True(t, result.Compatible)
}

func TestCheckItemCompatibility_UnknownItem(t *testing.T) {
	m, s := newTestManager(t)
	seedVeganUser(t, s)
	require.NoError(t, s.Save(store.CollectionInventory, []models.InventoryItem{}))

	_, err := m.CheckItemCompatibility("user-1", "ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestSuggestSubstitutions(t *testing.T) {
	m, s := newTestManager(t)
	seedVeganUser(t, s)
	require.NoError(t, s.Save(store.CollectionInventory, []models.InventoryItem{
		{ID: "milk", Name: "Milk", Category: "Dairy"},
		{ID: "oatmilk", Name: "Oat Milk", Category: "Beverages", Tags: []string{"non-dairy", "plant-based"}},
		{ID: "nutmilk", Name: "Almond Milk", Category: "Beverages", Tags: []string{"non-dairy"}, AllergyTags: []string{"nuts"}},
		{ID: "cola", Name: "Cola", Category: "Beverages"},
	}))

	substitutions, err := m.SuggestSubstitutions("user-1", "milk")
	require.NoError(t, err)
	require.Len(t, substitutions, 1)
	assert.Equal(t, "oatmilk", substitutions[0].ItemID)
	assert.Equal(t, 0.9, substitutions[0].Score)
	assert.Equal(t, "Non-dairy alternative", substitutions[0].Reason)
}

func TestSuggestSubstitutions_MeatToPlantProtein(t *testing.T) {
	m, s := newTestManager(t)
	require.NoError(t, s.Save(store.CollectionUsers, []models.User{
		{ID: "user-1", Preferences: models.UserPreferences{Diet: "vegetarian"}},
	}))
	require.NoError(t, s.Save(store.CollectionInventory, []models.InventoryItem{
		{ID: "steak", Name: "Steak", Category: "Meat"},
		{ID: "tofu", Name: "Tofu", Category: "Prepared", Tags: []string{"plant-based", "protein"}},
	}))

	substitutions, err := m.SuggestSubstitutions("user-1", "steak")
	require.NoError(t, err)
	require.Len(t, substitutions, 1)
	assert.Equal(t, "tofu", substitutions[0].ItemID)
	assert.Equal(t, 0.8, substitutions[0].Score)
}

func TestAnalyzeNutritionalAlignment(t *testing.T) {
	m, s := newTestManager(t)
	seedVeganUser(t, s)
	require.NoError(t, s.Save(store.CollectionRecipes, []models.Recipe{
		{ID: "r1", Name: "Lentil Stew",
			NutritionalInfo: map[string]float64{"protein": 24, "calories": 600},
			Ingredients: []models.Ingredient{
				{ItemID: "lentils", Name: "Lentils", Quantity: 1, Category: "Pantry"},
				{ItemID: "carrot", Name: "Carrot", Quantity: 2, Category: "Produce"},
			}},
		{ID: "r2", Name: "Veggie Rice",
			NutritionalInfo: map[string]float64{"protein": 12, "calories": 500},
			Ingredients: []models.Ingredient{
				{ItemID: "rice", Name: "Rice", Quantity: 1, Category: "Pantry"},
			}},
	}))
	require.NoError(t, s.Save(store.CollectionMealPlans, []models.MealPlanEntry{
		{Date: "2026-08-20", UserID: "user-1", RecipeID: "r1", MealType: "dinner"},
		{Date: "2026-08-21", UserID: "user-1", RecipeID: "r2", MealType: "dinner"},
		{Date: "2026-09-10", UserID: "user-1", RecipeID: "r1", MealType: "dinner"}, // outside window
		{Date: "2026-08-22", UserID: "other", RecipeID: "r1", MealType: "dinner"},
	}))

	analysis, err := m.AnalyzeNutritionalAlignment("user-1", 7)
	require.NoError(t, err)
	assert.Equal(t, 2, analysis.MealsAnalyzed)
	assert.Equal(t, 18.0, analysis.AvgPerMeal["protein"])
	assert.Equal(t, 550.0, analysis.AvgPerMeal["calories"])

	// protein 18/30 = 0.6, calories 550/700 ~= 0.79
	assert.Equal(t, 0.6, analysis.GoalAdherence["protein"])
	assert.Equal(t, 0.79, analysis.GoalAdherence["calories"])
	assert.Equal(t, "medium", analysis.AdherenceRating)

	// Two distinct ingredient categories out of eight
	assert.Equal(t, 0.25, analysis.CategoryDiversity)
	assert.Equal(t, "low", analysis.BalanceRating)
	assert.NotEmpty(t, analysis.Recommendations)
}

func TestAnalyzeNutritionalAlignment_NoMeals(t *testing.T) {
	m, s := newTestManager(t)
	seedVeganUser(t, s)

	analysis, err := m.AnalyzeNutritionalAlignment("user-1", 7)
	require.NoError(t, err)
	assert.Equal(t, 0, analysis.MealsAnalyzed)
	assert.Equal(t, "low", analysis.AdherenceRating)
	require.Len(t, analysis.Recommendations, 1)
	assert.Contains(t, analysis.Recommendations[0], "No planned meals")
}

func TestAnalyzeNutritionalAlignment_InvalidWindow(t *testing.T) {
	m, s := newTestManager(t)
	seedVeganUser(t, s)

	_, err := m.AnalyzeNutritionalAlignment("user-1", 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidInput))
}
