package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"larder/internal/consumption"
	"larder/internal/dietary"
	"larder/internal/freshness"
	"larder/internal/models"
	"larder/internal/planner"
	"larder/internal/shopping"
	"larder/internal/store"
)

func newTestRegistry(t *testing.T) (*Registry, store.Store) {
	t.Helper()
	s, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	monitor := freshness.NewMonitor(s)
	tracker := consumption.NewTracker(s)
	r := NewRegistry(Services{
		Monitor:   monitor,
		Tracker:   tracker,
		Generator: shopping.NewGenerator(s, tracker, monitor),
		Planner:   planner.NewPlanner(s),
		Dietary:   dietary.NewManager(s),
	})
	return r, s
}

func TestRegistry_Names(t *testing.T) {
	r, _ := newTestRegistry(t)

	names := r.Names()
	for _, expected := range []string{
		"check_expiring_items",
		"check_expired_items",
		"update_expiry_date",
		"get_usage_recommendations",
		"generate_daily_report",
		"log_consumption",
		"predict_depletion",
		"get_shopping_recommendations",
		"create_shopping_list",
		"optimize_shopping_list",
		"suggest_recipes",
		"create_meal_plan",
		"get_available_ingredients",
		"find_recipes_by_ingredients",
		"get_recipe_by_id",
		"add_recipe",
		"update_preferences",
		"check_item_compatibility",
		"suggest_substitutions",
		"analyze_nutritional_alignment",
	} {
		assert.Contains(t, names, expected)
	}
	assert.IsIncreasing(t, names)
}

func TestRegistry_Schemas(t *testing.T) {
	r, _ := newTestRegistry(t)

	schemas := r.Schemas()
	require.Len(t, schemas, len(r.Names()))
	for _, schema := range schemas {
		assert.NotEmpty(t, schema.Name)
		assert.NotEmpty(t, schema.Description)
	}
}

func TestRegistry_UnknownTool(t *testing.T) {
	r, _ := newTestRegistry(t)

	_, err := r.Call(context.Background(), "teleport_groceries", "{}")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestRegistry_MalformedInput(t *testing.T) {
	r, _ := newTestRegistry(t)

	_, err := r.Call(context.Background(), "predict_depletion", "not json")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidInput))
}

func TestToolCall_ReturnsJSON(t *testing.T) {
	r, s := newTestRegistry(t)
	require.NoError(t, s.Save(store.CollectionInventory, []models.InventoryItem{
		{ID: "milk", Name: "Milk", Quantity: 2, Unit: "liter"},
	}))

	out, err := r.Call(context.Background(), "predict_depletion", `{"item_id":"milk"}`)
	require.NoError(t, err)

	var forecast models.Forecast
	require.NoError(t, json.Unmarshal([]byte(out), &forecast))
	assert.Equal(t, "milk", forecast.ItemID)
	assert.Equal(t, "No consumption history available for prediction", forecast.Prediction)
}

func TestToolCall_EmptyInputIsEmptyObject(t *testing.T) {
	r, s := newTestRegistry(t)
	require.NoError(t, s.Save(store.CollectionInventory, []models.InventoryItem{}))

	out, err := r.Call(context.Background(), "check_expiring_items", "")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestToolDescription_MentionsParameters(t *testing.T) {
	r, _ := newTestRegistry(t)

	tool, err := r.Get("create_meal_plan")
	require.NoError(t, err)
	assert.Equal(t, "create_meal_plan", tool.Name())
	assert.Contains(t, tool.Description(), "start_date")
}
