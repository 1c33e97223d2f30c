package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"larder/internal/consumption"
	"larder/internal/dietary"
	"larder/internal/freshness"
	"larder/internal/models"
	"larder/internal/monitoring"
	"larder/internal/planner"
	"larder/internal/shopping"
	"larder/internal/store"
	"larder/internal/tools"
)

func newTestAPI(t *testing.T) (*LarderAPI, store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	monitor := freshness.NewMonitor(s)
	tracker := consumption.NewTracker(s)
	generator := shopping.NewGenerator(s, tracker, monitor)
	plan := planner.NewPlanner(s)
	diet := dietary.NewManager(s)
	registry := tools.NewRegistry(tools.Services{
		Monitor:   monitor,
		Tracker:   tracker,
		Generator: generator,
		Planner:   plan,
		Dietary:   diet,
	})

	api := NewLarderAPI(s, monitor, tracker, generator, plan, diet, registry,
		monitoring.NewMonitor(), monitoring.NewMetricsCollector())
	return api, s
}

func doRequest(t *testing.T, api *LarderAPI, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	api.Router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	api, _ := newTestAPI(t)

	w := doRequest(t, api, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestGetInventory(t *testing.T) {
	api, s := newTestAPI(t)
	require.NoError(t, s.Save(store.CollectionInventory, []models.InventoryItem{
		{ID: "milk", Name: "Milk", Quantity: 2, Unit: "liter"},
	}))

	w := doRequest(t, api, http.MethodGet, "/api/v1/inventory", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var items []models.InventoryItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "milk", items[0].ID)
}

func TestPredictDepletion_NotFoundMapsTo404(t *testing.T) {
	api, s := newTestAPI(t)
	require.NoError(t, s.Save(store.CollectionInventory, []models.InventoryItem{}))

	w := doRequest(t, api, http.MethodGet, "/api/v1/consumption/forecast/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateExpiry_InvalidDateMapsTo400(t *testing.T) {
	api, s := newTestAPI(t)
	require.NoError(t, s.Save(store.CollectionInventory, []models.InventoryItem{
		{ID: "milk", Name: "Milk"},
	}))

	w := doRequest(t, api, http.MethodPut, "/api/v1/inventory/milk/expiry",
		map[string]string{"expiry_date": "2025-13-40"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogConsumption(t *testing.T) {
	api, s := newTestAPI(t)
	require.NoError(t, s.Save(store.CollectionInventory, []models.InventoryItem{
		{ID: "milk", Name: "Milk", Quantity: 2, Unit: "liter"},
	}))

	w := doRequest(t, api, http.MethodPost, "/api/v1/consumption", map[string]interface{}{
		"item_id": "milk", "user_id": "user-1", "quantity": 0.5, "unit": "liter",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var inventory []models.InventoryItem
	require.NoError(t, s.Load(store.CollectionInventory, &inventory))
	assert.Equal(t, 1.5, inventory[0].Quantity)
}

func TestLogConsumption_MissingFields(t *testing.T) {
	api, _ := newTestAPI(t)

	w := doRequest(t, api, http.MethodPost, "/api/v1/consumption", map[string]interface{}{
		"item_id": "milk",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateShoppingList(t *testing.T) {
	api, s := newTestAPI(t)
	require.NoError(t, s.Save(store.CollectionUsers, []models.User{{ID: "user-1"}}))

	w := doRequest(t, api, http.MethodPost, "/api/v1/shopping/lists",
		map[string]string{"user_id": "user-1"})
	assert.Equal(t, http.StatusCreated, w.Code)

	var list models.ShoppingList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.NotEmpty(t, list.ID)
	assert.Equal(t, "user-1", list.UserID)
}

func TestListTools(t *testing.T) {
	api, _ := newTestAPI(t)

	w := doRequest(t, api, http.MethodGet, "/api/v1/tools", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var schemas []tools.Schema
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &schemas))
	assert.NotEmpty(t, schemas)
}

func TestCallTool(t *testing.T) {
	api, s := newTestAPI(t)
	require.NoError(t, s.Save(store.CollectionInventory, []models.InventoryItem{
		{ID: "milk", Name: "Milk", Quantity: 2, Unit: "liter"},
	}))

	w := doRequest(t, api, http.MethodPost, "/api/v1/tools/predict_depletion",
		map[string]string{"item_id": "milk"})
	assert.Equal(t, http.StatusOK, w.Code)

	var forecast models.Forecast
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &forecast))
	assert.Equal(t, "milk", forecast.ItemID)
}

func TestCallTool_Unknown(t *testing.T) {
	api, _ := newTestAPI(t)

	w := doRequest(t, api, http.MethodPost, "/api/v1/tools/teleport_groceries", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetStatus(t *testing.T) {
	api, _ := newTestAPI(t)

	w := doRequest(t, api, http.MethodGet, "/api/v1/status", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "uptime_seconds")
	assert.Contains(t, w.Body.String(), "predict_depletion")
}
