// Package api exposes the analytics pipeline over HTTP and pushes
// events to WebSocket subscribers.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

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

// LarderAPI represents the main API handler for the pantry service
type LarderAPI struct {
	Router *gin.Engine
	Hub    *EventHub

	store     store.Store
	monitor   *freshness.Monitor
	tracker   *consumption.Tracker
	generator *shopping.Generator
	planner   *planner.Planner
	dietary   *dietary.Manager
	registry  *tools.Registry
	runtime   *monitoring.Monitor
	metrics   *monitoring.MetricsCollector
}

// NewLarderAPI creates a new API instance over the given services
func NewLarderAPI(
	s store.Store,
	monitor *freshness.Monitor,
	tracker *consumption.Tracker,
	generator *shopping.Generator,
	plan *planner.Planner,
	diet *dietary.Manager,
	registry *tools.Registry,
	runtime *monitoring.Monitor,
	metrics *monitoring.MetricsCollector,
) *LarderAPI {
	api := &LarderAPI{
		Router:    gin.Default(),
		Hub:       NewEventHub(),
		store:     s,
		monitor:   monitor,
		tracker:   tracker,
		generator: generator,
		planner:   plan,
		dietary:   diet,
		registry:  registry,
		runtime:   runtime,
		metrics:   metrics,
	}
	api.setupRoutes()
	return api
}

// setupRoutes configures all API endpoints
func (a *LarderAPI) setupRoutes() {
	a.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Larder API is running"})
	})

	v1 := a.Router.Group("/api/v1")
	{
		// Inventory and freshness
		v1.GET("/inventory", a.GetInventory)
		v1.GET("/inventory/available", a.GetAvailableIngredients)
		v1.GET("/inventory/expiring", a.GetExpiringItems)
		v1.GET("/inventory/expired", a.GetExpiredItems)
		v1.PUT("/inventory/:id/expiry", a.UpdateExpiry)
		v1.GET("/freshness/recommendations/:user_id", a.GetUsageRecommendations)
		v1.GET("/freshness/report/:user_id", a.GetDailyReport)

		// Consumption
		v1.POST("/consumption", a.LogConsumption)
		v1.GET("/consumption/forecast/:item_id", a.PredictDepletion)

		// Shopping
		v1.GET("/shopping/recommendations/:user_id", a.GetShoppingRecommendations)
		v1.POST("/shopping/lists", a.CreateShoppingList)
		v1.POST("/shopping/lists/:id/optimize", a.OptimizeShoppingList)

		// Recipes and meal plans
		v1.POST("/recipes", a.AddRecipe)
		v1.GET("/recipes/:id", a.GetRecipe)
		v1.POST("/recipes/suggest", a.SuggestRecipes)
		v1.POST("/recipes/search", a.FindRecipesByIngredients)
		v1.POST("/mealplans", a.CreateMealPlan)

		// Users and dietary checks
		v1.PUT("/users/:id/preferences", a.UpdatePreferences)
		v1.GET("/users/:id/compatibility/:item_id", a.CheckCompatibility)
		v1.GET("/users/:id/substitutions/:item_id", a.SuggestSubstitutions)
		v1.GET("/users/:id/nutrition", a.AnalyzeNutrition)

		// Tools
		v1.GET("/tools", a.ListTools)
		v1.POST("/tools/:name", a.CallTool)

		// Runtime status and events
		v1.GET("/status", a.GetStatus)
		v1.GET("/ws", a.Hub.handleWebSocket)
	}
}

// fail maps pipeline errors to HTTP status codes
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrStorageUnavailable):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func intQuery(c *gin.Context, name string, fallback int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be an integer"})
		return 0, false
	}
	return value, true
}

// Inventory and freshness handlers

func (a *LarderAPI) GetInventory(c *gin.Context) {
	var inventory []models.InventoryItem
	if err := a.store.Load(store.CollectionInventory, &inventory); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, inventory)
}

func (a *LarderAPI) GetAvailableIngredients(c *gin.Context) {
	items, err := a.planner.AvailableIngredients()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (a *LarderAPI) GetExpiringItems(c *gin.Context) {
	days, ok := intQuery(c, "days", 7)
	if !ok {
		return
	}
	items, err := a.monitor.ExpiringWithin(days)
	if err != nil {
		fail(c, err)
		return
	}
	a.metrics.SetExpiringItems(len(items))
	c.JSON(http.StatusOK, items)
}

func (a *LarderAPI) GetExpiredItems(c *gin.Context) {
	items, err := a.monitor.Expired()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (a *LarderAPI) UpdateExpiry(c *gin.Context) {
	var body struct {
		ExpiryDate string `json:"expiry_date"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	itemID := c.Param("id")
	if err := a.monitor.UpdateExpiry(itemID, body.ExpiryDate); err != nil {
		fail(c, err)
		return
	}
	a.Hub.Broadcast("expiry_updated", gin.H{"item_id": itemID, "expiry_date": body.ExpiryDate})
	c.JSON(http.StatusOK, gin.H{"item_id": itemID, "expiry_date": body.ExpiryDate})
}

func (a *LarderAPI) GetUsageRecommendations(c *gin.Context) {
	recommendations, err := a.monitor.UsageRecommendations(c.Param("user_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, recommendations)
}

func (a *LarderAPI) GetDailyReport(c *gin.Context) {
	report, err := a.monitor.DailyReport(c.Param("user_id"))
	if err != nil {
		fail(c, err)
		return
	}
	a.runtime.RecordMetric("last_report_at", time.Now().Format(time.RFC3339))
	c.JSON(http.StatusOK, gin.H{"report": report})
}

// Consumption handlers

func (a *LarderAPI) LogConsumption(c *gin.Context) {
	var body struct {
		ItemID   string  `json:"item_id" binding:"required"`
		UserID   string  `json:"user_id" binding:"required"`
		Quantity float64 `json:"quantity" binding:"required"`
		Unit     string  `json:"unit" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := a.tracker.Log(body.ItemID, body.UserID, body.Quantity, body.Unit); err != nil {
		fail(c, err)
		return
	}
	a.runtime.IncrementMetric("consumption_events")
	c.JSON(http.StatusCreated, gin.H{"status": "logged", "item_id": body.ItemID})
}

func (a *LarderAPI) PredictDepletion(c *gin.Context) {
	forecast, err := a.tracker.PredictDepletion(c.Param("item_id"), c.Query("user_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, forecast)
}

// Shopping handlers

func (a *LarderAPI) GetShoppingRecommendations(c *gin.Context) {
	days, ok := intQuery(c, "days", 7)
	if !ok {
		return
	}
	recommendations, err := a.tracker.ShoppingRecommendations(c.Param("user_id"), days)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, recommendations)
}

func (a *LarderAPI) CreateShoppingList(c *gin.Context) {
	var body struct {
		UserID          string   `json:"user_id" binding:"required"`
		Budget          *float64 `json:"budget"`
		StorePreference string   `json:"store_preference"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	list, err := a.generator.CreateShoppingList(body.UserID, body.Budget, body.StorePreference)
	if err != nil {
		fail(c, err)
		return
	}
	a.metrics.IncShoppingLists()
	a.Hub.Broadcast("shopping_list_created", list)
	c.JSON(http.StatusCreated, list)
}

func (a *LarderAPI) OptimizeShoppingList(c *gin.Context) {
	var body struct {
		Criteria string `json:"criteria" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	list, err := a.generator.OptimizeShoppingList(c.Param("id"), models.OptimizeCriteria(body.Criteria))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Recipe and meal plan handlers

func (a *LarderAPI) AddRecipe(c *gin.Context) {
	var recipe models.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := a.planner.AddRecipe(recipe); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (a *LarderAPI) GetRecipe(c *gin.Context) {
	recipe, err := a.planner.RecipeByID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (a *LarderAPI) SuggestRecipes(c *gin.Context) {
	var body struct {
		UserID         string                  `json:"user_id" binding:"required"`
		SpecifiedItems []planner.ItemFilter    `json:"specified_items"`
		Preferences    *models.UserPreferences `json:"preferences"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	matches, err := a.planner.SuggestRecipes(body.UserID, body.SpecifiedItems, body.Preferences)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, matches)
}

func (a *LarderAPI) FindRecipesByIngredients(c *gin.Context) {
	var body struct {
		ItemIDs   []string `json:"item_ids" binding:"required"`
		Threshold *float64 `json:"threshold"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	threshold := 0.5
	if body.Threshold != nil {
		threshold = *body.Threshold
	}
	matches, err := a.planner.FindRecipesByIngredients(body.ItemIDs, threshold)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, matches)
}

func (a *LarderAPI) CreateMealPlan(c *gin.Context) {
	var body struct {
		UserID    string `json:"user_id" binding:"required"`
		StartDate string `json:"start_date" binding:"required"`
		Days      *int   `json:"days"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	days := 7
	if body.Days != nil {
		days = *body.Days
	}
	plan, err := a.planner.CreateMealPlan(body.UserID, body.StartDate, days)
	if err != nil {
		fail(c, err)
		return
	}
	a.Hub.Broadcast("meal_plan_created", gin.H{"plan_id": plan.PlanID, "user_id": plan.UserID})
	c.JSON(http.StatusCreated, plan)
}

// User and dietary handlers

func (a *LarderAPI) UpdatePreferences(c *gin.Context) {
	var prefs models.UserPreferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := c.Param("id")
	if err := a.dietary.UpdatePreferences(userID, prefs); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "preferences": prefs})
}

func (a *LarderAPI) CheckCompatibility(c *gin.Context) {
	result, err := a.dietary.CheckItemCompatibility(c.Param("id"), c.Param("item_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (a *LarderAPI) SuggestSubstitutions(c *gin.Context) {
	substitutions, err := a.dietary.SuggestSubstitutions(c.Param("id"), c.Param("item_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, substitutions)
}

func (a *LarderAPI) AnalyzeNutrition(c *gin.Context) {
	days, ok := intQuery(c, "days", 7)
	if !ok {
		return
	}
	analysis, err := a.dietary.AnalyzeNutritionalAlignment(c.Param("id"), days)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// Tool handlers

func (a *LarderAPI) ListTools(c *gin.Context) {
	c.JSON(http.StatusOK, a.registry.Schemas())
}

func (a *LarderAPI) CallTool(c *gin.Context) {
	name := c.Param("name")
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	started := time.Now()
	result, err := a.registry.Call(c.Request.Context(), name, string(body))
	a.metrics.ObserveToolCall(name, err, time.Since(started))
	a.runtime.IncrementMetric("tool_calls")
	if err != nil {
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", []byte(result))
}

// Status handler

func (a *LarderAPI) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"metrics": a.runtime.GetMetrics(),
		"tools":   a.registry.Names(),
	})
}
