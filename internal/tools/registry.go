package tools

import (
	"context"
	"fmt"
	"sort"

	"larder/internal/consumption"
	"larder/internal/dietary"
	"larder/internal/freshness"
	"larder/internal/models"
	"larder/internal/planner"
	"larder/internal/shopping"
)

// Registry holds the tool set built over the analytics services
type Registry struct {
	tools map[string]*Tool
	names []string
}

// Services groups the components the tool set is built from
type Services struct {
	Monitor   *freshness.Monitor
	Tracker   *consumption.Tracker
	Generator *shopping.Generator
	Planner   *planner.Planner
	Dietary   *dietary.Manager
}

// NewRegistry builds the full tool set over the given services
func NewRegistry(s Services) *Registry {
	r := &Registry{tools: map[string]*Tool{}}
	for _, t := range buildTools(s) {
		r.tools[t.Name()] = t
		r.names = append(r.names, t.Name())
	}
	sort.Strings(r.names)
	return r
}

// Get returns the named tool
func (r *Registry) Get(name string) (*Tool, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: tool %s", models.ErrNotFound, name)
	}
	return t, nil
}

// Names returns the registered tool names in sorted order
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Schemas returns the parameter schemas of every tool, sorted by name
func (r *Registry) Schemas() []Schema {
	schemas := make([]Schema, 0, len(r.names))
	for _, name := range r.names {
		schemas = append(schemas, r.tools[name].Schema())
	}
	return schemas
}

// Call invokes the named tool with a JSON object input
func (r *Registry) Call(ctx context.Context, name, input string) (string, error) {
	t, err := r.Get(name)
	if err != nil {
		return "", err
	}
	return t.Call(ctx, input)
}

func buildTools(s Services) []*Tool {
	userParam := Param{Type: "string", Description: "user id"}
	itemParam := Param{Type: "string", Description: "inventory item id"}

	return []*Tool{
		{
			schema: Schema{
				Name:        "check_expiring_items",
				Description: "List inventory items expiring within a number of days, soonest first.",
				Parameters: map[string]Param{
					"days_threshold": {Type: "integer", Description: "horizon in days, default 7"},
				},
			},
			run: func(ctx context.Context, input string) (interface{}, error) {
				var args struct {
					DaysThreshold *int `json:"days_threshold"`
				}
				if err := decode(input, &args); err != nil {
					return nil, err
				}
				threshold := 7
				if args.DaysThreshold != nil {
					threshold = *args.DaysThreshold
				}
				return s.Monitor.ExpiringWithin(threshold)
			},
		},
		{
			schema: Schema{
				Name:        "check_expired_items",
				Description: "List inventory items that are already past their expiry date.",
				Parameters:  map[string]Param{},
			},
			run: func(ctx context.Context, input string) (interface{}, error) {
				return s.Monitor.Expired()
			},
		},
		{
			schema: Schema{
				Name:        "update_expiry_date",
				Description: "Set a new expiry date on an inventory item.",
				Parameters: map[string]Param{
					"item_id":         itemParam,
					"new_expiry_date": {Type: "string", Description: "YYYY-MM-DD date"},
				},
				Required: []string{"item_id", "new_expiry_date"},
			},
			run: func(ctx context.Context, input string) (interface{}, error) {
				var args struct {
					ItemID        string `json:"item_id"`
					NewExpiryDate string `json:"new_expiry_date"`
				}
				if err := decode(input, &args); err != nil {
					return nil, err
				}
				if err := s.Monitor.UpdateExpiry(args.ItemID, args.NewExpiryDate); err != nil {
					return nil, err
				}
				return map[string]string{"item_id": args.ItemID, "expiry_date": args.NewExpiryDate}, nil
			},
		},
		{
			schema: Schema{
				Name:        "get_usage_recommendations",
				Description: "Recommend recipes that use up items expiring within five days.",
				Parameters:  map[string]Param{"user_id": userParam},
				Required:    []string{"user_id"},
			},
			run: func(ctx context.Context, input string) (interface{}, error) {
				var args struct {
					UserID string `json:"user_id"`
				}
				if err := decode(input, &args); err != nil {
					return nil, err
				}
				return s.Monitor.UsageRecommendations(args.UserID)
			},
		},
		{
			schema: Schema{
				Name:        "generate_daily_report",
				Description: "Produce the plain-text freshness report for a user.",
				Parameters:  map[string]Param{"user_id": userParam},
				Required:    []string{"user_id"},
			},
			run: func(ctx context.Context, input string) (interface{}, error) {
				var args struct {
					UserID string `json:"user_id"`
				}
				if err := decode(input, &args); err != nil {
					return nil, err
				}
				report, err := s.Monitor.DailyReport(args.UserID)
				if err != nil {
					return nil, err
				}
				return map[string]string{"report": report}, nil
			},
		},
		{
			schema: Schema{
				Name:        "log_consumption",
				Description: "Record that a quantity of an item was consumed and decrement the inventory.",
				Parameters: map[string]Param{
					"item_id":  itemParam,
					"user_id":  userParam,
					"quantity": {Type: "number", Description: "amount consumed"},
					"unit":     {Type: "string", Description: "unit of the amount"},
				},
				Required: []string{"item_id", "user_id", "quantity", "unit"},
			},
			run: func(ctx context.Context, input string) (interface{}, error) {
				var args struct {
					ItemID   string  `json:"item_id"`
					UserID   string  `json:"user_id"`
					Quantity float64 `json:"quantity"`
					Unit     string  `json:"unit"`
				}
				if err := decode(input, &args); err != nil {
					return nil, err
				}
				if err := s.Tracker.Log(args.ItemID, args.UserID, args.Quantity, args.Unit); err != nil {
					return nil, err
				}
				return map[string]string{"status": "logged", "item_id": args.ItemID}, nil
			},
		},
		{
			schema: Schema{
				Name:        "predict_depletion",
				Description: "Forecast when an item will run out based on consumption history.",
				Parameters: map[string]Param{
					"item_id": itemParam,
					"user_id": {Type: "string", Description: "restrict to one user's history, optional"},
				},
				Required: []string{"item_id"},
			},
			run: func(ctx context.Context, input string) (interface{}, error) {
				var args struct {
					ItemID string `json:"item_id"`
					UserID string `json:"user_id"`
				}
				if err := decode(input, &args); err != nil {
					return nil, err
				}
				return s.Tracker.PredictDepletion(args.ItemID, args.UserID)
			},
		},
		{
			schema: Schema{
				Name:        "get_shopping_recommendations",
				Description: "List items forecast to deplete soon, most urgent first.",
				Parameters: map[string]Param{
					"user_id":        userParam,
					"days_threshold": {Type: "integer", Description: "horizon in days, default 7"},
				},
				Required: []string{"user_id"},
			},
			run: func(ctx context.Context, input string) (interface{}, error) {
				var args struct {
					UserID        string `json:"user_id"`
					DaysThreshold *int   `json:"days_threshold"`
				}
				if err := decode(input, &args); err != nil {
					return nil, err
				}
				threshold := 7
				if args.DaysThreshold != nil {
					threshold = *args.DaysThreshold
				}
				return s.Tracker.ShoppingRecommendations(args.UserID, threshold)
			},
		},
		{
			schema: Schema{
				Name:        "create_shopping_list",
				Description: "Build a shopping list from depletion forecasts and planned meals.",
				Parameters: map[string]Param{
					"user_id":          userParam,
					"budget":           {Type: "number", Description: "spending cap, defaults to the user's stored budget"},
					"store_preference": {Type: "string", Description: "preferred store, optional"},
				},
				Required: []string{"user_id"},
			},
			run: func(ctx context.Context, input string) (interface{}, error) {
				var args struct {
					UserID          string   `json:"user_id"`
					Budget          *float64 `json:"budget"`
					StorePreference string   `json:"store_preference"`
				}
				if err := decode(input, &args); err != nil {
					return nil, err
				}
				return s.Generator.CreateShoppingList(args.UserID, args.Budget, args.StorePreference)
			},
		},
		{
			schema: Schema{
				Name:        "optimize_shopping_list",
				Description: "Reorder an existing shopping list by cost, waste reduction, or nutrition.",
				Parameters: map[string]Param{
					"list_id":  {Type: "string", Description: "shopping list id"},
					"criteria": {Type: "string", Description: "one of cost, waste, nutrition"},
				},
				Required: []string{"list_id", "criteria"},
			},
			run: func(ctx context.Context, input string) (interface{}, error) {
				var args struct {
					ListID   string `json:"list_id"`
					Criteria string `json:"criteria"`
				}
				if err := decode(input, &args); err != nil {
					return nil, err
				}
				return s.Generator.OptimizeShoppingList(args.ListID, models.OptimizeCriteria(args.Criteria))
			},
		},
		{
			schema: Schema{
				Name:        "suggest_recipes",
				Description: "Rank recipes by ingredient availability and expiring stock for a user.",
				Parameters: map[string]Param{
					"user_id":         userParam,
					"specified_items": {Type: "array", Description: "items the recipes must use, each with item_id and name"},
					"preferences":     {Type: "object", Description: "preference override, optional"},
				},
				Required: []string{"user_id"},
			},
			run: func(ctx context.Context, input string) (interface{}, error) {
				var args struct {
					UserID         string                  `json:"user_id"`
					SpecifiedItems []planner.ItemFilter    `json:"specified_items"`
					Preferences    *models.UserPreferences `json:"preferences"`
				}
				if err := decode(input, &args); err != nil {
					return nil, err
				}
				return s.Planner.SuggestRecipes(args.UserID, args.SpecifiedItems, args.Preferences)
			},
		},
		{
			schema: Schema{
				Name:        "create_meal_plan",
				Description: "Plan dinners for consecutive days from the ranked recipe suggestions.",
				Parameters: map[string]Param{
					"user_id":    userParam,
					"start_date": {Type: "string", Description: "YYYY-MM-DD first day of the plan"},
					"days":       {Type: "integer", Description: "plan length in days, default 7"},
				},
				Required: []string{"user_id", "start_date"},
			},
			run: func(ctx context.Context, input string) (interface{}, error) {
				var args struct {
					UserID    string `json:"user_id"`
					StartDate string `json:"start_date"`
					Days      *int   `json:"days"`
				}
				if err := decode(input, &args); err != nil {
					return nil, err
				}
				days := 7
				if args.Days != nil {
					days = *args.Days
				}
				return s.Planner.CreateMealPlan(args.UserID, args.StartDate, days)
			},
		},
		{
			schema: Schema{
				Name:        "get_available_ingredients",
				Description: "List stocked, unexpired inventory items.",
				Parameters:  map[string]Param{},
			},
			run: func(ctx context.Context, input string) (interface{}, error) {
				return s.Planner.AvailableIngredients()
			},
		},
		{
			schema: Schema{
				Name:        "find_recipes_by_ingredients",
				Description: "Find recipes covered by a set of item ids above a match threshold.",
				Parameters: map[string]Param{
					"item_ids":  {Type: "array", Description: "item ids on hand"},
					"threshold": {Type: "number", Description: "minimum coverage fraction, default 0.5"},
				},
				Required: []string{"item_ids"},
			},
			run: func(ctx context.Context, input string) (interface{}, error) {
				var args struct {
					ItemIDs   []string `json:"item_ids"`
					Threshold *float64 `json:"threshold"`
				}
				if err := decode(input, &args); err != nil {
					return nil, err
				}
				threshold := 0.5
				if args.Threshold != nil {
					threshold = *args.Threshold
				}
				return s.Planner.FindRecipesByIngredients(args.ItemIDs, threshold)
			},
		},
		{
			schema: Schema{
				Name:        "get_recipe_by_id",
				Description: "Fetch one stored recipe.",
				Parameters:  map[string]Param{"recipe_id": {Type: "string", Description: "recipe id"}},
				Required:    []string{"recipe_id"},
			},
			run: func(ctx context.Context, input string) (interface{}, error) {
				var args struct {
					RecipeID string `json:"recipe_id"`
				}
				if err := decode(input, &args); err != nil {
					return nil, err
				}
				return s.Planner.RecipeByID(args.RecipeID)
			},
		},
		{
			schema: Schema{
				Name:        "add_recipe",
				Description: "Store a new recipe in the planning collection.",
				Parameters: map[string]Param{
					"recipe": {Type: "object", Description: "recipe with recipe_id, name, ingredients, and steps"},
				},
				Required: []string{"recipe"},
			},
			run: func(ctx context.Context, input string) (interface{}, error) {
				var args struct {
					Recipe models.Recipe `json:"recipe"`
				}
				if err := decode(input, &args); err != nil {
					return nil, err
				}
				if err := s.Planner.AddRecipe(args.Recipe); err != nil {
					return nil, err
				}
				return map[string]string{"status": "added", "recipe_id": args.Recipe.ID}, nil
			},
		},
		{
			schema: Schema{
				Name:        "update_preferences",
				Description: "Replace a user's stored dietary preferences.",
				Parameters: map[string]Param{
					"user_id":     userParam,
					"preferences": {Type: "object", Description: "diet, allergies, budget, and nutritional goals"},
				},
				Required: []string{"user_id", "preferences"},
			},
			run: func(ctx context.Context, input string) (interface{}, error) {
				var args struct {
					UserID      string                 `json:"user_id"`
					Preferences models.UserPreferences `json:"preferences"`
				}
				if err := decode(input, &args); err != nil {
					return nil, err
				}
				if err := s.Dietary.UpdatePreferences(args.UserID, args.Preferences); err != nil {
					return nil, err
				}
				return map[string]string{"status": "updated", "user_id": args.UserID}, nil
			},
		},
		{
			schema: Schema{
				Name:        "check_item_compatibility",
				Description: "Check one inventory item against a user's diet and allergies.",
				Parameters:  map[string]Param{"user_id": userParam, "item_id": itemParam},
				Required:    []string{"user_id", "item_id"},
			},
			run: func(ctx context.Context, input string) (interface{}, error) {
				var args struct {
					UserID string `json:"user_id"`
					ItemID string `json:"item_id"`
				}
				if err := decode(input, &args); err != nil {
					return nil, err
				}
				return s.Dietary.CheckItemCompatibility(args.UserID, args.ItemID)
			},
		},
		{
			schema: Schema{
				Name:        "suggest_substitutions",
				Description: "Suggest diet-compatible replacements for an incompatible item.",
				Parameters:  map[string]Param{"user_id": userParam, "item_id": itemParam},
				Required:    []string{"user_id", "item_id"},
			},
			run: func(ctx context.Context, input string) (interface{}, error) {
				var args struct {
					UserID string `json:"user_id"`
					ItemID string `json:"item_id"`
				}
				if err := decode(input, &args); err != nil {
					return nil, err
				}
				return s.Dietary.SuggestSubstitutions(args.UserID, args.ItemID)
			},
		},
		{
			schema: Schema{
				Name:        "analyze_nutritional_alignment",
				Description: "Score planned meals against a user's nutritional goals.",
				Parameters: map[string]Param{
					"user_id": userParam,
					"days":    {Type: "integer", Description: "analysis window in days, default 7"},
				},
				Required: []string{"user_id"},
			},
			run: func(ctx context.Context, input string) (interface{}, error) {
				var args struct {
					UserID string `json:"user_id"`
					Days   *int   `json:"days"`
				}
				if err := decode(input, &args); err != nil {
					return nil, err
				}
				days := 7
				if args.Days != nil {
					days = *args.Days
				}
				return s.Dietary.AnalyzeNutritionalAlignment(args.UserID, days)
			},
		},
	}
}
