package store

// Collection names fixed by the storage contract
const (
	CollectionInventory   = "item_inventory"
	CollectionRecipes     = "recipe_planning"
	CollectionUsers       = "users"
	CollectionConsumption = "consumption_history"
	CollectionShopping    = "shopping_list"
	CollectionMealPlans   = "meal_plans"
	CollectionPurchases   = "purchase_history"
)

// Collections lists every collection the pipeline reads or writes
var Collections = []string{
	CollectionInventory,
	CollectionRecipes,
	CollectionUsers,
	CollectionConsumption,
	CollectionShopping,
	CollectionMealPlans,
	CollectionPurchases,
}

// Store is the named-collection get/put interface every component
// consumes. Load on a missing collection creates it empty and fills out
// with an empty sequence; repeat calls are side-effect free. Save
// overwrites the whole collection so that no partial write is visible
// to a subsequent Load. Callers must serialize writes (single-writer
// assumption).
type Store interface {
	// Load unmarshals the collection into out, which must be a pointer
	// to a slice of records.
	Load(collection string, out interface{}) error
	// Save replaces the collection with records, a slice of records.
	Save(collection string, records interface{}) error
}
