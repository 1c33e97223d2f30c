package freshness

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"larder/internal/dates"
	"larder/internal/models"
	"larder/internal/store"
)

// Monitor evaluates expiry status across the inventory collection
type Monitor struct {
	store store.Store
	now   func() time.Time
}

// NewMonitor creates a freshness monitor backed by s
func NewMonitor(s store.Store) *Monitor {
	return &Monitor{store: s, now: time.Now}
}

// ExpiringItem pairs an inventory item with its days until expiry
type ExpiringItem struct {
	models.InventoryItem
	DaysUntilExpiry int `json:"days_until_expiry"`
}

// ExpiredItem pairs an inventory item with its days since expiry
type ExpiredItem struct {
	models.InventoryItem
	DaysSinceExpiry int `json:"days_since_expiry"`
}

// RecipeSuggestion names a recipe that uses a given item
type RecipeSuggestion struct {
	RecipeID string `json:"recipe_id"`
	Name     string `json:"name"`
}

// UsageRecommendation suggests using an expiring item, with recipes
// whose ingredient lists reference it
type UsageRecommendation struct {
	ItemID            string             `json:"item_id"`
	Name              string             `json:"name"`
	DaysUntilExpiry   int                `json:"days_until_expiry"`
	Quantity          float64            `json:"quantity"`
	Unit              string             `json:"unit"`
	RecipeSuggestions []RecipeSuggestion `json:"recipe_suggestions"`
}

// ExpiringWithin returns items whose expiry date falls within
// daysThreshold days from today, soonest first. Items without a
// parseable expiry date are skipped.
func (m *Monitor) ExpiringWithin(daysThreshold int) ([]ExpiringItem, error) {
	var inventory []models.InventoryItem
	if err := m.store.Load(store.CollectionInventory, &inventory); err != nil {
		return nil, err
	}

	today := m.now()
	expiring := []ExpiringItem{}
	for _, item := range inventory {
		if item.ExpiryDate == "" {
			continue
		}
		expiry, err := dates.Parse(item.ExpiryDate)
		if err != nil {
			continue
		}
		days := dates.DaysBetween(today, expiry)
		if days >= 0 && days <= daysThreshold {
			expiring = append(expiring, ExpiringItem{InventoryItem: item, DaysUntilExpiry: days})
		}
	}

	sort.SliceStable(expiring, func(i, j int) bool {
		return expiring[i].DaysUntilExpiry < expiring[j].DaysUntilExpiry
	})
	return expiring, nil
}

// Expired returns items whose expiry date is today or in the past,
// most recently expired first.
func (m *Monitor) Expired() ([]ExpiredItem, error) {
	var inventory []models.InventoryItem
	if err := m.store.Load(store.CollectionInventory, &inventory); err != nil {
		return nil, err
	}

	today := m.now()
	expired := []ExpiredItem{}
	for _, item := range inventory {
		if item.ExpiryDate == "" {
			continue
		}
		expiry, err := dates.Parse(item.ExpiryDate)
		if err != nil {
			continue
		}
		days := dates.DaysBetween(expiry, today)
		if days >= 0 {
			expired = append(expired, ExpiredItem{InventoryItem: item, DaysSinceExpiry: days})
		}
	}

	sort.SliceStable(expired, func(i, j int) bool {
		return expired[i].DaysSinceExpiry < expired[j].DaysSinceExpiry
	})
	return expired, nil
}

// UpdateExpiry overwrites an item's expiry date and persists the
// inventory. The date must be a valid YYYY-MM-DD calendar date.
func (m *Monitor) UpdateExpiry(itemID, newDate string) error {
	if _, err := dates.Parse(newDate); err != nil {
		return fmt.Errorf("%w: expiry date %q is not a valid YYYY-MM-DD date", models.ErrInvalidInput, newDate)
	}

	var inventory []models.InventoryItem
	if err := m.store.Load(store.CollectionInventory, &inventory); err != nil {
		return err
	}
	for i := range inventory {
		if inventory[i].ID == itemID {
			inventory[i].ExpiryDate = newDate
			return m.store.Save(store.CollectionInventory, inventory)
		}
	}
	return fmt.Errorf("%w: item %s", models.ErrNotFound, itemID)
}

// UsageRecommendations lists items expiring within five days together
// with recipes that would use them up.
func (m *Monitor) UsageRecommendations(userID string) ([]UsageRecommendation, error) {
	expiring, err := m.ExpiringWithin(5)
	if err != nil {
		return nil, err
	}

	var recipes []models.Recipe
	if err := m.store.Load(store.CollectionRecipes, &recipes); err != nil {
		return nil, err
	}

	recommendations := []UsageRecommendation{}
	for _, item := range expiring {
		rec := UsageRecommendation{
			ItemID:            item.ID,
			Name:              item.Name,
			DaysUntilExpiry:   item.DaysUntilExpiry,
			Quantity:          item.Quantity,
			Unit:              item.Unit,
			RecipeSuggestions: []RecipeSuggestion{},
		}
		for _, recipe := range recipes {
			for _, ing := range recipe.Ingredients {
				if ing.ItemID == item.ID {
					rec.RecipeSuggestions = append(rec.RecipeSuggestions, RecipeSuggestion{
						RecipeID: recipe.ID,
						Name:     recipe.Name,
					})
					break
				}
			}
		}
		recommendations = append(recommendations, rec)
	}
	return recommendations, nil
}

// DailyReport renders a plain-text freshness report for one user
func (m *Monitor) DailyReport(userID string) (string, error) {
	expiringSoon, err := m.ExpiringWithin(3)
	if err != nil {
		return "", err
	}
	expiringThisWeek, err := m.ExpiringWithin(7)
	if err != nil {
		return "", err
	}
	expired, err := m.Expired()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "FRESHNESS MONITORING DAILY REPORT - %s\n", dates.Format(m.now()))
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	if len(expired) > 0 {
		fmt.Fprintf(&b, "EXPIRED ITEMS (%d)\n", len(expired))
		b.WriteString(strings.Repeat("-", 30) + "\n")
		for _, item := range expired {
			fmt.Fprintf(&b, "- %s - Expired %d days ago\n", item.Name, item.DaysSinceExpiry)
		}
		b.WriteString("\n")
	}

	if len(expiringSoon) > 0 {
		fmt.Fprintf(&b, "URGENT: USE WITHIN 3 DAYS (%d)\n", len(expiringSoon))
		b.WriteString(strings.Repeat("-", 30) + "\n")
		for _, item := range expiringSoon {
			fmt.Fprintf(&b, "- %s - Expires in %d days\n", item.Name, item.DaysUntilExpiry)
		}
		b.WriteString("\n")
	}

	if len(expiringThisWeek) > len(expiringSoon) {
		fmt.Fprintf(&b, "USE THIS WEEK (%d)\n", len(expiringThisWeek)-len(expiringSoon))
		b.WriteString(strings.Repeat("-", 30) + "\n")
		for _, item := range expiringThisWeek {
			if item.DaysUntilExpiry > 3 {
				fmt.Fprintf(&b, "- %s - Expires in %d days\n", item.Name, item.DaysUntilExpiry)
			}
		}
		b.WriteString("\n")
	}

	recommendations, err := m.UsageRecommendations(userID)
	if err != nil {
		return "", err
	}
	hasSuggestions := false
	for _, rec := range recommendations {
		if len(rec.RecipeSuggestions) > 0 {
			if !hasSuggestions {
				b.WriteString("MEAL SUGGESTIONS TO REDUCE WASTE\n")
				b.WriteString(strings.Repeat("-", 30) + "\n")
				hasSuggestions = true
			}
			fmt.Fprintf(&b, "For %s (expires in %d days):\n", rec.Name, rec.DaysUntilExpiry)
			for i, recipe := range rec.RecipeSuggestions {
				if i >= 3 {
					break
				}
				fmt.Fprintf(&b, "  %d. %s\n", i+1, recipe.Name)
			}
			b.WriteString("\n")
		}
	}

	if len(expired) == 0 && len(expiringThisWeek) == 0 {
		b.WriteString("Good news! No items are expiring soon.\n\n")
	}

	b.WriteString(strings.Repeat("=", 50) + "\n")
	b.WriteString("Generated by the freshness monitor")
	return b.String(), nil
}

// shelfLife estimates in days per category, used when stamping expiry
// dates from recent purchases
var shelfLifeByCategory = map[string]int{
	"Dairy":     14,
	"Bakery":    7,
	"Produce":   10,
	"Meat":      5,
	"Seafood":   3,
	"Pantry":    365,
	"Frozen":    180,
	"Beverages": 30,
	"Snacks":    60,
	"Prepared":  4,
}

const defaultShelfLifeDays = 14

// RefreshFromPurchases stamps expiry dates onto inventory items that
// were purchased within the last seven days, using category shelf-life
// estimates. Malformed purchase rows are skipped. Returns the number
// of items updated.
func (m *Monitor) RefreshFromPurchases() (int, error) {
	var inventory []models.InventoryItem
	if err := m.store.Load(store.CollectionInventory, &inventory); err != nil {
		return 0, err
	}
	var history []models.PurchaseHistory
	if err := m.store.Load(store.CollectionPurchases, &history); err != nil {
		return 0, err
	}

	today := m.now()
	updated := 0
	for _, userHistory := range history {
		for _, purchase := range userHistory.Purchases {
			purchaseDate, err := dates.Parse(purchase.Date)
			if err != nil {
				continue
			}
			if dates.DaysBetween(purchaseDate, today) > 7 {
				continue
			}
			if purchase.ItemID == "" {
				continue
			}
			for i := range inventory {
				if inventory[i].ID != purchase.ItemID {
					continue
				}
				category := inventory[i].Category
				if category == "" {
					category = string(models.CategoryPantry)
				}
				shelfLife, ok := shelfLifeByCategory[category]
				if !ok {
					shelfLife = defaultShelfLifeDays
				}
				inventory[i].ExpiryDate = dates.Format(purchaseDate.AddDate(0, 0, shelfLife))
				updated++
			}
		}
	}

	if updated > 0 {
		if err := m.store.Save(store.CollectionInventory, inventory); err != nil {
			return 0, err
		}
	}
	return updated, nil
}
