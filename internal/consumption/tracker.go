package consumption

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"larder/internal/dates"
	"larder/internal/models"
	"larder/internal/store"
)

// Tracker logs consumption events and forecasts depletion from the
// accumulated history.
type Tracker struct {
	store store.Store
	now   func() time.Time
}

// NewTracker creates a consumption tracker backed by s
func NewTracker(s store.Store) *Tracker {
	return &Tracker{store: s, now: time.Now}
}

// Log appends a consumption entry and decrements the item's inventory
// quantity, clamped at zero. The decrement only applies when the
// logged unit matches the inventory unit.
func (t *Tracker) Log(itemID, userID string, quantity float64, unit string) error {
	var history []models.ConsumptionEntry
	if err := t.store.Load(store.CollectionConsumption, &history); err != nil {
		return err
	}

	entry := models.ConsumptionEntry{
		ID:        uuid.NewString(),
		ItemID:    itemID,
		UserID:    userID,
		Quantity:  quantity,
		Unit:      unit,
		Timestamp: t.now().Format(models.TimestampLayout),
	}
	history = append(history, entry)
	if err := t.store.Save(store.CollectionConsumption, history); err != nil {
		return err
	}

	var inventory []models.InventoryItem
	if err := t.store.Load(store.CollectionInventory, &inventory); err != nil {
		return err
	}
	for i := range inventory {
		if inventory[i].ID == itemID {
			if inventory[i].Unit == unit {
				inventory[i].Quantity = math.Max(0, inventory[i].Quantity-quantity)
				return t.store.Save(store.CollectionInventory, inventory)
			}
			break
		}
	}
	return nil
}

// PredictDepletion forecasts when an item will run out based on its
// consumption history. An empty userID considers all users. Entries
// are bucketed by calendar date; the average daily rate divides total
// consumption by the inclusive span between the first and last dates.
func (t *Tracker) PredictDepletion(itemID, userID string) (*models.Forecast, error) {
	var inventory []models.InventoryItem
	if err := t.store.Load(store.CollectionInventory, &inventory); err != nil {
		return nil, err
	}
	var item *models.InventoryItem
	for i := range inventory {
		if inventory[i].ID == itemID {
			item = &inventory[i]
			break
		}
	}
	if item == nil {
		return nil, fmt.Errorf("%w: item %s not in inventory", models.ErrNotFound, itemID)
	}

	var history []models.ConsumptionEntry
	if err := t.store.Load(store.CollectionConsumption, &history); err != nil {
		return nil, err
	}

	// Bucket matching entries by calendar date
	buckets := map[string]float64{}
	for _, entry := range history {
		if entry.ItemID != itemID {
			continue
		}
		if userID != "" && entry.UserID != userID {
			continue
		}
		day := entry.Timestamp
		if len(day) >= len(models.DateLayout) {
			day = day[:len(models.DateLayout)]
		}
		if _, err := dates.Parse(day); err != nil {
			continue
		}
		buckets[day] += entry.Quantity
	}

	forecast := &models.Forecast{
		ItemID:          itemID,
		Name:            item.Name,
		CurrentQuantity: item.Quantity,
		Unit:            item.Unit,
	}

	if len(buckets) == 0 {
		forecast.Prediction = "No consumption history available for prediction"
		forecast.Confidence = models.ConfidenceLow
		return forecast, nil
	}

	days := make([]string, 0, len(buckets))
	total := 0.0
	for day, qty := range buckets {
		days = append(days, day)
		total += qty
	}
	sort.Strings(days)

	var avgDaily float64
	if len(days) < 2 {
		avgDaily = total / float64(max(1, len(days)))
		forecast.Confidence = models.ConfidenceVeryLow
	} else {
		first, _ := dates.Parse(days[0])
		last, _ := dates.Parse(days[len(days)-1])
		span := max(1, dates.DaysBetween(first, last)+1)
		avgDaily = total / float64(span)
		switch {
		case span >= 14:
			forecast.Confidence = models.ConfidenceHigh
		case span >= 7:
			forecast.Confidence = models.ConfidenceMedium
		default:
			forecast.Confidence = models.ConfidenceLow
		}
	}
	forecast.AvgDailyConsumption = math.Round(avgDaily*100) / 100

	if avgDaily <= 0 {
		forecast.Prediction = "Cannot predict depletion with current consumption rate of 0"
		return forecast, nil
	}

	daysUntil := int(item.Quantity / avgDaily)
	forecast.DaysUntilDepletion = &daysUntil
	forecast.DepletionDate = dates.Format(dates.Midnight(t.now()).AddDate(0, 0, daysUntil))

	switch {
	case daysUntil <= 0:
		forecast.Prediction = "Item is depleted or nearly depleted"
	case daysUntil <= 3:
		forecast.Prediction = "Critical: Item will be depleted very soon"
	case daysUntil <= 7:
		forecast.Prediction = "Warning: Item will be depleted within a week"
	default:
		forecast.Prediction = fmt.Sprintf("Item estimated to last for %d more days", daysUntil)
	}
	return forecast, nil
}

// ShoppingRecommendations lists items forecast to deplete within
// daysThreshold days, most urgent first.
func (t *Tracker) ShoppingRecommendations(userID string, daysThreshold int) ([]models.Replenishment, error) {
	var inventory []models.InventoryItem
	if err := t.store.Load(store.CollectionInventory, &inventory); err != nil {
		return nil, err
	}

	recommendations := []models.Replenishment{}
	for _, item := range inventory {
		if item.ID == "" {
			continue
		}
		forecast, err := t.PredictDepletion(item.ID, userID)
		if err != nil {
			continue
		}
		if forecast.DaysUntilDepletion == nil || *forecast.DaysUntilDepletion > daysThreshold {
			continue
		}
		urgency := "medium"
		if *forecast.DaysUntilDepletion <= 3 {
			urgency = "high"
		}
		recommendations = append(recommendations, models.Replenishment{
			ItemID:              item.ID,
			Name:                item.Name,
			CurrentQuantity:     item.Quantity,
			Unit:                item.Unit,
			AvgDailyConsumption: forecast.AvgDailyConsumption,
			DaysUntilDepletion:  *forecast.DaysUntilDepletion,
			DepletionDate:       forecast.DepletionDate,
			PurchaseUrgency:     urgency,
		})
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].DaysUntilDepletion < recommendations[j].DaysUntilDepletion
	})
	return recommendations, nil
}
