// Package shopping turns the recipes in a user's cart into one shopping list.
package shopping

import (
	"Foodgram-Backend/domain"
	"sort"
)

type lineKey struct {
	name string
	unit string
}

// Aggregate sums ingredient amounts across recipes by (name, measurement
// unit). Two ingredient records with the same name and unit collapse into one
// line. Lines are ordered by name, then unit.
func Aggregate(recipes []domain.CartRecipe) []domain.ShoppingItem {
	totals := make(map[lineKey]int64)
	for _, recipe := range recipes {
		for _, ing := range recipe.Ingredients {
			totals[lineKey{name: ing.Name, unit: ing.MeasurementUnit}] += int64(ing.Amount)
		}
	}

	items := make([]domain.ShoppingItem, 0, len(totals))
	for key, total := range totals {
		items = append(items, domain.ShoppingItem{
			Name:            key.name,
			MeasurementUnit: key.unit,
			TotalAmount:     total,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].MeasurementUnit < items[j].MeasurementUnit
	})
	return items
}
