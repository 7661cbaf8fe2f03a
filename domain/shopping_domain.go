package domain

import "time"

type (
	CartIngredient struct {
		Name            string
		MeasurementUnit string
		Amount          int
	}

	// CartRecipe is a recipe in a user's cart with its ingredient rows resolved.
	CartRecipe struct {
		ID          uint
		Name        string
		Ingredients []CartIngredient
	}

	ShoppingItem struct {
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		TotalAmount     int64  `json:"total_amount"`
	}

	ShoppingList struct {
		Recipes []RecipeShort
		Items   []ShoppingItem
		Date    time.Time
	}
)
