package domain

import "fmt"

var (
	MessageSuccessGetIngredients = "success get ingredients"
	MessageSuccessGetTags        = "success get tags"

	MessageFailedGetIngredients = "failed to get ingredients"
	MessageFailedGetTags        = "failed to get tags"

	ErrIngredientNotFound = fmt.Errorf("ingredient %w", ErrNotFound)
	ErrTagNotFound        = fmt.Errorf("tag %w", ErrNotFound)
)

type (
	Ingredient struct {
		ID              uint   `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
	}

	Tag struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
		Slug string `json:"slug"`
	}

	IngredientSeed struct {
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
	}

	TagSeed struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
)
