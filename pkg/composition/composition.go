// Package composition checks the ingredients, tags and cooking time of a
// recipe submission before it is written.
package composition

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/pkg/metrics"
	"context"
	"fmt"
)

type (
	IngredientLookup interface {
		GetIngredientsByIDs(ctx context.Context, ids []uint) ([]*entities.Ingredient, error)
	}

	TagLookup interface {
		GetTagsByIDs(ctx context.Context, ids []uint) ([]*entities.Tag, error)
	}

	Limits struct {
		MinCookingTime      int
		MinIngredientAmount int
	}

	Submission struct {
		Ingredients []domain.IngredientAmountRequest
		Tags        []uint
		CookingTime int
	}

	Component struct {
		Ingredient *entities.Ingredient
		Amount     int
	}

	// Composition is a validated submission. IngredientOrder and TagOrder keep
	// the submitted order so rows are written deterministically.
	Composition struct {
		Ingredients     map[uint]Component
		IngredientOrder []uint
		TagIDs          map[uint]struct{}
		TagOrder        []uint
		CookingTime     int
	}

	Validator interface {
		Validate(ctx context.Context, sub Submission) (*Composition, error)
	}

	validator struct {
		ingredients IngredientLookup
		tags        TagLookup
		limits      Limits
	}
)

func DefaultLimits() Limits {
	return Limits{MinCookingTime: 1, MinIngredientAmount: 1}
}

func NewValidator(ingredients IngredientLookup, tags TagLookup, limits Limits) Validator {
	if limits.MinCookingTime < 1 {
		limits.MinCookingTime = 1
	}
	if limits.MinIngredientAmount < 1 {
		limits.MinIngredientAmount = 1
	}
	return &validator{
		ingredients: ingredients,
		tags:        tags,
		limits:      limits,
	}
}

// Validate loads the referenced ingredients and tags and runs Check. The
// returned error is domain.ValidationErrors when the submission is rejected.
func (v *validator) Validate(ctx context.Context, sub Submission) (*Composition, error) {
	ingredientIDs := make([]uint, 0, len(sub.Ingredients))
	for _, item := range sub.Ingredients {
		ingredientIDs = append(ingredientIDs, item.ID)
	}

	known := make(map[uint]*entities.Ingredient)
	if len(ingredientIDs) > 0 {
		found, err := v.ingredients.GetIngredientsByIDs(ctx, uniqueIDs(ingredientIDs))
		if err != nil {
			return nil, fmt.Errorf("lookup ingredients: %w", err)
		}
		for _, ing := range found {
			known[ing.ID] = ing
		}
	}

	knownTags := make(map[uint]*entities.Tag)
	if len(sub.Tags) > 0 {
		found, err := v.tags.GetTagsByIDs(ctx, uniqueIDs(sub.Tags))
		if err != nil {
			return nil, fmt.Errorf("lookup tags: %w", err)
		}
		for _, tag := range found {
			knownTags[tag.ID] = tag
		}
	}

	comp, errs := Check(sub, known, knownTags, v.limits)
	if len(errs) > 0 {
		for _, e := range errs {
			metrics.CompositionRejections.WithLabelValues(string(e.Kind)).Inc()
		}
		return nil, errs
	}
	return comp, nil
}

// Check validates a submission against already loaded reference data.
// Every violation is reported: fields in the order ingredients, tags,
// cooking_time, and within a field in submission order, each (kind, id)
// at most once.
func Check(sub Submission, ingredients map[uint]*entities.Ingredient, tags map[uint]*entities.Tag, limits Limits) (*Composition, domain.ValidationErrors) {
	var errs domain.ValidationErrors
	errs = append(errs, checkIngredients(sub.Ingredients, ingredients, limits.MinIngredientAmount)...)
	errs = append(errs, checkTags(sub.Tags, tags)...)

	if sub.CookingTime < limits.MinCookingTime {
		errs = append(errs, domain.NewValidationError(
			domain.FieldCookingTime,
			domain.KindInvalidCookingTime,
			fmt.Sprintf("cooking time must be at least %d minute(s)", limits.MinCookingTime),
		))
	}

	if len(errs) > 0 {
		return nil, errs
	}

	comp := &Composition{
		Ingredients:     make(map[uint]Component, len(sub.Ingredients)),
		IngredientOrder: make([]uint, 0, len(sub.Ingredients)),
		TagIDs:          make(map[uint]struct{}, len(sub.Tags)),
		TagOrder:        make([]uint, 0, len(sub.Tags)),
		CookingTime:     sub.CookingTime,
	}
	for _, item := range sub.Ingredients {
		comp.Ingredients[item.ID] = Component{Ingredient: ingredients[item.ID], Amount: item.Amount}
		comp.IngredientOrder = append(comp.IngredientOrder, item.ID)
	}
	for _, id := range sub.Tags {
		comp.TagIDs[id] = struct{}{}
		comp.TagOrder = append(comp.TagOrder, id)
	}
	return comp, nil
}

type reported struct {
	kind domain.ValidationKind
	id   uint
}

func checkIngredients(items []domain.IngredientAmountRequest, known map[uint]*entities.Ingredient, minAmount int) domain.ValidationErrors {
	if len(items) == 0 {
		return domain.ValidationErrors{domain.NewValidationError(
			domain.FieldIngredients,
			domain.KindEmptyList,
			"at least one ingredient is required",
		)}
	}

	var errs domain.ValidationErrors
	seen := make(map[uint]bool, len(items))
	done := make(map[reported]bool)
	report := func(kind domain.ValidationKind, id uint, msg string) {
		key := reported{kind, id}
		if done[key] {
			return
		}
		done[key] = true
		errs = append(errs, domain.NewElementValidationError(domain.FieldIngredients, kind, id, msg))
	}

	for _, item := range items {
		if _, ok := known[item.ID]; !ok {
			report(domain.KindUnknownIngredient, item.ID, "ingredient with id %d does not exist")
		}
		if seen[item.ID] {
			report(domain.KindDuplicateIngredient, item.ID, "ingredient with id %d is listed more than once")
		}
		seen[item.ID] = true
		if item.Amount < minAmount {
			report(domain.KindInvalidAmount, item.ID, fmt.Sprintf("amount of ingredient %%d must be at least %d", minAmount))
		}
	}
	return errs
}

func checkTags(ids []uint, known map[uint]*entities.Tag) domain.ValidationErrors {
	if len(ids) == 0 {
		return domain.ValidationErrors{domain.NewValidationError(
			domain.FieldTags,
			domain.KindEmptyList,
			"at least one tag is required",
		)}
	}

	var errs domain.ValidationErrors
	seen := make(map[uint]bool, len(ids))
	done := make(map[reported]bool)
	for _, id := range ids {
		if _, ok := known[id]; !ok && !done[reported{domain.KindUnknownTag, id}] {
			done[reported{domain.KindUnknownTag, id}] = true
			errs = append(errs, domain.NewElementValidationError(domain.FieldTags, domain.KindUnknownTag, id, "tag with id %d does not exist"))
		}
		if seen[id] && !done[reported{domain.KindDuplicateTag, id}] {
			done[reported{domain.KindDuplicateTag, id}] = true
			errs = append(errs, domain.NewElementValidationError(domain.FieldTags, domain.KindDuplicateTag, id, "tag with id %d is listed more than once"))
		}
		seen[id] = true
	}
	return errs
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
