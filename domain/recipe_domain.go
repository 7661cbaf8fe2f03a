package domain

import (
	"errors"
	"fmt"
)

var (
	MessageSuccessGetRecipes      = "success get recipes"
	MessageSuccessGetRecipeDetail = "success get recipe detail"
	MessageSuccessCreateRecipe    = "recipe created successfully"
	MessageSuccessUpdateRecipe    = "recipe updated successfully"
	MessageSuccessAddFavorite     = "recipe added to favorites"
	MessageSuccessAddShoppingCart = "recipe added to shopping cart"
	MessageSuccessGetShortLink    = "success get short link"

	MessageFailedGetRecipes           = "failed to get recipes"
	MessageFailedGetRecipeDetail      = "failed to get recipe detail"
	MessageFailedCreateRecipe         = "failed to create recipe"
	MessageFailedUpdateRecipe         = "failed to update recipe"
	MessageFailedDeleteRecipe         = "failed to delete recipe"
	MessageFailedAddFavorite          = "failed to add recipe to favorites"
	MessageFailedRemoveFavorite       = "failed to remove recipe from favorites"
	MessageFailedAddShoppingCart      = "failed to add recipe to shopping cart"
	MessageFailedRemoveShoppingCart   = "failed to remove recipe from shopping cart"
	MessageFailedDownloadShoppingCart = "failed to download shopping cart"
	MessageFailedGetShortLink         = "failed to get short link"
	MessageFailedResolveShortLink     = "failed to resolve short link"
	ShoppingListFileName              = "shopping_list.txt"

	ErrRecipeNotFound           = fmt.Errorf("recipe %w", ErrNotFound)
	ErrShortLinkNotFound        = fmt.Errorf("short link %w", ErrNotFound)
	ErrNotFavorited             = fmt.Errorf("recipe is not in favorites: %w", ErrNotFound)
	ErrNotInShoppingCart        = fmt.Errorf("recipe is not in shopping cart: %w", ErrNotFound)
	ErrAlreadyFavorited         = fmt.Errorf("recipe is already in favorites: %w", ErrConflict)
	ErrAlreadyInShoppingCart    = fmt.Errorf("recipe is already in shopping cart: %w", ErrConflict)
	ErrUnauthorizedRecipeAccess = fmt.Errorf("only the author can change a recipe: %w", ErrForbidden)
	ErrInvalidImage             = errors.New("image must be a base64 encoded data URI")
)

type (
	IngredientAmountRequest struct {
		ID     uint `json:"id"`
		Amount int  `json:"amount"`
	}

	CreateRecipeRequest struct {
		Ingredients []IngredientAmountRequest `json:"ingredients"`
		Tags        []uint                    `json:"tags"`
		Image       string                    `json:"image" validate:"required"`
		Name        string                    `json:"name" validate:"required,max=256"`
		Text        string                    `json:"text" validate:"required"`
		CookingTime int                       `json:"cooking_time"`
	}

	// UpdateRecipeRequest replaces ingredients and tags wholesale; the other
	// fields keep their stored value when omitted.
	UpdateRecipeRequest struct {
		Ingredients []IngredientAmountRequest `json:"ingredients"`
		Tags        []uint                    `json:"tags"`
		Image       string                    `json:"image" validate:"omitempty"`
		Name        string                    `json:"name" validate:"omitempty,max=256"`
		Text        string                    `json:"text" validate:"omitempty"`
		CookingTime *int                      `json:"cooking_time"`
	}

	RecipeFilter struct {
		Tags             []string
		AuthorID         uint
		IsFavorited      bool
		IsInShoppingCart bool
		Pagination
	}

	RecipeIngredient struct {
		ID              uint   `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}

	Recipe struct {
		ID               uint               `json:"id"`
		Tags             []Tag              `json:"tags"`
		Author           User               `json:"author"`
		Ingredients      []RecipeIngredient `json:"ingredients"`
		IsFavorited      bool               `json:"is_favorited"`
		IsInShoppingCart bool               `json:"is_in_shopping_cart"`
		Name             string             `json:"name"`
		Image            string             `json:"image"`
		Text             string             `json:"text"`
		CookingTime      int                `json:"cooking_time"`
	}

	RecipeShort struct {
		ID          uint   `json:"id"`
		Name        string `json:"name"`
		Image       string `json:"image"`
		CookingTime int    `json:"cooking_time"`
	}

	ShortLinkResponse struct {
		ShortLink string `json:"short-link"`
	}
)
