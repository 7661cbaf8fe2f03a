package recipe

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"context"
	"errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	RecipeRepository interface {
		CreateRecipe(ctx context.Context, recipe *entities.Recipe, ingredients []entities.IngredientRecipe, tagIDs []uint) error
		UpdateRecipe(ctx context.Context, recipe *entities.Recipe, ingredients []entities.IngredientRecipe, tagIDs []uint) error
		DeleteRecipe(ctx context.Context, id uint) error
		GetRecipeByID(ctx context.Context, id uint) (*entities.Recipe, error)
		FindRecipe(ctx context.Context, id uint) (*entities.Recipe, error)
		RecipeExists(ctx context.Context, id uint) (bool, error)
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID uint) ([]*entities.Recipe, int64, error)

		AddFavorite(ctx context.Context, userID, recipeID uint) error
		RemoveFavorite(ctx context.Context, userID, recipeID uint) error
		FavoritedRecipeIDs(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error)

		AddToShoppingCart(ctx context.Context, userID, recipeID uint) error
		RemoveFromShoppingCart(ctx context.Context, userID, recipeID uint) error
		InShoppingCartRecipeIDs(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error)
		GetCartRecipes(ctx context.Context, userID uint) ([]*entities.Recipe, error)
	}

	recipeRepository struct {
		db *gorm.DB
	}
)

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) CreateRecipe(ctx context.Context, recipe *entities.Recipe, ingredients []entities.IngredientRecipe, tagIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return err
		}
		return writeComposition(tx, recipe.ID, ingredients, tagIDs)
	})
}

// UpdateRecipe saves the scalar fields and replaces the ingredient rows and
// tag links wholesale.
func (r *recipeRepository) UpdateRecipe(ctx context.Context, recipe *entities.Recipe, ingredients []entities.IngredientRecipe, tagIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(recipe).
			Omit(clause.Associations).
			Select("name", "text", "image_url", "cooking_time", "updated_at").
			Updates(recipe)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&entities.IngredientRecipe{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&entities.RecipeTag{}).Error; err != nil {
			return err
		}
		return writeComposition(tx, recipe.ID, ingredients, tagIDs)
	})
}

func writeComposition(tx *gorm.DB, recipeID uint, ingredients []entities.IngredientRecipe, tagIDs []uint) error {
	if len(ingredients) > 0 {
		rows := make([]entities.IngredientRecipe, len(ingredients))
		for i, row := range ingredients {
			rows[i] = entities.IngredientRecipe{
				RecipeID:     recipeID,
				IngredientID: row.IngredientID,
				Amount:       row.Amount,
			}
		}
		if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
			return err
		}
	}

	if len(tagIDs) > 0 {
		links := make([]entities.RecipeTag, len(tagIDs))
		for i, tagID := range tagIDs {
			links[i] = entities.RecipeTag{RecipeID: recipeID, TagID: tagID}
		}
		if err := tx.Create(&links).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *recipeRepository) DeleteRecipe(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.Recipe{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *recipeRepository) withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.id asc")
		}).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("ingredient_recipes.id asc")
		}).
		Preload("Ingredients.Ingredient")
}

func (r *recipeRepository) GetRecipeByID(ctx context.Context, id uint) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := r.withDetails(r.db.WithContext(ctx)).Where("id = ?", id).First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) FindRecipe(ctx context.Context, id uint) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) RecipeExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.Recipe{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *recipeRepository) filtered(ctx context.Context, filter domain.RecipeFilter, viewerID uint) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&entities.Recipe{})

	if len(filter.Tags) > 0 {
		tagged := r.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.Tags)
		query = query.Where("recipes.id IN (?)", tagged)
	}
	if filter.AuthorID != 0 {
		query = query.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if viewerID != 0 && filter.IsFavorited {
		query = query.Where("EXISTS (SELECT 1 FROM favorites f WHERE f.recipe_id = recipes.id AND f.user_id = ?)", viewerID)
	}
	if viewerID != 0 && filter.IsInShoppingCart {
		query = query.Where("EXISTS (SELECT 1 FROM shopping_carts c WHERE c.recipe_id = recipes.id AND c.user_id = ?)", viewerID)
	}
	return query
}

func (r *recipeRepository) GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID uint) ([]*entities.Recipe, int64, error) {
	var recipes []*entities.Recipe
	var count int64

	if err := r.filtered(ctx, filter, viewerID).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := r.withDetails(r.filtered(ctx, filter, viewerID)).
		Order("recipes.created_at desc").
		Order("recipes.id desc").
		Offset(filter.Offset()).
		Limit(filter.Limit).
		Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	return recipes, count, nil
}

func translateWriteError(err error, conflict, notFound error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return conflict
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return notFound
	default:
		return err
	}
}

func (r *recipeRepository) AddFavorite(ctx context.Context, userID, recipeID uint) error {
	favorite := entities.Favorite{UserID: userID, RecipeID: recipeID}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&favorite).Error; err != nil {
		return translateWriteError(err, domain.ErrAlreadyFavorited, domain.ErrRecipeNotFound)
	}
	return nil
}

func (r *recipeRepository) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&entities.Favorite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFavorited
	}
	return nil
}

func (r *recipeRepository) FavoritedRecipeIDs(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	return r.markedRecipeIDs(ctx, &entities.Favorite{}, userID, recipeIDs)
}

func (r *recipeRepository) AddToShoppingCart(ctx context.Context, userID, recipeID uint) error {
	item := entities.ShoppingCart{UserID: userID, RecipeID: recipeID}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&item).Error; err != nil {
		return translateWriteError(err, domain.ErrAlreadyInShoppingCart, domain.ErrRecipeNotFound)
	}
	return nil
}

func (r *recipeRepository) RemoveFromShoppingCart(ctx context.Context, userID, recipeID uint) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&entities.ShoppingCart{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotInShoppingCart
	}
	return nil
}

func (r *recipeRepository) InShoppingCartRecipeIDs(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	return r.markedRecipeIDs(ctx, &entities.ShoppingCart{}, userID, recipeIDs)
}

func (r *recipeRepository) markedRecipeIDs(ctx context.Context, model any, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	marked := make(map[uint]bool, len(recipeIDs))
	if userID == 0 || len(recipeIDs) == 0 {
		return marked, nil
	}

	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(model).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		marked[id] = true
	}
	return marked, nil
}

func (r *recipeRepository) GetCartRecipes(ctx context.Context, userID uint) ([]*entities.Recipe, error) {
	var recipes []*entities.Recipe
	if err := r.db.WithContext(ctx).
		Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipes.id").
		Where("shopping_carts.user_id = ?", userID).
		Order("shopping_carts.created_at asc").
		Order("recipes.id asc").
		Preload("Ingredients").
		Preload("Ingredients.Ingredient").
		Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}
