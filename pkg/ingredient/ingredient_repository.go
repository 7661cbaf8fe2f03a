package ingredient

import (
	"Foodgram-Backend/entities"
	"context"
	"gorm.io/gorm"
	"strings"
)

const seedBatchSize = 500

type (
	IngredientRepository interface {
		GetIngredients(ctx context.Context, namePrefix string) ([]*entities.Ingredient, error)
		GetIngredientByID(ctx context.Context, id uint) (*entities.Ingredient, error)
		GetIngredientsByIDs(ctx context.Context, ids []uint) ([]*entities.Ingredient, error)
		CountIngredients(ctx context.Context) (int64, error)
		CreateIngredients(ctx context.Context, ingredients []*entities.Ingredient) (int64, error)
		RemoveDuplicates(ctx context.Context) (int64, error)
		PurgeIngredients(ctx context.Context) (int64, error)
		CountByUnits(ctx context.Context, units []string) (int64, error)
		ReplaceUnit(ctx context.Context, from, to string) (int64, error)
	}

	ingredientRepository struct {
		db *gorm.DB
	}
)

func NewIngredientRepository(db *gorm.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *ingredientRepository) GetIngredients(ctx context.Context, namePrefix string) ([]*entities.Ingredient, error) {
	var ingredients []*entities.Ingredient
	query := r.db.WithContext(ctx)
	if namePrefix != "" {
		query = query.Where("name ILIKE ?", likeEscaper.Replace(namePrefix)+"%")
	}
	if err := query.Order("name asc").Order("id asc").Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (r *ingredientRepository) GetIngredientByID(ctx context.Context, id uint) (*entities.Ingredient, error) {
	var ingredient entities.Ingredient
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ingredient).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

func (r *ingredientRepository) GetIngredientsByIDs(ctx context.Context, ids []uint) ([]*entities.Ingredient, error) {
	var ingredients []*entities.Ingredient
	if len(ids) == 0 {
		return ingredients, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (r *ingredientRepository) CountIngredients(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Ingredient{}).Count(&count).Error
	return count, err
}

func (r *ingredientRepository) CreateIngredients(ctx context.Context, ingredients []*entities.Ingredient) (int64, error) {
	if len(ingredients) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).CreateInBatches(ingredients, seedBatchSize)
	return result.RowsAffected, result.Error
}

// RemoveDuplicates keeps the lowest id of every (name, measurement_unit)
// group. Recipe rows that used a removed id are moved to the kept one.
func (r *ingredientRepository) RemoveDuplicates(ctx context.Context) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`
			WITH keepers AS (
				SELECT id, MIN(id) OVER (PARTITION BY name, measurement_unit) AS keep_id
				FROM ingredients
			)
			UPDATE ingredient_recipes ir
			SET ingredient_id = k.keep_id
			FROM keepers k
			WHERE ir.ingredient_id = k.id
			  AND k.id <> k.keep_id
			  AND NOT EXISTS (
				SELECT 1 FROM ingredient_recipes o
				WHERE o.recipe_id = ir.recipe_id AND o.ingredient_id = k.keep_id
			  )
			  AND ir.ingredient_id = (
				SELECT MIN(o.ingredient_id) FROM ingredient_recipes o
				JOIN keepers ko ON ko.id = o.ingredient_id
				WHERE o.recipe_id = ir.recipe_id AND ko.keep_id = k.keep_id
			  )`).Error; err != nil {
			return err
		}

		result := tx.Exec(`
			DELETE FROM ingredients
			WHERE id NOT IN (
				SELECT MIN(id) FROM ingredients GROUP BY name, measurement_unit
			)`)
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected
		return nil
	})
	return removed, err
}

func (r *ingredientRepository) PurgeIngredients(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&entities.Ingredient{})
	return result.RowsAffected, result.Error
}

func (r *ingredientRepository) CountByUnits(ctx context.Context, units []string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Ingredient{}).
		Where("measurement_unit IN ?", units).
		Count(&count).Error
	return count, err
}

func (r *ingredientRepository) ReplaceUnit(ctx context.Context, from, to string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Ingredient{}).
		Where("measurement_unit = ?", from).
		Update("measurement_unit", to)
	return result.RowsAffected, result.Error
}
