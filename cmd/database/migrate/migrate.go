package migration

import (
	"Foodgram-Backend/entities"
	"Foodgram-Backend/pkg/log"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&entities.Recipe{}, "Tags", &entities.RecipeTag{}); err != nil {
		log.L.Error("error setting up recipe tags join table", zap.Error(err))
		return err
	}

	models := []struct {
		name  string
		model any
	}{
		{"user", &entities.User{}},
		{"subscription", &entities.Subscription{}},
		{"tag", &entities.Tag{}},
		{"ingredient", &entities.Ingredient{}},
		{"recipe", &entities.Recipe{}},
		{"ingredient recipe", &entities.IngredientRecipe{}},
		{"recipe tag", &entities.RecipeTag{}},
		{"favorite", &entities.Favorite{}},
		{"shopping cart", &entities.ShoppingCart{}},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m.model); err != nil {
			log.L.Error("error migrating "+m.name+" table", zap.Error(err))
			return err
		}
	}

	log.L.Info("database migration complete")
	return nil
}
