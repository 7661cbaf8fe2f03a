package config

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/internal/api/handlers"
	"Foodgram-Backend/internal/api/presenters"
	"Foodgram-Backend/internal/api/routes"
	"Foodgram-Backend/internal/middleware"
	"Foodgram-Backend/internal/utils"
	"Foodgram-Backend/internal/utils/mailing"
	"Foodgram-Backend/internal/utils/storage"
	"Foodgram-Backend/pkg/composition"
	"Foodgram-Backend/pkg/ingredient"
	"Foodgram-Backend/pkg/jwt"
	"Foodgram-Backend/pkg/log"
	"Foodgram-Backend/pkg/recipe"
	"Foodgram-Backend/pkg/shortlink"
	"Foodgram-Backend/pkg/tag"
	"Foodgram-Backend/pkg/tokenstore"
	"Foodgram-Backend/pkg/user"
	"errors"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"os"
	"time"
)

// errorHandler renders errors that escape handlers, such as unknown routes,
// in the same envelope as handler failures.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code == fiber.StatusNotFound {
			return presenters.ErrorResponse(c, fe.Code, domain.MessageFailedRouteNotFound, nil)
		}
		return presenters.ErrorResponse(c, fe.Code, fe.Message, nil)
	}
	log.L.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
	return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedProcessRequest, nil)
}

func NewApp(db *gorm.DB) (*fiber.App, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
		JSONEncoder:       json.Marshal,
		JSONDecoder:       json.Unmarshal,
		BodyLimit:         16 * 1024 * 1024,
		ErrorHandler:      errorHandler,
	})
	validator := utils.Validate

	// setting up logging and limiter
	if err := os.MkdirAll("./logs", os.ModePerm); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		return nil, err
	}
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "UTC",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        20,
		Expiration: 1 * time.Second,
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// utils
	s3 := storage.NewAwsS3()
	tokenStore := tokenstore.New()
	middlewares := middleware.NewMiddleware(tokenStore)

	codec, err := shortlink.NewCodec(
		utils.GetConfig("SHORT_LINK_SALT"),
		utils.GetConfigInt("SHORT_LINK_MIN_LENGTH", shortlink.DefaultMinLength),
	)
	if err != nil {
		return nil, err
	}

	// Repository
	userRepository := user.NewUserRepository(db)
	recipeRepository := recipe.NewRecipeRepository(db)
	ingredientRepository := ingredient.NewIngredientRepository(db)
	tagRepository := tag.NewTagRepository(db)

	// Service
	jwtService := jwt.NewJWTService(utils.GetConfig("JWT_SECRET"))
	ingredientService := ingredient.NewIngredientService(ingredientRepository)
	tagService := tag.NewTagService(tagRepository)
	compositionValidator := composition.NewValidator(ingredientService, tagService, composition.Limits{
		MinCookingTime:      utils.GetConfigInt("MIN_COOKING_TIME", 1),
		MinIngredientAmount: utils.GetConfigInt("MIN_INGREDIENT_AMOUNT", 1),
	})
	links := shortlink.NewResolver(codec, recipeRepository)
	appURL := utils.GetConfig("APP_URL")
	recipeService := recipe.NewRecipeService(recipeRepository, compositionValidator, links, s3, userRepository, appURL)
	userService := user.NewUserService(userRepository, jwtService, tokenStore, s3, mailing.SendMail, appURL)

	// Handler
	userHandler := handlers.NewUserHandler(userService, validator)
	recipeHandler := handlers.NewRecipeHandler(recipeService, validator)
	ingredientHandler := handlers.NewIngredientHandler(ingredientService)
	tagHandler := handlers.NewTagHandler(tagService)

	// routes
	routesConfig := routes.Config{
		App:               app,
		UserHandler:       userHandler,
		RecipeHandler:     recipeHandler,
		IngredientHandler: ingredientHandler,
		TagHandler:        tagHandler,
		Middleware:        middlewares,
		JWTService:        jwtService,
	}
	routesConfig.Setup()
	return app, nil
}
