package recipe

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/internal/utils/storage"
	"Foodgram-Backend/pkg/composition"
	"Foodgram-Backend/pkg/log"
	"Foodgram-Backend/pkg/metrics"
	"Foodgram-Backend/pkg/shopping"
	"Foodgram-Backend/pkg/shortlink"
	"context"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"strings"
	"time"
)

const imageFolder = "recipes"

type (
	// SubscriptionChecker reports whether a viewer follows recipe authors.
	SubscriptionChecker interface {
		IsSubscribed(ctx context.Context, subscriberID, authorID uint) (bool, error)
		SubscribedAuthorIDs(ctx context.Context, subscriberID uint, authorIDs []uint) (map[uint]bool, error)
	}

	RecipeService interface {
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID uint) ([]domain.Recipe, int64, error)
		GetRecipe(ctx context.Context, recipeID, viewerID uint) (domain.Recipe, error)
		CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, authorID uint) (domain.Recipe, error)
		UpdateRecipe(ctx context.Context, recipeID uint, req domain.UpdateRecipeRequest, userID uint) (domain.Recipe, error)
		DeleteRecipe(ctx context.Context, recipeID, userID uint) error

		AddFavorite(ctx context.Context, recipeID, userID uint) (domain.RecipeShort, error)
		RemoveFavorite(ctx context.Context, recipeID, userID uint) error
		AddToShoppingCart(ctx context.Context, recipeID, userID uint) (domain.RecipeShort, error)
		RemoveFromShoppingCart(ctx context.Context, recipeID, userID uint) error
		DownloadShoppingCart(ctx context.Context, userID uint) (domain.ShoppingList, error)

		GetShortLink(ctx context.Context, recipeID uint) (domain.ShortLinkResponse, error)
		ResolveShortLink(ctx context.Context, token string) (uint, error)
	}

	recipeService struct {
		recipeRepository RecipeRepository
		validator        composition.Validator
		links            shortlink.Resolver
		s3               storage.AwsS3
		subscriptions    SubscriptionChecker
		appURL           string
		now              func() time.Time
	}
)

func NewRecipeService(
	recipeRepository RecipeRepository,
	validator composition.Validator,
	links shortlink.Resolver,
	s3 storage.AwsS3,
	subscriptions SubscriptionChecker,
	appURL string,
) RecipeService {
	return &recipeService{
		recipeRepository: recipeRepository,
		validator:        validator,
		links:            links,
		s3:               s3,
		subscriptions:    subscriptions,
		appURL:           strings.TrimRight(appURL, "/"),
		now:              time.Now,
	}
}

func ToShort(r *entities.Recipe) domain.RecipeShort {
	return domain.RecipeShort{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.ImageURL,
		CookingTime: r.CookingTime,
	}
}

func toAuthor(u *entities.User, subscribed bool) domain.User {
	if u == nil {
		return domain.User{}
	}
	return domain.User{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
		Avatar:       u.AvatarURL,
	}
}

func toRecipe(r *entities.Recipe, favorited, inCart, subscribed bool) domain.Recipe {
	tags := make([]domain.Tag, 0, len(r.Tags))
	for _, t := range r.Tags {
		tags = append(tags, domain.Tag{ID: t.ID, Name: t.Name, Slug: t.Slug})
	}

	ingredients := make([]domain.RecipeIngredient, 0, len(r.Ingredients))
	for _, row := range r.Ingredients {
		item := domain.RecipeIngredient{ID: row.IngredientID, Amount: row.Amount}
		if row.Ingredient != nil {
			item.Name = row.Ingredient.Name
			item.MeasurementUnit = row.Ingredient.MeasurementUnit
		}
		ingredients = append(ingredients, item)
	}

	return domain.Recipe{
		ID:               r.ID,
		Tags:             tags,
		Author:           toAuthor(r.Author, subscribed),
		Ingredients:      ingredients,
		IsFavorited:      favorited,
		IsInShoppingCart: inCart,
		Name:             r.Name,
		Image:            r.ImageURL,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
}

func (s *recipeService) GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID uint) ([]domain.Recipe, int64, error) {
	recipes, count, err := s.recipeRepository.GetRecipes(ctx, filter, viewerID)
	if err != nil {
		return nil, 0, fmt.Errorf("get recipes: %w", err)
	}

	favorited := map[uint]bool{}
	inCart := map[uint]bool{}
	subscribed := map[uint]bool{}
	if viewerID != 0 && len(recipes) > 0 {
		recipeIDs := make([]uint, 0, len(recipes))
		authorIDs := make([]uint, 0, len(recipes))
		for _, r := range recipes {
			recipeIDs = append(recipeIDs, r.ID)
			authorIDs = append(authorIDs, r.AuthorID)
		}
		if favorited, err = s.recipeRepository.FavoritedRecipeIDs(ctx, viewerID, recipeIDs); err != nil {
			return nil, 0, fmt.Errorf("get favorites: %w", err)
		}
		if inCart, err = s.recipeRepository.InShoppingCartRecipeIDs(ctx, viewerID, recipeIDs); err != nil {
			return nil, 0, fmt.Errorf("get shopping cart: %w", err)
		}
		if subscribed, err = s.subscriptions.SubscribedAuthorIDs(ctx, viewerID, authorIDs); err != nil {
			return nil, 0, fmt.Errorf("get subscriptions: %w", err)
		}
	}

	res := make([]domain.Recipe, 0, len(recipes))
	for _, r := range recipes {
		res = append(res, toRecipe(r, favorited[r.ID], inCart[r.ID], subscribed[r.AuthorID]))
	}
	return res, count, nil
}

func (s *recipeService) GetRecipe(ctx context.Context, recipeID, viewerID uint) (domain.Recipe, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Recipe{}, domain.ErrRecipeNotFound
		}
		return domain.Recipe{}, fmt.Errorf("get recipe %d: %w", recipeID, err)
	}
	if viewerID == 0 {
		return toRecipe(recipe, false, false, false), nil
	}

	ids := []uint{recipe.ID}
	favorited, err := s.recipeRepository.FavoritedRecipeIDs(ctx, viewerID, ids)
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("get favorites: %w", err)
	}
	inCart, err := s.recipeRepository.InShoppingCartRecipeIDs(ctx, viewerID, ids)
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("get shopping cart: %w", err)
	}
	subscribed := false
	if viewerID != recipe.AuthorID {
		if subscribed, err = s.subscriptions.IsSubscribed(ctx, viewerID, recipe.AuthorID); err != nil {
			return domain.Recipe{}, fmt.Errorf("get subscription: %w", err)
		}
	}
	return toRecipe(recipe, favorited[recipe.ID], inCart[recipe.ID], subscribed), nil
}

func compositionRows(comp *composition.Composition) ([]entities.IngredientRecipe, []uint) {
	rows := make([]entities.IngredientRecipe, 0, len(comp.IngredientOrder))
	for _, id := range comp.IngredientOrder {
		rows = append(rows, entities.IngredientRecipe{
			IngredientID: id,
			Amount:       comp.Ingredients[id].Amount,
		})
	}
	return rows, comp.TagOrder
}

func decodeImage(uri string) (*storage.File, error) {
	file, err := storage.DecodeDataURI(uri)
	if err != nil {
		return nil, domain.ErrInvalidImage
	}
	return file, nil
}

// uploadImage always writes a fresh object so the stored image stays valid
// until the row pointing at the new one is committed.
func (s *recipeService) uploadImage(authorID uint, file *storage.File) (string, error) {
	objectKey, err := s.s3.UploadFile(fmt.Sprintf("recipe-%d", authorID), file, imageFolder, storage.AllowImage...)
	if err != nil {
		if errors.Is(err, storage.ErrFileTypeNotAllow) || errors.Is(err, storage.ErrEmptyFile) {
			return "", domain.ErrInvalidImage
		}
		return "", fmt.Errorf("upload recipe image: %w", err)
	}
	return s.s3.GetPublicLinkKey(objectKey), nil
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, authorID uint) (domain.Recipe, error) {
	file, err := decodeImage(req.Image)
	if err != nil {
		return domain.Recipe{}, err
	}

	comp, err := s.validator.Validate(ctx, composition.Submission{
		Ingredients: req.Ingredients,
		Tags:        req.Tags,
		CookingTime: req.CookingTime,
	})
	if err != nil {
		return domain.Recipe{}, err
	}

	imageURL, err := s.uploadImage(authorID, file)
	if err != nil {
		return domain.Recipe{}, err
	}

	recipe := &entities.Recipe{
		AuthorID:    authorID,
		Name:        strings.TrimSpace(req.Name),
		Text:        req.Text,
		ImageURL:    imageURL,
		CookingTime: comp.CookingTime,
	}
	rows, tagIDs := compositionRows(comp)
	if err := s.recipeRepository.CreateRecipe(ctx, recipe, rows, tagIDs); err != nil {
		s.discardImage(imageURL)
		return domain.Recipe{}, fmt.Errorf("create recipe: %w", err)
	}
	metrics.RecipesWritten.WithLabelValues("create").Inc()

	return s.GetRecipe(ctx, recipe.ID, authorID)
}

func (s *recipeService) authoredRecipe(ctx context.Context, recipeID, userID uint) (*entities.Recipe, error) {
	recipe, err := s.recipeRepository.FindRecipe(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, fmt.Errorf("get recipe %d: %w", recipeID, err)
	}
	if recipe.AuthorID != userID {
		return nil, domain.ErrUnauthorizedRecipeAccess
	}
	return recipe, nil
}

// UpdateRecipe requires the full ingredient and tag lists. Name, text, image
// and cooking time keep their stored values when omitted.
func (s *recipeService) UpdateRecipe(ctx context.Context, recipeID uint, req domain.UpdateRecipeRequest, userID uint) (domain.Recipe, error) {
	recipe, err := s.authoredRecipe(ctx, recipeID, userID)
	if err != nil {
		return domain.Recipe{}, err
	}

	var file *storage.File
	if req.Image != "" {
		if file, err = decodeImage(req.Image); err != nil {
			return domain.Recipe{}, err
		}
	}

	cookingTime := recipe.CookingTime
	if req.CookingTime != nil {
		cookingTime = *req.CookingTime
	}
	comp, err := s.validator.Validate(ctx, composition.Submission{
		Ingredients: req.Ingredients,
		Tags:        req.Tags,
		CookingTime: cookingTime,
	})
	if err != nil {
		return domain.Recipe{}, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		recipe.Name = name
	}
	if req.Text != "" {
		recipe.Text = req.Text
	}
	recipe.CookingTime = comp.CookingTime
	previousImage := recipe.ImageURL
	if file != nil {
		if recipe.ImageURL, err = s.uploadImage(userID, file); err != nil {
			return domain.Recipe{}, err
		}
	}

	rows, tagIDs := compositionRows(comp)
	if err := s.recipeRepository.UpdateRecipe(ctx, recipe, rows, tagIDs); err != nil {
		if recipe.ImageURL != previousImage {
			s.discardImage(recipe.ImageURL)
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Recipe{}, domain.ErrRecipeNotFound
		}
		return domain.Recipe{}, fmt.Errorf("update recipe %d: %w", recipeID, err)
	}
	if recipe.ImageURL != previousImage {
		s.discardImage(previousImage)
	}
	metrics.RecipesWritten.WithLabelValues("update").Inc()

	return s.GetRecipe(ctx, recipe.ID, userID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, recipeID, userID uint) error {
	recipe, err := s.authoredRecipe(ctx, recipeID, userID)
	if err != nil {
		return err
	}
	if err := s.recipeRepository.DeleteRecipe(ctx, recipe.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return fmt.Errorf("delete recipe %d: %w", recipeID, err)
	}
	s.discardImage(recipe.ImageURL)
	return nil
}

func (s *recipeService) discardImage(imageURL string) {
	objectKey := s.s3.GetObjectKeyFromLink(imageURL)
	if imageURL == "" || objectKey == "" {
		return
	}
	if err := s.s3.DeleteFile(objectKey); err != nil {
		log.L.Warn("delete recipe image", zap.String("key", objectKey), zap.Error(err))
	}
}

func (s *recipeService) findShort(ctx context.Context, recipeID uint) (domain.RecipeShort, error) {
	recipe, err := s.recipeRepository.FindRecipe(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeShort{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeShort{}, fmt.Errorf("get recipe %d: %w", recipeID, err)
	}
	return ToShort(recipe), nil
}

func (s *recipeService) AddFavorite(ctx context.Context, recipeID, userID uint) (domain.RecipeShort, error) {
	short, err := s.findShort(ctx, recipeID)
	if err != nil {
		return domain.RecipeShort{}, err
	}
	if err := s.recipeRepository.AddFavorite(ctx, userID, recipeID); err != nil {
		return domain.RecipeShort{}, err
	}
	return short, nil
}

func (s *recipeService) RemoveFavorite(ctx context.Context, recipeID, userID uint) error {
	if _, err := s.findShort(ctx, recipeID); err != nil {
		return err
	}
	return s.recipeRepository.RemoveFavorite(ctx, userID, recipeID)
}

func (s *recipeService) AddToShoppingCart(ctx context.Context, recipeID, userID uint) (domain.RecipeShort, error) {
	short, err := s.findShort(ctx, recipeID)
	if err != nil {
		return domain.RecipeShort{}, err
	}
	if err := s.recipeRepository.AddToShoppingCart(ctx, userID, recipeID); err != nil {
		return domain.RecipeShort{}, err
	}
	return short, nil
}

func (s *recipeService) RemoveFromShoppingCart(ctx context.Context, recipeID, userID uint) error {
	if _, err := s.findShort(ctx, recipeID); err != nil {
		return err
	}
	return s.recipeRepository.RemoveFromShoppingCart(ctx, userID, recipeID)
}

func (s *recipeService) DownloadShoppingCart(ctx context.Context, userID uint) (domain.ShoppingList, error) {
	recipes, err := s.recipeRepository.GetCartRecipes(ctx, userID)
	if err != nil {
		return domain.ShoppingList{}, fmt.Errorf("get shopping cart: %w", err)
	}

	cart := make([]domain.CartRecipe, 0, len(recipes))
	shorts := make([]domain.RecipeShort, 0, len(recipes))
	for _, r := range recipes {
		item := domain.CartRecipe{ID: r.ID, Name: r.Name}
		for _, row := range r.Ingredients {
			if row.Ingredient == nil {
				continue
			}
			item.Ingredients = append(item.Ingredients, domain.CartIngredient{
				Name:            row.Ingredient.Name,
				MeasurementUnit: row.Ingredient.MeasurementUnit,
				Amount:          row.Amount,
			})
		}
		cart = append(cart, item)
		shorts = append(shorts, ToShort(r))
	}
	metrics.ShoppingListExports.Inc()

	return domain.ShoppingList{
		Recipes: shorts,
		Items:   shopping.Aggregate(cart),
		Date:    s.now(),
	}, nil
}

func (s *recipeService) GetShortLink(ctx context.Context, recipeID uint) (domain.ShortLinkResponse, error) {
	token, err := s.links.ShortLink(ctx, recipeID)
	if err != nil {
		return domain.ShortLinkResponse{}, err
	}
	return domain.ShortLinkResponse{ShortLink: s.appURL + "/s/" + token}, nil
}

func (s *recipeService) ResolveShortLink(ctx context.Context, token string) (uint, error) {
	return s.links.Resolve(ctx, token)
}
