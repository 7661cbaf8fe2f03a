package recipe

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/internal/utils/storage"
	"Foodgram-Backend/pkg/composition"
	"Foodgram-Backend/pkg/shortlink"
	"context"
	"errors"
	"gorm.io/gorm"
	"strings"
	"testing"
	"time"
)

const testImage = "data:image/png;base64,iVBORw0KGgo="

type mockRecipeRepository struct {
	createRecipeFn            func(ctx context.Context, recipe *entities.Recipe, ingredients []entities.IngredientRecipe, tagIDs []uint) error
	updateRecipeFn            func(ctx context.Context, recipe *entities.Recipe, ingredients []entities.IngredientRecipe, tagIDs []uint) error
	deleteRecipeFn            func(ctx context.Context, id uint) error
	getRecipeByIDFn           func(ctx context.Context, id uint) (*entities.Recipe, error)
	findRecipeFn              func(ctx context.Context, id uint) (*entities.Recipe, error)
	recipeExistsFn            func(ctx context.Context, id uint) (bool, error)
	getRecipesFn              func(ctx context.Context, filter domain.RecipeFilter, viewerID uint) ([]*entities.Recipe, int64, error)
	addFavoriteFn             func(ctx context.Context, userID, recipeID uint) error
	removeFavoriteFn          func(ctx context.Context, userID, recipeID uint) error
	favoritedRecipeIDsFn      func(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error)
	addToShoppingCartFn       func(ctx context.Context, userID, recipeID uint) error
	removeFromShoppingCartFn  func(ctx context.Context, userID, recipeID uint) error
	inShoppingCartRecipeIDsFn func(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error)
	getCartRecipesFn          func(ctx context.Context, userID uint) ([]*entities.Recipe, error)
}

func (m *mockRecipeRepository) CreateRecipe(ctx context.Context, recipe *entities.Recipe, ingredients []entities.IngredientRecipe, tagIDs []uint) error {
	return m.createRecipeFn(ctx, recipe, ingredients, tagIDs)
}

func (m *mockRecipeRepository) UpdateRecipe(ctx context.Context, recipe *entities.Recipe, ingredients []entities.IngredientRecipe, tagIDs []uint) error {
	return m.updateRecipeFn(ctx, recipe, ingredients, tagIDs)
}

func (m *mockRecipeRepository) DeleteRecipe(ctx context.Context, id uint) error {
	return m.deleteRecipeFn(ctx, id)
}

func (m *mockRecipeRepository) GetRecipeByID(ctx context.Context, id uint) (*entities.Recipe, error) {
	return m.getRecipeByIDFn(ctx, id)
}

func (m *mockRecipeRepository) FindRecipe(ctx context.Context, id uint) (*entities.Recipe, error) {
	return m.findRecipeFn(ctx, id)
}

func (m *mockRecipeRepository) RecipeExists(ctx context.Context, id uint) (bool, error) {
	return m.recipeExistsFn(ctx, id)
}

func (m *mockRecipeRepository) GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID uint) ([]*entities.Recipe, int64, error) {
	return m.getRecipesFn(ctx, filter, viewerID)
}

func (m *mockRecipeRepository) AddFavorite(ctx context.Context, userID, recipeID uint) error {
	return m.addFavoriteFn(ctx, userID, recipeID)
}

func (m *mockRecipeRepository) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	return m.removeFavoriteFn(ctx, userID, recipeID)
}

func (m *mockRecipeRepository) FavoritedRecipeIDs(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	if m.favoritedRecipeIDsFn == nil {
		return map[uint]bool{}, nil
	}
	return m.favoritedRecipeIDsFn(ctx, userID, recipeIDs)
}

func (m *mockRecipeRepository) AddToShoppingCart(ctx context.Context, userID, recipeID uint) error {
	return m.addToShoppingCartFn(ctx, userID, recipeID)
}

func (m *mockRecipeRepository) RemoveFromShoppingCart(ctx context.Context, userID, recipeID uint) error {
	return m.removeFromShoppingCartFn(ctx, userID, recipeID)
}

func (m *mockRecipeRepository) InShoppingCartRecipeIDs(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	if m.inShoppingCartRecipeIDsFn == nil {
		return map[uint]bool{}, nil
	}
	return m.inShoppingCartRecipeIDsFn(ctx, userID, recipeIDs)
}

func (m *mockRecipeRepository) GetCartRecipes(ctx context.Context, userID uint) ([]*entities.Recipe, error) {
	return m.getCartRecipesFn(ctx, userID)
}

type mockValidator struct {
	validateFn func(ctx context.Context, sub composition.Submission) (*composition.Composition, error)
}

func (m *mockValidator) Validate(ctx context.Context, sub composition.Submission) (*composition.Composition, error) {
	return m.validateFn(ctx, sub)
}

type mockS3 struct {
	uploaded []string
	deleted  []string
}

func (m *mockS3) UploadFile(fileName string, file *storage.File, folder string, allowTypes ...string) (string, error) {
	key := folder + "/" + fileName + ".png"
	m.uploaded = append(m.uploaded, key)
	return key, nil
}

func (m *mockS3) DeleteFile(objectKey string) error {
	m.deleted = append(m.deleted, objectKey)
	return nil
}

func (m *mockS3) GetObjectKeyFromLink(link string) string {
	return strings.TrimPrefix(link, "https://cdn.test/")
}

func (m *mockS3) GetPublicLinkKey(objectKey string) string {
	return "https://cdn.test/" + objectKey
}

type mockSubscriptions struct {
	isSubscribedFn func(ctx context.Context, subscriberID, authorID uint) (bool, error)
}

func (m *mockSubscriptions) IsSubscribed(ctx context.Context, subscriberID, authorID uint) (bool, error) {
	if m.isSubscribedFn == nil {
		return false, nil
	}
	return m.isSubscribedFn(ctx, subscriberID, authorID)
}

func (m *mockSubscriptions) SubscribedAuthorIDs(ctx context.Context, subscriberID uint, authorIDs []uint) (map[uint]bool, error) {
	res := map[uint]bool{}
	for _, id := range authorIDs {
		ok, err := m.IsSubscribed(ctx, subscriberID, id)
		if err != nil {
			return nil, err
		}
		res[id] = ok
	}
	return res, nil
}

func newTestService(t *testing.T, repo *mockRecipeRepository, v composition.Validator, s3 *mockS3, subs *mockSubscriptions) *recipeService {
	t.Helper()
	codec, err := shortlink.NewCodec("test-salt", 6)
	if err != nil {
		t.Fatal(err)
	}
	if subs == nil {
		subs = &mockSubscriptions{}
	}
	svc := NewRecipeService(repo, v, shortlink.NewResolver(codec, repo), s3, subs, "https://foodgram.test/").(*recipeService)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func acceptAll() *mockValidator {
	return &mockValidator{validateFn: func(ctx context.Context, sub composition.Submission) (*composition.Composition, error) {
		comp := &composition.Composition{
			Ingredients: map[uint]composition.Component{},
			TagIDs:      map[uint]struct{}{},
			CookingTime: sub.CookingTime,
		}
		for _, item := range sub.Ingredients {
			comp.Ingredients[item.ID] = composition.Component{
				Ingredient: &entities.Ingredient{ID: item.ID},
				Amount:     item.Amount,
			}
			comp.IngredientOrder = append(comp.IngredientOrder, item.ID)
		}
		for _, id := range sub.Tags {
			comp.TagIDs[id] = struct{}{}
			comp.TagOrder = append(comp.TagOrder, id)
		}
		return comp, nil
	}}
}

func storedRecipe(id, authorID uint) *entities.Recipe {
	return &entities.Recipe{
		ID:          id,
		AuthorID:    authorID,
		Name:        "Soup",
		Text:        "Boil it",
		ImageURL:    "https://cdn.test/recipes/soup.png",
		CookingTime: 30,
		Author:      &entities.User{ID: authorID, Username: "chef"},
	}
}

func TestCreateRecipe(t *testing.T) {
	var gotRows []entities.IngredientRecipe
	var gotTags []uint
	repo := &mockRecipeRepository{
		createRecipeFn: func(ctx context.Context, recipe *entities.Recipe, ingredients []entities.IngredientRecipe, tagIDs []uint) error {
			recipe.ID = 10
			gotRows = ingredients
			gotTags = tagIDs
			return nil
		},
		getRecipeByIDFn: func(ctx context.Context, id uint) (*entities.Recipe, error) {
			r := storedRecipe(id, 1)
			r.Ingredients = []entities.IngredientRecipe{
				{IngredientID: 3, Amount: 5, Ingredient: &entities.Ingredient{ID: 3, Name: "Salt", MeasurementUnit: "g"}},
			}
			r.Tags = []entities.Tag{{ID: 2, Name: "Lunch", Slug: "lunch"}}
			return r, nil
		},
	}
	s3 := &mockS3{}
	svc := newTestService(t, repo, acceptAll(), s3, nil)

	res, err := svc.CreateRecipe(context.Background(), domain.CreateRecipeRequest{
		Ingredients: []domain.IngredientAmountRequest{{ID: 3, Amount: 5}, {ID: 1, Amount: 2}},
		Tags:        []uint{2, 1},
		Image:       testImage,
		Name:        " Soup ",
		Text:        "Boil it",
		CookingTime: 30,
	}, 1)
	if err != nil {
		t.Fatal(err)
	}

	if res.ID != 10 || res.Author.ID != 1 {
		t.Errorf("res = %+v", res)
	}
	if len(res.Ingredients) != 1 || res.Ingredients[0].Name != "Salt" || res.Ingredients[0].Amount != 5 {
		t.Errorf("ingredients = %+v", res.Ingredients)
	}
	if len(gotRows) != 2 || gotRows[0].IngredientID != 3 || gotRows[1].IngredientID != 1 || gotRows[1].Amount != 2 {
		t.Errorf("rows = %+v", gotRows)
	}
	if len(gotTags) != 2 || gotTags[0] != 2 {
		t.Errorf("tags = %v", gotTags)
	}
	if len(s3.uploaded) != 1 {
		t.Errorf("uploads = %v", s3.uploaded)
	}
}

func TestCreateRecipeRejectsBadImage(t *testing.T) {
	v := &mockValidator{validateFn: func(ctx context.Context, sub composition.Submission) (*composition.Composition, error) {
		t.Fatal("validator should not run")
		return nil, nil
	}}
	svc := newTestService(t, &mockRecipeRepository{}, v, &mockS3{}, nil)

	_, err := svc.CreateRecipe(context.Background(), domain.CreateRecipeRequest{Image: "not-an-image"}, 1)
	if !errors.Is(err, domain.ErrInvalidImage) {
		t.Errorf("err = %v, want ErrInvalidImage", err)
	}
}

func TestCreateRecipeValidationFailureSkipsUpload(t *testing.T) {
	rejection := domain.ValidationErrors{domain.NewValidationError(domain.FieldIngredients, domain.KindEmptyList, "empty")}
	v := &mockValidator{validateFn: func(ctx context.Context, sub composition.Submission) (*composition.Composition, error) {
		return nil, rejection
	}}
	s3 := &mockS3{}
	svc := newTestService(t, &mockRecipeRepository{}, v, s3, nil)

	_, err := svc.CreateRecipe(context.Background(), domain.CreateRecipeRequest{Image: testImage}, 1)
	var verrs domain.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("err = %v, want ValidationErrors", err)
	}
	if _, ok := verrs.Find(domain.KindEmptyList); !ok {
		t.Errorf("err = %v, want EmptyList", err)
	}
	if len(s3.uploaded) != 0 {
		t.Errorf("image uploaded for rejected recipe: %v", s3.uploaded)
	}
}

func TestCreateRecipeStoreFailureDiscardsImage(t *testing.T) {
	repo := &mockRecipeRepository{
		createRecipeFn: func(ctx context.Context, recipe *entities.Recipe, ingredients []entities.IngredientRecipe, tagIDs []uint) error {
			return errors.New("tx aborted")
		},
	}
	s3 := &mockS3{}
	svc := newTestService(t, repo, acceptAll(), s3, nil)

	_, err := svc.CreateRecipe(context.Background(), domain.CreateRecipeRequest{
		Ingredients: []domain.IngredientAmountRequest{{ID: 1, Amount: 1}},
		Tags:        []uint{1},
		Image:       testImage,
		CookingTime: 5,
	}, 1)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(s3.deleted) != 1 || s3.deleted[0] != s3.uploaded[0] {
		t.Errorf("deleted = %v, uploaded = %v", s3.deleted, s3.uploaded)
	}
}

func TestUpdateRecipeOnlyByAuthor(t *testing.T) {
	repo := &mockRecipeRepository{
		findRecipeFn: func(ctx context.Context, id uint) (*entities.Recipe, error) {
			return storedRecipe(id, 1), nil
		},
	}
	svc := newTestService(t, repo, acceptAll(), &mockS3{}, nil)

	_, err := svc.UpdateRecipe(context.Background(), 5, domain.UpdateRecipeRequest{}, 2)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("err = %v, want Forbidden", err)
	}
	if err := svc.DeleteRecipe(context.Background(), 5, 2); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("delete err = %v, want Forbidden", err)
	}
}

func TestUpdateRecipeMissing(t *testing.T) {
	repo := &mockRecipeRepository{
		findRecipeFn: func(ctx context.Context, id uint) (*entities.Recipe, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := newTestService(t, repo, acceptAll(), &mockS3{}, nil)

	_, err := svc.UpdateRecipe(context.Background(), 5, domain.UpdateRecipeRequest{}, 1)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want NotFound", err)
	}
}

func TestUpdateRecipeKeepsOmittedFields(t *testing.T) {
	var submitted composition.Submission
	var saved *entities.Recipe
	base := acceptAll()
	v := &mockValidator{validateFn: func(ctx context.Context, sub composition.Submission) (*composition.Composition, error) {
		submitted = sub
		return base.Validate(ctx, sub)
	}}
	repo := &mockRecipeRepository{
		findRecipeFn: func(ctx context.Context, id uint) (*entities.Recipe, error) {
			return storedRecipe(id, 1), nil
		},
		updateRecipeFn: func(ctx context.Context, recipe *entities.Recipe, ingredients []entities.IngredientRecipe, tagIDs []uint) error {
			saved = recipe
			return nil
		},
		getRecipeByIDFn: func(ctx context.Context, id uint) (*entities.Recipe, error) {
			return storedRecipe(id, 1), nil
		},
	}
	s3 := &mockS3{}
	svc := newTestService(t, repo, v, s3, nil)

	_, err := svc.UpdateRecipe(context.Background(), 5, domain.UpdateRecipeRequest{
		Ingredients: []domain.IngredientAmountRequest{{ID: 1, Amount: 1}},
		Tags:        []uint{1},
		Name:        "Better soup",
	}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if submitted.CookingTime != 30 {
		t.Errorf("validated cooking time = %d, want stored 30", submitted.CookingTime)
	}
	if saved.Name != "Better soup" || saved.Text != "Boil it" || saved.ImageURL != "https://cdn.test/recipes/soup.png" {
		t.Errorf("saved = %+v", saved)
	}
	if len(s3.uploaded) != 0 {
		t.Errorf("image uploaded without new image: %v", s3.uploaded)
	}
}

func updatedImageRequest() domain.UpdateRecipeRequest {
	return domain.UpdateRecipeRequest{
		Ingredients: []domain.IngredientAmountRequest{{ID: 1, Amount: 1}},
		Tags:        []uint{1},
		Image:       testImage,
	}
}

func TestUpdateRecipeReplacesImageAfterCommit(t *testing.T) {
	var saved *entities.Recipe
	repo := &mockRecipeRepository{
		findRecipeFn: func(ctx context.Context, id uint) (*entities.Recipe, error) {
			return storedRecipe(id, 1), nil
		},
		updateRecipeFn: func(ctx context.Context, recipe *entities.Recipe, ingredients []entities.IngredientRecipe, tagIDs []uint) error {
			saved = recipe
			return nil
		},
		getRecipeByIDFn: func(ctx context.Context, id uint) (*entities.Recipe, error) {
			return storedRecipe(id, 1), nil
		},
	}
	s3 := &mockS3{}
	svc := newTestService(t, repo, acceptAll(), s3, nil)

	if _, err := svc.UpdateRecipe(context.Background(), 5, updatedImageRequest(), 1); err != nil {
		t.Fatal(err)
	}
	if len(s3.uploaded) != 1 || s3.uploaded[0] == "recipes/soup.png" {
		t.Fatalf("uploads = %v, want one fresh key", s3.uploaded)
	}
	if saved.ImageURL != "https://cdn.test/"+s3.uploaded[0] {
		t.Errorf("saved image = %q", saved.ImageURL)
	}
	if len(s3.deleted) != 1 || s3.deleted[0] != "recipes/soup.png" {
		t.Errorf("deleted = %v, want the previous image", s3.deleted)
	}
}

func TestUpdateRecipeStoreFailureKeepsImage(t *testing.T) {
	repo := &mockRecipeRepository{
		findRecipeFn: func(ctx context.Context, id uint) (*entities.Recipe, error) {
			return storedRecipe(id, 1), nil
		},
		updateRecipeFn: func(ctx context.Context, recipe *entities.Recipe, ingredients []entities.IngredientRecipe, tagIDs []uint) error {
			return errors.New("tx aborted")
		},
	}
	s3 := &mockS3{}
	svc := newTestService(t, repo, acceptAll(), s3, nil)

	if _, err := svc.UpdateRecipe(context.Background(), 5, updatedImageRequest(), 1); err == nil {
		t.Fatal("expected error")
	}
	if len(s3.uploaded) != 1 || s3.uploaded[0] == "recipes/soup.png" {
		t.Fatalf("uploads = %v, want one fresh key", s3.uploaded)
	}
	if len(s3.deleted) != 1 || s3.deleted[0] != s3.uploaded[0] {
		t.Errorf("deleted = %v, want only the rejected upload %v", s3.deleted, s3.uploaded)
	}
}

func TestFavoriteLifecycle(t *testing.T) {
	favorites := map[uint]bool{}
	repo := &mockRecipeRepository{
		findRecipeFn: func(ctx context.Context, id uint) (*entities.Recipe, error) {
			if id != 7 {
				return nil, gorm.ErrRecordNotFound
			}
			return storedRecipe(7, 1), nil
		},
		addFavoriteFn: func(ctx context.Context, userID, recipeID uint) error {
			if favorites[recipeID] {
				return domain.ErrAlreadyFavorited
			}
			favorites[recipeID] = true
			return nil
		},
		removeFavoriteFn: func(ctx context.Context, userID, recipeID uint) error {
			if !favorites[recipeID] {
				return domain.ErrNotFavorited
			}
			delete(favorites, recipeID)
			return nil
		},
	}
	svc := newTestService(t, repo, acceptAll(), &mockS3{}, nil)
	ctx := context.Background()

	short, err := svc.AddFavorite(ctx, 7, 2)
	if err != nil {
		t.Fatal(err)
	}
	if short.ID != 7 || short.Name != "Soup" {
		t.Errorf("short = %+v", short)
	}
	if _, err := svc.AddFavorite(ctx, 7, 2); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("second add err = %v, want Conflict", err)
	}
	if err := svc.RemoveFavorite(ctx, 7, 2); err != nil {
		t.Errorf("remove err = %v", err)
	}
	if err := svc.RemoveFavorite(ctx, 7, 2); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second remove err = %v, want NotFound", err)
	}
	if _, err := svc.AddFavorite(ctx, 99, 2); !errors.Is(err, domain.ErrRecipeNotFound) {
		t.Errorf("unknown recipe err = %v, want ErrRecipeNotFound", err)
	}
}

func TestShoppingCartDuplicate(t *testing.T) {
	repo := &mockRecipeRepository{
		findRecipeFn: func(ctx context.Context, id uint) (*entities.Recipe, error) {
			return storedRecipe(id, 1), nil
		},
		addToShoppingCartFn: func(ctx context.Context, userID, recipeID uint) error {
			return domain.ErrAlreadyInShoppingCart
		},
		removeFromShoppingCartFn: func(ctx context.Context, userID, recipeID uint) error {
			return domain.ErrNotInShoppingCart
		},
	}
	svc := newTestService(t, repo, acceptAll(), &mockS3{}, nil)

	if _, err := svc.AddToShoppingCart(context.Background(), 1, 2); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("err = %v, want Conflict", err)
	}
	if err := svc.RemoveFromShoppingCart(context.Background(), 1, 2); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want NotFound", err)
	}
}

func TestDownloadShoppingCart(t *testing.T) {
	salt := &entities.Ingredient{ID: 1, Name: "Salt", MeasurementUnit: "g"}
	sugar := &entities.Ingredient{ID: 2, Name: "Sugar", MeasurementUnit: "g"}
	repo := &mockRecipeRepository{
		getCartRecipesFn: func(ctx context.Context, userID uint) ([]*entities.Recipe, error) {
			return []*entities.Recipe{
				{ID: 1, Name: "A", Ingredients: []entities.IngredientRecipe{
					{IngredientID: 1, Amount: 5, Ingredient: salt},
					{IngredientID: 2, Amount: 20, Ingredient: sugar},
				}},
				{ID: 2, Name: "B", Ingredients: []entities.IngredientRecipe{
					{IngredientID: 1, Amount: 10, Ingredient: salt},
				}},
			}, nil
		},
	}
	svc := newTestService(t, repo, acceptAll(), &mockS3{}, nil)

	list, err := svc.DownloadShoppingCart(context.Background(), 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []domain.ShoppingItem{
		{Name: "Salt", MeasurementUnit: "g", TotalAmount: 15},
		{Name: "Sugar", MeasurementUnit: "g", TotalAmount: 20},
	}
	if len(list.Items) != len(want) {
		t.Fatalf("items = %+v", list.Items)
	}
	for i := range want {
		if list.Items[i] != want[i] {
			t.Errorf("item %d = %+v, want %+v", i, list.Items[i], want[i])
		}
	}
	if len(list.Recipes) != 2 || list.Date.Year() != 2024 {
		t.Errorf("list = %+v", list)
	}
}

func TestGetShortLink(t *testing.T) {
	repo := &mockRecipeRepository{
		recipeExistsFn: func(ctx context.Context, id uint) (bool, error) {
			return id == 42, nil
		},
	}
	svc := newTestService(t, repo, acceptAll(), &mockS3{}, nil)
	ctx := context.Background()

	first, err := svc.GetShortLink(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}
	second, _ := svc.GetShortLink(ctx, 42)
	if first != second {
		t.Errorf("links differ: %q vs %q", first.ShortLink, second.ShortLink)
	}
	if !strings.HasPrefix(first.ShortLink, "https://foodgram.test/s/") {
		t.Errorf("link = %q", first.ShortLink)
	}

	token := strings.TrimPrefix(first.ShortLink, "https://foodgram.test/s/")
	id, err := svc.ResolveShortLink(ctx, token)
	if err != nil || id != 42 {
		t.Errorf("resolve = %d, %v", id, err)
	}
	if _, err := svc.ResolveShortLink(ctx, "zzz999"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown token err = %v, want NotFound", err)
	}
	if _, err := svc.GetShortLink(ctx, 5); !errors.Is(err, domain.ErrRecipeNotFound) {
		t.Errorf("missing recipe err = %v", err)
	}
}

func TestGetRecipeForViewer(t *testing.T) {
	repo := &mockRecipeRepository{
		getRecipeByIDFn: func(ctx context.Context, id uint) (*entities.Recipe, error) {
			return storedRecipe(id, 1), nil
		},
		favoritedRecipeIDsFn: func(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error) {
			return map[uint]bool{recipeIDs[0]: true}, nil
		},
	}
	subs := &mockSubscriptions{isSubscribedFn: func(ctx context.Context, subscriberID, authorID uint) (bool, error) {
		return subscriberID == 2 && authorID == 1, nil
	}}
	svc := newTestService(t, repo, acceptAll(), &mockS3{}, subs)

	res, err := svc.GetRecipe(context.Background(), 4, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsFavorited || res.IsInShoppingCart || !res.Author.IsSubscribed {
		t.Errorf("flags = %+v", res)
	}

	anon, _ := svc.GetRecipe(context.Background(), 4, 0)
	if anon.IsFavorited || anon.Author.IsSubscribed {
		t.Errorf("anonymous flags = %+v", anon)
	}
}

func TestGetRecipesAnonymousSkipsViewerLookups(t *testing.T) {
	repo := &mockRecipeRepository{
		getRecipesFn: func(ctx context.Context, filter domain.RecipeFilter, viewerID uint) ([]*entities.Recipe, int64, error) {
			return []*entities.Recipe{storedRecipe(1, 1), storedRecipe(2, 1)}, 2, nil
		},
		favoritedRecipeIDsFn: func(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error) {
			t.Fatal("favorites looked up for anonymous viewer")
			return nil, nil
		},
	}
	svc := newTestService(t, repo, acceptAll(), &mockS3{}, nil)

	recipes, count, err := svc.GetRecipes(context.Background(), domain.RecipeFilter{Pagination: domain.Pagination{Page: 1, Limit: 6}}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 || len(recipes) != 2 {
		t.Errorf("count = %d, recipes = %d", count, len(recipes))
	}
}
