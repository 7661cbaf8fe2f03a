package ingredient

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"context"
	"errors"
	"fmt"
	"github.com/goccy/go-json"
	"gorm.io/gorm"
	"io"
	"maps"
	"slices"
	"strings"
)

// DefaultUnitReplacements folds household measures into grams and millilitres.
var DefaultUnitReplacements = map[string]string{
	"банка":   "г",
	"батон":   "г",
	"веточка": "г",
	"капля":   "мл",
	"кусок":   "г",
	"ст. л.":  "г",
	"стакан":  "мл",
	"ч. л.":   "г",
	"щепотка": "г",
	"горсть":  "г",
}

type (
	IngredientService interface {
		GetIngredients(ctx context.Context, name string) ([]domain.Ingredient, error)
		GetIngredient(ctx context.Context, id uint) (domain.Ingredient, error)
		GetIngredientsByIDs(ctx context.Context, ids []uint) ([]*entities.Ingredient, error)
		CountIngredients(ctx context.Context) (int64, error)
		LoadIngredients(ctx context.Context, r io.Reader) (int64, error)
		RemoveDuplicates(ctx context.Context) (int64, error)
		PurgeIngredients(ctx context.Context) (int64, error)
		CountUnitsToNormalize(ctx context.Context, replacements map[string]string) (int64, error)
		NormalizeUnits(ctx context.Context, replacements map[string]string) (map[string]int64, error)
	}

	ingredientService struct {
		ingredientRepository IngredientRepository
	}
)

func NewIngredientService(ingredientRepository IngredientRepository) IngredientService {
	return &ingredientService{
		ingredientRepository: ingredientRepository,
	}
}

func toDomain(i *entities.Ingredient) domain.Ingredient {
	return domain.Ingredient{
		ID:              i.ID,
		Name:            i.Name,
		MeasurementUnit: i.MeasurementUnit,
	}
}

func (s *ingredientService) GetIngredients(ctx context.Context, name string) ([]domain.Ingredient, error) {
	ingredients, err := s.ingredientRepository.GetIngredients(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("get ingredients: %w", err)
	}
	res := make([]domain.Ingredient, 0, len(ingredients))
	for _, i := range ingredients {
		res = append(res, toDomain(i))
	}
	return res, nil
}

func (s *ingredientService) GetIngredient(ctx context.Context, id uint) (domain.Ingredient, error) {
	ingredient, err := s.ingredientRepository.GetIngredientByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Ingredient{}, domain.ErrIngredientNotFound
		}
		return domain.Ingredient{}, fmt.Errorf("get ingredient %d: %w", id, err)
	}
	return toDomain(ingredient), nil
}

// GetIngredientsByIDs lets the service act as the composition lookup.
func (s *ingredientService) GetIngredientsByIDs(ctx context.Context, ids []uint) ([]*entities.Ingredient, error) {
	return s.ingredientRepository.GetIngredientsByIDs(ctx, ids)
}

func (s *ingredientService) CountIngredients(ctx context.Context) (int64, error) {
	return s.ingredientRepository.CountIngredients(ctx)
}

// ParseSeed reads a JSON array of {name, measurement_unit}. Entries with a
// blank name or unit are skipped.
func ParseSeed(r io.Reader) ([]*entities.Ingredient, error) {
	var seeds []domain.IngredientSeed
	if err := json.NewDecoder(r).Decode(&seeds); err != nil {
		return nil, fmt.Errorf("decode ingredients: %w", err)
	}

	ingredients := make([]*entities.Ingredient, 0, len(seeds))
	for _, seed := range seeds {
		name := strings.TrimSpace(seed.Name)
		unit := strings.TrimSpace(seed.MeasurementUnit)
		if name == "" || unit == "" {
			continue
		}
		ingredients = append(ingredients, &entities.Ingredient{
			Name:            name,
			MeasurementUnit: unit,
		})
	}
	return ingredients, nil
}

func (s *ingredientService) LoadIngredients(ctx context.Context, r io.Reader) (int64, error) {
	ingredients, err := ParseSeed(r)
	if err != nil {
		return 0, err
	}
	created, err := s.ingredientRepository.CreateIngredients(ctx, ingredients)
	if err != nil {
		return 0, fmt.Errorf("create ingredients: %w", err)
	}
	return created, nil
}

func (s *ingredientService) RemoveDuplicates(ctx context.Context) (int64, error) {
	removed, err := s.ingredientRepository.RemoveDuplicates(ctx)
	if err != nil {
		return 0, fmt.Errorf("remove duplicate ingredients: %w", err)
	}
	return removed, nil
}

func (s *ingredientService) PurgeIngredients(ctx context.Context) (int64, error) {
	removed, err := s.ingredientRepository.PurgeIngredients(ctx)
	if err != nil {
		return 0, fmt.Errorf("purge ingredients: %w", err)
	}
	return removed, nil
}

func (s *ingredientService) CountUnitsToNormalize(ctx context.Context, replacements map[string]string) (int64, error) {
	if len(replacements) == 0 {
		return 0, nil
	}
	return s.ingredientRepository.CountByUnits(ctx, slices.Sorted(maps.Keys(replacements)))
}

// NormalizeUnits rewrites every unit found in replacements and returns the
// number of rows changed per target unit.
func (s *ingredientService) NormalizeUnits(ctx context.Context, replacements map[string]string) (map[string]int64, error) {
	stats := make(map[string]int64)
	for _, from := range slices.Sorted(maps.Keys(replacements)) {
		to := replacements[from]
		if from == to {
			continue
		}
		updated, err := s.ingredientRepository.ReplaceUnit(ctx, from, to)
		if err != nil {
			return stats, fmt.Errorf("replace unit %q: %w", from, err)
		}
		if updated > 0 {
			stats[to] += updated
		}
	}
	return stats, nil
}
