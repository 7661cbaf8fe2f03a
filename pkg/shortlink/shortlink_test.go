package shortlink

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/pkg/metrics"
	"context"
	"errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"testing"
)

type mockRecipes struct {
	recipeExistsFn func(ctx context.Context, id uint) (bool, error)
}

func (m *mockRecipes) RecipeExists(ctx context.Context, id uint) (bool, error) {
	return m.recipeExistsFn(ctx, id)
}

func only(ids ...uint) *mockRecipes {
	return &mockRecipes{recipeExistsFn: func(ctx context.Context, id uint) (bool, error) {
		for _, known := range ids {
			if known == id {
				return true, nil
			}
		}
		return false, nil
	}}
}

func newResolver(t *testing.T, recipes RecipeExistence) Resolver {
	t.Helper()
	codec, err := NewCodec("test-salt", 0)
	if err != nil {
		t.Fatal(err)
	}
	return NewResolver(codec, recipes)
}

func TestShortLinkIsStable(t *testing.T) {
	r := newResolver(t, only(42))
	ctx := context.Background()

	first, err := r.ShortLink(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.ShortLink(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("tokens differ: %q vs %q", first, second)
	}
	if len(first) < DefaultMinLength {
		t.Errorf("token %q shorter than %d", first, DefaultMinLength)
	}

	id, err := r.Resolve(ctx, first)
	if err != nil {
		t.Fatal(err)
	}
	if id != 42 {
		t.Errorf("Resolve = %d, want 42", id)
	}
}

func TestShortLinkSurvivesNewCodec(t *testing.T) {
	a, _ := NewCodec("shared", 8)
	b, _ := NewCodec("shared", 8)

	token, err := a.Encode(1234)
	if err != nil {
		t.Fatal(err)
	}
	id, err := b.Decode(token)
	if err != nil || id != 1234 {
		t.Errorf("Decode = %d, %v; want 1234", id, err)
	}
}

func TestResolveUnknownToken(t *testing.T) {
	r := newResolver(t, only(42))

	_, err := r.Resolve(context.Background(), "zzz999")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want NotFound", err)
	}

	_, err = r.Resolve(context.Background(), "")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("empty token err = %v, want NotFound", err)
	}
}

func TestResolveDeletedRecipe(t *testing.T) {
	codec, _ := NewCodec("test-salt", 0)
	token, _ := codec.Encode(7)
	r := NewResolver(codec, only())

	_, err := r.Resolve(context.Background(), token)
	if !errors.Is(err, domain.ErrShortLinkNotFound) {
		t.Errorf("err = %v, want ErrShortLinkNotFound", err)
	}
}

func TestShortLinkForMissingRecipe(t *testing.T) {
	r := newResolver(t, only())

	_, err := r.ShortLink(context.Background(), 5)
	if !errors.Is(err, domain.ErrRecipeNotFound) {
		t.Errorf("err = %v, want ErrRecipeNotFound", err)
	}
}

func TestResolvePropagatesStoreError(t *testing.T) {
	boom := errors.New("db down")
	codec, _ := NewCodec("test-salt", 0)
	token, _ := codec.Encode(3)
	r := NewResolver(codec, &mockRecipes{recipeExistsFn: func(ctx context.Context, id uint) (bool, error) {
		return false, boom
	}})

	if _, err := r.Resolve(context.Background(), token); !errors.Is(err, boom) {
		t.Errorf("err = %v, want store error", err)
	}
}

func TestResolveCountsResults(t *testing.T) {
	r := newResolver(t, only(7))
	token, err := r.ShortLink(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}

	found := testutil.ToFloat64(metrics.ShortLinkResolutions.WithLabelValues("found"))
	unknown := testutil.ToFloat64(metrics.ShortLinkResolutions.WithLabelValues("unknown"))

	if _, err := r.Resolve(context.Background(), token); err != nil {
		t.Fatal(err)
	}
	_, _ = r.Resolve(context.Background(), "")

	if got := testutil.ToFloat64(metrics.ShortLinkResolutions.WithLabelValues("found")) - found; got != 1 {
		t.Errorf("found delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.ShortLinkResolutions.WithLabelValues("unknown")) - unknown; got != 1 {
		t.Errorf("unknown delta = %v, want 1", got)
	}
}
