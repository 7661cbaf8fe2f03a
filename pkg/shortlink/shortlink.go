// Package shortlink maps recipe ids to opaque tokens and back. Tokens are
// derived from the id with hashids, so no mapping is stored and every
// process sharing the salt agrees on them.
package shortlink

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/pkg/metrics"
	"context"
	"fmt"
	"github.com/speps/go-hashids/v2"
)

const DefaultMinLength = 6

type (
	RecipeExistence interface {
		RecipeExists(ctx context.Context, id uint) (bool, error)
	}

	Resolver interface {
		ShortLink(ctx context.Context, recipeID uint) (string, error)
		Resolve(ctx context.Context, token string) (uint, error)
	}

	Codec struct {
		hash *hashids.HashID
	}

	resolver struct {
		codec   *Codec
		recipes RecipeExistence
	}
)

func NewCodec(salt string, minLength int) (*Codec, error) {
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = minLength
	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, fmt.Errorf("init short link codec: %w", err)
	}
	return &Codec{hash: h}, nil
}

func (c *Codec) Encode(id uint) (string, error) {
	token, err := c.hash.EncodeInt64([]int64{int64(id)})
	if err != nil {
		return "", domain.ValidationErrors{domain.NewValidationError(
			domain.FieldShortLink,
			domain.KindLinkGenerationExhausted,
			fmt.Sprintf("could not generate a short link for recipe %d", id),
		)}
	}
	return token, nil
}

// Decode returns the id behind token. Tokens that do not decode to exactly
// one id, or are not the canonical encoding of it, are not found.
func (c *Codec) Decode(token string) (uint, error) {
	if token == "" {
		return 0, domain.ErrShortLinkNotFound
	}
	ids, err := c.hash.DecodeInt64WithError(token)
	if err != nil || len(ids) != 1 || ids[0] <= 0 {
		return 0, domain.ErrShortLinkNotFound
	}
	canonical, err := c.hash.EncodeInt64(ids)
	if err != nil || canonical != token {
		return 0, domain.ErrShortLinkNotFound
	}
	return uint(ids[0]), nil
}

func NewResolver(codec *Codec, recipes RecipeExistence) Resolver {
	return &resolver{
		codec:   codec,
		recipes: recipes,
	}
}

func (r *resolver) ShortLink(ctx context.Context, recipeID uint) (string, error) {
	exists, err := r.recipes.RecipeExists(ctx, recipeID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", domain.ErrRecipeNotFound
	}
	return r.codec.Encode(recipeID)
}

func (r *resolver) Resolve(ctx context.Context, token string) (uint, error) {
	id, err := r.codec.Decode(token)
	if err != nil {
		metrics.ShortLinkResolutions.WithLabelValues("unknown").Inc()
		return 0, err
	}
	exists, err := r.recipes.RecipeExists(ctx, id)
	if err != nil {
		return 0, err
	}
	if !exists {
		metrics.ShortLinkResolutions.WithLabelValues("missing_recipe").Inc()
		return 0, domain.ErrShortLinkNotFound
	}
	metrics.ShortLinkResolutions.WithLabelValues("found").Inc()
	return id, nil
}
