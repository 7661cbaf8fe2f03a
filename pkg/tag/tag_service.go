package tag

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"context"
	"errors"
	"fmt"
	"github.com/goccy/go-json"
	"gorm.io/gorm"
	"io"
	"strings"
)

type (
	TagService interface {
		GetTags(ctx context.Context) ([]domain.Tag, error)
		GetTag(ctx context.Context, id uint) (domain.Tag, error)
		GetTagsByIDs(ctx context.Context, ids []uint) ([]*entities.Tag, error)
		LoadTags(ctx context.Context, r io.Reader) (int64, error)
	}

	tagService struct {
		tagRepository TagRepository
	}
)

func NewTagService(tagRepository TagRepository) TagService {
	return &tagService{
		tagRepository: tagRepository,
	}
}

func ToDomain(t entities.Tag) domain.Tag {
	return domain.Tag{
		ID:   t.ID,
		Name: t.Name,
		Slug: t.Slug,
	}
}

func (s *tagService) GetTags(ctx context.Context) ([]domain.Tag, error) {
	tags, err := s.tagRepository.GetTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("get tags: %w", err)
	}
	res := make([]domain.Tag, 0, len(tags))
	for _, t := range tags {
		res = append(res, ToDomain(*t))
	}
	return res, nil
}

func (s *tagService) GetTag(ctx context.Context, id uint) (domain.Tag, error) {
	tag, err := s.tagRepository.GetTagByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Tag{}, domain.ErrTagNotFound
		}
		return domain.Tag{}, fmt.Errorf("get tag %d: %w", id, err)
	}
	return ToDomain(*tag), nil
}

func (s *tagService) GetTagsByIDs(ctx context.Context, ids []uint) ([]*entities.Tag, error) {
	return s.tagRepository.GetTagsByIDs(ctx, ids)
}

// ParseSeed reads a JSON array of {name, slug}. The slug defaults to the
// lower-cased name.
func ParseSeed(r io.Reader) ([]*entities.Tag, error) {
	var seeds []domain.TagSeed
	if err := json.NewDecoder(r).Decode(&seeds); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}

	tags := make([]*entities.Tag, 0, len(seeds))
	for _, seed := range seeds {
		name := strings.TrimSpace(seed.Name)
		if name == "" {
			continue
		}
		slug := strings.TrimSpace(seed.Slug)
		if slug == "" {
			slug = strings.ToLower(strings.Join(strings.Fields(name), "_"))
		}
		tags = append(tags, &entities.Tag{Name: name, Slug: slug})
	}
	return tags, nil
}

func (s *tagService) LoadTags(ctx context.Context, r io.Reader) (int64, error) {
	tags, err := ParseSeed(r)
	if err != nil {
		return 0, err
	}
	created, err := s.tagRepository.CreateTags(ctx, tags)
	if err != nil {
		return 0, fmt.Errorf("create tags: %w", err)
	}
	return created, nil
}
