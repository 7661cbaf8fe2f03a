package user

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"context"
	"errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	UserRepository interface {
		CreateUser(ctx context.Context, user *entities.User) error
		GetUserByID(ctx context.Context, id uint) (*entities.User, error)
		GetUserByEmail(ctx context.Context, email string) (*entities.User, error)
		GetUsers(ctx context.Context, pagination domain.Pagination) ([]*entities.User, int64, error)
		UpdatePassword(ctx context.Context, id uint, passwordHash string) error
		UpdateAvatar(ctx context.Context, id uint, avatarURL string) error

		CreateSubscription(ctx context.Context, subscriberID, authorID uint) error
		DeleteSubscription(ctx context.Context, subscriberID, authorID uint) error
		IsSubscribed(ctx context.Context, subscriberID, authorID uint) (bool, error)
		SubscribedAuthorIDs(ctx context.Context, subscriberID uint, authorIDs []uint) (map[uint]bool, error)
		GetSubscriptions(ctx context.Context, subscriberID uint, pagination domain.Pagination) ([]*entities.User, int64, error)

		GetRecipesByAuthor(ctx context.Context, authorID uint, limit int) ([]*entities.Recipe, error)
		CountRecipesByAuthor(ctx context.Context, authorID uint) (int64, error)
	}

	userRepository struct {
		db *gorm.DB
	}
)

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *entities.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id uint) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetUsers(ctx context.Context, pagination domain.Pagination) ([]*entities.User, int64, error) {
	var users []*entities.User
	var count int64

	if err := r.db.WithContext(ctx).Model(&entities.User{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Order("id asc").
		Offset(pagination.Offset()).
		Limit(pagination.Limit).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, count, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	return r.db.WithContext(ctx).
		Model(&entities.User{}).
		Where("id = ?", id).
		Update("password", passwordHash).Error
}

func (r *userRepository) UpdateAvatar(ctx context.Context, id uint, avatarURL string) error {
	return r.db.WithContext(ctx).
		Model(&entities.User{}).
		Where("id = ?", id).
		Update("avatar_url", avatarURL).Error
}

func (r *userRepository) CreateSubscription(ctx context.Context, subscriberID, authorID uint) error {
	subscription := entities.Subscription{SubscriberID: subscriberID, AuthorID: authorID}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&subscription).Error; err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return domain.ErrAlreadySubscribed
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return domain.ErrUserNotFound
		case errors.Is(err, gorm.ErrCheckConstraintViolated):
			return domain.ErrSelfSubscription
		}
		return err
	}
	return nil
}

func (r *userRepository) DeleteSubscription(ctx context.Context, subscriberID, authorID uint) error {
	result := r.db.WithContext(ctx).
		Where("subscriber_id = ? AND author_id = ?", subscriberID, authorID).
		Delete(&entities.Subscription{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotSubscribed
	}
	return nil
}

func (r *userRepository) IsSubscribed(ctx context.Context, subscriberID, authorID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Subscription{}).
		Where("subscriber_id = ? AND author_id = ?", subscriberID, authorID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) SubscribedAuthorIDs(ctx context.Context, subscriberID uint, authorIDs []uint) (map[uint]bool, error) {
	subscribed := make(map[uint]bool, len(authorIDs))
	if subscriberID == 0 || len(authorIDs) == 0 {
		return subscribed, nil
	}

	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&entities.Subscription{}).
		Where("subscriber_id = ? AND author_id IN ?", subscriberID, authorIDs).
		Pluck("author_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		subscribed[id] = true
	}
	return subscribed, nil
}

func (r *userRepository) GetSubscriptions(ctx context.Context, subscriberID uint, pagination domain.Pagination) ([]*entities.User, int64, error) {
	var users []*entities.User
	var count int64

	query := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Model(&entities.User{}).
			Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
			Where("subscriptions.subscriber_id = ?", subscriberID)
	}

	if err := query().Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := query().
		Order("subscriptions.created_at desc").
		Order("users.id asc").
		Offset(pagination.Offset()).
		Limit(pagination.Limit).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, count, nil
}

// GetRecipesByAuthor returns the newest recipes first. A negative limit
// returns all of them.
func (r *userRepository) GetRecipesByAuthor(ctx context.Context, authorID uint, limit int) ([]*entities.Recipe, error) {
	var recipes []*entities.Recipe
	query := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at desc").
		Order("id desc")
	if limit >= 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *userRepository) CountRecipesByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Recipe{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	return count, err
}
