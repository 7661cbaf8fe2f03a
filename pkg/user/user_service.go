package user

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/internal/utils"
	"Foodgram-Backend/internal/utils/mailing"
	"Foodgram-Backend/internal/utils/storage"
	"Foodgram-Backend/pkg/jwt"
	"Foodgram-Backend/pkg/log"
	"Foodgram-Backend/pkg/recipe"
	"Foodgram-Backend/pkg/tokenstore"
	"context"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"net/url"
	"strings"
	"time"
)

const (
	avatarFolder     = "avatars"
	resetTokenTTL    = time.Hour
	resetMailSubject = "Foodgram password reset"
)

type (
	UserService interface {
		Register(ctx context.Context, req domain.RegisterRequest) (domain.User, error)
		Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error)
		Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
		Me(ctx context.Context, userID uint) (domain.User, error)
		GetUsers(ctx context.Context, pagination domain.Pagination, viewerID uint) ([]domain.User, int64, error)
		GetUser(ctx context.Context, id, viewerID uint) (domain.User, error)
		SetPassword(ctx context.Context, userID uint, req domain.SetPasswordRequest) error
		UpdateAvatar(ctx context.Context, userID uint, req domain.AvatarRequest) (domain.AvatarResponse, error)
		DeleteAvatar(ctx context.Context, userID uint) error
		ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error
		ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error

		Subscribe(ctx context.Context, subscriberID, authorID uint, recipesLimit int) (domain.SubscribedUser, error)
		Unsubscribe(ctx context.Context, subscriberID, authorID uint) error
		GetSubscriptions(ctx context.Context, subscriberID uint, pagination domain.Pagination, recipesLimit int) ([]domain.SubscribedUser, int64, error)
	}

	userService struct {
		userRepository UserRepository
		jwtService     jwt.JWTService
		tokenStore     tokenstore.TokenStore
		s3             storage.AwsS3
		sendMail       mailing.Sender
		appURL         string
		now            func() time.Time
	}
)

func NewUserService(
	userRepository UserRepository,
	jwtService jwt.JWTService,
	tokenStore tokenstore.TokenStore,
	s3 storage.AwsS3,
	sendMail mailing.Sender,
	appURL string,
) UserService {
	return &userService{
		userRepository: userRepository,
		jwtService:     jwtService,
		tokenStore:     tokenStore,
		s3:             s3,
		sendMail:       sendMail,
		appURL:         strings.TrimRight(appURL, "/"),
		now:            time.Now,
	}
}

func toUser(u *entities.User, subscribed bool) domain.User {
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

func (s *userService) getUser(ctx context.Context, id uint) (*entities.User, error) {
	user, err := s.userRepository.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return user, nil
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (domain.User, error) {
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := &entities.User{
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Username:  strings.TrimSpace(req.Username),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  hash,
	}
	if err := s.userRepository.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return domain.User{}, err
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return toUser(user, false), nil
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	user, err := s.userRepository.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.LoginResponse{}, domain.ErrInvalidCredentials
		}
		return domain.LoginResponse{}, fmt.Errorf("get user: %w", err)
	}
	if !utils.CheckPassword(user.Password, req.Password) {
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateTokenUser(user.ID, domain.RoleUser)
	if err != nil {
		return domain.LoginResponse{}, fmt.Errorf("generate token: %w", err)
	}
	return domain.LoginResponse{AuthToken: token}, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *userService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return domain.ErrTokenInvalid
	}
	if err := s.tokenStore.Revoke(ctx, tokenID, expiresAt.Sub(s.now())); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *userService) Me(ctx context.Context, userID uint) (domain.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	return toUser(user, false), nil
}

func (s *userService) GetUsers(ctx context.Context, pagination domain.Pagination, viewerID uint) ([]domain.User, int64, error) {
	users, count, err := s.userRepository.GetUsers(ctx, pagination)
	if err != nil {
		return nil, 0, fmt.Errorf("get users: %w", err)
	}

	subscribed := map[uint]bool{}
	if viewerID != 0 && len(users) > 0 {
		ids := make([]uint, 0, len(users))
		for _, u := range users {
			ids = append(ids, u.ID)
		}
		if subscribed, err = s.userRepository.SubscribedAuthorIDs(ctx, viewerID, ids); err != nil {
			return nil, 0, fmt.Errorf("get subscriptions: %w", err)
		}
	}

	res := make([]domain.User, 0, len(users))
	for _, u := range users {
		res = append(res, toUser(u, subscribed[u.ID]))
	}
	return res, count, nil
}

func (s *userService) GetUser(ctx context.Context, id, viewerID uint) (domain.User, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	subscribed := false
	if viewerID != 0 && viewerID != id {
		if subscribed, err = s.userRepository.IsSubscribed(ctx, viewerID, id); err != nil {
			return domain.User{}, fmt.Errorf("get subscription: %w", err)
		}
	}
	return toUser(user, subscribed), nil
}

func (s *userService) SetPassword(ctx context.Context, userID uint, req domain.SetPasswordRequest) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.CheckPassword(user.Password, req.CurrentPassword) {
		return domain.ErrWrongPassword
	}
	return s.storePassword(ctx, user.ID, req.NewPassword)
}

func (s *userService) storePassword(ctx context.Context, userID uint, password string) error {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepository.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *userService) UpdateAvatar(ctx context.Context, userID uint, req domain.AvatarRequest) (domain.AvatarResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return domain.AvatarResponse{}, err
	}

	file, err := storage.DecodeDataURI(req.Avatar)
	if err != nil {
		return domain.AvatarResponse{}, domain.ErrInvalidImage
	}
	objectKey, err := s.s3.UploadFile(fmt.Sprintf("avatar-%d", user.ID), file, avatarFolder, storage.AllowImage...)
	if err != nil {
		if errors.Is(err, storage.ErrFileTypeNotAllow) || errors.Is(err, storage.ErrEmptyFile) {
			return domain.AvatarResponse{}, domain.ErrInvalidImage
		}
		return domain.AvatarResponse{}, fmt.Errorf("upload avatar: %w", err)
	}

	avatarURL := s.s3.GetPublicLinkKey(objectKey)
	if err := s.userRepository.UpdateAvatar(ctx, user.ID, avatarURL); err != nil {
		s.discardFile(avatarURL)
		return domain.AvatarResponse{}, fmt.Errorf("update avatar: %w", err)
	}
	s.discardFile(user.AvatarURL)
	return domain.AvatarResponse{Avatar: avatarURL}, nil
}

func (s *userService) DeleteAvatar(ctx context.Context, userID uint) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.userRepository.UpdateAvatar(ctx, user.ID, ""); err != nil {
		return fmt.Errorf("delete avatar: %w", err)
	}
	s.discardFile(user.AvatarURL)
	return nil
}

func (s *userService) discardFile(link string) {
	objectKey := s.s3.GetObjectKeyFromLink(link)
	if link == "" || objectKey == "" {
		return
	}
	if err := s.s3.DeleteFile(objectKey); err != nil {
		log.L.Warn("delete avatar", zap.String("key", objectKey), zap.Error(err))
	}
}

// ForgotPassword mails a reset link. Unknown addresses are not reported to
// the caller.
func (s *userService) ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error {
	user, err := s.userRepository.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.L.Info("password reset for unknown email", zap.String("email", req.Email))
			return nil
		}
		return fmt.Errorf("get user: %w", err)
	}

	token, err := s.jwtService.GenerateTokenForgetPassword(map[string]any{"user_id": user.ID}, resetTokenTTL)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	link := s.appURL + "/reset-password?token=" + url.QueryEscape(token)

	if err := s.sendMail(user.Email, resetMailSubject, mailing.ResetPasswordBody(user.Username, link)); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}

// ResetPassword applies a reset token once. The token id is revoked after use.
func (s *userService) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	claims, err := s.jwtService.ValidateTokenForgetPassword(req.Token)
	if err != nil {
		return err
	}

	rawID, ok := claims["user_id"].(float64)
	if !ok || rawID <= 0 {
		return domain.ErrTokenInvalid
	}
	tokenID, _ := claims["jti"].(string)
	if tokenID == "" {
		return domain.ErrTokenInvalid
	}

	user, err := s.getUser(ctx, uint(rawID))
	if err != nil {
		return err
	}

	ttl := resetTokenTTL
	if exp, ok := claims["exp"].(float64); ok {
		ttl = time.Unix(int64(exp), 0).Sub(s.now())
	}
	if ttl <= 0 {
		return domain.ErrTokenExpired
	}

	// the link is spent before the password is written so two requests
	// racing on one token cannot both succeed
	claimed, err := s.tokenStore.Claim(ctx, tokenID, ttl)
	if err != nil {
		return fmt.Errorf("claim reset token: %w", err)
	}
	if !claimed {
		return domain.ErrTokenRevoked
	}

	return s.storePassword(ctx, user.ID, req.NewPassword)
}

func (s *userService) subscribedUser(ctx context.Context, author *entities.User, recipesLimit int) (domain.SubscribedUser, error) {
	recipes, err := s.userRepository.GetRecipesByAuthor(ctx, author.ID, recipesLimit)
	if err != nil {
		return domain.SubscribedUser{}, fmt.Errorf("get recipes of %d: %w", author.ID, err)
	}
	count, err := s.userRepository.CountRecipesByAuthor(ctx, author.ID)
	if err != nil {
		return domain.SubscribedUser{}, fmt.Errorf("count recipes of %d: %w", author.ID, err)
	}

	shorts := make([]domain.RecipeShort, 0, len(recipes))
	for _, r := range recipes {
		shorts = append(shorts, recipe.ToShort(r))
	}
	return domain.SubscribedUser{
		User:         toUser(author, true),
		Recipes:      shorts,
		RecipesCount: count,
	}, nil
}

// Subscribe rejects self subscription before looking at any stored state.
func (s *userService) Subscribe(ctx context.Context, subscriberID, authorID uint, recipesLimit int) (domain.SubscribedUser, error) {
	if subscriberID == authorID {
		return domain.SubscribedUser{}, domain.ErrSelfSubscription
	}
	author, err := s.getUser(ctx, authorID)
	if err != nil {
		return domain.SubscribedUser{}, err
	}
	if err := s.userRepository.CreateSubscription(ctx, subscriberID, authorID); err != nil {
		return domain.SubscribedUser{}, err
	}
	return s.subscribedUser(ctx, author, recipesLimit)
}

func (s *userService) Unsubscribe(ctx context.Context, subscriberID, authorID uint) error {
	if subscriberID == authorID {
		return domain.ErrSelfSubscription
	}
	if _, err := s.getUser(ctx, authorID); err != nil {
		return err
	}
	return s.userRepository.DeleteSubscription(ctx, subscriberID, authorID)
}

func (s *userService) GetSubscriptions(ctx context.Context, subscriberID uint, pagination domain.Pagination, recipesLimit int) ([]domain.SubscribedUser, int64, error) {
	authors, count, err := s.userRepository.GetSubscriptions(ctx, subscriberID, pagination)
	if err != nil {
		return nil, 0, fmt.Errorf("get subscriptions: %w", err)
	}

	res := make([]domain.SubscribedUser, 0, len(authors))
	for _, author := range authors {
		item, err := s.subscribedUser(ctx, author, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		res = append(res, item)
	}
	return res, count, nil
}
