package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"clipstream.com/cmd/model"
	"clipstream.com/pkg/errno"
)

const (
	minPasswordLength = 8
	maxUsernameLength = 64
)

type UserService struct {
	ctx   context.Context
	store Store
}

func NewUserService(ctx context.Context, store Store) *UserService {
	return &UserService{ctx: ctx, store: store}
}

// Register creates an account. Passwords are stored as bcrypt hashes only.
func (s *UserService) Register(ctx context.Context, username, password, displayName string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || utf8.RuneCountInString(username) > maxUsernameLength {
		return nil, errno.ParamErr.WithMessage("invalid username")
	}
	if len(password) < minPasswordLength {
		return nil, errno.ParamErr.WithMessage("password too short")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errno.ServiceErr.WithMessage("failed to hash password")
	}
	user := &model.User{
		Username:     username,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if user.DisplayName == "" {
		user.DisplayName = username
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errno.AlreadyExistErr.WithMessage("username taken")
		}
		return nil, err
	}
	return user, nil
}

// CheckPassword verifies credentials and returns the account. A wrong
// password and an unknown username fail identically.
func (s *UserService) CheckPassword(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errno.AuthorizationFailedErr
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, errno.AuthorizationFailedErr
	}
	return user, nil
}

// GetProfile returns a user with aggregator-maintained counters.
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errno.RecordNotFoundErr.WithMessage("user not found")
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID int64, displayName, avatarURL, bio string) error {
	fields := make(map[string]interface{})
	if displayName != "" {
		fields["display_name"] = strings.TrimSpace(displayName)
	}
	if avatarURL != "" {
		fields["avatar_url"] = avatarURL
	}
	if bio != "" {
		fields["bio"] = bio
	}
	return s.store.UpdateProfile(ctx, userID, fields)
}
