package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"clipstream.com/cmd/model"
	"clipstream.com/pkg/database"
	"clipstream.com/pkg/utils"
)

var DB *gorm.DB

// Init binds the package to the shared connection pool.
func Init() {
	DB = database.GetDB()
}

// CreateUser inserts a new account. A taken username maps to
// gorm.ErrDuplicatedKey via the unique index.
func CreateUser(ctx context.Context, user *model.User) error {
	user.UserID = utils.GenID()
	return DB.WithContext(ctx).Create(user).Error
}

func GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := DB.WithContext(ctx).Where("username = ?", username).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	var user model.User
	err := DB.WithContext(ctx).Where("user_id = ?", userID).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile patches the caller-editable fields only.
func UpdateProfile(ctx context.Context, userID int64, fields map[string]interface{}) error {
	allowed := map[string]bool{"display_name": true, "avatar_url": true, "bio": true}
	patch := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if allowed[k] {
			patch[k] = v
		}
	}
	if len(patch) == 0 {
		return nil
	}
	return DB.WithContext(ctx).Model(&model.User{}).
		Where("user_id = ?", userID).
		Updates(patch).Error
}
