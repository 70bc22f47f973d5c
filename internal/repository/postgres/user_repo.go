package postgres

import (
	"context"

	"github.com/anurag/vidtube-server/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "username = ? OR email = ?", username, email).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdateAccountDetails(ctx context.Context, id uuid.UUID, fullName, email string) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"full_name": fullName, "email": email}).Error
}

// UpdatePasswordHash replaces the credential wholesale; no history kept.
func (r *userRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		UpdateColumn("password_hash", hash).Error
}

// UpdateRefreshToken is the session-store write: a bare column update
// that skips hooks so rotation never blocks on unrelated validation.
func (r *userRepository) UpdateRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		UpdateColumn("refresh_token", token).Error
}

func (r *userRepository) GetRefreshToken(ctx context.Context, id uuid.UUID) (string, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Select("refresh_token").First(&user, "id = ?", id).Error
	if err != nil {
		return "", err
	}
	return user.RefreshToken, nil
}

func (r *userRepository) UpdateMediaURL(ctx context.Context, id uuid.UUID, field domain.MediaField, url string) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		Update(string(field), url).Error
}

func (r *userRepository) GetMediaURL(ctx context.Context, id uuid.UUID, field domain.MediaField) (string, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Select(string(field)).First(&user, "id = ?", id).Error
	if err != nil {
		return "", err
	}
	if field == domain.MediaFieldCoverImage {
		return user.CoverImage, nil
	}
	return user.Avatar, nil
}
