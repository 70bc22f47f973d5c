package repository

import (
	"context"

	"github.com/anurag/vidtube-server/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// GetByUsernameOrEmail matches either column exactly, as stored.
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error)
	UpdateAccountDetails(ctx context.Context, id uuid.UUID, fullName, email string) error

	// Credential and session-state writes are single-column updates so
	// they never run model hooks or touch unrelated fields.
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	UpdateRefreshToken(ctx context.Context, id uuid.UUID, token string) error
	GetRefreshToken(ctx context.Context, id uuid.UUID) (string, error)

	UpdateMediaURL(ctx context.Context, id uuid.UUID, field domain.MediaField, url string) error
	// GetMediaURL reads the current stored URL for the field, bypassing
	// any cached copy of the user record.
	GetMediaURL(ctx context.Context, id uuid.UUID, field domain.MediaField) (string, error)
}

type Repositories struct {
	User UserRepository
}
