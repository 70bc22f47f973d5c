package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/anurag/vidtube-server/internal/blob"
	"github.com/anurag/vidtube-server/internal/config"
	"github.com/anurag/vidtube-server/internal/domain"
	"github.com/anurag/vidtube-server/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrFieldsRequired = errors.New("all fields are required")

// EvictionError reports a failed delete of a replaced blob. By the
// time it is returned the new URL has already been committed; callers
// report the failure but must not roll back the update.
type EvictionError struct {
	Field domain.MediaField
	Cause error
}

func (e *EvictionError) Error() string {
	return fmt.Sprintf("failed to delete previous %s: %v", e.Field, e.Cause)
}

func (e *EvictionError) Unwrap() error { return e.Cause }

type UserService struct {
	userRepo repository.UserRepository
	blobs    blob.Store
	cfg      *config.Config
}

func NewUserService(userRepo repository.UserRepository, blobs blob.Store, cfg *config.Config) *UserService {
	return &UserService{
		userRepo: userRepo,
		blobs:    blobs,
		cfg:      cfg,
	}
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateAccount(ctx context.Context, id uuid.UUID, fullName, email string) (*domain.User, error) {
	if fullName == "" || email == "" {
		return nil, ErrFieldsRequired
	}

	if err := s.userRepo.UpdateAccountDetails(ctx, id, fullName, email); err != nil {
		return nil, err
	}

	return s.userRepo.GetByID(ctx, id)
}

// ReplaceMedia swaps a profile image: upload the new blob, evict the
// old one, commit the new URL. Upload precedes the record update so a
// failed upload never corrupts the record; the eviction result is only
// inspected after the update is committed, so a flaky delete reports a
// failure without undoing the user-visible change.
func (s *UserService) ReplaceMedia(ctx context.Context, id uuid.UUID, field domain.MediaField, file FileUpload) (*domain.User, error) {
	newURL, err := s.uploadMedia(ctx, file)
	if err != nil || newURL == "" {
		return nil, fmt.Errorf("%w: %s: %v", ErrUploadFailed, field, err)
	}

	// Fresh read of the stored URL; concurrent replacements on the same
	// field are last-writer-wins and may evict the wrong blob.
	oldURL, err := s.userRepo.GetMediaURL(ctx, id, field)
	if err != nil {
		return nil, err
	}

	var evictErr error
	if oldURL != "" {
		evictErr = s.deleteMedia(ctx, blob.KeyFromURL(oldURL))
	}

	if err := s.userRepo.UpdateMediaURL(ctx, id, field, newURL); err != nil {
		return nil, err
	}

	if evictErr != nil {
		return nil, &EvictionError{Field: field, Cause: evictErr}
	}

	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) uploadMedia(ctx context.Context, file FileUpload) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.BlobTimeout)
	defer cancel()

	return s.blobs.Upload(ctx, uuid.New().String(), file.Content, file.ContentType)
}

func (s *UserService) deleteMedia(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.BlobTimeout)
	defer cancel()

	return s.blobs.Delete(ctx, key)
}
