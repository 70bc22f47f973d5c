package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/anurag/vidtube-server/internal/blob"
	"github.com/anurag/vidtube-server/internal/config"
	"github.com/anurag/vidtube-server/internal/domain"
	"github.com/anurag/vidtube-server/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserExists          = errors.New("user with this username or email already exists")
	ErrUserNotFound        = errors.New("user does not exist")
	ErrInvalidCredentials  = errors.New("invalid user credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenUsed    = errors.New("refresh token is expired or used")
	ErrIncorrectPassword   = errors.New("incorrect password")
	ErrUploadFailed        = errors.New("file upload failed")
)

// FileUpload is an incoming multipart file handed down from a handler.
type FileUpload struct {
	Content     io.Reader
	Filename    string
	ContentType string
}

type AuthService struct {
	userRepo repository.UserRepository
	blobs    blob.Store
	cfg      *config.Config
}

func NewAuthService(userRepo repository.UserRepository, blobs blob.Store, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		blobs:    blobs,
		cfg:      cfg,
	}
}

type RegisterInput struct {
	FullName   string
	Email      string
	Username   string
	Password   string
	Avatar     FileUpload
	CoverImage *FileUpload
}

type LoginInput struct {
	Username string
	Email    string
	Password string
}

type AuthResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	// Check if username or email is taken
	existing, err := s.userRepo.GetByUsernameOrEmail(ctx, input.Username, input.Email)
	if err == nil && existing != nil {
		return nil, ErrUserExists
	}

	avatarURL, err := s.uploadMedia(ctx, input.Avatar)
	if err != nil || avatarURL == "" {
		return nil, fmt.Errorf("%w: avatar: %v", ErrUploadFailed, err)
	}

	// The cover image is optional; a failed upload degrades to the
	// empty sentinel instead of failing registration.
	coverImageURL := ""
	if input.CoverImage != nil {
		if url, err := s.uploadMedia(ctx, *input.CoverImage); err == nil {
			coverImageURL = url
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     strings.ToLower(input.Username),
		Email:        input.Email,
		FullName:     input.FullName,
		Avatar:       avatarURL,
		CoverImage:   coverImageURL,
		PasswordHash: string(hashedPassword),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.GetByUsernameOrEmail(ctx, input.Username, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !checkPassword(user.PasswordHash, input.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.generateTokens(ctx, user)
}

// Refresh rotates the token pair. The presented token must verify
// against the refresh secret and equal the stored current token
// exactly; a token that has already been exchanged is dead even while
// cryptographically valid.
func (s *AuthService) Refresh(ctx context.Context, presented string) (*AuthResult, error) {
	userID, err := s.verifyRefreshToken(presented)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	if presented != user.RefreshToken {
		return nil, ErrRefreshTokenUsed
	}

	result, err := s.generateTokens(ctx, user)
	if err != nil {
		// Internal faults during refresh never surface as 5xx to an
		// unauthenticated caller.
		return nil, ErrInvalidRefreshToken
	}

	return result, nil
}

// Logout clears the stored refresh token. Idempotent.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.userRepo.UpdateRefreshToken(ctx, userID, "")
}

// ChangePassword replaces the credential after verifying the old one.
// The stored refresh token is left untouched, matching the existing
// behavior; see DESIGN.md.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !checkPassword(user.PasswordHash, oldPassword) {
		return ErrIncorrectPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.userRepo.UpdatePasswordHash(ctx, userID, string(hashedPassword))
}

func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// generateTokens issues a new access+refresh pair and persists the
// refresh token as the account's single current session.
func (s *AuthService) generateTokens(ctx context.Context, user *domain.User) (*AuthResult, error) {
	accessToken, err := s.issueAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.issueRefreshToken(user)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *AuthService) uploadMedia(ctx context.Context, file FileUpload) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.BlobTimeout)
	defer cancel()

	return s.blobs.Upload(ctx, uuid.New().String(), file.Content, file.ContentType)
}

// checkPassword is the credential verifier: a one-way salted
// comparison that fails closed on any error.
func checkPassword(storedHash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plain)) == nil
}
