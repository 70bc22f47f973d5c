package service_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/anurag/vidtube-server/internal/repository/postgres"
	"github.com/anurag/vidtube-server/internal/service"
	"github.com/anurag/vidtube-server/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFile(name string) service.FileUpload {
	return service.FileUpload{
		Content:     bytes.NewReader([]byte("image-bytes")),
		Filename:    name,
		ContentType: "image/png",
	}
}

func TestAuthService_Register(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	blobs := testutil.NewMemoryBlobStore()
	authService := service.NewAuthService(repos.User, blobs, cfg)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   service.RegisterInput
		setup   func()
		wantErr error
		check   func(*testing.T)
	}{
		{
			name: "successful registration",
			input: service.RegisterInput{
				FullName: "Ana",
				Email:    "a@x.com",
				Username: "Ana",
				Password: "p1",
				Avatar:   testFile("avatar.png"),
			},
			check: func(t *testing.T) {
				user, err := repos.User.GetByUsernameOrEmail(ctx, "ana", "a@x.com")
				require.NoError(t, err)
				assert.Equal(t, "ana", user.Username, "username is stored lowercase")
				assert.NotEmpty(t, user.Avatar)
				assert.Empty(t, user.CoverImage, "cover image defaults to the empty sentinel")
				assert.Empty(t, user.RefreshToken, "registration does not open a session")
			},
		},
		{
			name: "registration with cover image",
			input: service.RegisterInput{
				FullName:   "Ben",
				Email:      "b@x.com",
				Username:   "ben",
				Password:   "p2",
				Avatar:     testFile("avatar.png"),
				CoverImage: &service.FileUpload{Content: bytes.NewReader([]byte("cover")), Filename: "cover.png", ContentType: "image/png"},
			},
			check: func(t *testing.T) {
				user, err := repos.User.GetByUsernameOrEmail(ctx, "ben", "b@x.com")
				require.NoError(t, err)
				assert.NotEmpty(t, user.CoverImage)
				assert.NotEqual(t, user.Avatar, user.CoverImage)
			},
		},
		{
			name: "duplicate username",
			input: service.RegisterInput{
				FullName: "Other",
				Email:    "other@x.com",
				Username: "existinguser",
				Password: "password123",
				Avatar:   testFile("avatar.png"),
			},
			setup: func() {
				testutil.NewUserBuilder().
					WithUsername("existinguser").
					Build(t, testDB.DB)
			},
			wantErr: service.ErrUserExists,
		},
		{
			name: "duplicate email",
			input: service.RegisterInput{
				FullName: "Other",
				Email:    "taken@x.com",
				Username: "freshname",
				Password: "password123",
				Avatar:   testFile("avatar.png"),
			},
			setup: func() {
				testutil.NewUserBuilder().
					WithEmail("taken@x.com").
					Build(t, testDB.DB)
			},
			wantErr: service.ErrUserExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testDB.Truncate(t)

			if tt.setup != nil {
				tt.setup()
			}

			user, err := authService.Register(ctx, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, user)
			if tt.check != nil {
				tt.check(t)
			}
		})
	}
}

func TestAuthService_Register_AvatarUploadFails(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	blobs := testutil.NewMemoryBlobStore()
	blobs.UploadErr = errors.New("storage unavailable")
	authService := service.NewAuthService(repos.User, blobs, cfg)

	_, err := authService.Register(context.Background(), service.RegisterInput{
		FullName: "Ana",
		Email:    "a@x.com",
		Username: "ana",
		Password: "p1",
		Avatar:   testFile("avatar.png"),
	})

	assert.ErrorIs(t, err, service.ErrUploadFailed)

	_, err = repos.User.GetByUsernameOrEmail(context.Background(), "ana", "a@x.com")
	assert.Error(t, err, "no record is created when the avatar upload fails")
}

func TestAuthService_Login(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	authService := service.NewAuthService(repos.User, testutil.NewMemoryBlobStore(), cfg)
	ctx := context.Background()

	user, rawPassword := testutil.NewUserBuilder().
		WithUsername("loginuser").
		WithEmail("login@example.com").
		WithPassword("correctpassword").
		Build(t, testDB.DB)

	tests := []struct {
		name    string
		input   service.LoginInput
		wantErr error
	}{
		{
			name: "login by username",
			input: service.LoginInput{
				Username: user.Username,
				Password: rawPassword,
			},
		},
		{
			name: "login by email",
			input: service.LoginInput{
				Email:    user.Email,
				Password: rawPassword,
			},
		},
		{
			name: "wrong password",
			input: service.LoginInput{
				Username: user.Username,
				Password: "wrongpassword",
			},
			wantErr: service.ErrInvalidCredentials,
		},
		{
			name: "non-existent user",
			input: service.LoginInput{
				Username: "nonexistent",
				Password: "anypassword",
			},
			wantErr: service.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := authService.Login(ctx, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, user.ID, result.User.ID)
			assert.NotEmpty(t, result.AccessToken)
			assert.NotEmpty(t, result.RefreshToken)

			stored, err := repos.User.GetRefreshToken(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, result.RefreshToken, stored, "stored refresh token equals the returned one")
		})
	}
}

func TestAuthService_Refresh_Rotation(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	authService := service.NewAuthService(repos.User, testutil.NewMemoryBlobStore(), cfg)
	ctx := context.Background()

	user, rawPassword := testutil.NewUserBuilder().
		WithUsername("refreshuser").
		Build(t, testDB.DB)

	login, err := authService.Login(ctx, service.LoginInput{Username: user.Username, Password: rawPassword})
	require.NoError(t, err)

	// First exchange succeeds and rotates
	first, err := authService.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, first.RefreshToken)

	stored, err := repos.User.GetRefreshToken(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, first.RefreshToken, stored)

	// Replaying the original token fails: it is single-use
	_, err = authService.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, service.ErrRefreshTokenUsed)

	// The newly issued token works once, then is itself invalidated
	second, err := authService.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = authService.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, service.ErrRefreshTokenUsed)
}

func TestAuthService_Refresh_InvalidTokens(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	authService := service.NewAuthService(repos.User, testutil.NewMemoryBlobStore(), cfg)
	ctx := context.Background()

	user, rawPassword := testutil.NewUserBuilder().
		WithUsername("forgeduser").
		Build(t, testDB.DB)

	login, err := authService.Login(ctx, service.LoginInput{Username: user.Username, Password: rawPassword})
	require.NoError(t, err)

	// A token signed with the access secret must not pass as a refresh
	// token even though it carries the same user id.
	forged, err := authService.ValidateAccessToken(login.AccessToken)
	require.NoError(t, err)
	require.NotNil(t, forged)

	tests := []struct {
		name  string
		token string
	}{
		{name: "access token presented as refresh token", token: login.AccessToken},
		{name: "malformed token", token: "notavalidjwt"},
		{name: "empty token", token: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := authService.Refresh(ctx, tt.token)
			assert.ErrorIs(t, err, service.ErrInvalidRefreshToken)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	authService := service.NewAuthService(repos.User, testutil.NewMemoryBlobStore(), cfg)
	ctx := context.Background()

	user, rawPassword := testutil.NewUserBuilder().
		WithUsername("logoutuser").
		Build(t, testDB.DB)

	login, err := authService.Login(ctx, service.LoginInput{Username: user.Username, Password: rawPassword})
	require.NoError(t, err)

	require.NoError(t, authService.Logout(ctx, user.ID))

	stored, err := repos.User.GetRefreshToken(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)

	// The previously issued token is dead after logout
	_, err = authService.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, service.ErrRefreshTokenUsed)

	// Logout is idempotent
	require.NoError(t, authService.Logout(ctx, user.ID))
}

func TestAuthService_ChangePassword(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	authService := service.NewAuthService(repos.User, testutil.NewMemoryBlobStore(), cfg)
	ctx := context.Background()

	user, rawPassword := testutil.NewUserBuilder().
		WithUsername("passworduser").
		WithPassword("oldpassword").
		Build(t, testDB.DB)

	t.Run("wrong old password does not mutate the credential", func(t *testing.T) {
		err := authService.ChangePassword(ctx, user.ID, "wrongpassword", "newpassword")
		assert.ErrorIs(t, err, service.ErrIncorrectPassword)

		_, err = authService.Login(ctx, service.LoginInput{Username: user.Username, Password: rawPassword})
		assert.NoError(t, err, "old password still works")
	})

	t.Run("correct old password replaces the credential", func(t *testing.T) {
		err := authService.ChangePassword(ctx, user.ID, rawPassword, "newpassword")
		require.NoError(t, err)

		_, err = authService.Login(ctx, service.LoginInput{Username: user.Username, Password: rawPassword})
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)

		_, err = authService.Login(ctx, service.LoginInput{Username: user.Username, Password: "newpassword"})
		assert.NoError(t, err)
	})

	t.Run("existing refresh token survives a password change", func(t *testing.T) {
		login, err := authService.Login(ctx, service.LoginInput{Username: user.Username, Password: "newpassword"})
		require.NoError(t, err)

		require.NoError(t, authService.ChangePassword(ctx, user.ID, "newpassword", "finalpassword"))

		stored, err := repos.User.GetRefreshToken(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, login.RefreshToken, stored)
	})
}
