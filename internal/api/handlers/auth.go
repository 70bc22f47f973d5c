package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/anurag/vidtube-server/internal/api/middleware"
	"github.com/anurag/vidtube-server/internal/api/response"
	"github.com/anurag/vidtube-server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type TokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	fullName := r.FormValue("fullName")
	email := r.FormValue("email")
	username := r.FormValue("username")
	password := r.FormValue("password")

	for _, field := range []string{fullName, email, username, password} {
		if strings.TrimSpace(field) == "" {
			response.Error(w, http.StatusBadRequest, "All fields are required")
			return
		}
	}

	avatar, avatarFile := formFile(r, "avatar")
	if avatar == nil {
		response.Error(w, http.StatusBadRequest, "Avatar file is required")
		return
	}
	defer avatarFile.Close()

	coverImage, coverFile := formFile(r, "coverImage")
	if coverFile != nil {
		defer coverFile.Close()
	}

	user, err := h.authService.Register(r.Context(), service.RegisterInput{
		FullName:   fullName,
		Email:      email,
		Username:   username,
		Password:   password,
		Avatar:     *avatar,
		CoverImage: coverImage,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			response.Error(w, http.StatusConflict, "User with this username or email already exists")
			return
		}
		if errors.Is(err, service.ErrUploadFailed) {
			log.Printf("ERROR [AuthHandler.Register] upload failed: %v", err)
			response.Error(w, http.StatusInternalServerError, "Something went wrong while file upload, try again")
			return
		}
		log.Printf("ERROR [AuthHandler.Register] %v", err)
		response.Error(w, http.StatusInternalServerError, "Something went wrong while doing user registration")
		return
	}

	response.JSON(w, http.StatusCreated, user, "User registration successful")
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username == "" && req.Email == "" {
		response.Error(w, http.StatusBadRequest, "Username or email is required")
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.Error(w, http.StatusNotFound, "User does not exist")
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Error(w, http.StatusUnauthorized, "Invalid user credentials")
		default:
			log.Printf("ERROR [AuthHandler.Login] %v", err)
			response.Error(w, http.StatusInternalServerError, "Something went wrong while generating refresh and access tokens")
		}
		return
	}

	setAuthCookies(w, result.AccessToken, result.RefreshToken)
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"user":         result.User,
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
	}, "User logged in successfully")
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	if err := h.authService.Logout(r.Context(), userID); err != nil {
		log.Printf("ERROR [AuthHandler.Logout] %v", err)
		response.Error(w, http.StatusInternalServerError, "Something went wrong while logging out")
		return
	}

	clearAuthCookies(w)
	response.JSON(w, http.StatusOK, map[string]interface{}{}, "User logged out")
}

func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	presented := refreshTokenFromRequest(r)
	if presented == "" {
		response.Error(w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	result, err := h.authService.Refresh(r.Context(), presented)
	if err != nil {
		if errors.Is(err, service.ErrRefreshTokenUsed) {
			response.Error(w, http.StatusUnauthorized, "Refresh token is expired or used")
			return
		}
		response.Error(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	setAuthCookies(w, result.AccessToken, result.RefreshToken)
	response.JSON(w, http.StatusOK, TokenPairResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	}, "Access token refreshed")
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.authService.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrIncorrectPassword) {
			response.Error(w, http.StatusBadRequest, "Incorrect password")
			return
		}
		log.Printf("ERROR [AuthHandler.ChangePassword] %v", err)
		response.Error(w, http.StatusInternalServerError, "Something went wrong while updating password")
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{}, "Password updated successfully")
}

// refreshTokenFromRequest reads the refresh token from the cookie
// first, then the JSON body.
func refreshTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie("refreshToken"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
		return req.RefreshToken
	}

	return ""
}

// formFile extracts a named multipart file. The caller closes the
// returned file when it is non-nil.
func formFile(r *http.Request, name string) (*service.FileUpload, multipart.File) {
	file, header, err := r.FormFile(name)
	if err != nil {
		return nil, nil
	}

	return &service.FileUpload{
		Content:     file,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}, file
}
