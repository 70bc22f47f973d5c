package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/anurag/vidtube-server/internal/api/middleware"
	"github.com/anurag/vidtube-server/internal/api/response"
	"github.com/anurag/vidtube-server/internal/domain"
	"github.com/anurag/vidtube-server/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type UpdateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

func (h *UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.Error(w, http.StatusNotFound, "User does not exist")
			return
		}
		log.Printf("ERROR [UserHandler.CurrentUser] %v", err)
		response.Error(w, http.StatusInternalServerError, "Something went wrong while fetching the user")
		return
	}

	response.JSON(w, http.StatusOK, user, "Current user fetched successfully")
}

func (h *UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	var req UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateAccount(r.Context(), userID, req.FullName, req.Email)
	if err != nil {
		if errors.Is(err, service.ErrFieldsRequired) {
			response.Error(w, http.StatusBadRequest, "All fields are required")
			return
		}
		log.Printf("ERROR [UserHandler.UpdateAccount] %v", err)
		response.Error(w, http.StatusInternalServerError, "Something went wrong while updating account details")
		return
	}

	response.JSON(w, http.StatusOK, user, "Account details updated successfully")
}

func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.replaceMedia(w, r, "avatar", domain.MediaFieldAvatar, "Avatar")
}

func (h *UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.replaceMedia(w, r, "coverImage", domain.MediaFieldCoverImage, "Cover image")
}

func (h *UserHandler) replaceMedia(w http.ResponseWriter, r *http.Request, formName string, field domain.MediaField, label string) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	upload, file := formFile(r, formName)
	if upload == nil {
		response.Error(w, http.StatusBadRequest, label+" file is missing")
		return
	}
	defer file.Close()

	user, err := h.userService.ReplaceMedia(r.Context(), userID, field, *upload)
	if err != nil {
		var evictionErr *service.EvictionError
		if errors.As(err, &evictionErr) {
			// The new URL is already committed; the failed cleanup is
			// reported with its raw cause for diagnostics.
			log.Printf("ERROR [UserHandler.replaceMedia] %v", evictionErr)
			response.Error(w, http.StatusInternalServerError,
				"Something went wrong while deleting previous "+label,
				evictionErr.Cause.Error())
			return
		}
		if errors.Is(err, service.ErrUploadFailed) {
			log.Printf("ERROR [UserHandler.replaceMedia] %v", err)
			response.Error(w, http.StatusInternalServerError,
				"Something went wrong while uploading the "+label+", try again")
			return
		}
		log.Printf("ERROR [UserHandler.replaceMedia] %v", err)
		response.Error(w, http.StatusInternalServerError, "Something went wrong while updating the "+label)
		return
	}

	response.JSON(w, http.StatusOK, user, label+" updated successfully")
}
