package service

import (
	"github.com/anurag/vidtube-server/internal/blob"
	"github.com/anurag/vidtube-server/internal/config"
	"github.com/anurag/vidtube-server/internal/repository"
)

type Services struct {
	Auth *AuthService
	User *UserService
}

func NewServices(repos *repository.Repositories, blobs blob.Store, cfg *config.Config) *Services {
	return &Services{
		Auth: NewAuthService(repos.User, blobs, cfg),
		User: NewUserService(repos.User, blobs, cfg),
	}
}
