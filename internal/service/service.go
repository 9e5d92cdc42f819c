package service

import (
	"devconnector/internal/cache"
	"devconnector/internal/config"
	"devconnector/internal/repository"
	"devconnector/internal/storage"
)

type Service struct {
	User UserService
	Post PostService
	Auth AuthService
}

func NewService(rep *repository.Repository, cfg *config.Config, storage storage.Storage, postCache cache.PostCache) *Service {
	return &Service{
		User: NewUserService(rep.User, storage),
		Post: NewPostService(rep.Post, postCache, cfg),
		Auth: NewAuthService(rep.User, cfg),
	}
}
