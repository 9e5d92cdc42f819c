package handlers

import (
	"devconnector/internal/config"
	"devconnector/internal/service"
)

type Handlers struct {
	UserService service.UserService
	AuthService service.AuthService
	PostService service.PostService
	Cfg         *config.Config
}

func NewHandlers(service *service.Service, config *config.Config) *Handlers {
	return &Handlers{
		UserService: service.User,
		AuthService: service.Auth,
		PostService: service.Post,
		Cfg:         config,
	}
}
