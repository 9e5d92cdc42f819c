package handlers

import (
	"context"
	"errors"

	"devconnector/internal/service"
)

type contextKey string

const userContextKey contextKey = "user"

// AuthUser is the identity taken from a verified access token.
type AuthUser struct {
	UserID string
	Name   string
	Email  string
	Avatar string
}

func ContextWithUser(ctx context.Context, user AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func UserFromContext(ctx context.Context) (AuthUser, bool) {
	user, ok := ctx.Value(userContextKey).(AuthUser)
	return user, ok && user.UserID != ""
}

func asValidationError(err error) (*service.ValidationError, bool) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr, true
	}
	return nil, false
}
