package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrAlreadyLiked    = errors.New("user already liked this post")
	ErrNotLiked        = errors.New("you have not liked this post yet")
	ErrCommentNotFound = errors.New("comment does not exist")
	ErrNotAuthorized   = errors.New("user is not authorized")

	ErrEmailTaken          = errors.New("email already exists")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidToken        = errors.New("invalid token")
	ErrInvalidRefreshToken = errors.New("refresh token is invalid or expired")
	ErrUserNotFound        = errors.New("user not found")
)

// Error kinds reported to clients and metrics.
const (
	KindOK              = "ok"
	KindValidation      = "ValidationError"
	KindNotFound        = "NotFound"
	KindAlreadyLiked    = "AlreadyLiked"
	KindNotLiked        = "NotLiked"
	KindCommentNotFound = "CommentNotFound"
	KindUnauthorized    = "Unauthorized"
	KindEmailTaken      = "EmailTaken"
	KindInvalidLogin    = "InvalidCredentials"
	KindUnauthenticated = "Unauthenticated"
	KindInternal        = "Internal"
)

// ValidationError lists the offending input fields with a message for each.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

// Kind classifies err into one of the Kind* constants.
func Kind(err error) string {
	var validationErr *ValidationError

	switch {
	case err == nil:
		return KindOK
	case errors.As(err, &validationErr):
		return KindValidation
	case errors.Is(err, ErrPostNotFound), errors.Is(err, ErrUserNotFound):
		return KindNotFound
	case errors.Is(err, ErrAlreadyLiked):
		return KindAlreadyLiked
	case errors.Is(err, ErrNotLiked):
		return KindNotLiked
	case errors.Is(err, ErrCommentNotFound):
		return KindCommentNotFound
	case errors.Is(err, ErrNotAuthorized):
		return KindUnauthorized
	case errors.Is(err, ErrEmailTaken):
		return KindEmailTaken
	case errors.Is(err, ErrInvalidCredentials):
		return KindInvalidLogin
	case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrInvalidRefreshToken):
		return KindUnauthenticated
	default:
		return KindInternal
	}
}
