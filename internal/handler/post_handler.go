package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"devconnector/internal/service"

	"github.com/gorilla/mux"
)

// PostTextRequest is the body for creating a post or adding a comment.
// Name and avatar fall back to the caller's stored profile.
type PostTextRequest struct {
	Text   string `json:"text"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type DeleteResponse struct {
	Success string `json:"success"`
}

func (h *Handlers) GetPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.PostService.ListAll(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteSuccess(w, posts, http.StatusOK)
}

func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.PostService.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteSuccess(w, post, http.StatusOK)
}

func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		WriteError(w, "Authentication required", service.KindUnauthenticated, http.StatusUnauthorized)
		return
	}

	req, ok := decodeTextRequest(w, r)
	if !ok {
		return
	}

	name, avatar, err := h.authorIdentity(r.Context(), user, req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	post, err := h.PostService.Create(r.Context(), service.CreatePostInput{
		AuthorID: user.UserID,
		Text:     req.Text,
		Name:     name,
		Avatar:   avatar,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteSuccess(w, post, http.StatusCreated)
}

func (h *Handlers) LikePost(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		WriteError(w, "Authentication required", service.KindUnauthenticated, http.StatusUnauthorized)
		return
	}

	post, err := h.PostService.Like(r.Context(), mux.Vars(r)["id"], user.UserID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteSuccess(w, post, http.StatusOK)
}

func (h *Handlers) UnlikePost(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		WriteError(w, "Authentication required", service.KindUnauthenticated, http.StatusUnauthorized)
		return
	}

	post, err := h.PostService.Unlike(r.Context(), mux.Vars(r)["id"], user.UserID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteSuccess(w, post, http.StatusOK)
}

func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		WriteError(w, "Authentication required", service.KindUnauthenticated, http.StatusUnauthorized)
		return
	}

	req, ok := decodeTextRequest(w, r)
	if !ok {
		return
	}

	name, avatar, err := h.authorIdentity(r.Context(), user, req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	post, err := h.PostService.AddComment(r.Context(), mux.Vars(r)["id"], service.AddCommentInput{
		AuthorID: user.UserID,
		Text:     req.Text,
		Name:     name,
		Avatar:   avatar,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteSuccess(w, post, http.StatusOK)
}

func (h *Handlers) RemoveComment(w http.ResponseWriter, r *http.Request) {
	if _, ok := UserFromContext(r.Context()); !ok {
		WriteError(w, "Authentication required", service.KindUnauthenticated, http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	post, err := h.PostService.RemoveComment(r.Context(), vars["postId"], vars["commentId"])
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteSuccess(w, post, http.StatusOK)
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		WriteError(w, "Authentication required", service.KindUnauthenticated, http.StatusUnauthorized)
		return
	}

	if err := h.PostService.Delete(r.Context(), mux.Vars(r)["id"], user.UserID); err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteSuccess(w, DeleteResponse{Success: "Post was successfully deleted"}, http.StatusOK)
}

func decodeTextRequest(w http.ResponseWriter, r *http.Request) (PostTextRequest, bool) {
	var req PostTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Invalid request body", service.KindValidation, http.StatusBadRequest)
		return req, false
	}
	return req, true
}

// authorIdentity fills the name and avatar the body omitted from the current
// profile, so an avatar uploaded after login is used right away.
func (h *Handlers) authorIdentity(ctx context.Context, user AuthUser, req PostTextRequest) (string, string, error) {
	if req.Name != "" && req.Avatar != "" {
		return req.Name, req.Avatar, nil
	}

	profile, err := h.UserService.GetCurrentUser(ctx, user.UserID)
	if err != nil {
		return "", "", err
	}

	return orDefault(req.Name, profile.Name), orDefault(req.Avatar, profile.Avatar), nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
