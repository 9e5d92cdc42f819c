package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"devconnector/internal/service"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

func (h *Handlers) GetMe(w http.ResponseWriter, r *http.Request) {
	authUser, ok := UserFromContext(r.Context())
	if !ok {
		WriteError(w, "Authentication required", service.KindUnauthenticated, http.StatusUnauthorized)
		return
	}

	user, err := h.UserService.GetCurrentUser(r.Context(), authUser.UserID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteSuccess(w, user, http.StatusOK)
}

func (h *Handlers) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	authUser, ok := UserFromContext(r.Context())
	if !ok {
		WriteError(w, "Authentication required", service.KindUnauthenticated, http.StatusUnauthorized)
		return
	}

	// setting the size limit from the config
	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.MaxUploadSize)
	if err := r.ParseMultipartForm(h.Cfg.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, fmt.Sprintf("File is too large (max %d MB)", h.Cfg.MaxUploadSize/(1024*1024)),
				service.KindValidation, http.StatusBadRequest)
		} else {
			WriteError(w, "Failed to read upload", service.KindValidation, http.StatusBadRequest)
		}
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		WriteError(w, "Image file is required", service.KindValidation, http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !allowedImageTypes[header.Header.Get("Content-Type")] {
		WriteError(w, "Unsupported file type. Allowed: JPEG, PNG, GIF, WebP", service.KindValidation, http.StatusBadRequest)
		return
	}

	user, err := h.UserService.UploadAvatar(r.Context(), authUser.UserID, header.Filename, file, header.Size)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteSuccess(w, user, http.StatusOK)
}
