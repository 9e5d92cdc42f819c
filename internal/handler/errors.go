package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"devconnector/internal/service"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// WriteError sends an error body with the given status.
func WriteError(w http.ResponseWriter, message, code string, statusCode int) {
	writeJSON(w, ErrorResponse{Error: message, Code: code}, statusCode)
}

// WriteSuccess sends data as JSON with the given status.
func WriteSuccess(w http.ResponseWriter, data interface{}, statusCode int) {
	writeJSON(w, data, statusCode)
}

// WriteServiceError maps a service error onto its HTTP status and code.
func WriteServiceError(w http.ResponseWriter, err error) {
	kind := service.Kind(err)
	status := statusForKind(kind)

	if status == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
		WriteError(w, "Server error", kind, status)
		return
	}

	resp := ErrorResponse{Error: err.Error(), Code: kind}
	if validationErr, ok := asValidationError(err); ok {
		resp.Fields = validationErr.Fields
	}

	writeJSON(w, resp, status)
}

func statusForKind(kind string) int {
	switch kind {
	case service.KindValidation, service.KindAlreadyLiked, service.KindNotLiked,
		service.KindEmailTaken, service.KindInvalidLogin:
		return http.StatusBadRequest
	case service.KindNotFound, service.KindCommentNotFound:
		return http.StatusNotFound
	case service.KindUnauthorized, service.KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
