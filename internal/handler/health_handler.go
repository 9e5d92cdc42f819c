package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"devconnector/internal/database"
)

type HealthResponse struct {
	Status string `json:"status"`
}

// Health reports whether the backing store answers a ping.
func Health(checker database.HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := checker.HealthCheck(ctx); err != nil {
				log.Printf("health check failed: %v", err)
				WriteSuccess(w, HealthResponse{Status: "unavailable"}, http.StatusServiceUnavailable)
				return
			}
		}

		WriteSuccess(w, HealthResponse{Status: "ok"}, http.StatusOK)
	}
}
