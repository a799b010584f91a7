package handler

import (
	"net/http"
	"time"

	"gallery/internal/middleware"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	// Ping database to verify connection
	if err := h.db.PingContext(r.Context()); err != nil {
		middleware.WriteJSON(w, http.StatusInternalServerError, HealthResponse{
			Status:    "unhealthy",
			Timestamp: time.Now().UTC(),
		})
		return
	}

	middleware.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
	})
}
