package handler

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	response := healthResponse{Status: "ok", Database: "up", Timestamp: time.Now().UTC()}
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			h.log.InternalError("health: database ping failed", err)
			response.Status = "degraded"
			response.Database = "down"
			writeJSON(w, http.StatusServiceUnavailable, response)
			return
		}
	}
	writeJSON(w, http.StatusOK, response)
}
