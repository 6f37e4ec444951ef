package httpapi

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp"`
	Uptime    float64 `json:"uptime"`
}

func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: now.UTC().Format(time.RFC3339Nano),
		Uptime:    now.Sub(s.started).Seconds(),
	})
}

type currentDateResponse struct {
	Date     string `json:"date"`
	Timezone string `json:"timezone"`
}

func (s *HTTPServer) currentDate(w http.ResponseWriter, r *http.Request) {
	loc := s.habits.Location()
	writeJSON(w, http.StatusOK, currentDateResponse{
		Date:     s.now().UTC().Format(time.RFC3339Nano),
		Timezone: loc.String(),
	})
}
