package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/lifekeeper/internal/common"
	"github.com/dmitrijs2005/lifekeeper/internal/server/services"
	"github.com/dmitrijs2005/lifekeeper/internal/timex"
	"github.com/gorilla/mux"
)

type createHabitRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description"`
	Frequency   string  `json:"frequency" validate:"required,max=64"`
	TimeOfDay   *string `json:"timeOfDay" validate:"omitempty,max=64"`
	Streak      *int    `json:"streak" validate:"omitempty,min=0"`
	BestStreak  *int    `json:"bestStreak" validate:"omitempty,min=0"`
}

type updateHabitRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
	Frequency   *string `json:"frequency" validate:"omitempty,min=1,max=64"`
	TimeOfDay   *string `json:"timeOfDay" validate:"omitempty,max=64"`
	Streak      *int    `json:"streak" validate:"omitempty,min=0"`
	BestStreak  *int    `json:"bestStreak" validate:"omitempty,min=0"`
}

type createEntryRequest struct {
	HabitID     string     `json:"habitId" validate:"required"`
	Notes       *string    `json:"notes"`
	CompletedAt *time.Time `json:"completedAt"`
}

var habitMessages = messages{common.ErrorNotFound: "Habit not found"}

func (s *HTTPServer) listHabits(w http.ResponseWriter, r *http.Request) {
	out, err := s.habits.ListHabits(r.Context(), UserIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *HTTPServer) getHabit(w http.ResponseWriter, r *http.Request) {
	h, err := s.habits.GetHabit(r.Context(), UserIDFrom(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err, habitMessages)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *HTTPServer) createHabit(w http.ResponseWriter, r *http.Request) {
	var req createHabitRequest
	if !s.decode(w, r, &req, "Invalid habit data") {
		return
	}

	h, err := s.habits.CreateHabit(r.Context(), UserIDFrom(r.Context()), services.CreateHabitInput{
		Title:       req.Title,
		Description: req.Description,
		Frequency:   req.Frequency,
		TimeOfDay:   req.TimeOfDay,
		Streak:      req.Streak,
		BestStreak:  req.BestStreak,
	})
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, h)
}

func (s *HTTPServer) updateHabit(w http.ResponseWriter, r *http.Request) {
	var req updateHabitRequest
	if !s.decode(w, r, &req, "Invalid habit data") {
		return
	}

	h, err := s.habits.UpdateHabit(r.Context(), UserIDFrom(r.Context()), mux.Vars(r)["id"], services.UpdateHabitInput{
		Title:       req.Title,
		Description: req.Description,
		Frequency:   req.Frequency,
		TimeOfDay:   req.TimeOfDay,
		Streak:      req.Streak,
		BestStreak:  req.BestStreak,
	})
	if err != nil {
		s.writeError(w, r, err, habitMessages)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *HTTPServer) deleteHabit(w http.ResponseWriter, r *http.Request) {
	if err := s.habits.DeleteHabit(r.Context(), UserIDFrom(r.Context()), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, r, err, habitMessages)
		return
	}
	writeMessage(w, http.StatusOK, "Habit deleted successfully")
}

func (s *HTTPServer) listHabitEntries(w http.ResponseWriter, r *http.Request) {
	out, err := s.habits.ListEntriesForHabit(r.Context(), UserIDFrom(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err, habitMessages)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// listEntries serves GET /api/habit-entries[?date=YYYY-MM-DD|RFC3339].
func (s *HTTPServer) listEntries(w http.ResponseWriter, r *http.Request) {
	var date *time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := timex.ParseDate(raw, s.habits.Location())
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid date")
			return
		}
		date = &d
	}

	out, err := s.habits.ListEntriesForUser(r.Context(), UserIDFrom(r.Context()), date)
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *HTTPServer) createEntry(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if !s.decode(w, r, &req, "Invalid habit entry data") {
		return
	}

	e, err := s.habits.CompleteHabit(r.Context(), UserIDFrom(r.Context()), services.CompleteHabitInput{
		HabitID:     req.HabitID,
		Notes:       req.Notes,
		CompletedAt: req.CompletedAt,
	})
	if err != nil {
		s.writeError(w, r, err, messages{common.ErrorForbidden: "Not authorized to create an entry for this habit"})
		return
	}
	s.metrics.HabitCompleted()
	writeJSON(w, http.StatusCreated, e)
}

func (s *HTTPServer) deleteEntry(w http.ResponseWriter, r *http.Request) {
	ok, err := s.habits.DeleteHabitEntry(r.Context(), UserIDFrom(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	if !ok {
		writeMessage(w, http.StatusNotFound, "Habit entry not found")
		return
	}
	s.metrics.HabitEntryDeleted()
	writeMessage(w, http.StatusOK, "Habit entry deleted successfully")
}
