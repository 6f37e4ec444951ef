package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/lifekeeper/internal/common"
	"github.com/dmitrijs2005/lifekeeper/internal/server/models"
	"github.com/dmitrijs2005/lifekeeper/internal/server/services"
)

type registerRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=64"`
	Password string  `json:"password" validate:"required,min=6,max=128"`
	Name     *string `json:"name" validate:"omitempty,max=128"`
	Email    *string `json:"email" validate:"omitempty,email"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type sessionResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

func (s *HTTPServer) setSessionCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.users.AccessTokenTTL().Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *HTTPServer) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decode(w, r, &req, "Invalid user data") {
		return
	}

	user, pair, err := s.users.Register(r.Context(), services.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Email:    req.Email,
	})
	if errors.Is(err, common.ErrorConflict) {
		writeMessage(w, http.StatusBadRequest, "Username already exists")
		return
	}
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}

	s.logger.Info(r.Context(), "Registered", "username", user.UserName)
	s.setSessionCookie(w, r, pair.AccessToken)
	writeJSON(w, http.StatusCreated, sessionResponse{User: user, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decode(w, r, &req, "Invalid credentials") {
		return
	}

	user, pair, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err, messages{common.ErrorUnauthorized: "Incorrect username or password"})
		return
	}

	s.setSessionCookie(w, r, pair.AccessToken)
	writeJSON(w, http.StatusOK, sessionResponse{User: user, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (s *HTTPServer) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !s.decode(w, r, &req, "Invalid refresh request") {
		return
	}

	pair, err := s.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}

	s.setSessionCookie(w, r, pair.AccessToken)
	writeJSON(w, http.StatusOK, pair)
}

func (s *HTTPServer) logout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if !s.decode(w, r, &req, "Invalid logout request") {
		return
	}

	if err := s.users.Logout(r.Context(), req.RefreshToken); err != nil {
		s.writeError(w, r, err, nil)
		return
	}

	clearSessionCookie(w)
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

func (s *HTTPServer) currentUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetUser(r.Context(), UserIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err, messages{common.ErrorUnauthorized: "Not authenticated"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}
