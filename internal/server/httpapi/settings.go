package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/lifekeeper/internal/common"
	"github.com/dmitrijs2005/lifekeeper/internal/server/models"
	"github.com/dmitrijs2005/lifekeeper/internal/server/services"
	"github.com/gorilla/mux"
)

type createSettingRequest struct {
	ModuleID     string          `json:"moduleId" validate:"required_without=ModuleName"`
	ModuleName   string          `json:"moduleName"`
	Enabled      *bool           `json:"enabled"`
	DisplayOrder *int            `json:"displayOrder" validate:"omitempty,min=0"`
	Settings     json.RawMessage `json:"settings"`
}

type updateSettingRequest struct {
	Enabled      *bool           `json:"enabled"`
	DisplayOrder *int            `json:"displayOrder" validate:"omitempty,min=0"`
	Settings     json.RawMessage `json:"settings"`
}

type moduleAccessResponse struct {
	Module  string `json:"module"`
	Enabled bool   `json:"enabled"`
}

func (s *HTTPServer) listModules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.settings.Modules())
}

func (s *HTTPServer) moduleAccess(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	snap, err := s.settings.Snapshot(r.Context(), UserIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, moduleAccessResponse{Module: name, Enabled: s.gate.IsModuleEnabled(snap, name)})
}

func (s *HTTPServer) listSettings(w http.ResponseWriter, r *http.Request) {
	out, err := s.settings.List(r.Context(), UserIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *HTTPServer) getSetting(w http.ResponseWriter, r *http.Request) {
	us, err := s.settings.GetByModule(r.Context(), UserIDFrom(r.Context()), mux.Vars(r)["moduleName"])
	if err != nil {
		s.writeError(w, r, err, messages{common.ErrorNotFound: "Setting not found for this module"})
		return
	}
	writeJSON(w, http.StatusOK, us)
}

func (s *HTTPServer) createSetting(w http.ResponseWriter, r *http.Request) {
	var req createSettingRequest
	if !s.decode(w, r, &req, "Invalid user setting data") {
		return
	}

	us, err := s.settings.Create(r.Context(), UserIDFrom(r.Context()), services.CreateSettingInput{
		ModuleID:     req.ModuleID,
		ModuleName:   req.ModuleName,
		Enabled:      req.Enabled,
		DisplayOrder: req.DisplayOrder,
		Settings:     nullToNil(req.Settings),
	})
	if err != nil {
		s.writeError(w, r, err, messages{common.ErrorConflict: "Setting already exists for this module"})
		return
	}
	writeJSON(w, http.StatusCreated, us)
}

func (s *HTTPServer) updateSetting(w http.ResponseWriter, r *http.Request) {
	var req updateSettingRequest
	if !s.decode(w, r, &req, "Invalid user setting data") {
		return
	}

	us, err := s.settings.Update(r.Context(), UserIDFrom(r.Context()), mux.Vars(r)["id"], models.UserSettingPatch{
		Enabled:      req.Enabled,
		DisplayOrder: req.DisplayOrder,
		Settings:     nullToNil(req.Settings),
	})
	if err != nil {
		s.writeError(w, r, err, messages{common.ErrorNotFound: "Setting not found or does not belong to user"})
		return
	}
	writeJSON(w, http.StatusOK, us)
}

func (s *HTTPServer) deleteSetting(w http.ResponseWriter, r *http.Request) {
	err := s.settings.Delete(r.Context(), UserIDFrom(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err, messages{common.ErrorNotFound: "Setting not found or does not belong to user"})
		return
	}
	writeMessage(w, http.StatusOK, "User setting deleted successfully")
}

// nullToNil treats an explicit JSON null like an absent field.
func nullToNil(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return raw
}
