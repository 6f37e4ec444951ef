package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/lifekeeper/internal/common"
	"github.com/dmitrijs2005/lifekeeper/internal/server/catalog"
	"github.com/dmitrijs2005/lifekeeper/internal/server/gate"
	"github.com/dmitrijs2005/lifekeeper/internal/server/models"
	"github.com/dmitrijs2005/lifekeeper/internal/server/repositories/repomanager"
)

// CreateSettingInput names the module either by ModuleID or ModuleName; the
// catalog keys modules by name so both mean the same thing.
type CreateSettingInput struct {
	ModuleID     string
	ModuleName   string
	Enabled      *bool
	DisplayOrder *int
	Settings     json.RawMessage
}

func (in CreateSettingInput) module() string {
	if in.ModuleID != "" {
		return in.ModuleID
	}
	return in.ModuleName
}

// SettingsService manages which modules a user has switched on and how they
// are configured.
type SettingsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	catalog     *catalog.Catalog
	gate        *gate.Gate
}

func NewSettingsService(db *sql.DB, m repomanager.RepositoryManager, c *catalog.Catalog, g *gate.Gate) *SettingsService {
	return &SettingsService{db: db, repomanager: m, catalog: c, gate: g}
}

func (s *SettingsService) Modules() []models.Module { return s.catalog.List() }

func (s *SettingsService) List(ctx context.Context, userID string) ([]models.UserSetting, error) {
	out, err := s.repomanager.Settings(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing settings: %w", err)
	}
	return out, nil
}

func (s *SettingsService) GetByModule(ctx context.Context, userID, moduleName string) (*models.UserSetting, error) {
	us, err := s.repomanager.Settings(s.db).GetByModule(ctx, userID, moduleName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error loading setting: %w", err)
	}
	return us, nil
}

// Create adds the user's record for a catalog module. Omitted fields take the
// module's defaults. A second record for the same module fails with
// common.ErrorConflict.
func (s *SettingsService) Create(ctx context.Context, userID string, in CreateSettingInput) (*models.UserSetting, error) {
	name := in.module()
	if name == "" {
		return nil, fmt.Errorf("%w: moduleId is required", common.ErrorValidation)
	}
	mod, ok := s.catalog.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %w %q", common.ErrorValidation, common.ErrorUnknownModule, name)
	}

	us := &models.UserSetting{
		UserID:       userID,
		ModuleName:   mod.Name,
		Enabled:      true,
		DisplayOrder: mod.DisplayOrder,
		Settings:     mod.DefaultSettings,
	}
	if in.Enabled != nil {
		us.Enabled = *in.Enabled
	}
	if in.DisplayOrder != nil {
		us.DisplayOrder = *in.DisplayOrder
	}
	if in.Settings != nil {
		if !isJSONObject(in.Settings) {
			return nil, fmt.Errorf("%w: settings must be a JSON object", common.ErrorValidation)
		}
		us.Settings = in.Settings
	}

	created, err := s.repomanager.Settings(s.db).Create(ctx, us)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating setting: %w", err)
	}
	return created, nil
}

// Update applies patch to the user's record id. An empty patch returns the
// record untouched.
func (s *SettingsService) Update(ctx context.Context, userID, id string, patch models.UserSettingPatch) (*models.UserSetting, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	repo := s.repomanager.Settings(s.db)

	if patch.Settings != nil && !isJSONObject(patch.Settings) {
		return nil, fmt.Errorf("%w: settings must be a JSON object", common.ErrorValidation)
	}

	var (
		us  *models.UserSetting
		err error
	)
	if patch.IsEmpty() {
		us, err = repo.GetByID(ctx, userID, id)
	} else {
		us, err = repo.Update(ctx, userID, id, patch)
	}
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating setting: %w", err)
	}
	return us, nil
}

func (s *SettingsService) Delete(ctx context.Context, userID, id string) error {
	if !validID(id) {
		return common.ErrorNotFound
	}
	if err := s.repomanager.Settings(s.db).Delete(ctx, userID, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("error deleting setting: %w", err)
	}
	return nil
}

// Initialize fills in a default record for every module the user lacks.
func (s *SettingsService) Initialize(ctx context.Context, userID string) (int64, error) {
	n, err := s.repomanager.Settings(s.db).InitializeForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("error initializing settings: %w", err)
	}
	return n, nil
}

// Snapshot loads the user's settings in the shape the gate reads.
func (s *SettingsService) Snapshot(ctx context.Context, userID string) (gate.Snapshot, error) {
	records, err := s.List(ctx, userID)
	if err != nil {
		return gate.Pending(), err
	}
	return gate.Loaded(records), nil
}

// IsModuleEnabled answers the gate question for one user and module.
func (s *SettingsService) IsModuleEnabled(ctx context.Context, userID, module string) (bool, error) {
	if s.gate.IsExempt(module) {
		return true, nil
	}
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return false, err
	}
	return s.gate.IsModuleEnabled(snap, module), nil
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(trimmed)
}
