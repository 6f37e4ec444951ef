package models

import (
	"encoding/json"
	"time"
)

// UserSetting is one user's configuration of one module.
type UserSetting struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	ModuleName   string          `json:"moduleName"`
	Enabled      bool            `json:"enabled"`
	DisplayOrder int             `json:"displayOrder"`
	Settings     json.RawMessage `json:"settings"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// UserSettingPatch carries the optional fields of a settings update. Nil
// means "leave as is".
type UserSettingPatch struct {
	Enabled      *bool
	DisplayOrder *int
	Settings     json.RawMessage
}

// IsEmpty reports whether the patch changes nothing.
func (p UserSettingPatch) IsEmpty() bool {
	return p.Enabled == nil && p.DisplayOrder == nil && p.Settings == nil
}
