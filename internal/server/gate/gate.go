// Package gate decides whether a user may reach a feature module.
//
// The decision is a pure function of the caller's settings snapshot and the
// gate's exempt set:
//
//   - exempt modules are always enabled;
//   - while settings are still loading every module is enabled;
//   - once loaded, a module is enabled only if a record says so.
package gate

import (
	"github.com/dmitrijs2005/lifekeeper/internal/common"
	"github.com/dmitrijs2005/lifekeeper/internal/server/models"
)

// DefaultExempt lists modules that can never be switched off: the landing
// page and the page used to switch modules back on.
var DefaultExempt = []string{common.ModuleDashboard, common.ModuleSettings}

// Snapshot is a user's settings as seen by the gate. The zero value is
// pending.
type Snapshot struct {
	loaded  bool
	enabled map[string]bool
}

// Pending returns a snapshot for settings that have not been loaded yet.
func Pending() Snapshot { return Snapshot{} }

// Loaded returns a snapshot over records. A later record for the same module
// wins.
func Loaded(records []models.UserSetting) Snapshot {
	enabled := make(map[string]bool, len(records))
	for _, r := range records {
		enabled[r.ModuleName] = r.Enabled
	}
	return Snapshot{loaded: true, enabled: enabled}
}

// IsPending reports whether the settings have not been loaded yet.
func (s Snapshot) IsPending() bool { return !s.loaded }

// Gate decides module reachability against a fixed set of exempt modules.
type Gate struct {
	exempt map[string]struct{}
}

// New builds a gate exempting the given module names. With no names it uses
// DefaultExempt.
func New(exempt ...string) *Gate {
	if len(exempt) == 0 {
		exempt = DefaultExempt
	}
	g := &Gate{exempt: make(map[string]struct{}, len(exempt))}
	for _, name := range exempt {
		g.exempt[name] = struct{}{}
	}
	return g
}

// IsExempt reports whether name can never be switched off. A nil gate
// exempts nothing.
func (g *Gate) IsExempt(name string) bool {
	if g == nil {
		return false
	}
	_, ok := g.exempt[name]
	return ok
}

// IsModuleEnabled reports whether module name is reachable under snapshot.
func (g *Gate) IsModuleEnabled(snapshot Snapshot, name string) bool {
	if g.IsExempt(name) {
		return true
	}
	if snapshot.IsPending() {
		return true
	}
	return snapshot.enabled[name]
}
