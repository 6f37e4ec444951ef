package gate

import (
	"testing"

	"github.com/dmitrijs2005/lifekeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
)

func setting(module string, enabled bool) models.UserSetting {
	return models.UserSetting{ModuleName: module, Enabled: enabled}
}

func TestIsModuleEnabled_PendingFailsOpen(t *testing.T) {
	g := New()
	for _, name := range []string{"habits", "analytics", "foo", ""} {
		assert.True(t, g.IsModuleEnabled(Pending(), name), name)
		assert.True(t, g.IsModuleEnabled(Snapshot{}, name), name)
	}
}

func TestIsModuleEnabled_ExemptIgnoresRecords(t *testing.T) {
	g := New()
	snap := Loaded([]models.UserSetting{
		setting("dashboard", false),
		setting("settings", false),
	})

	assert.True(t, g.IsModuleEnabled(snap, "dashboard"))
	assert.True(t, g.IsModuleEnabled(snap, "settings"))
	assert.True(t, g.IsModuleEnabled(Loaded(nil), "dashboard"))
}

func TestIsModuleEnabled_LoadedWithoutRecordFailsClosed(t *testing.T) {
	g := New()
	snap := Loaded([]models.UserSetting{setting("habits", true)})

	assert.False(t, g.IsModuleEnabled(snap, "foo"))
	assert.False(t, g.IsModuleEnabled(Loaded(nil), "foo"))
	assert.False(t, g.IsModuleEnabled(Loaded([]models.UserSetting{}), "habits"))
}

func TestIsModuleEnabled_FollowsRecord(t *testing.T) {
	g := New()
	snap := Loaded([]models.UserSetting{
		setting("habits", true),
		setting("goals", false),
	})

	assert.True(t, g.IsModuleEnabled(snap, "habits"))
	assert.False(t, g.IsModuleEnabled(snap, "goals"))
}

func TestIsModuleEnabled_ToggleThenGate(t *testing.T) {
	g := New()
	before := Loaded([]models.UserSetting{setting("habits", true)})
	assert.False(t, g.IsModuleEnabled(before, "analytics"))

	after := Loaded([]models.UserSetting{setting("habits", true), setting("analytics", true)})
	assert.True(t, g.IsModuleEnabled(after, "analytics"))
}

func TestNew_CustomExemptSet(t *testing.T) {
	g := New("journal")
	snap := Loaded(nil)

	assert.True(t, g.IsModuleEnabled(snap, "journal"))
	assert.False(t, g.IsModuleEnabled(snap, "dashboard"))
}

func TestIsModuleEnabled_NilGate(t *testing.T) {
	var g *Gate
	assert.NotPanics(t, func() {
		assert.True(t, g.IsModuleEnabled(Pending(), "habits"))
		assert.False(t, g.IsModuleEnabled(Loaded(nil), "dashboard"))
	})
}
