package common

// SessionCookieName is the cookie that carries the access token for browser
// clients. API clients may send the same token as a Bearer credential.
const SessionCookieName = "session"

// Module names with special meaning for the gate and the catalog.
const (
	ModuleDashboard = "dashboard"
	ModuleSettings  = "settings"
	ModuleHabits    = "habits"
)
