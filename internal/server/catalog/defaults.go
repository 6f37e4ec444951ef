package catalog

import (
	"github.com/dmitrijs2005/lifekeeper/internal/common"
	"github.com/dmitrijs2005/lifekeeper/internal/server/models"
)

// DashboardWidgets are the widgets a fresh dashboard shows.
var DashboardWidgets = []string{"goals", "habits", "activities", "mood", "journal", "calendar"}

// Defaults returns the built-in module catalog.
func Defaults() []models.Module {
	empty := rawJSON(map[string]any{})
	reminder := rawJSON(map[string]any{"reminderTime": ""})

	return []models.Module{
		{Name: common.ModuleDashboard, Title: "Dashboard", Description: "Overview of your personal development journey", Icon: "LayoutDashboard", IsSystem: true, DisplayOrder: 1,
			DefaultSettings: rawJSON(map[string]any{"widgets": DashboardWidgets})},
		{Name: "principles", Title: "Core Principles", Description: "Define your core values and guiding principles", Icon: "Heart", IsSystem: true, DisplayOrder: 2, DefaultSettings: empty},
		{Name: "goals", Title: "Goals", Description: "Track and manage your short and long-term goals", Icon: "Target", IsSystem: true, DisplayOrder: 3, DefaultSettings: empty},
		{Name: "projects", Title: "Passions & Projects", Description: "Manage complex projects with multiple tasks", Icon: "FolderGit2", IsSystem: true, DisplayOrder: 4, DefaultSettings: empty},
		{Name: common.ModuleHabits, Title: "Habits & Rituals", Description: "Build and maintain positive daily routines", Icon: "Repeat", IsSystem: true, DisplayOrder: 5, DefaultSettings: reminder},
		{Name: "activities", Title: "Activities", Description: "Organize tasks using the Eisenhower matrix", Icon: "ListTodo", IsSystem: true, DisplayOrder: 6, DefaultSettings: empty},
		{Name: "challenges", Title: "Challenges & Solutions", Description: "Space for identifying challenges and developing solutions", Icon: "Lightbulb", IsSystem: true, DisplayOrder: 7, DefaultSettings: empty},
		{Name: "journal", Title: "Self-Analysis (Journal)", Description: "Document your thoughts and reflections", Icon: "BookOpen", IsSystem: true, DisplayOrder: 8, DefaultSettings: reminder},
		{Name: "analytics", Title: "Analytics", Description: "Insights and visualizations of your progress", Icon: "BarChart3", IsSystem: true, DisplayOrder: 9,
			DefaultSettings: rawJSON(map[string]any{"defaultTimeRange": "month"})},
		{Name: "social", Title: "Social Interactions", Description: "Track and manage social connections and events", Icon: "Users", IsSystem: true, DisplayOrder: 10, DefaultSettings: empty},
		{Name: "mood", Title: "Mood", Description: "Track your emotional well-being over time", Icon: "Smile", IsSystem: true, DisplayOrder: 11, DefaultSettings: empty},
		{Name: "calendar", Title: "Calendar", Description: "Plan and visualize your schedule", Icon: "Calendar", IsSystem: true, DisplayOrder: 12, DefaultSettings: empty},
		{Name: common.ModuleSettings, Title: "Settings", Description: "Choose which modules you use and how they behave", Icon: "Settings", IsSystem: true, DisplayOrder: 13, DefaultSettings: empty},
	}
}
