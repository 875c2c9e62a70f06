package models

// AutomationStats is a derived snapshot over automations and executions. It is
// never stored.
type AutomationStats struct {
	TotalAutomations   int     `json:"total_automations"`
	ActiveAutomations  int     `json:"active_automations"`
	ExecutionsToday    int     `json:"executions_today"`
	ExecutionsThisWeek int     `json:"executions_this_week"`
	SuccessRate        float64 `json:"success_rate"`
}
