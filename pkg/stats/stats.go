// Package stats aggregates dashboard statistics over automations and their
// execution history. Every day and week boundary is computed in UTC.
package stats

import (
	"time"

	"github.com/dukex/autoflow/pkg/models"
)

// Compute derives the dashboard snapshot at now. The result does not depend
// on the order of either input.
func Compute(automations []*models.Automation, executions []*models.AutomationExecution, now time.Time) models.AutomationStats {
	result := models.AutomationStats{TotalAutomations: len(automations)}

	for _, a := range automations {
		if a.IsActive() {
			result.ActiveAutomations++
		}
	}

	now = now.UTC()
	year, week := now.ISOWeek()

	var success, failed int64

	for _, e := range executions {
		started := e.StartedAt.UTC()

		if SameDay(started, now) {
			result.ExecutionsToday++
		}

		if y, w := started.ISOWeek(); y == year && w == week {
			result.ExecutionsThisWeek++
		}

		switch e.Status {
		case models.ExecutionStatusSuccess:
			success++
		case models.ExecutionStatusFailed:
			failed++
		}
	}

	result.SuccessRate = models.SuccessRate(success, failed)

	return result
}

// SameDay reports whether a and b fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()

	return ay == by && am == bm && ad == bd
}
