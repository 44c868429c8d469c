package review

import (
	"github.com/cepho/cepho-api/internal/models"
)

// Context holds the counts that decide whether an evening review is worth
// prompting for. Recomputed from external query results on every evaluation
// tick; never persisted.
type Context struct {
	PendingTasks        int  `json:"pending_tasks"`
	ActiveProjects      int  `json:"active_projects"`
	OutstandingItems    int  `json:"outstanding_items"`
	HasCalendarConflict bool `json:"has_calendar_conflict"`
}

// BuildContext derives the review context from the user's open tasks and projects.
func BuildContext(tasks []*models.Task, projects []*models.Project) Context {
	var ctx Context
	for _, t := range tasks {
		if t == nil {
			continue
		}
		if t.IsOpen() {
			ctx.PendingTasks++
		}
		if t.IsOutstanding() {
			ctx.OutstandingItems++
		}
	}
	for _, p := range projects {
		if p != nil && p.Status == models.ProjectStatusInProgress {
			ctx.ActiveProjects++
		}
	}
	return ctx
}

// Relevant reports whether there is anything worth reviewing. The prompt
// must never appear when this is false.
func (c Context) Relevant() bool {
	return c.PendingTasks > 0 || c.OutstandingItems > 0
}
