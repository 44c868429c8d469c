package review

import (
	"testing"

	"github.com/cepho/cepho-api/internal/models"
)

func TestBuildContext(t *testing.T) {
	t.Parallel()

	priPtr := func(p models.TaskPriority) *models.TaskPriority { return &p }
	tasks := []*models.Task{
		{Status: models.TaskStatusPending, Priority: priPtr(models.TaskPriorityMedium)},
		{Status: models.TaskStatusInProgress, Priority: priPtr(models.TaskPriorityHigh)},
		{Status: models.TaskStatusBlocked, Priority: priPtr(models.TaskPriorityLow)},
		{Status: models.TaskStatusCompleted, Priority: priPtr(models.TaskPriorityCritical)},
		{Status: models.TaskStatusCancelled, Priority: priPtr(models.TaskPriorityLow)},
		nil,
	}
	projects := []*models.Project{
		{Status: models.ProjectStatusInProgress},
		{Status: models.ProjectStatusPlanned},
		{Status: models.ProjectStatusArchived},
		nil,
	}

	ctx := BuildContext(tasks, projects)

	if ctx.PendingTasks != 3 {
		t.Errorf("expected 3 pending tasks, got %d", ctx.PendingTasks)
	}
	// Blocked low-priority task plus the in-progress high-priority one. The
	// completed critical task is closed and does not count.
	if ctx.OutstandingItems != 2 {
		t.Errorf("expected 2 outstanding items, got %d", ctx.OutstandingItems)
	}
	if ctx.ActiveProjects != 1 {
		t.Errorf("expected 1 active project, got %d", ctx.ActiveProjects)
	}
}

func TestContextRelevant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ctx  Context
		want bool
	}{
		{"pending tasks", Context{PendingTasks: 1}, true},
		{"outstanding items", Context{OutstandingItems: 1}, true},
		{"active projects alone are not enough", Context{ActiveProjects: 5}, false},
		{"empty", Context{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.ctx.Relevant(); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
