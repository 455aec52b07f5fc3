package cli

import (
	"bytes"
	"testing"
	"time"

	"insightpm/internal/config"
	"insightpm/internal/domain"
)

// setupTestApp returns a signed-in CLI app over a fake API with output
// captured.
func setupTestApp(t *testing.T) (*App, *fakeAPI, *bytes.Buffer) {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return fakeToday }
	t.Cleanup(func() { timeNow = prev })

	api := newFakeAPI()
	api.signIn()
	out := &bytes.Buffer{}
	return NewApp(api, config.NewConfig(), out), api, out
}

func seedTasks(api *fakeAPI) {
	api.tasks = []domain.Task{
		{ID: "t1", Title: "Design schema", Status: domain.StatusTodo, Priority: domain.PriorityHigh,
			AssigneeID: "u1", StartDate: "2024-04-09", DueDate: "2024-04-12", EstimatedTime: 6},
		{ID: "t2", Title: "Write API", Status: domain.StatusInProgress, Priority: domain.PriorityMedium,
			AssigneeID: "u2", StartDate: "2024-04-08", DueDate: "2024-04-09", EstimatedTime: 30},
		{ID: "t3", Title: "Ship", Status: domain.StatusDone, Priority: domain.PriorityLow,
			AssigneeID: "u1", StartDate: "2024-04-01", DueDate: "2024-04-05", EstimatedTime: 2,
			CompletedAt: &fakeToday},
	}
}
