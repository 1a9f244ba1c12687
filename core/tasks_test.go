package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harborview.com/shiftman/model"
)

func TestAddTask(t *testing.T) {
	client, srv := newOnlineClient(t)
	svc := NewTaskService(newTestStore(t), client, nil)

	task, err := svc.Add(context.Background(), TaskInput{
		AssigneeID: "e1",
		CreatedBy:  "mgr-1",
		Title:      "Restock floor 3 trolley",
		Priority:   model.PriorityHigh,
		DueDate:    "2026-03-12",
	})
	require.NoError(t, err)
	assert.Equal(t, model.TaskPending, task.Status)
	assert.False(t, task.CreatedAt.IsZero())
	assert.Len(t, srv.Rows("tasks"), 1)
}

func TestAddTaskValidation(t *testing.T) {
	svc := NewTaskService(newTestStore(t), newOfflineClient(), nil)

	tests := []struct {
		name  string
		input TaskInput
	}{
		{"missing assignee", TaskInput{CreatedBy: "mgr-1", Title: "x", Priority: model.PriorityLow}},
		{"missing title", TaskInput{AssigneeID: "e1", CreatedBy: "mgr-1", Priority: model.PriorityLow}},
		{"unknown priority", TaskInput{AssigneeID: "e1", CreatedBy: "mgr-1", Title: "x", Priority: "urgent"}},
		{"bad due date", TaskInput{AssigneeID: "e1", CreatedBy: "mgr-1", Title: "x", Priority: model.PriorityLow, DueDate: "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(context.Background(), tt.input)
			assert.Error(t, err)
		})
	}
}

func TestUpdateTaskStatus(t *testing.T) {
	client, _ := newOnlineClient(t)
	svc := NewTaskService(newTestStore(t), client, nil)

	task, err := svc.Add(context.Background(), TaskInput{
		AssigneeID: "e1", CreatedBy: "mgr-1", Title: "x", Priority: model.PriorityLow,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), task.ID, model.TaskCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.TaskCompleted, updated.Status)

	_, err = svc.UpdateStatus(context.Background(), "missing", model.TaskCompleted)
	assert.Error(t, err)
}

func TestRemoveTask(t *testing.T) {
	client, srv := newOnlineClient(t)
	svc := NewTaskService(newTestStore(t), client, nil)

	task, err := svc.Add(context.Background(), TaskInput{
		AssigneeID: "e1", CreatedBy: "mgr-1", Title: "x", Priority: model.PriorityLow,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(context.Background(), task.ID))
	assert.Empty(t, svc.Load())
	assert.Empty(t, srv.Rows("tasks"))
}

func TestTaskFilters(t *testing.T) {
	tasks := []model.Task{
		{ID: "t1", AssigneeID: "e1", Status: model.TaskPending},
		{ID: "t2", AssigneeID: "e1", Status: model.TaskCompleted},
		{ID: "t3", AssigneeID: "e2", Status: model.TaskInProgress},
		{ID: "t4", AssigneeID: "e1", Status: model.TaskCancelled},
	}

	mine := ForAssignee(tasks, "e1")
	assert.Len(t, mine, 3)

	open := OpenTasks(tasks)
	require.Len(t, open, 2)
	assert.Equal(t, "t1", open[0].ID)
	assert.Equal(t, "t3", open[1].ID)
}
