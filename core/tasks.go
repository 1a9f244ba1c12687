package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	v1 "harborview.com/shiftman/backend/v1"
	"harborview.com/shiftman/cache"
	"harborview.com/shiftman/model"
	"harborview.com/shiftman/realtime"
	"harborview.com/shiftman/utils"
)

type TaskService struct {
	store    *cache.Store
	api      *v1.Client
	log      *slog.Logger
	validate *validator.Validate
	now      func() time.Time
}

func NewTaskService(store *cache.Store, api *v1.Client, log *slog.Logger) *TaskService {
	if log == nil {
		log = slog.Default()
	}
	return &TaskService{
		store:    store,
		api:      api,
		log:      log,
		validate: validator.New(),
		now:      time.Now,
	}
}

func (s *TaskService) Load() []model.Task {
	return loadCached[model.Task](s.store, cache.BucketTasks, s.log)
}

func (s *TaskService) Refresh(ctx context.Context) ([]model.Task, error) {
	return refreshList(ctx, s.store, s.api, tableTasks, nil,
		func(t model.Task) string { return t.ID }, s.log)
}

type TaskInput struct {
	AssigneeID  string             `validate:"required"`
	CreatedBy   string             `validate:"required"`
	Title       string             `validate:"required,max=120"`
	Description string             `validate:"omitempty,max=1000"`
	Priority    model.TaskPriority `validate:"required,oneof=low medium high"`
	DueDate     string             `validate:"omitempty,datetime=2006-01-02"`
}

// Add assigns a new task to one employee.
func (s *TaskService) Add(ctx context.Context, input TaskInput) (*model.Task, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid task: %w", err)
	}

	task := model.Task{
		ID:          uuid.NewString(),
		AssigneeID:  input.AssigneeID,
		CreatedBy:   input.CreatedBy,
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Status:      model.TaskPending,
		DueDate:     input.DueDate,
		CreatedAt:   s.now().UTC(),
	}
	err := putOptimistic(ctx, s.store, s.api, tableTasks, task.ID, task, s.log)
	return &task, err
}

// UpdateStatus transitions a task.
func (s *TaskService) UpdateStatus(ctx context.Context, taskID string, status model.TaskStatus) (*model.Task, error) {
	task, err := cache.GetJSON[model.Task](s.store, cache.BucketTasks, taskID)
	if err != nil || task == nil {
		return nil, fmt.Errorf("task %s not found", taskID)
	}
	task.Status = status
	err = putOptimistic(ctx, s.store, s.api, tableTasks, task.ID, *task, s.log)
	return task, err
}

// Remove deletes a task locally and remotely.
func (s *TaskService) Remove(ctx context.Context, taskID string) error {
	return deleteOptimistic(ctx, s.store, s.api, tableTasks, taskID, s.log)
}

// Watch reloads tasks on backend row changes.
func (s *TaskService) Watch(reg *realtime.Registry, filter string, onReload func([]model.Task, error)) (*realtime.Subscription, error) {
	return reg.Subscribe(tableTasks, filter, realtime.EventAll, realtime.Handlers{
		OnChange: func(realtime.Event) {
			items, err := s.Refresh(context.Background())
			onReload(items, err)
		},
	})
}

// ForAssignee filters tasks owned by one employee.
func ForAssignee(tasks []model.Task, employeeID string) []model.Task {
	return utils.Filter(tasks, func(t model.Task) bool { return t.AssigneeID == employeeID })
}

// OpenTasks filters tasks that are still pending or in progress.
func OpenTasks(tasks []model.Task) []model.Task {
	return utils.Filter(tasks, func(t model.Task) bool {
		return t.Status == model.TaskPending || t.Status == model.TaskInProgress
	})
}
