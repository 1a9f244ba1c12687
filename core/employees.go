package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	v1 "harborview.com/shiftman/backend/v1"
	"harborview.com/shiftman/cache"
	"harborview.com/shiftman/model"
	"harborview.com/shiftman/utils"
)

type EmployeeService struct {
	store    *cache.Store
	api      *v1.Client
	log      *slog.Logger
	validate *validator.Validate
}

func NewEmployeeService(store *cache.Store, api *v1.Client, log *slog.Logger) *EmployeeService {
	if log == nil {
		log = slog.Default()
	}
	return &EmployeeService{
		store:    store,
		api:      api,
		log:      log,
		validate: validator.New(),
	}
}

func (s *EmployeeService) Load() []model.Employee {
	return loadCached[model.Employee](s.store, cache.BucketEmployees, s.log)
}

func (s *EmployeeService) Refresh(ctx context.Context) ([]model.Employee, error) {
	return refreshList(ctx, s.store, s.api, tableEmployees, nil,
		func(e model.Employee) string { return e.ID }, s.log)
}

type EmployeeInput struct {
	Email     string         `validate:"required,email"`
	FirstName string         `validate:"required,max=64"`
	LastName  string         `validate:"omitempty,max=64"`
	Phone     string         `validate:"omitempty,max=32"`
	Role      model.Role     `validate:"required,oneof=admin manager employee"`
	Category  model.Category `validate:"omitempty,oneof=breakfast housekeeping frontdesk"`
}

// Add registers a new employee (admin operation).
func (s *EmployeeService) Add(ctx context.Context, input EmployeeInput) (*model.Employee, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid employee: %w", err)
	}

	emp := model.Employee{
		ID:        uuid.NewString(),
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
		Role:      input.Role,
		Category:  input.Category,
	}
	err := putOptimistic(ctx, s.store, s.api, tableEmployees, emp.ID, emp, s.log)
	return &emp, err
}

// UpdateProfile persists profile edits for an existing employee.
func (s *EmployeeService) UpdateProfile(ctx context.Context, emp model.Employee) error {
	if emp.ID == "" {
		return fmt.Errorf("employee id is required")
	}
	return putOptimistic(ctx, s.store, s.api, tableEmployees, emp.ID, emp, s.log)
}

// ByID finds an employee in an already-loaded list.
func ByID(employees []model.Employee, id string) *model.Employee {
	return utils.Find(employees, func(e model.Employee) bool { return e.ID == id })
}

// ByCategory filters employees in one hotel department category.
func ByCategory(employees []model.Employee, category model.Category) []model.Employee {
	return utils.Filter(employees, func(e model.Employee) bool { return e.Category == category })
}
