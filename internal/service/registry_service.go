package service

import (
	"context"
	"strings"

	"github.com/misd-it/misdesk/internal/auth"
	"github.com/misd-it/misdesk/internal/domain"
	"github.com/misd-it/misdesk/internal/repository"
	apperrors "github.com/misd-it/misdesk/pkg/util"
)

// RegistryService is the CRUD layer over the department and filer lookup
// tables, gated by the configuration permissions. Duplicate names are
// not rejected; deletion is restricted while tickets reference the row.
type RegistryService struct {
	departments repository.DepartmentRepository
	filers      repository.FilerRepository
	tickets     repository.TicketRepository
}

// NewRegistryService constructs the service.
func NewRegistryService(departments repository.DepartmentRepository, filers repository.FilerRepository, tickets repository.TicketRepository) *RegistryService {
	return &RegistryService{departments: departments, filers: filers, tickets: tickets}
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return "", apperrors.NewValidationError("name must be at least 2 characters", nil)
	}
	return name, nil
}

// ListDepartments returns all departments; reference data is readable by
// any caller, it feeds the public submission form.
func (s *RegistryService) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	depts, err := s.departments.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return depts, nil
}

// CreateDepartment inserts a department.
func (s *RegistryService) CreateDepartment(ctx context.Context, actor Actor, name string) (*domain.Department, error) {
	if !actor.Permissions.Has(auth.PermCanAddConfig) {
		return nil, apperrors.NewForbidden("missing permission: Can Add Config")
	}
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	dept := &domain.Department{Name: name}
	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, apperrors.MapError(err)
	}
	return dept, nil
}

// UpdateDepartment renames a department.
func (s *RegistryService) UpdateDepartment(ctx context.Context, actor Actor, id int64, name string) (*domain.Department, error) {
	if !actor.Permissions.Has(auth.PermCanEditConfig) {
		return nil, apperrors.NewForbidden("missing permission: Can Edit Config")
	}
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	dept.Name = name
	if err := s.departments.Update(ctx, dept); err != nil {
		return nil, apperrors.MapError(err)
	}
	return dept, nil
}

// DeleteDepartment removes a department unless tickets reference it.
func (s *RegistryService) DeleteDepartment(ctx context.Context, actor Actor, id int64) error {
	if !actor.Permissions.Has(auth.PermCanDeleteConfig) {
		return apperrors.NewForbidden("missing permission: Can Delete Config")
	}
	count, err := s.tickets.CountByDepartment(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if count > 0 {
		return apperrors.NewConflict("department is referenced by existing tickets", map[string]any{"tickets": count})
	}
	if err := s.departments.Delete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// ListFilers returns all filers.
func (s *RegistryService) ListFilers(ctx context.Context) ([]domain.Filer, error) {
	filers, err := s.filers.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return filers, nil
}

// CreateFiler inserts a filer.
func (s *RegistryService) CreateFiler(ctx context.Context, actor Actor, name string) (*domain.Filer, error) {
	if !actor.Permissions.Has(auth.PermCanAddConfig) {
		return nil, apperrors.NewForbidden("missing permission: Can Add Config")
	}
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	filer := &domain.Filer{Name: name}
	if err := s.filers.Create(ctx, filer); err != nil {
		return nil, apperrors.MapError(err)
	}
	return filer, nil
}

// UpdateFiler renames a filer.
func (s *RegistryService) UpdateFiler(ctx context.Context, actor Actor, id int64, name string) (*domain.Filer, error) {
	if !actor.Permissions.Has(auth.PermCanEditConfig) {
		return nil, apperrors.NewForbidden("missing permission: Can Edit Config")
	}
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	filer, err := s.filers.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	filer.Name = name
	if err := s.filers.Update(ctx, filer); err != nil {
		return nil, apperrors.MapError(err)
	}
	return filer, nil
}

// DeleteFiler removes a filer unless tickets reference it.
func (s *RegistryService) DeleteFiler(ctx context.Context, actor Actor, id int64) error {
	if !actor.Permissions.Has(auth.PermCanDeleteConfig) {
		return apperrors.NewForbidden("missing permission: Can Delete Config")
	}
	count, err := s.tickets.CountByFiler(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if count > 0 {
		return apperrors.NewConflict("filer is referenced by existing tickets", map[string]any{"tickets": count})
	}
	if err := s.filers.Delete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}
