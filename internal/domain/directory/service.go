package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrSelfManagement   = errors.New("employee cannot manage themselves")
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) FindEmployeeByID(ctx context.Context, employeeID string) (Employee, error) {
	employee, err := s.store.FindByID(ctx, employeeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, fmt.Errorf("%w: %s", ErrEmployeeNotFound, employeeID)
	}
	return employee, err
}

func (s *Service) FindEmployeeByUser(ctx context.Context, userID string) (Employee, error) {
	employee, err := s.store.FindByUser(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, fmt.Errorf("%w: user %s", ErrEmployeeNotFound, userID)
	}
	return employee, err
}

func (s *Service) List(ctx context.Context, status string, limit, offset int) ([]Employee, error) {
	return s.store.List(ctx, status, limit, offset)
}

func (s *Service) Create(ctx context.Context, employee Employee) (string, error) {
	if employee.Status == "" {
		employee.Status = EmployeeStatusActive
	}
	if employee.ManagerID != "" {
		if _, err := s.FindEmployeeByID(ctx, employee.ManagerID); err != nil {
			return "", err
		}
	}
	return s.store.Create(ctx, employee)
}

func (s *Service) Update(ctx context.Context, employee Employee) error {
	if _, err := s.FindEmployeeByID(ctx, employee.ID); err != nil {
		return err
	}
	if employee.ManagerID != "" {
		if employee.ManagerID == employee.ID {
			return ErrSelfManagement
		}
		if _, err := s.FindEmployeeByID(ctx, employee.ManagerID); err != nil {
			return err
		}
	}
	return s.store.Update(ctx, employee)
}

func (s *Service) DirectReports(ctx context.Context, managerID string) ([]Employee, error) {
	return s.store.DirectReports(ctx, managerID)
}

// ReportingChain walks managerId references from the employee up to the top
// of the hierarchy. The visited set guards against reference cycles left by
// bad imports; the walk stops rather than looping.
func (s *Service) ReportingChain(ctx context.Context, employeeID string) ([]Employee, error) {
	var chain []Employee
	visited := map[string]bool{}

	current, err := s.FindEmployeeByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	visited[current.ID] = true

	for current.ManagerID != "" {
		if visited[current.ManagerID] {
			break
		}
		manager, err := s.FindEmployeeByID(ctx, current.ManagerID)
		if err != nil {
			if errors.Is(err, ErrEmployeeNotFound) {
				break
			}
			return nil, err
		}
		chain = append(chain, manager)
		visited[manager.ID] = true
		current = manager
	}
	return chain, nil
}
