package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
)

type fakeStore struct {
	employees map[string]Employee
}

func newFakeStore(employees ...Employee) *fakeStore {
	store := &fakeStore{employees: map[string]Employee{}}
	for _, employee := range employees {
		store.employees[employee.ID] = employee
	}
	return store
}

func (f *fakeStore) FindByID(_ context.Context, employeeID string) (Employee, error) {
	employee, ok := f.employees[employeeID]
	if !ok {
		return Employee{}, pgx.ErrNoRows
	}
	return employee, nil
}

func (f *fakeStore) FindByUser(_ context.Context, userID string) (Employee, error) {
	for _, employee := range f.employees {
		if employee.UserID == userID {
			return employee, nil
		}
	}
	return Employee{}, pgx.ErrNoRows
}

func (f *fakeStore) List(_ context.Context, status string, _, _ int) ([]Employee, error) {
	var out []Employee
	for _, employee := range f.employees {
		if status == "" || employee.Status == status {
			out = append(out, employee)
		}
	}
	return out, nil
}

func (f *fakeStore) Create(_ context.Context, employee Employee) (string, error) {
	f.employees[employee.ID] = employee
	return employee.ID, nil
}

func (f *fakeStore) Update(_ context.Context, employee Employee) error {
	f.employees[employee.ID] = employee
	return nil
}

func (f *fakeStore) DirectReports(_ context.Context, managerID string) ([]Employee, error) {
	var out []Employee
	for _, employee := range f.employees {
		if employee.ManagerID == managerID {
			out = append(out, employee)
		}
	}
	return out, nil
}

func TestFindEmployeeByIDNotFound(t *testing.T) {
	service := NewService(newFakeStore())
	_, err := service.FindEmployeeByID(context.Background(), "missing")
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestReportingChain(t *testing.T) {
	service := NewService(newFakeStore(
		Employee{ID: "e1", ManagerID: "e2"},
		Employee{ID: "e2", ManagerID: "e3"},
		Employee{ID: "e3"},
	))

	chain, err := service.ReportingChain(context.Background(), "e1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chain) != 2 || chain[0].ID != "e2" || chain[1].ID != "e3" {
		t.Fatalf("unexpected chain: %+v", chain)
	}
}

func TestReportingChainStopsOnCycle(t *testing.T) {
	service := NewService(newFakeStore(
		Employee{ID: "e1", ManagerID: "e2"},
		Employee{ID: "e2", ManagerID: "e1"},
	))

	chain, err := service.ReportingChain(context.Background(), "e1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chain) != 1 || chain[0].ID != "e2" {
		t.Fatalf("expected cycle walk to stop after e2, got %+v", chain)
	}
}

func TestUpdateRejectsSelfManagement(t *testing.T) {
	service := NewService(newFakeStore(Employee{ID: "e1"}))
	err := service.Update(context.Background(), Employee{ID: "e1", ManagerID: "e1"})
	if err == nil {
		t.Fatal("expected self-management rejection")
	}
}
