package directory

import "context"

type StoreAPI interface {
	FindByID(ctx context.Context, employeeID string) (Employee, error)
	FindByUser(ctx context.Context, userID string) (Employee, error)
	List(ctx context.Context, status string, limit, offset int) ([]Employee, error)
	Create(ctx context.Context, employee Employee) (string, error)
	Update(ctx context.Context, employee Employee) error
	DirectReports(ctx context.Context, managerID string) ([]Employee, error)
}
