package directory

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const employeeColumns = "id, user_id, first_name, last_name, email, title, manager_id, status, created_at"

func (s *Store) FindByID(ctx context.Context, employeeID string) (Employee, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+employeeColumns+" FROM employees WHERE id = $1", employeeID)
	return scanEmployee(row)
}

func (s *Store) FindByUser(ctx context.Context, userID string) (Employee, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+employeeColumns+" FROM employees WHERE user_id = $1", userID)
	return scanEmployee(row)
}

func (s *Store) List(ctx context.Context, status string, limit, offset int) ([]Employee, error) {
	query := "SELECT " + employeeColumns + " FROM employees"
	args := []any{}
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += " ORDER BY last_name, first_name"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, limit, offset)
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}
	return employees, rows.Err()
}

func (s *Store) Create(ctx context.Context, employee Employee) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employees (user_id, first_name, last_name, email, title, manager_id, status)
    VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
    RETURNING id
  `, employee.UserID, employee.FirstName, employee.LastName, employee.Email, employee.Title, employee.ManagerID, employee.Status).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, employee Employee) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET first_name = $1, last_name = $2, email = $3, title = $4, manager_id = NULLIF($5, ''), status = $6
    WHERE id = $7
  `, employee.FirstName, employee.LastName, employee.Email, employee.Title, employee.ManagerID, employee.Status, employee.ID)
	return err
}

func (s *Store) DirectReports(ctx context.Context, managerID string) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+employeeColumns+" FROM employees WHERE manager_id = $1 ORDER BY last_name", managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}
	return employees, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (Employee, error) {
	var employee Employee
	var managerID sql.NullString
	if err := row.Scan(&employee.ID, &employee.UserID, &employee.FirstName, &employee.LastName, &employee.Email, &employee.Title, &managerID, &employee.Status, &employee.CreatedAt); err != nil {
		return Employee{}, err
	}
	if managerID.Valid {
		employee.ManagerID = managerID.String
	}
	return employee, nil
}
