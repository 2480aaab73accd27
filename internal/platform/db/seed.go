package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"perf360/internal/domain/auth"
	"perf360/internal/platform/config"
)

func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if strings.TrimSpace(cfg.SeedAdminEmail) == "" {
		return nil
	}
	userID, err := ensureUser(ctx, pool, cfg.SeedAdminEmail, cfg.SeedAdminPassword, auth.RoleAdmin)
	if err != nil {
		return err
	}
	return ensureEmployee(ctx, pool, userID, cfg.SeedAdminEmail)
}

func ensureUser(ctx context.Context, pool *pgxpool.Pool, email, password, role string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&id)
	if err == nil {
		return id, nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}
	err = pool.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, role, status)
    VALUES ($1, $2, $3, 'active')
    RETURNING id
  `, email, hash, role).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensureEmployee(ctx context.Context, pool *pgxpool.Pool, userID, email string) error {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM employees WHERE user_id = $1", userID).Scan(&id)
	if err == nil {
		return nil
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO employees (user_id, first_name, last_name, email, title, status)
    VALUES ($1, 'System', 'Administrator', $2, 'Administrator', 'active')
  `, userID, email)
	return err
}
