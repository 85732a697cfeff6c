package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const getUserByEmail = `
SELECT id, store_id, email, password_hash, name, role, is_active, created_at
FROM users
WHERE email = $1 AND is_active = true
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRow(ctx, getUserByEmail, email)
	var u User
	err := row.Scan(&u.ID, &u.StoreID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.IsActive, &u.CreatedAt)
	return u, err
}

const getUser = `
SELECT id, store_id, email, password_hash, name, role, is_active, created_at
FROM users
WHERE id = $1 AND is_active = true
`

func (q *Queries) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	row := q.db.QueryRow(ctx, getUser, id)
	var u User
	err := row.Scan(&u.ID, &u.StoreID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.IsActive, &u.CreatedAt)
	return u, err
}

type CreateUserParams struct {
	StoreID      pgtype.UUID
	Email        string
	PasswordHash string
	Name         string
	Role         string
}

const createUser = `
INSERT INTO users (store_id, email, password_hash, name, role)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, store_id, email, password_hash, name, role, is_active, created_at
`

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser, arg.StoreID, arg.Email, arg.PasswordHash, arg.Name, arg.Role)
	var u User
	err := row.Scan(&u.ID, &u.StoreID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.IsActive, &u.CreatedAt)
	return u, err
}
