package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exbank-backend/internal/model"
)

// AccountRepository handles accounts and their student/teacher records.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// GetByEmail retrieves an account by its unique email.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	a := &model.Account{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, password_hash, role, created_at, updated_at
		 FROM accounts WHERE email = $1`, email,
	).Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.Role, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*model.Account, error) {
	a := &model.Account{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, password_hash, role, created_at, updated_at
		 FROM accounts WHERE id = $1`, id,
	).Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.Role, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// GetStudentByAccountID resolves the student record of an account.
// Returns ErrNotFound for accounts that are not students.
func (r *AccountRepository) GetStudentByAccountID(ctx context.Context, accountID int64) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT s.id, s.account_id, a.name
		 FROM students s JOIN accounts a ON a.id = s.account_id
		 WHERE s.account_id = $1`, accountID,
	).Scan(&s.ID, &s.AccountID, &s.Name)
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

// Create inserts an account and the student or teacher row matching its role.
func (r *AccountRepository) Create(ctx context.Context, a *model.Account) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO accounts (email, name, password_hash, role)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id, created_at, updated_at`,
			a.Email, a.Name, a.PasswordHash, a.Role,
		).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			if isPgError(err, pgUniqueViolation) {
				return ErrDuplicateEmail
			}
			return fmt.Errorf("insert account: %w", err)
		}

		switch a.Role {
		case model.RoleStudent:
			_, err = tx.Exec(ctx, `INSERT INTO students (account_id) VALUES ($1)`, a.ID)
		case model.RoleTeacher:
			_, err = tx.Exec(ctx, `INSERT INTO teachers (account_id) VALUES ($1)`, a.ID)
		default:
			err = fmt.Errorf("unknown role %q", a.Role)
		}
		return err
	})
}
