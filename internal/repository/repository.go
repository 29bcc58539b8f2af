package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"fypms/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Store persists the three role partitions and their domain records. Each
// partition is an independent key space: the same email may exist as both a
// supervisor and a student without conflict.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

func (s *Store) GetAdminByEmail(ctx context.Context, email string) (model.Admin, error) {
	var admin model.Admin
	row := s.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, refresh_token, created_at, updated_at
		FROM admins
		WHERE email = $1
	`, email)
	err := row.Scan(&admin.ID, &admin.Email, &admin.PasswordHash, &admin.RefreshToken, &admin.CreatedAt, &admin.UpdatedAt)
	return admin, mapErr(err)
}

func (s *Store) GetAdminByID(ctx context.Context, id string) (model.Admin, error) {
	var admin model.Admin
	row := s.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, refresh_token, created_at, updated_at
		FROM admins
		WHERE id = $1
	`, id)
	err := row.Scan(&admin.ID, &admin.Email, &admin.PasswordHash, &admin.RefreshToken, &admin.CreatedAt, &admin.UpdatedAt)
	return admin, mapErr(err)
}

// CreateAdminIfAbsent backs the one-time bootstrap. It is a no-op when an
// admin with the given email already exists.
func (s *Store) CreateAdminIfAbsent(ctx context.Context, admin model.Admin) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO admins (id, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO NOTHING
	`, admin.ID, admin.Email, admin.PasswordHash, admin.CreatedAt, admin.UpdatedAt)
	return err
}

func (s *Store) GetSupervisorByEmail(ctx context.Context, email string) (model.Supervisor, error) {
	var sup model.Supervisor
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, department, refresh_token, created_at, updated_at
		FROM supervisors
		WHERE email = $1
	`, email)
	err := row.Scan(&sup.ID, &sup.Name, &sup.Email, &sup.PasswordHash, &sup.Department, &sup.RefreshToken, &sup.CreatedAt, &sup.UpdatedAt)
	return sup, mapErr(err)
}

func (s *Store) GetSupervisorByID(ctx context.Context, id string) (model.Supervisor, error) {
	var sup model.Supervisor
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, department, refresh_token, created_at, updated_at
		FROM supervisors
		WHERE id = $1
	`, id)
	err := row.Scan(&sup.ID, &sup.Name, &sup.Email, &sup.PasswordHash, &sup.Department, &sup.RefreshToken, &sup.CreatedAt, &sup.UpdatedAt)
	return sup, mapErr(err)
}

func (s *Store) CreateSupervisor(ctx context.Context, sup model.Supervisor) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO supervisors (id, name, email, password_hash, department, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, sup.ID, sup.Name, sup.Email, sup.PasswordHash, sup.Department, sup.CreatedAt, sup.UpdatedAt)
	return mapErr(err)
}

func (s *Store) ListSupervisors(ctx context.Context) ([]model.Supervisor, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, email, password_hash, department, refresh_token, created_at, updated_at
		FROM supervisors
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSupervisors(rows)
}

func (s *Store) SearchSupervisorsByName(ctx context.Context, name string, limit int) ([]model.Supervisor, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, email, password_hash, department, refresh_token, created_at, updated_at
		FROM supervisors
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY name ASC
		LIMIT $2
	`, name, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSupervisors(rows)
}

func scanSupervisors(rows pgx.Rows) ([]model.Supervisor, error) {
	var out []model.Supervisor
	for rows.Next() {
		var sup model.Supervisor
		if err := rows.Scan(&sup.ID, &sup.Name, &sup.Email, &sup.PasswordHash, &sup.Department, &sup.RefreshToken, &sup.CreatedAt, &sup.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, sup)
	}
	return out, rows.Err()
}

// SupervisorUpdate carries the optional fields of a supervisor patch.
type SupervisorUpdate struct {
	Name         *string
	Email        *string
	PasswordHash *string
}

func (s *Store) UpdateSupervisor(ctx context.Context, id string, update SupervisorUpdate) (model.Supervisor, error) {
	var sup model.Supervisor
	row := s.pool.QueryRow(ctx, `
		UPDATE supervisors
		SET name = COALESCE($2, name),
		    email = COALESCE($3, email),
		    password_hash = COALESCE($4, password_hash),
		    updated_at = $5
		WHERE id = $1
		RETURNING id, name, email, password_hash, department, refresh_token, created_at, updated_at
	`, id, update.Name, update.Email, update.PasswordHash, time.Now().UTC())
	err := row.Scan(&sup.ID, &sup.Name, &sup.Email, &sup.PasswordHash, &sup.Department, &sup.RefreshToken, &sup.CreatedAt, &sup.UpdatedAt)
	return sup, mapErr(err)
}

func (s *Store) DeleteSupervisor(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM supervisors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) GetStudentByEmail(ctx context.Context, email string) (model.Student, error) {
	var st model.Student
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, roll_number, added_by, refresh_token, created_at, updated_at
		FROM students
		WHERE email = $1
	`, email)
	err := row.Scan(&st.ID, &st.Name, &st.Email, &st.PasswordHash, &st.RollNumber, &st.AddedBy, &st.RefreshToken, &st.CreatedAt, &st.UpdatedAt)
	return st, mapErr(err)
}

func (s *Store) GetStudentByID(ctx context.Context, id string) (model.Student, error) {
	var st model.Student
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, roll_number, added_by, refresh_token, created_at, updated_at
		FROM students
		WHERE id = $1
	`, id)
	err := row.Scan(&st.ID, &st.Name, &st.Email, &st.PasswordHash, &st.RollNumber, &st.AddedBy, &st.RefreshToken, &st.CreatedAt, &st.UpdatedAt)
	return st, mapErr(err)
}

func (s *Store) CreateStudent(ctx context.Context, st model.Student) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO students (id, name, email, password_hash, roll_number, added_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, st.ID, st.Name, st.Email, st.PasswordHash, st.RollNumber, st.AddedBy, st.CreatedAt, st.UpdatedAt)
	return mapErr(err)
}

func (s *Store) ListStudentsBySupervisor(ctx context.Context, supervisorID string) ([]model.Student, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, email, password_hash, roll_number, added_by, refresh_token, created_at, updated_at
		FROM students
		WHERE added_by = $1
		ORDER BY created_at DESC
	`, supervisorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Student
	for rows.Next() {
		var st model.Student
		if err := rows.Scan(&st.ID, &st.Name, &st.Email, &st.PasswordHash, &st.RollNumber, &st.AddedBy, &st.RefreshToken, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// StudentUpdate carries the optional fields of a student patch.
type StudentUpdate struct {
	Name         *string
	Email        *string
	RollNumber   *string
	PasswordHash *string
}

// UpdateStudent is scoped to the supervisor who added the student; a foreign
// supervisor sees ErrNotFound rather than a permission error.
func (s *Store) UpdateStudent(ctx context.Context, id, supervisorID string, update StudentUpdate) (model.Student, error) {
	var st model.Student
	row := s.pool.QueryRow(ctx, `
		UPDATE students
		SET name = COALESCE($3, name),
		    email = COALESCE($4, email),
		    roll_number = COALESCE($5, roll_number),
		    password_hash = COALESCE($6, password_hash),
		    updated_at = $7
		WHERE id = $1 AND added_by = $2
		RETURNING id, name, email, password_hash, roll_number, added_by, refresh_token, created_at, updated_at
	`, id, supervisorID, update.Name, update.Email, update.RollNumber, update.PasswordHash, time.Now().UTC())
	err := row.Scan(&st.ID, &st.Name, &st.Email, &st.PasswordHash, &st.RollNumber, &st.AddedBy, &st.RefreshToken, &st.CreatedAt, &st.UpdatedAt)
	return st, mapErr(err)
}

func (s *Store) DeleteStudent(ctx context.Context, id, supervisorID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM students WHERE id = $1 AND added_by = $2`, id, supervisorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetRefreshToken overwrites the single stored refresh token for an identity.
// Passing nil clears it (logout); clearing an absent token is not an error.
func (s *Store) SetRefreshToken(ctx context.Context, role model.Role, id string, token *string) error {
	var table string
	switch role {
	case model.RoleAdmin:
		table = "admins"
	case model.RoleSupervisor:
		table = "supervisors"
	case model.RoleStudent:
		table = "students"
	default:
		return fmt.Errorf("unknown role %q", role)
	}

	tag, err := s.pool.Exec(ctx, `UPDATE `+table+` SET refresh_token = $2, updated_at = $3 WHERE id = $1`, id, token, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
