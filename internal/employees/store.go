package employees

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
)

var (
	ErrNotFound       = errors.New("employee not found")
	ErrDuplicateEmail = errors.New("email already in use by an active employee")
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const employeeColumns = `id, first_name, last_name, email, phone, position, salary, hire_date, is_active, created_at, updated_at`

// List returns active employees, most recently created first.
func (s *Store) List(ctx context.Context) ([]Employee, error) {
	const q = `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE is_active
		ORDER BY created_at DESC, id DESC
	`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []Employee{}
	for rows.Next() {
		var e Employee
		if err := scanEmployee(rows.Scan, &e); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Get respects the active filter: a soft-deleted employee is not found.
func (s *Store) Get(ctx context.Context, id int64) (*Employee, error) {
	const q = `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1 AND is_active`
	var e Employee
	err := scanEmployee(s.db.QueryRowContext(ctx, q, id).Scan, &e)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) Create(ctx context.Context, f Fields) (*Employee, error) {
	if f.Email != nil {
		inUse, err := s.emailInUse(ctx, *f.Email, 0)
		if err != nil {
			return nil, err
		}
		if inUse {
			return nil, ErrDuplicateEmail
		}
	}

	e := &Employee{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
		Phone:     f.Phone,
		Position:  f.Position,
		Salary:    f.Salary,
		HireDate:  f.HireDate,
		IsActive:  true,
	}
	const q = `
		INSERT INTO employees (first_name, last_name, email, phone, position, salary, hire_date, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8)
		RETURNING id, created_at
	`
	err := s.db.QueryRowContext(ctx, q,
		e.FirstName, e.LastName, e.Email, e.Phone, e.Position, e.Salary, e.HireDate,
		time.Now().UTC(),
	).Scan(&e.ID, &e.CreatedAt)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Update overwrites every mutable field, including the active flag. The
// record must currently exist and be active, the same condition Get uses.
// The final UPDATE re-checks that condition so a row removed between the
// read and the write surfaces as ErrNotFound instead of silently passing.
func (s *Store) Update(ctx context.Context, id int64, f Fields) (*Employee, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if f.Email != nil {
		inUse, err := s.emailInUse(ctx, *f.Email, id)
		if err != nil {
			return nil, err
		}
		if inUse {
			return nil, ErrDuplicateEmail
		}
	}

	const q = `
		UPDATE employees
		SET first_name = $1, last_name = $2, email = $3, phone = $4, position = $5,
		    salary = $6, hire_date = $7, is_active = $8, updated_at = $9
		WHERE id = $10 AND is_active
		RETURNING ` + employeeColumns + `
	`
	var e Employee
	err := scanEmployee(s.db.QueryRowContext(ctx, q,
		f.FirstName, f.LastName, f.Email, f.Phone, f.Position,
		f.Salary, f.HireDate, f.IsActive, time.Now().UTC(), id,
	).Scan, &e)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if isUniqueViolation(err) {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// SoftDelete flips the active flag. Unlike Get, only the id has to exist:
// deleting an already-inactive employee succeeds again.
func (s *Store) SoftDelete(ctx context.Context, id int64) error {
	const q = `UPDATE employees SET is_active = FALSE, updated_at = $1 WHERE id = $2`
	res, err := s.db.ExecContext(ctx, q, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) emailInUse(ctx context.Context, email string, excludeID int64) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM employees
			WHERE email = $1 AND is_active AND id <> $2
		)
	`
	var exists bool
	err := s.db.QueryRowContext(ctx, q, email, excludeID).Scan(&exists)
	return exists, err
}

func scanEmployee(scan func(dest ...interface{}) error, e *Employee) error {
	return scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &e.Phone, &e.Position,
		&e.Salary, &e.HireDate, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
