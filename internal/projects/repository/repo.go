package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/pmdesk/pm-backend/internal/projects/domain"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// ProjectRepository provides persistence operations for projects and assignments
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// ListWithEmployees returns active (deleted=false) or soft-deleted (deleted=true)
// projects, each with its assigned employees.
func (r *ProjectRepository) ListWithEmployees(ctx context.Context, deleted bool) ([]domain.ProjectDetails, error) {
	const q = `
SELECT id, name, manager, client, deadline, is_deleted, created_at, updated_at
FROM projects
WHERE is_deleted = $1
ORDER BY id;
`
	rows, err := r.db.QueryContext(ctx, q, deleted)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ProjectDetails, 0, 16)
	index := make(map[int64]int)
	ids := make([]int64, 0, 16)
	for rows.Next() {
		var p domain.Project
		if err := scanProject(rows, &p); err != nil {
			return nil, err
		}
		index[p.ID] = len(out)
		ids = append(ids, p.ID)
		out = append(out, domain.ProjectDetails{Project: p, Employees: []domain.Employee{}})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}

	const eq = `
SELECT pe.project_id, e.id, e.name, e.designation
FROM project_employees pe
JOIN employees e ON e.id = pe.employee_id
WHERE pe.project_id = ANY($1)
ORDER BY pe.project_id, e.id;
`
	erows, err := r.db.QueryContext(ctx, eq, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("list project employees: %w", err)
	}
	defer erows.Close()

	for erows.Next() {
		var projectID int64
		var e domain.Employee
		if err := erows.Scan(&projectID, &e.ID, &e.Name, &e.Designation); err != nil {
			return nil, err
		}
		if i, ok := index[projectID]; ok {
			out[i].Employees = append(out[i].Employees, e)
		}
	}
	return out, erows.Err()
}

// Get returns an active project and its employees, or domain.ErrNotFound.
func (r *ProjectRepository) Get(ctx context.Context, id int64) (*domain.ProjectDetails, error) {
	const q = `
SELECT id, name, manager, client, deadline, is_deleted, created_at, updated_at
FROM projects
WHERE id = $1 AND is_deleted = FALSE;
`
	var d domain.ProjectDetails
	if err := scanProject(r.db.QueryRowContext(ctx, q, id), &d.Project); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}

	const eq = `
SELECT e.id, e.name, e.designation
FROM project_employees pe
JOIN employees e ON e.id = pe.employee_id
WHERE pe.project_id = $1
ORDER BY e.id;
`
	employees, err := r.queryEmployees(ctx, eq, id)
	if err != nil {
		return nil, fmt.Errorf("get project employees: %w", err)
	}
	d.Employees = employees
	return &d, nil
}

// Create inserts a new project.
func (r *ProjectRepository) Create(ctx context.Context, in domain.ProjectInput) (*domain.Project, error) {
	const q = `
INSERT INTO projects (name, manager, client, deadline)
VALUES ($1, $2, $3, $4)
RETURNING id, name, manager, client, deadline, is_deleted, created_at, updated_at;
`
	var p domain.Project
	if err := scanProject(r.db.QueryRowContext(ctx, q, in.Name, in.Manager, in.Client, in.Deadline), &p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return &p, nil
}

// Update replaces the editable fields of an active project.
func (r *ProjectRepository) Update(ctx context.Context, id int64, in domain.ProjectInput) (bool, error) {
	const q = `
UPDATE projects
SET name = $2, manager = $3, client = $4, deadline = $5, updated_at = now()
WHERE id = $1 AND is_deleted = FALSE;
`
	return r.execAffected(ctx, q, id, in.Name, in.Manager, in.Client, in.Deadline)
}

// SoftDelete marks a project as deleted (soft delete).
func (r *ProjectRepository) SoftDelete(ctx context.Context, id int64) (bool, error) {
	const q = `
UPDATE projects
SET is_deleted = TRUE, updated_at = now()
WHERE id = $1 AND is_deleted = FALSE;
`
	return r.execAffected(ctx, q, id)
}

// Restore reverses a soft delete.
func (r *ProjectRepository) Restore(ctx context.Context, id int64) (bool, error) {
	const q = `
UPDATE projects
SET is_deleted = FALSE, updated_at = now()
WHERE id = $1 AND is_deleted = TRUE;
`
	return r.execAffected(ctx, q, id)
}

// Unassign removes a single employee from a project.
func (r *ProjectRepository) Unassign(ctx context.Context, employeeID string, projectID int64) (bool, error) {
	const q = `
DELETE FROM project_employees
WHERE employee_id = $1 AND project_id = $2;
`
	return r.execAffected(ctx, q, employeeID, projectID)
}

// Assignable lists employees not yet assigned to the project.
func (r *ProjectRepository) Assignable(ctx context.Context, projectID int64) ([]domain.Employee, error) {
	const q = `
SELECT e.id, e.name, e.designation
FROM employees e
WHERE NOT EXISTS (
  SELECT 1 FROM project_employees pe
  WHERE pe.employee_id = e.id AND pe.project_id = $1
)
ORDER BY e.id;
`
	employees, err := r.queryEmployees(ctx, q, projectID)
	if err != nil {
		return nil, fmt.Errorf("list assignable employees: %w", err)
	}
	return employees, nil
}

// Assign adds employees to an active project in one transaction and returns
// the ids that could not be assigned (unknown employee or already assigned).
// Every id fails when the project is missing or deleted.
func (r *ProjectRepository) Assign(ctx context.Context, projectID int64, employeeIDs []string) ([]string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var ok int64
	err = tx.QueryRowContext(ctx, `
SELECT id
FROM projects
WHERE id = $1 AND is_deleted = FALSE
FOR UPDATE;
`, projectID).Scan(&ok)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return append([]string(nil), employeeIDs...), nil
		}
		return nil, fmt.Errorf("lock project: %w", err)
	}

	failed := make([]string, 0)
	for _, id := range employeeIDs {
		if _, err := tx.ExecContext(ctx, `SAVEPOINT assign_employee;`); err != nil {
			return nil, err
		}

		_, err := tx.ExecContext(ctx, `
INSERT INTO project_employees (project_id, employee_id)
VALUES ($1, $2);
`, projectID, id)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && (pqErr.Code == pqUniqueViolation || pqErr.Code == pqForeignKeyViolation) {
				if _, err := tx.ExecContext(ctx, `ROLLBACK TO SAVEPOINT assign_employee;`); err != nil {
					return nil, err
				}
				failed = append(failed, id)
				continue
			}
			return nil, fmt.Errorf("assign employee %s: %w", id, err)
		}

		if _, err := tx.ExecContext(ctx, `RELEASE SAVEPOINT assign_employee;`); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return failed, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner, p *domain.Project) error {
	return row.Scan(&p.ID, &p.Name, &p.Manager, &p.Client, &p.Deadline, &p.Deleted, &p.CreatedAt, &p.UpdatedAt)
}

func (r *ProjectRepository) queryEmployees(ctx context.Context, q string, args ...any) ([]domain.Employee, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Employee, 0, 8)
	for rows.Next() {
		var e domain.Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Designation); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *ProjectRepository) execAffected(ctx context.Context, q string, args ...any) (bool, error) {
	result, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}
