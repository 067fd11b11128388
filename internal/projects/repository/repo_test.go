package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmdesk/pm-backend/internal/projects/domain"
)

var projectColumns = []string{"id", "name", "manager", "client", "deadline", "is_deleted", "created_at", "updated_at"}

func setupProjectRepo(t *testing.T) (*ProjectRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	return NewProjectRepository(db), mock, db
}

func deadline() time.Time {
	return time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC)
}

func TestProjectRepository_ListWithEmployees(t *testing.T) {
	repo, mock, db := setupProjectRepo(t)
	defer db.Close()
	ctx := context.Background()

	t.Run("groups employees under their projects", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(regexp.QuoteMeta("FROM projects")).
			WithArgs(false).
			WillReturnRows(sqlmock.NewRows(projectColumns).
				AddRow(int64(1), "Apollo", "Ann", "Acme", deadline(), false, now, now).
				AddRow(int64(2), "Hermes", "Bob", "Globex", deadline(), false, now, now))

		mock.ExpectQuery(regexp.QuoteMeta("FROM project_employees pe")).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"project_id", "id", "name", "designation"}).
				AddRow(int64(1), "E1", "Eve", "Engineer").
				AddRow(int64(1), "E2", "Dan", "Tester").
				AddRow(int64(2), "E3", "Ivy", "Lead"))

		items, err := repo.ListWithEmployees(ctx, false)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "Apollo", items[0].Project.Name)
		assert.Len(t, items[0].Employees, 2)
		assert.Equal(t, "E3", items[1].Employees[0].ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("skips employee lookup when there are no projects", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM projects")).
			WithArgs(true).
			WillReturnRows(sqlmock.NewRows(projectColumns))

		items, err := repo.ListWithEmployees(ctx, true)
		require.NoError(t, err)
		assert.Empty(t, items)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProjectRepository_Get(t *testing.T) {
	repo, mock, db := setupProjectRepo(t)
	defer db.Close()
	ctx := context.Background()

	t.Run("returns project with employees", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(regexp.QuoteMeta("FROM projects")).
			WithArgs(int64(4)).
			WillReturnRows(sqlmock.NewRows(projectColumns).
				AddRow(int64(4), "Apollo", "Ann", "Acme", deadline(), false, now, now))
		mock.ExpectQuery(regexp.QuoteMeta("FROM project_employees pe")).
			WithArgs(int64(4)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "designation"}).
				AddRow("E1", "Eve", "Engineer"))

		d, err := repo.Get(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, int64(4), d.Project.ID)
		assert.Equal(t, deadline(), d.Project.Deadline)
		require.Len(t, d.Employees, 1)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing project", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM projects")).
			WithArgs(int64(99)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(ctx, 99)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProjectRepository_Create(t *testing.T) {
	repo, mock, db := setupProjectRepo(t)
	defer db.Close()

	now := time.Now()
	in := domain.ProjectInput{Name: "Apollo", Manager: "Ann", Client: "Acme", Deadline: deadline()}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO projects")).
		WithArgs("Apollo", "Ann", "Acme", deadline()).
		WillReturnRows(sqlmock.NewRows(projectColumns).
			AddRow(int64(10), "Apollo", "Ann", "Acme", deadline(), false, now, now))

	p, err := repo.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, int64(10), p.ID)
	assert.False(t, p.Deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_Mutations(t *testing.T) {
	repo, mock, db := setupProjectRepo(t)
	defer db.Close()
	ctx := context.Background()

	t.Run("update reports false when no active row matches", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("UPDATE projects")).
			WithArgs(int64(3), "Apollo", "Ann", "Acme", deadline()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.Update(ctx, 3, domain.ProjectInput{Name: "Apollo", Manager: "Ann", Client: "Acme", Deadline: deadline()})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("soft delete", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("SET is_deleted = TRUE")).
			WithArgs(int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.SoftDelete(ctx, 3)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("restore", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("SET is_deleted = FALSE")).
			WithArgs(int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.Restore(ctx, 3)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("unassign", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM project_employees")).
			WithArgs("E1", int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.Unassign(ctx, "E1", 3)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_Assignable(t *testing.T) {
	repo, mock, db := setupProjectRepo(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM employees e")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "designation"}).
			AddRow("E4", "Max", "Designer").
			AddRow("E5", "Zoe", "Engineer"))

	employees, err := repo.Assignable(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []domain.Employee{
		{ID: "E4", Name: "Max", Designation: "Designer"},
		{ID: "E5", Name: "Zoe", Designation: "Engineer"},
	}, employees)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_Assign(t *testing.T) {
	repo, mock, db := setupProjectRepo(t)
	defer db.Close()
	ctx := context.Background()

	t.Run("collects ids rejected by constraints", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

		mock.ExpectExec(regexp.QuoteMeta("SAVEPOINT assign_employee")).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO project_employees")).
			WithArgs(int64(7), "E1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("RELEASE SAVEPOINT assign_employee")).WillReturnResult(sqlmock.NewResult(0, 0))

		mock.ExpectExec(regexp.QuoteMeta("SAVEPOINT assign_employee")).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO project_employees")).
			WithArgs(int64(7), "E2").
			WillReturnError(&pq.Error{Code: pqUniqueViolation})
		mock.ExpectExec(regexp.QuoteMeta("ROLLBACK TO SAVEPOINT assign_employee")).WillReturnResult(sqlmock.NewResult(0, 0))

		mock.ExpectExec(regexp.QuoteMeta("SAVEPOINT assign_employee")).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO project_employees")).
			WithArgs(int64(7), "E3").
			WillReturnError(&pq.Error{Code: pqForeignKeyViolation})
		mock.ExpectExec(regexp.QuoteMeta("ROLLBACK TO SAVEPOINT assign_employee")).WillReturnResult(sqlmock.NewResult(0, 0))

		mock.ExpectCommit()

		failed, err := repo.Assign(ctx, 7, []string{"E1", "E2", "E3"})
		require.NoError(t, err)
		assert.Equal(t, []string{"E2", "E3"}, failed)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("fails every id for a missing project", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
			WithArgs(int64(8)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		failed, err := repo.Assign(ctx, 8, []string{"E1", "E2"})
		require.NoError(t, err)
		assert.Equal(t, []string{"E1", "E2"}, failed)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
