package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pmdesk/pm-backend/internal/projects/domain"
)

// DefaultDeadlineLayout is the calendar-date format deadlines are submitted in.
const DefaultDeadlineLayout = "2006-01-02"

// Store is the persistence the service delegates to.
type Store interface {
	ListWithEmployees(ctx context.Context, deleted bool) ([]domain.ProjectDetails, error)
	Get(ctx context.Context, id int64) (*domain.ProjectDetails, error)
	Create(ctx context.Context, in domain.ProjectInput) (*domain.Project, error)
	Update(ctx context.Context, id int64, in domain.ProjectInput) (bool, error)
	SoftDelete(ctx context.Context, id int64) (bool, error)
	Restore(ctx context.Context, id int64) (bool, error)
	Unassign(ctx context.Context, employeeID string, projectID int64) (bool, error)
	Assignable(ctx context.Context, projectID int64) ([]domain.Employee, error)
	Assign(ctx context.Context, projectID int64, employeeIDs []string) ([]string, error)
}

// ListingCache caches the active and deleted project listings.
type ListingCache interface {
	Get(ctx context.Context, deleted bool) ([]domain.ProjectDetails, bool, error)
	Version(ctx context.Context) (int64, error)
	Set(ctx context.Context, deleted bool, items []domain.ProjectDetails, version int64) error
	Invalidate(ctx context.Context) error
}

// Option configures a ProjectService.
type Option func(*ProjectService)

// WithCache enables the listing cache.
func WithCache(c ListingCache) Option {
	return func(s *ProjectService) { s.cache = c }
}

// WithDeadlineLayout overrides DefaultDeadlineLayout.
func WithDeadlineLayout(layout string) Option {
	return func(s *ProjectService) {
		if strings.TrimSpace(layout) != "" {
			s.layout = layout
		}
	}
}

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *ProjectService) {
		if l != nil {
			s.log = l
		}
	}
}

// ProjectService handles project-related business logic
type ProjectService struct {
	store  Store
	cache  ListingCache
	layout string
	log    *zap.Logger
}

// NewProjectService creates a new project service
func NewProjectService(store Store, opts ...Option) *ProjectService {
	s := &ProjectService{
		store:  store,
		layout: DefaultDeadlineLayout,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchAllProjects returns every active project with its employees.
func (s *ProjectService) FetchAllProjects(ctx context.Context) ([]domain.ProjectDetails, error) {
	return s.list(ctx, false)
}

// DeletedProjects returns every soft-deleted project.
func (s *ProjectService) DeletedProjects(ctx context.Context) ([]domain.ProjectDetails, error) {
	return s.list(ctx, true)
}

// SearchProject returns one active project or domain.ErrNotFound.
func (s *ProjectService) SearchProject(ctx context.Context, id int64) (*domain.ProjectDetails, error) {
	return s.store.Get(ctx, id)
}

// ParseDeadline parses a submitted deadline. The bool is false when the
// value is not a calendar date in the configured layout.
func (s *ProjectService) ParseDeadline(value string) (time.Time, bool) {
	t, err := time.Parse(s.layout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// UpdateProject replaces a project's details.
func (s *ProjectService) UpdateProject(ctx context.Context, id int64, in domain.ProjectInput) (bool, error) {
	in, ok := normalize(in)
	if !ok {
		return false, nil
	}
	updated, err := s.store.Update(ctx, id, in)
	if err != nil {
		return false, err
	}
	if updated {
		s.invalidate(ctx)
	}
	return updated, nil
}

// AddProject creates a project.
func (s *ProjectService) AddProject(ctx context.Context, in domain.ProjectInput) (bool, error) {
	in, ok := normalize(in)
	if !ok {
		return false, nil
	}
	if _, err := s.store.Create(ctx, in); err != nil {
		return false, err
	}
	s.invalidate(ctx)
	return true, nil
}

// DeleteProject soft-deletes an active project.
func (s *ProjectService) DeleteProject(ctx context.Context, id int64) (bool, error) {
	return s.mutate(ctx, func() (bool, error) { return s.store.SoftDelete(ctx, id) })
}

// RestoreProject reverses a soft delete.
func (s *ProjectService) RestoreProject(ctx context.Context, id int64) (bool, error) {
	return s.mutate(ctx, func() (bool, error) { return s.store.Restore(ctx, id) })
}

// UnassignEmployee removes one employee from a project.
func (s *ProjectService) UnassignEmployee(ctx context.Context, employeeID string, projectID int64) (bool, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return false, nil
	}
	return s.mutate(ctx, func() (bool, error) { return s.store.Unassign(ctx, employeeID, projectID) })
}

// AssignableEmployees lists employees that are not yet on the project.
func (s *ProjectService) AssignableEmployees(ctx context.Context, projectID int64) ([]domain.Employee, error) {
	return s.store.Assignable(ctx, projectID)
}

// AssignEmployees assigns the given employees and returns the ids that could not be assigned.
func (s *ProjectService) AssignEmployees(ctx context.Context, projectID int64, employeeIDs []string) ([]string, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}
	failed, err := s.store.Assign(ctx, projectID, employeeIDs)
	if err != nil {
		return nil, err
	}
	if len(failed) < len(employeeIDs) {
		s.invalidate(ctx)
	}
	return failed, nil
}

func (s *ProjectService) list(ctx context.Context, deleted bool) ([]domain.ProjectDetails, error) {
	cacheable := s.cache != nil
	var version int64
	if cacheable {
		items, ok, err := s.cache.Get(ctx, deleted)
		if err != nil {
			s.log.Warn("project listing cache read failed", zap.Bool("deleted", deleted), zap.Error(err))
		}
		if ok {
			return items, nil
		}
		// The version is taken before reading Postgres so a concurrent
		// invalidation makes the later Set a no-op.
		if version, err = s.cache.Version(ctx); err != nil {
			s.log.Warn("project listing version read failed", zap.Error(err))
			cacheable = false
		}
	}

	items, err := s.store.ListWithEmployees(ctx, deleted)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if err := s.cache.Set(ctx, deleted, items, version); err != nil {
			s.log.Warn("project listing cache write failed", zap.Bool("deleted", deleted), zap.Error(err))
		}
	}
	return items, nil
}

func (s *ProjectService) mutate(ctx context.Context, op func() (bool, error)) (bool, error) {
	ok, err := op()
	if err != nil {
		return false, err
	}
	if ok {
		s.invalidate(ctx)
	}
	return ok, nil
}

func (s *ProjectService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("project listing cache invalidation failed", zap.Error(err))
	}
}

func normalize(in domain.ProjectInput) (domain.ProjectInput, bool) {
	in.Name = strings.TrimSpace(in.Name)
	in.Manager = strings.TrimSpace(in.Manager)
	in.Client = strings.TrimSpace(in.Client)
	return in, in.Name != "" && !in.Deadline.IsZero()
}
