package http

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pmdesk/pm-backend/internal/projects/domain"
)

// ProjectService is the business layer the controller drives.
type ProjectService interface {
	FetchAllProjects(ctx context.Context) ([]domain.ProjectDetails, error)
	SearchProject(ctx context.Context, id int64) (*domain.ProjectDetails, error)
	ParseDeadline(value string) (time.Time, bool)
	UpdateProject(ctx context.Context, id int64, in domain.ProjectInput) (bool, error)
	AddProject(ctx context.Context, in domain.ProjectInput) (bool, error)
	DeleteProject(ctx context.Context, id int64) (bool, error)
	DeletedProjects(ctx context.Context) ([]domain.ProjectDetails, error)
	RestoreProject(ctx context.Context, id int64) (bool, error)
	UnassignEmployee(ctx context.Context, employeeID string, projectID int64) (bool, error)
	AssignableEmployees(ctx context.Context, projectID int64) ([]domain.Employee, error)
	AssignEmployees(ctx context.Context, projectID int64, employeeIDs []string) ([]string, error)
}

// Handler bundles the dependencies for the project controller.
type Handler struct {
	svc           ProjectService
	renderer      Renderer
	log           *zap.Logger
	strictActions bool
}

// Option configures a Handler.
type Option func(*Handler)

func WithRenderer(r Renderer) Option {
	return func(h *Handler) {
		if r != nil {
			h.renderer = r
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// WithStrictActions makes unknown actions render the invalid-action view
// instead of an empty 204.
func WithStrictActions(strict bool) Option {
	return func(h *Handler) { h.strictActions = strict }
}

func New(svc ProjectService, opts ...Option) *Handler {
	h := &Handler{
		svc:      svc,
		renderer: JSONRenderer{},
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}
