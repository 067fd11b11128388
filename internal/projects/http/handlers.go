package http

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/pmdesk/pm-backend/internal/projects/domain"
)

const (
	msgInvalidInput   = "Invalid input warning!!!"
	msgNoSuchProject  = "NO SUCH PROJECT FOUND"
	msgLoadFailed     = "Unable to load projects."
	msgAssignedFormat = "%d out of %d employees successfully assigned."
)

func (h *Handler) displayAll(c *gin.Context) Result {
	items, err := h.svc.FetchAllProjects(c.Request.Context())
	if err != nil {
		h.requestLogger(c).Error("list projects failed", zap.Error(err))
		return Failure(ViewError, msgLoadFailed)
	}
	return Page(ViewProjects, map[string]any{AttrAllProjects: items})
}

func (h *Handler) deletedProjects(c *gin.Context) Result {
	items, err := h.svc.DeletedProjects(c.Request.Context())
	if err != nil {
		h.requestLogger(c).Error("list deleted projects failed", zap.Error(err))
		return Failure(ViewError, msgLoadFailed)
	}
	return Page(ViewDeletedProjects, map[string]any{AttrDeletedProjects: items})
}

// singleProject still looks up id 0 when proj_id is not a number, so the
// not-found branch decides which message the caller sees.
func (h *Handler) singleProject(c *gin.Context) Result {
	id, valid := parseID(c, "proj_id")

	d, err := h.svc.SearchProject(c.Request.Context(), id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		if !valid {
			return Failure(ViewError, msgInvalidInput)
		}
		return Failure(ViewError, msgNoSuchProject)
	case err != nil:
		h.requestLogger(c).Error("search project failed", zap.Int64("project_id", id), zap.Error(err))
		return Failure(ViewError, msgNoSuchProject)
	}
	return Page(ViewSingleProject, map[string]any{AttrSingleProject: d})
}

func (h *Handler) assignableEmployees(c *gin.Context) Result {
	id, ok := parseID(c, "proj_id")
	if !ok {
		return Failure(ViewError, msgInvalidInput)
	}

	employees, err := h.svc.AssignableEmployees(c.Request.Context(), id)
	if err != nil {
		h.requestLogger(c).Error("list assignable employees failed", zap.Int64("project_id", id), zap.Error(err))
		employees = []domain.Employee{}
	}
	return Page(ViewAssignEmployees, map[string]any{
		AttrProjectID:           id,
		AttrAssignableEmployees: employees,
	})
}

func (h *Handler) editDetails(c *gin.Context) Result {
	id, ok := parseID(c, "proj_id")
	if !ok {
		return Failure(ViewError, msgInvalidInput)
	}

	d, err := h.svc.SearchProject(c.Request.Context(), id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			h.requestLogger(c).Error("load project for edit failed", zap.Int64("project_id", id), zap.Error(err))
		}
		return Failure(ViewError, msgNoSuchProject)
	}
	return Page(ViewProjectForm, map[string]any{AttrProjectDetails: d})
}

func (h *Handler) createProject(*gin.Context) Result {
	return Page(ViewProjectForm, map[string]any{AttrOperation: "createProject"})
}

func (h *Handler) updateProject(c *gin.Context) Result {
	const prefix = "Invalid date input for deadline. "
	success, failure := "Project update successful.", "Project update unsuccessful."

	id, ok := parseID(c, "proj_id")
	if !ok {
		return Failure(ViewError, msgInvalidInput)
	}
	in, ok := h.bindProject(c)
	if !ok {
		return Outcome(false, prefix, success, failure)
	}

	updated, err := h.svc.UpdateProject(c.Request.Context(), id, in)
	return Outcome(h.succeeded(c, "update project", updated, err), "", success, failure)
}

func (h *Handler) addNewProject(c *gin.Context) Result {
	const prefix = "Invalid input date for deadline. "
	success, failure := "Project creation successful.", "Project creation unsuccessful."

	in, ok := h.bindProject(c)
	if !ok {
		return Outcome(false, prefix, success, failure)
	}

	created, err := h.svc.AddProject(c.Request.Context(), in)
	return Outcome(h.succeeded(c, "add project", created, err), "", success, failure)
}

func (h *Handler) deleteProject(c *gin.Context) Result {
	id, ok := parseID(c, "proj_id")
	if !ok {
		return Failure(ViewError, msgInvalidInput)
	}
	deleted, err := h.svc.DeleteProject(c.Request.Context(), id)
	return Outcome(h.succeeded(c, "delete project", deleted, err), "",
		"Project deletion successful.", "Project deletion unsuccessful.")
}

func (h *Handler) restoreProject(c *gin.Context) Result {
	id, ok := parseID(c, "proj_id")
	if !ok {
		return Failure(ViewError, msgInvalidInput)
	}
	restored, err := h.svc.RestoreProject(c.Request.Context(), id)
	return Outcome(h.succeeded(c, "restore project", restored, err), "",
		"Project restoration successful.", "Project restoration unsuccessful.")
}

func (h *Handler) unassignEmployee(c *gin.Context) Result {
	id, ok := parseID(c, "proj_id")
	if !ok {
		return Failure(ViewError, msgInvalidInput)
	}
	employeeID, _ := param(c, "emp_id")
	removed, err := h.svc.UnassignEmployee(c.Request.Context(), employeeID, id)
	return Outcome(h.succeeded(c, "unassign employee", removed, err), "",
		"Employee unassign successful.", "Employee unassign unsuccessful.")
}

// assignEmployees always reports success; the message carries how many ids stuck.
func (h *Handler) assignEmployees(c *gin.Context) Result {
	id, ok := parseID(c, "proj_id")
	if !ok {
		return Failure(ViewError, msgInvalidInput)
	}

	requested := uniqueValues(params(c, "employees"))
	failed := 0
	if len(requested) > 0 {
		rejected, err := h.svc.AssignEmployees(c.Request.Context(), id, requested)
		if err != nil {
			h.requestLogger(c).Error("assign employees failed",
				zap.Int64("project_id", id), zap.Strings("employees", requested), zap.Error(err))
			rejected = requested
		}
		failed = len(rejected)
	}

	return Success(ViewSuccess, fmt.Sprintf(msgAssignedFormat, len(requested)-failed, len(requested)))
}

// bindProject reads the project form; false means the deadline did not parse.
func (h *Handler) bindProject(c *gin.Context) (domain.ProjectInput, bool) {
	var f projectForm
	if err := c.ShouldBindWith(&f, binding.Form); err != nil {
		h.requestLogger(c).Debug("bind project form failed", zap.Error(err))
	}

	deadline, ok := h.svc.ParseDeadline(f.Deadline)
	if !ok {
		return domain.ProjectInput{}, false
	}
	return domain.ProjectInput{
		Name:     f.Name,
		Manager:  f.Manager,
		Client:   f.Client,
		Deadline: deadline,
	}, true
}

func (h *Handler) succeeded(c *gin.Context, op string, ok bool, err error) bool {
	if err != nil {
		h.requestLogger(c).Error(op+" failed", zap.Error(err))
		return false
	}
	return ok
}
