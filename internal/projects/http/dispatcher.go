package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const invalidActionMessage = "Warning: Invalid action"

type action func(h *Handler, c *gin.Context) Result

var readActions = map[string]action{
	"displayAll":             (*Handler).displayAll,
	"singleProject":          (*Handler).singleProject,
	"getDeletedProjects":     (*Handler).deletedProjects,
	"getAssignableEmployees": (*Handler).assignableEmployees,
}

var writeActions = map[string]action{
	"editDetails":      (*Handler).editDetails,
	"updateProject":    (*Handler).updateProject,
	"createProject":    (*Handler).createProject,
	"addNewProject":    (*Handler).addNewProject,
	"deleteProject":    (*Handler).deleteProject,
	"restoreProject":   (*Handler).restoreProject,
	"unassignEmployee": (*Handler).unassignEmployee,
	"assignEmployees":  (*Handler).assignEmployees,
}

// handle looks the action up in table, runs it and renders its Result.
func (h *Handler) handle(table map[string]action) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		log := h.requestLogger(c)

		name, present := param(c, "action")
		label := name
		var result Result
		var outcome string

		switch run, known := table[name]; {
		case !present:
			label, outcome = "missing", "invalid"
			result = invalidAction()
		case !known && h.strictActions:
			label, outcome = "unknown", "invalid"
			log.Warn("unknown project action", zap.String("action", name))
			result = invalidAction()
		case !known:
			// Unknown actions are a no-op; answer explicitly so the client is not left waiting.
			log.Warn("unknown project action ignored", zap.String("action", name))
			ActionsTotal.WithLabelValues(method, "unknown", "noop").Inc()
			c.Status(http.StatusNoContent)
			return
		default:
			result = run(h, c)
			outcome = result.Kind.String()
		}

		if err := h.renderer.Render(c, result); err != nil {
			outcome = "render_failed"
			_ = c.Error(fmt.Errorf("render %s for action %q: %w", result.View, name, err))
			c.Abort()
		}

		ActionsTotal.WithLabelValues(method, label, outcome).Inc()
		ActionDuration.WithLabelValues(method, label).Observe(time.Since(start).Seconds())
		log.Debug("project action handled",
			zap.String("method", method),
			zap.String("action", label),
			zap.String("view", result.View),
			zap.String("outcome", outcome),
		)
	}
}

func invalidAction() Result {
	return Result{
		Kind:       KindError,
		View:       ViewIndex,
		Attributes: map[string]any{AttrErrorMsg: invalidActionMessage},
	}
}

func (h *Handler) requestLogger(c *gin.Context) *zap.Logger {
	if rid := c.GetString("request_id"); rid != "" {
		return h.log.With(zap.String("request_id", rid))
	}
	return h.log
}
