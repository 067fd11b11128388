package routes

import (
	"github.com/gin-gonic/gin"

	projecthttp "github.com/pmdesk/pm-backend/internal/projects/http"
)

type V1Deps struct {
	Projects   *projecthttp.Handler
	Middleware []gin.HandlerFunc
}

// RegisterV1 mounts the versioned API. The project controller is also served
// unversioned at /project by BuildRouter.
func RegisterV1(r *gin.Engine, dep V1Deps) {
	api := r.Group("/api/v1", dep.Middleware...)

	dep.Projects.Register(api.Group("/project"))
}
