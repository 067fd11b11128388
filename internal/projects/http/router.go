package http

import "github.com/gin-gonic/gin"

// Register attaches the project controller to the given router group.
// Reads go through GET, mutations through POST; both select the operation
// with the "action" parameter.
func (h *Handler) Register(rg gin.IRouter) {
	rg.GET("", h.handle(readActions))
	rg.POST("", h.handle(writeActions))
}
