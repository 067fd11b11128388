package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Renderer writes a Result to the response.
type Renderer interface {
	Render(c *gin.Context, r Result) error
}

// ViewResponse is the JSON shape produced by JSONRenderer.
type ViewResponse struct {
	View       string         `json:"view"`
	Attributes map[string]any `json:"attributes"`
}

// JSONRenderer hands views to the template layer as JSON.
type JSONRenderer struct{}

func (JSONRenderer) Render(c *gin.Context, r Result) error {
	body, err := json.Marshal(ViewResponse{View: r.View, Attributes: r.Attributes})
	if err != nil {
		return fmt.Errorf("encode view %s: %w", r.View, err)
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
	return nil
}
