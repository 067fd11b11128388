package http

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// projectForm holds the editable project fields of updateProject and addNewProject.
type projectForm struct {
	Name     string `form:"name"`
	Manager  string `form:"manager"`
	Client   string `form:"client"`
	Deadline string `form:"deadline"`
}

// param reads key from the query string first, then from the form body.
func param(c *gin.Context, key string) (string, bool) {
	if v, ok := c.GetQuery(key); ok {
		return v, true
	}
	return c.GetPostForm(key)
}

// params collects every value of key from the query string and the form body.
func params(c *gin.Context, key string) []string {
	return append(c.QueryArray(key), c.PostFormArray(key)...)
}

// parseID reads a numeric project id from key.
func parseID(c *gin.Context, key string) (int64, bool) {
	raw, _ := param(c, key)
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// uniqueValues drops exact repeats, keeping first-seen order. Values are
// passed on as submitted; blank or padded ids fail at assignment.
func uniqueValues(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
