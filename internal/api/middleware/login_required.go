package middleware

import (
	"Warbler/internal/api/view"

	"github.com/gin-gonic/gin"
)

// LoginRequired 未登录时提示 Access unauthorized. 并中止请求
func LoginRequired(renderer *view.Renderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if view.CurrentUser(c) == nil {
			renderer.Unauthorized(c)
			return
		}
		c.Next()
	}
}
