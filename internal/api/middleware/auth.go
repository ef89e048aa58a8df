package middleware

import (
	"Warbler/internal/pkg/consts"
	"Warbler/internal/pkg/response"
	"Warbler/internal/pkg/security"
	"Warbler/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 负责验证 JWT 并将用户 ID 写入 gin.Context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := security.ExtractBearer(c.GetHeader("Authorization"))
		if err != nil {
			response.Abort(c, service.UnauthorizedError)
			return
		}

		claims, err := security.ValidateToken(tokenString)
		if err != nil {
			response.Abort(c, service.UnauthorizedError)
			return
		}

		c.Set(consts.CtxUserIDKey, claims.UserID)
		c.Next()
	}
}
