package middleware

import (
	"Warbler/internal/pkg/consts"
	"Warbler/internal/pkg/session"
	"Warbler/internal/service"
	"errors"
	log "log/slog"

	"github.com/gin-gonic/gin"
)

// CurrentUserMiddleware 可选登录：根据会话加载当前用户，失败或缺失则视为匿名
func CurrentUserMiddleware(sess *session.Manager, userService service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := sess.CurrentUserID(c.Request)
		if !ok {
			c.Next()
			return
		}

		user, err := userService.GetUser(c.Request.Context(), id)
		if err != nil {
			// 用户已被删除时清理会话里的残留登录态
			if errors.Is(err, service.ErrUserNotFound) {
				if err = sess.Logout(c.Request, c.Writer); err != nil {
					log.ErrorContext(c.Request.Context(), "Failed to clear stale session", "err", err)
				}
			} else {
				log.ErrorContext(c.Request.Context(), "Failed to load current user", "user_id", id, "err", err)
			}
			c.Next()
			return
		}

		c.Set(consts.CtxUserKey, user)

		c.Next()
	}
}
