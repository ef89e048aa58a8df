package view

import (
	"Warbler/internal/model"
	"Warbler/internal/pkg/consts"

	"github.com/gin-gonic/gin"
)

// CurrentUser 读取中间件写入 gin.Context 的当前用户，匿名或已登出时返回 nil。
// 当前用户只保存在 gin.Context 中，handler 把 c 作为 context.Context 向下传递
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(consts.CtxUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}
