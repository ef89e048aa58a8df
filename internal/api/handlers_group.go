package api

import (
	"Warbler/internal/api/handler"
	"Warbler/internal/api/view"

	"github.com/gin-gonic/gin"
)

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	AuthHandler       *handler.AuthHandler
	UserHandler       *handler.UserHandler
	UserFollowHandler *handler.UserFollowHandler
	MessageHandler    *handler.MessageHandler
	APIHandler        *handler.APIHandler

	Renderer    *view.Renderer
	CurrentUser gin.HandlerFunc
}
