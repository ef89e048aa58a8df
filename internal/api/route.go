package api

import (
	"Warbler/internal/api/middleware"
	"Warbler/internal/pkg/logger"
	"html/template"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRouter(group *HandlersGroup, logIndex string) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})
	r.ContextWithFallback = true
	r.SetHTMLTemplate(template.Must(LoadTemplates()))

	// TraceId & Logger & CORS & Metrics
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware("/api"))
	r.Use(middleware.MetricsMiddleware())
	logger.SetupGin(r, logIndex)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", group.APIHandler.Ping)
		apiGroup.POST("/token", group.APIHandler.Token)
		apiGroup.GET("/users/:user_id", group.APIHandler.GetUser)
		apiGroup.GET("/users/:user_id/messages", group.APIHandler.GetUserMessages)

		authGroup := apiGroup.Group("")
		authGroup.Use(middleware.AuthMiddleware())
		{
			authGroup.GET("/timeline", group.APIHandler.GetTimeline)
			authGroup.POST("/messages", group.APIHandler.CreateMessage)
			authGroup.DELETE("/messages/:message_id", group.APIHandler.DeleteMessage)
			authGroup.POST("/follows/:user_id", group.APIHandler.Follow)
			authGroup.DELETE("/follows/:user_id", group.APIHandler.Unfollow)
		}
	}

	loginRequired := middleware.LoginRequired(group.Renderer)

	web := r.Group("")
	web.Use(group.CurrentUser)
	{
		web.GET("/", group.MessageHandler.Home)
		web.GET("/signup", group.AuthHandler.SignupPage)
		web.POST("/signup", group.AuthHandler.Signup)
		web.GET("/login", group.AuthHandler.LoginPage)
		web.POST("/login", group.AuthHandler.Login)
		web.GET("/logout", group.AuthHandler.Logout)

		web.GET("/users", group.UserHandler.ListUsers)
		web.GET("/users/:user_id", group.UserHandler.ShowUser)
		web.GET("/users/:user_id/likes", group.UserHandler.ShowLikes)
		web.GET("/messages/:message_id", group.MessageHandler.ShowMessage)

		// 需要登录
		authGroup := web.Group("")
		authGroup.Use(loginRequired)
		{
			authGroup.GET("/users/:user_id/following", group.UserFollowHandler.ShowFollowing)
			authGroup.GET("/users/:user_id/followers", group.UserFollowHandler.ShowFollowers)
			authGroup.GET("/users/follow/:follow_id", group.UserFollowHandler.Follow)
			authGroup.POST("/users/follow/:follow_id", group.UserFollowHandler.Follow)
			authGroup.GET("/users/stop-following/:follow_id", group.UserFollowHandler.StopFollowing)
			authGroup.POST("/users/stop-following/:follow_id", group.UserFollowHandler.StopFollowing)
			authGroup.GET("/users/profile", group.UserHandler.EditProfilePage)
			authGroup.POST("/users/profile", group.UserHandler.EditProfile)
			authGroup.POST("/users/delete", group.UserHandler.DeleteUser)
			authGroup.POST("/users/add_like/:message_id", group.MessageHandler.ToggleLike)
			authGroup.GET("/messages/new", group.MessageHandler.NewMessagePage)
			authGroup.POST("/messages/new", group.MessageHandler.CreateMessage)
			authGroup.POST("/messages/:message_id/delete", group.MessageHandler.DeleteMessage)
		}
	}

	r.NoRoute(group.CurrentUser, group.Renderer.NotFound)

	return r
}
