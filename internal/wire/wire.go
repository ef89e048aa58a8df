package wire

import (
	"Warbler/internal/api"
	"Warbler/internal/api/config"
	"Warbler/internal/api/handler"
	"Warbler/internal/api/middleware"
	"Warbler/internal/api/view"
	"Warbler/internal/pkg/kafka"
	"Warbler/internal/pkg/session"
	"Warbler/internal/repository"
	"Warbler/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router    *gin.Engine
	DB        *gorm.DB
	Publisher kafka.Publisher
}

func BuildApplication(db *gorm.DB, cfg *config.Config, store sessions.Store, publisher kafka.Publisher) (*ApplicationContainer, error) {
	if publisher == nil {
		publisher = kafka.NoopPublisher{}
	}

	userRepo := repository.NewUserRepo(db)
	userFollowRepo := repository.NewUserFollowRepo(db)
	messageRepo := repository.NewMessageRepo(db)
	likeRepo := repository.NewLikeRepo(db)

	userService := service.NewUserService(userRepo, userFollowRepo, messageRepo, likeRepo, publisher)
	userFollowService := service.NewUserFollowService(userRepo, userFollowRepo, publisher)
	messageService := service.NewMessageService(userRepo, messageRepo, publisher)
	likeService := service.NewLikeService(userRepo, messageRepo, likeRepo, publisher)

	sess := session.NewManager(store, cfg.Session.Name)
	renderer := view.NewRenderer(sess)

	handlers := &api.HandlersGroup{
		AuthHandler:       handler.NewAuthHandler(userService, renderer),
		UserHandler:       handler.NewUserHandler(userService, messageService, likeService, renderer),
		UserFollowHandler: handler.NewUserFollowHandler(userService, userFollowService, renderer),
		MessageHandler:    handler.NewMessageHandler(messageService, likeService, renderer),
		APIHandler:        handler.NewAPIHandler(userService, messageService, userFollowService),
		Renderer:          renderer,
		CurrentUser:       middleware.CurrentUserMiddleware(sess, userService),
	}

	router := api.SetupRouter(handlers, cfg.Log.Index)

	return &ApplicationContainer{
		Router:    router,
		DB:        db,
		Publisher: publisher,
	}, nil
}
