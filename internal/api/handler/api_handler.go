package handler

import (
	"Warbler/internal/api/dto"
	"Warbler/internal/pkg/consts"
	"Warbler/internal/pkg/response"
	"Warbler/internal/pkg/security"
	"Warbler/internal/pkg/util"
	"Warbler/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

// APIHandler JSON 接口，鉴权使用 Bearer token
type APIHandler struct {
	userSvc       service.UserService
	messageSvc    service.MessageService
	userFollowSvc service.UserFollowService
}

func NewAPIHandler(userSvc service.UserService, messageSvc service.MessageService, userFollowSvc service.UserFollowService) *APIHandler {
	return &APIHandler{userSvc: userSvc, messageSvc: messageSvc, userFollowSvc: userFollowSvc}
}

func (s *APIHandler) Ping(c *gin.Context) {
	response.Success(c, "pong")
}

// Token 用户名密码换取 JWT
func (s *APIHandler) Token(c *gin.Context) {
	form := &dto.LoginDTO{}
	if err := c.ShouldBindJSON(form); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	if err := util.ValidateDTO(form); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	user, err := s.userSvc.Authenticate(c, form.Username, form.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	if user == nil {
		response.Fail(c, response.Unauthorized, service.ErrPasswordIncorrect.Error())
		return
	}

	token, err := security.GenerateToken(user.ID, user.Username)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.TokenDTO{
		Token:     token,
		ExpiresIn: int64(security.JWTExpirationTime.Seconds()),
	})
}

func (s *APIHandler) GetUser(c *gin.Context) {
	userID, ok := paramID(c, "user_id")
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	profile, err := s.userSvc.GetProfile(c, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, profile)
}

func (s *APIHandler) GetUserMessages(c *gin.Context) {
	userID, ok := paramID(c, "user_id")
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	messages, err := s.messageSvc.ListUserMessages(c, userID, s.getLimit(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, service.ToMessageDTOs(messages))
}

func (s *APIHandler) GetTimeline(c *gin.Context) {
	userID := c.GetUint64(consts.CtxUserIDKey)

	messages, err := s.messageSvc.Timeline(c, userID, s.getLimit(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, service.ToMessageDTOs(messages))
}

func (s *APIHandler) CreateMessage(c *gin.Context) {
	userID := c.GetUint64(consts.CtxUserIDKey)

	form := &dto.MessageFormDTO{}
	if err := c.ShouldBindJSON(form); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	message, err := s.messageSvc.CreateMessage(c, userID, form)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, service.ToMessageDTO(message))
}

func (s *APIHandler) DeleteMessage(c *gin.Context) {
	userID := c.GetUint64(consts.CtxUserIDKey)
	messageID, ok := paramID(c, "message_id")
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err := s.messageSvc.DeleteMessage(c, userID, messageID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *APIHandler) Follow(c *gin.Context) {
	userID := c.GetUint64(consts.CtxUserIDKey)
	followID, ok := paramID(c, "user_id")
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err := s.userFollowSvc.Follow(c, userID, followID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *APIHandler) Unfollow(c *gin.Context) {
	userID := c.GetUint64(consts.CtxUserIDKey)
	followID, ok := paramID(c, "user_id")
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err := s.userFollowSvc.Unfollow(c, userID, followID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *APIHandler) getLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return consts.MessageListLimit
	}
	return util.ClampLimit(limit, consts.MessageListLimit, consts.MaxMessageListLimit)
}
