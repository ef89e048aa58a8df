package handler

import (
	"Warbler/internal/api/dto"
	"Warbler/internal/api/view"
	"Warbler/internal/pkg/consts"
	"Warbler/internal/pkg/session"
	"Warbler/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messageSvc service.MessageService
	likeSvc    service.LikeService
	render     *view.Renderer
}

func NewMessageHandler(messageSvc service.MessageService, likeSvc service.LikeService, render *view.Renderer) *MessageHandler {
	return &MessageHandler{messageSvc: messageSvc, likeSvc: likeSvc, render: render}
}

// Home 已登录时展示时间线，匿名时展示欢迎页
func (s *MessageHandler) Home(c *gin.Context) {
	curr := view.CurrentUser(c)
	if curr == nil {
		s.render.HTML(c, http.StatusOK, view.PageHomeAnon, nil)
		return
	}

	messages, err := s.messageSvc.Timeline(c, curr.ID, consts.MessageListLimit)
	if err != nil {
		s.render.Fail(c, err)
		return
	}
	liked, err := likedSet(c, s.likeSvc)
	if err != nil {
		s.render.Fail(c, err)
		return
	}
	s.render.HTML(c, http.StatusOK, view.PageHome, gin.H{"Messages": messages, "Liked": liked})
}

func (s *MessageHandler) NewMessagePage(c *gin.Context) {
	s.render.HTML(c, http.StatusOK, view.PageMessageNew, gin.H{"Form": &dto.MessageFormDTO{}})
}

func (s *MessageHandler) CreateMessage(c *gin.Context) {
	curr := view.CurrentUser(c)
	form := &dto.MessageFormDTO{}
	_ = c.ShouldBind(form)

	if _, err := s.messageSvc.CreateMessage(c, curr.ID, form); err != nil {
		if errors.Is(err, service.ErrParamInvalid) {
			s.render.Flash(c, session.FlashDanger, err.Error())
			s.render.HTML(c, http.StatusOK, view.PageMessageNew, gin.H{"Form": form})
			return
		}
		s.render.Fail(c, err)
		return
	}
	s.render.Redirect(c, userPath(curr.ID))
}

func (s *MessageHandler) ShowMessage(c *gin.Context) {
	messageID, ok := paramID(c, "message_id")
	if !ok {
		s.render.NotFound(c)
		return
	}

	message, err := s.messageSvc.GetMessage(c, messageID)
	if err != nil {
		s.render.Fail(c, err)
		return
	}
	s.render.HTML(c, http.StatusOK, view.PageMessage, gin.H{"Message": message})
}

// DeleteMessage 非作者删除时返回 Access unauthorized.
func (s *MessageHandler) DeleteMessage(c *gin.Context) {
	messageID, ok := paramID(c, "message_id")
	if !ok {
		s.render.NotFound(c)
		return
	}

	curr := view.CurrentUser(c)
	if err := s.messageSvc.DeleteMessage(c, curr.ID, messageID); err != nil {
		s.render.Fail(c, err)
		return
	}
	s.render.Redirect(c, userPath(curr.ID))
}

// ToggleLike 点赞或取消点赞后回到首页
func (s *MessageHandler) ToggleLike(c *gin.Context) {
	messageID, ok := paramID(c, "message_id")
	if !ok {
		s.render.NotFound(c)
		return
	}

	curr := view.CurrentUser(c)
	if _, err := s.likeSvc.ToggleLike(c, curr.ID, messageID); err != nil {
		if !errors.Is(err, service.ErrLikeOwnMessage) {
			s.render.Fail(c, err)
			return
		}
		s.render.Flash(c, session.FlashDanger, err.Error())
	}
	s.render.Redirect(c, "/")
}
