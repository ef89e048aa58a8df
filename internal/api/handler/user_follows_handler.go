package handler

import (
	"Warbler/internal/api/view"
	"Warbler/internal/model"
	"Warbler/internal/pkg/session"
	"Warbler/internal/service"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type UserFollowHandler struct {
	userSvc       service.UserService
	userFollowSvc service.UserFollowService
	render        *view.Renderer
}

func NewUserFollowHandler(userSvc service.UserService, userFollowSvc service.UserFollowService, render *view.Renderer) *UserFollowHandler {
	return &UserFollowHandler{userSvc: userSvc, userFollowSvc: userFollowSvc, render: render}
}

func (s *UserFollowHandler) ShowFollowing(c *gin.Context) {
	s.showUsers(c, view.PageFollowing, s.userFollowSvc.ListFollowing)
}

func (s *UserFollowHandler) ShowFollowers(c *gin.Context) {
	s.showUsers(c, view.PageFollowers, s.userFollowSvc.ListFollowers)
}

// Follow 关注后跳转到自己的关注列表
func (s *UserFollowHandler) Follow(c *gin.Context) {
	followID, ok := paramID(c, "follow_id")
	if !ok {
		s.render.NotFound(c)
		return
	}

	curr := view.CurrentUser(c)
	err := s.userFollowSvc.Follow(c, curr.ID, followID)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrUserFollowSelf), errors.Is(err, service.ErrUserFollowExist):
		s.render.Flash(c, session.FlashDanger, err.Error())
	default:
		s.render.Fail(c, err)
		return
	}
	s.render.Redirect(c, userPath(curr.ID)+"/following")
}

func (s *UserFollowHandler) StopFollowing(c *gin.Context) {
	followID, ok := paramID(c, "follow_id")
	if !ok {
		s.render.NotFound(c)
		return
	}

	curr := view.CurrentUser(c)
	if err := s.userFollowSvc.Unfollow(c, curr.ID, followID); err != nil {
		s.render.Fail(c, err)
		return
	}
	s.render.Redirect(c, userPath(curr.ID)+"/following")
}

func (s *UserFollowHandler) showUsers(
	c *gin.Context,
	page string,
	list func(ctx context.Context, userID uint64) ([]*model.User, error),
) {
	userID, ok := paramID(c, "user_id")
	if !ok {
		s.render.NotFound(c)
		return
	}

	data, err := loadProfile(c, s.userSvc, userID)
	if err != nil {
		s.render.Fail(c, err)
		return
	}
	users, err := list(c, userID)
	if err != nil {
		s.render.Fail(c, err)
		return
	}

	data["Users"] = users
	s.render.HTML(c, http.StatusOK, page, data)
}
