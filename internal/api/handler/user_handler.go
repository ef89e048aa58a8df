package handler

import (
	"Warbler/internal/api/dto"
	"Warbler/internal/api/view"
	"Warbler/internal/model"
	"Warbler/internal/pkg/consts"
	"Warbler/internal/pkg/session"
	"Warbler/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
)

const wrongPasswordMessage = "Wrong password, please try again."

type UserHandler struct {
	userSvc    service.UserService
	messageSvc service.MessageService
	likeSvc    service.LikeService
	render     *view.Renderer
}

func NewUserHandler(
	userSvc service.UserService,
	messageSvc service.MessageService,
	likeSvc service.LikeService,
	render *view.Renderer,
) *UserHandler {
	return &UserHandler{
		userSvc:    userSvc,
		messageSvc: messageSvc,
		likeSvc:    likeSvc,
		render:     render,
	}
}

// ListUsers 支持 ?q= 按用户名模糊搜索
func (s *UserHandler) ListUsers(c *gin.Context) {
	query := c.Query("q")
	users, err := s.userSvc.ListUsers(c, query)
	if err != nil {
		s.render.Fail(c, err)
		return
	}
	s.render.HTML(c, http.StatusOK, view.PageUsers, gin.H{"Users": users, "Query": query})
}

func (s *UserHandler) ShowUser(c *gin.Context) {
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
	messages, err := s.messageSvc.ListUserMessages(c, userID, consts.MessageListLimit)
	if err != nil {
		s.render.Fail(c, err)
		return
	}
	liked, err := likedSet(c, s.likeSvc)
	if err != nil {
		s.render.Fail(c, err)
		return
	}

	data["Messages"] = messages
	data["Liked"] = liked
	s.render.HTML(c, http.StatusOK, view.PageUserShow, data)
}

func (s *UserHandler) ShowLikes(c *gin.Context) {
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
	messages, err := s.likeSvc.ListLikedMessages(c, userID)
	if err != nil {
		s.render.Fail(c, err)
		return
	}
	liked, err := likedSet(c, s.likeSvc)
	if err != nil {
		s.render.Fail(c, err)
		return
	}

	data["Messages"] = messages
	data["Liked"] = liked
	s.render.HTML(c, http.StatusOK, view.PageUserLikes, data)
}

func (s *UserHandler) EditProfilePage(c *gin.Context) {
	form := &dto.ProfileDTO{}
	if err := copier.Copy(form, view.CurrentUser(c)); err != nil {
		s.render.Fail(c, err)
		return
	}
	s.render.HTML(c, http.StatusOK, view.PageUserEdit, gin.H{"Form": form})
}

// EditProfile 当前密码校验通过后才会保存
func (s *UserHandler) EditProfile(c *gin.Context) {
	curr := view.CurrentUser(c)
	form := &dto.ProfileDTO{}
	_ = c.ShouldBind(form)

	user, err := s.userSvc.UpdateProfile(c, curr.ID, form)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordIncorrect):
			s.render.Flash(c, session.FlashDanger, wrongPasswordMessage)
		case errors.Is(err, service.ErrUserExist),
			errors.Is(err, service.ErrUserUsernameExist),
			errors.Is(err, service.ErrUserEmailExist),
			errors.Is(err, service.ErrParamInvalid):
			s.render.Flash(c, session.FlashDanger, err.Error())
		default:
			s.render.Fail(c, err)
			return
		}
		form.Password = ""
		s.render.HTML(c, http.StatusOK, view.PageUserEdit, gin.H{"Form": form})
		return
	}
	s.render.Redirect(c, userPath(user.ID))
}

// DeleteUser 先登出再删除，随后跳转到注册页
func (s *UserHandler) DeleteUser(c *gin.Context) {
	curr := view.CurrentUser(c)
	// 先删除账号，失败时保留登录态
	if err := s.userSvc.DeleteUser(c, curr.ID); err != nil {
		s.render.Fail(c, err)
		return
	}
	if err := s.render.Session().Logout(c.Request, c.Writer); err != nil {
		s.render.Fail(c, err)
		return
	}
	c.Set(consts.CtxUserKey, (*model.User)(nil))
	s.render.Redirect(c, "/signup")
}
