package handler

import (
	"Warbler/internal/api/dto"
	"Warbler/internal/api/view"
	"Warbler/internal/model"
	"Warbler/internal/pkg/consts"
	"Warbler/internal/pkg/session"
	"Warbler/internal/service"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	userSvc service.UserService
	render  *view.Renderer
}

func NewAuthHandler(userSvc service.UserService, render *view.Renderer) *AuthHandler {
	return &AuthHandler{userSvc: userSvc, render: render}
}

func (s *AuthHandler) SignupPage(c *gin.Context) {
	s.render.HTML(c, http.StatusOK, view.PageSignup, gin.H{"Form": &dto.SignupDTO{}})
}

// Signup 注册成功后直接登录并回到首页
func (s *AuthHandler) Signup(c *gin.Context) {
	form := &dto.SignupDTO{}
	if err := c.ShouldBind(form); err != nil {
		s.render.Flash(c, session.FlashDanger, service.ErrParamInvalid.Error())
		s.render.HTML(c, http.StatusOK, view.PageSignup, gin.H{"Form": form})
		return
	}

	user, err := s.userSvc.Register(c, form)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserExist):
			s.render.Flash(c, session.FlashDanger, service.ErrUserUsernameExist.Error())
		case errors.Is(err, service.ErrUserUsernameExist),
			errors.Is(err, service.ErrUserEmailExist),
			errors.Is(err, service.ErrUserEmailRequired),
			errors.Is(err, service.ErrParamInvalid):
			s.render.Flash(c, session.FlashDanger, err.Error())
		default:
			s.render.Fail(c, err)
			return
		}
		form.Password = ""
		s.render.HTML(c, http.StatusOK, view.PageSignup, gin.H{"Form": form})
		return
	}

	if err = s.render.Session().Login(c.Request, c.Writer, user.ID); err != nil {
		s.render.Fail(c, err)
		return
	}
	s.render.Redirect(c, "/")
}

func (s *AuthHandler) LoginPage(c *gin.Context) {
	s.render.HTML(c, http.StatusOK, view.PageLogin, gin.H{"Form": &dto.LoginDTO{}})
}

func (s *AuthHandler) Login(c *gin.Context) {
	form := &dto.LoginDTO{}
	_ = c.ShouldBind(form)

	user, err := s.userSvc.Authenticate(c, form.Username, form.Password)
	if err != nil {
		s.render.Fail(c, err)
		return
	}
	if user == nil {
		form.Password = ""
		s.render.Flash(c, session.FlashDanger, service.ErrPasswordIncorrect.Error())
		s.render.HTML(c, http.StatusOK, view.PageLogin, gin.H{"Form": form})
		return
	}

	if err = s.render.Session().Login(c.Request, c.Writer, user.ID); err != nil {
		s.render.Fail(c, err)
		return
	}
	s.render.Flash(c, session.FlashSuccess, fmt.Sprintf("Hello, %s!", user.Username))
	s.render.Redirect(c, "/")
}

// Logout 清除登录态后直接渲染登录页
func (s *AuthHandler) Logout(c *gin.Context) {
	user := view.CurrentUser(c)
	if err := s.render.Session().Logout(c.Request, c.Writer); err != nil {
		s.render.Fail(c, err)
		return
	}
	c.Set(consts.CtxUserKey, (*model.User)(nil))

	if user != nil {
		s.render.Flash(c, session.FlashSuccess, fmt.Sprintf("Goodbye, %s!", user.Username))
	}
	s.render.HTML(c, http.StatusOK, view.PageLogin, gin.H{"Form": &dto.LoginDTO{}})
}
