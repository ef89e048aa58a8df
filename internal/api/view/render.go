package view

import (
	"Warbler/internal/pkg/session"
	"Warbler/internal/service"
	"errors"
	log "log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	PageHomeAnon   = "home_anon.html"
	PageHome       = "home.html"
	PageSignup     = "signup.html"
	PageLogin      = "login.html"
	PageUsers      = "users_index.html"
	PageUserShow   = "users_show.html"
	PageUserLikes  = "users_likes.html"
	PageFollowing  = "users_following.html"
	PageFollowers  = "users_followers.html"
	PageUserEdit   = "users_edit.html"
	PageMessageNew = "messages_new.html"
	PageMessage    = "messages_show.html"
	PageNotFound   = "404.html"
	PageError      = "error.html"
)

// Renderer 渲染页面时附带当前用户与待显示的提示
type Renderer struct {
	sess *session.Manager
}

func NewRenderer(sess *session.Manager) *Renderer {
	return &Renderer{sess: sess}
}

func (r *Renderer) Session() *session.Manager {
	return r.sess
}

func (r *Renderer) HTML(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["CurrUser"] = CurrentUser(c)
	// 会话需在写入响应体之前保存
	data["Flashes"] = r.sess.Flashes(c.Request, c.Writer)
	c.HTML(status, name, data)
}

func (r *Renderer) Flash(c *gin.Context, category, message string) {
	if err := r.sess.AddFlash(c.Request, c.Writer, category, message); err != nil {
		log.ErrorContext(c.Request.Context(), "Failed to save flash", "err", err)
	}
}

func (r *Renderer) Redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}

// Unauthorized 匿名用户直接渲染首页，已登录用户跳回首页
func (r *Renderer) Unauthorized(c *gin.Context) {
	r.Flash(c, session.FlashDanger, service.UnauthorizedError.Error())
	if CurrentUser(c) == nil {
		r.HTML(c, http.StatusOK, PageHomeAnon, nil)
	} else {
		r.Redirect(c, "/")
	}
	c.Abort()
}

func (r *Renderer) NotFound(c *gin.Context) {
	r.HTML(c, http.StatusNotFound, PageNotFound, nil)
	c.Abort()
}

// Fail 按错误类型选择页面，未知错误只记录日志
func (r *Renderer) Fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrMessageNotFound):
		r.NotFound(c)
	case errors.Is(err, service.UnauthorizedError):
		r.Unauthorized(c)
	default:
		log.ErrorContext(c.Request.Context(), "Request failed", "path", c.Request.URL.Path, "err", err)
		r.HTML(c, http.StatusInternalServerError, PageError, gin.H{"Message": service.UnExpectedError.Error()})
		c.Abort()
	}
}
