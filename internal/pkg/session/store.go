package session

import (
	"Warbler/internal/api/config"
	"encoding/gob"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	// CurrUserKey 会话中保存当前登录用户 ID 的键
	CurrUserKey = "curr_user"

	FlashSuccess = "success"
	FlashDanger  = "danger"
	FlashInfo    = "info"
)

// Flash 一次性提示消息
type Flash struct {
	Category string
	Message  string
}

func init() {
	gob.Register(Flash{})
}

// NewStore 根据配置创建 cookie 或 redis 会话存储
func NewStore(cfg config.SessionConfig) (sessions.Store, error) {
	secret := []byte(cfg.Secret)
	options := &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	switch cfg.Store {
	case "", "cookie":
		store := sessions.NewCookieStore(secret)
		store.Options = options
		store.MaxAge(cfg.MaxAge)
		return store, nil
	case "redis":
		store := NewRedisStore(secret)
		store.Options = options
		store.MaxAge(cfg.MaxAge)
		store.MaxLength(0)
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported session store %q", cfg.Store)
	}
}
