package session

import (
	log "log/slog"
	"net/http"

	"github.com/gorilla/sessions"
)

// Manager 对单个命名会话的读写封装
type Manager struct {
	store sessions.Store
	name  string
}

func NewManager(store sessions.Store, name string) *Manager {
	if name == "" {
		name = "warbler"
	}
	return &Manager{store: store, name: name}
}

// Session 取出当前请求的会话，cookie 无法解码时返回一个新会话
func (m *Manager) Session(r *http.Request) *sessions.Session {
	s, err := m.store.Get(r, m.name)
	if err != nil {
		log.WarnContext(r.Context(), "Invalid session, starting a new one", "err", err)
	}
	if s == nil {
		s = sessions.NewSession(m.store, m.name)
		s.IsNew = true
	}
	return s
}

// CurrentUserID 返回会话中的用户 ID，未登录时 ok 为 false
func (m *Manager) CurrentUserID(r *http.Request) (uint64, bool) {
	id, ok := m.Session(r).Values[CurrUserKey].(uint64)
	return id, ok && id != 0
}

func (m *Manager) Login(r *http.Request, w http.ResponseWriter, userID uint64) error {
	s := m.Session(r)
	s.Values[CurrUserKey] = userID
	return s.Save(r, w)
}

// Logout 只移除登录态，保留其余会话数据（例如待显示的提示）
func (m *Manager) Logout(r *http.Request, w http.ResponseWriter) error {
	s := m.Session(r)
	delete(s.Values, CurrUserKey)
	return s.Save(r, w)
}

func (m *Manager) AddFlash(r *http.Request, w http.ResponseWriter, category, message string) error {
	s := m.Session(r)
	s.AddFlash(Flash{Category: category, Message: message})
	return s.Save(r, w)
}

// Flashes 取出并清空待显示的提示
func (m *Manager) Flashes(r *http.Request, w http.ResponseWriter) []Flash {
	s := m.Session(r)
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := s.Save(r, w); err != nil {
		log.ErrorContext(r.Context(), "Failed to save session", "err", err)
	}

	flashes := make([]Flash, 0, len(raw))
	for _, f := range raw {
		if flash, ok := f.(Flash); ok {
			flashes = append(flashes, flash)
		}
	}
	return flashes
}
