package api_test

import (
	"Warbler/internal/api/config"
	"Warbler/internal/model"
	"Warbler/internal/pkg/database"
	"Warbler/internal/pkg/kafka"
	"Warbler/internal/pkg/security"
	"Warbler/internal/pkg/session"
	"Warbler/internal/wire"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	security.HashCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type testApp struct {
	srv *httptest.Server
	db  *gorm.DB
}

func newTestApp(t *testing.T) *testApp {
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	db, err := database.NewGormDB(&config.DBConfig{Driver: "sqlite", DSN: dsn}, database.WithNowFunc(now))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		Session: config.SessionConfig{Store: "cookie", Name: "warbler", Secret: "test-secret"},
		Log:     config.LogConfig{Index: "test"},
	}
	store, err := session.NewStore(cfg.Session)
	require.NoError(t, err)

	app, err := wire.BuildApplication(db, cfg, store, kafka.NoopPublisher{})
	require.NoError(t, err)

	srv := httptest.NewServer(app.Router)
	t.Cleanup(srv.Close)
	return &testApp{srv: srv, db: db}
}

// client 每个客户端有独立的 cookie，follow 为 false 时不跟随跳转
func (a *testApp) client(t *testing.T, follow bool) *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	c := &http.Client{Jar: jar}
	if !follow {
		c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return c
}

func (a *testApp) get(t *testing.T, c *http.Client, path string) (int, string) {
	resp, err := c.Get(a.srv.URL + path)
	require.NoError(t, err)
	return readBody(t, resp)
}

func (a *testApp) post(t *testing.T, c *http.Client, path string, form url.Values) (int, string) {
	resp, err := c.PostForm(a.srv.URL+path, form)
	require.NoError(t, err)
	return readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) (int, string) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

// signup 注册后该客户端处于登录状态
func (a *testApp) signup(t *testing.T, c *http.Client, username string) uint64 {
	code, _ := a.post(t, c, "/signup", url.Values{
		"username": {username},
		"email":    {username + "@test.com"},
		"password": {"password"},
	})
	require.Equal(t, http.StatusOK, code)

	var user model.User
	require.NoError(t, a.db.Where("username = ?", username).First(&user).Error)
	return user.ID
}

func (a *testApp) login(t *testing.T, c *http.Client, username string) string {
	code, body := a.post(t, c, "/login", url.Values{"username": {username}, "password": {"password"}})
	require.Equal(t, http.StatusOK, code)
	return body
}

func (a *testApp) messageID(t *testing.T, text string) uint64 {
	var msg model.Message
	require.NoError(t, a.db.Where("text = ?", text).First(&msg).Error)
	return msg.ID
}

func TestSignupPage(t *testing.T) {
	app := newTestApp(t)
	code, body := app.get(t, app.client(t, true), "/signup")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Join Warbler today.")
}

func TestSignupLogsInAndRedirectsHome(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t, true)
	app.signup(t, c, "testuser2")

	_, body := app.get(t, c, "/")
	assert.Contains(t, body, "@testuser2")
	assert.Contains(t, body, "Log out")

	var count int64
	require.NoError(t, app.db.Model(&model.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSignupDuplicateUsername(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, app.client(t, true), "testuser")

	code, body := app.post(t, app.client(t, true), "/signup", url.Values{
		"username": {"testuser"},
		"email":    {"other@test.com"},
		"password": {"password"},
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Username already taken")
}

func TestLoginAndLogout(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, app.client(t, true), "testuser")

	c := app.client(t, true)
	body := app.login(t, c, "testuser")
	assert.Contains(t, body, "Hello, testuser!")

	code, body := app.get(t, c, "/logout")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Goodbye, testuser!")
	assert.Contains(t, body, "Log in")

	// 提示只显示一次
	_, body = app.get(t, c, "/")
	assert.NotContains(t, body, "Goodbye, testuser!")
	assert.Contains(t, body, "Sign up now")
}

func TestLoginInvalidCredentials(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, app.client(t, true), "testuser")

	c := app.client(t, true)
	code, body := app.post(t, c, "/login", url.Values{"username": {"testuser"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Invalid credentials.")

	_, body = app.post(t, c, "/login", url.Values{"username": {"nobody"}, "password": {"password"}})
	assert.Contains(t, body, "Invalid credentials.")
}

func TestListAndSearchUsers(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, app.client(t, true), "alice")
	app.signup(t, app.client(t, true), "bob")

	c := app.client(t, true)
	code, body := app.get(t, c, "/users")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "@alice")
	assert.Contains(t, body, "@bob")

	_, body = app.get(t, c, "/users?q=ali")
	assert.Contains(t, body, "@alice")
	assert.NotContains(t, body, "@bob")

	_, body = app.get(t, c, "/users?q=zzz")
	assert.Contains(t, body, "Sorry, no users found")
}

func TestShowUser(t *testing.T) {
	app := newTestApp(t)
	id := app.signup(t, app.client(t, true), "testuser")

	c := app.client(t, true)
	code, body := app.get(t, c, fmt.Sprintf("/users/%d", id))
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "@testuser")

	code, body = app.get(t, c, fmt.Sprintf("/users/%d/likes", id))
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "@testuser")

	code, _ = app.get(t, c, "/users/9999")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = app.get(t, c, "/users/abc")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	app := newTestApp(t)
	id := app.signup(t, app.client(t, true), "testuser")
	other := app.signup(t, app.client(t, true), "testuser2")

	c := app.client(t, false)
	for _, path := range []string{
		fmt.Sprintf("/users/%d/following", id),
		fmt.Sprintf("/users/%d/followers", id),
		"/users/profile",
		"/messages/new",
	} {
		code, body := app.get(t, c, path)
		assert.Equal(t, http.StatusOK, code, path)
		assert.Contains(t, body, "Access unauthorized.", path)
		assert.NotContains(t, body, "@testuser", path)
	}

	code, body := app.post(t, app.client(t, true), fmt.Sprintf("/users/follow/%d", other), nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Access unauthorized.")

	var follows int64
	require.NoError(t, app.db.Model(&model.Follow{}).Count(&follows).Error)
	assert.Zero(t, follows)
}

func TestFollowAndStopFollowing(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t, true)
	id := app.signup(t, c, "testuser")
	other := app.signup(t, app.client(t, true), "testuser3")

	code, body := app.get(t, c, fmt.Sprintf("/users/follow/%d", other))
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "@testuser3")

	_, body = app.get(t, c, fmt.Sprintf("/users/%d/followers", other))
	assert.Contains(t, body, "@testuser")
	assert.Contains(t, body, "Unfollow")

	code, body = app.get(t, c, fmt.Sprintf("/users/stop-following/%d", other))
	assert.Equal(t, http.StatusOK, code)
	assert.NotContains(t, body, "@testuser3")

	_, body = app.get(t, c, fmt.Sprintf("/users/%d/following", id))
	assert.NotContains(t, body, "@testuser3")

	_, body = app.post(t, c, fmt.Sprintf("/users/follow/%d", id), nil)
	assert.Contains(t, body, "You cannot follow yourself.")
}

func TestMessageLifecycle(t *testing.T) {
	app := newTestApp(t)
	owner := app.client(t, true)
	ownerID := app.signup(t, owner, "testuser")
	stranger := app.client(t, true)
	app.signup(t, stranger, "testuser2")

	code, body := app.post(t, owner, "/messages/new", url.Values{"text": {"Hello warblers"}})
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Hello warblers")
	msgID := app.messageID(t, "Hello warblers")

	_, body = app.get(t, owner, "/")
	assert.Contains(t, body, "Hello warblers")

	code, body = app.get(t, stranger, fmt.Sprintf("/messages/%d", msgID))
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Hello warblers")
	assert.NotContains(t, body, "Delete")

	_, body = app.post(t, stranger, fmt.Sprintf("/messages/%d/delete", msgID), nil)
	assert.Contains(t, body, "Access unauthorized.")
	app.messageID(t, "Hello warblers")

	_, body = app.post(t, owner, "/messages/new", url.Values{"text": {strings.Repeat("x", 141)}})
	assert.Contains(t, body, "Invalid parameters.")

	code, _ = app.post(t, owner, fmt.Sprintf("/messages/%d/delete", msgID), nil)
	assert.Equal(t, http.StatusOK, code)
	var count int64
	require.NoError(t, app.db.Model(&model.Message{}).Where("user_id = ?", ownerID).Count(&count).Error)
	assert.Zero(t, count)

	code, _ = app.get(t, owner, fmt.Sprintf("/messages/%d", msgID))
	assert.Equal(t, http.StatusNotFound, code)
}

func TestToggleLike(t *testing.T) {
	app := newTestApp(t)
	author := app.client(t, true)
	app.signup(t, author, "author")
	fan := app.client(t, true)
	fanID := app.signup(t, fan, "fan")

	app.post(t, author, "/messages/new", url.Values{"text": {"like me"}})
	msgID := app.messageID(t, "like me")

	_, body := app.post(t, author, fmt.Sprintf("/users/add_like/%d", msgID), nil)
	assert.Contains(t, body, "You cannot like your own message.")

	app.post(t, fan, fmt.Sprintf("/users/add_like/%d", msgID), nil)
	_, body = app.get(t, fan, fmt.Sprintf("/users/%d/likes", fanID))
	assert.Contains(t, body, "like me")

	app.post(t, fan, fmt.Sprintf("/users/add_like/%d", msgID), nil)
	_, body = app.get(t, fan, fmt.Sprintf("/users/%d/likes", fanID))
	assert.NotContains(t, body, "like me")
}

func TestEditProfile(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t, true)
	id := app.signup(t, c, "testuser")

	code, body := app.get(t, c, "/users/profile")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "testuser@test.com")

	form := url.Values{
		"username": {"testuser"},
		"email":    {"testuser@test.com"},
		"bio":      {"Just warbling"},
		"password": {"wrong"},
	}
	_, body = app.post(t, c, "/users/profile", form)
	assert.Contains(t, body, "Wrong password, please try again.")

	form.Set("password", "password")
	_, body = app.post(t, c, "/users/profile", form)
	assert.Contains(t, body, "Just warbling")

	var user model.User
	require.NoError(t, app.db.First(&user, id).Error)
	assert.Equal(t, "Just warbling", user.Bio)
	assert.Equal(t, model.DefaultImageURL, user.ImageURL)
}

func TestDeleteUser(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t, true)
	app.signup(t, c, "testuser")
	app.post(t, c, "/messages/new", url.Values{"text": {"bye"}})

	code, body := app.post(t, c, "/users/delete", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Join Warbler today.")

	var users, messages int64
	require.NoError(t, app.db.Model(&model.User{}).Count(&users).Error)
	require.NoError(t, app.db.Model(&model.Message{}).Count(&messages).Error)
	assert.Zero(t, users)
	assert.Zero(t, messages)
}

func TestDeleteUserFailureKeepsSession(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t, true)
	app.signup(t, c, "testuser")

	require.NoError(t, app.db.Callback().Delete().Before("gorm:delete").Register("test:fail_user_delete", func(tx *gorm.DB) {
		if tx.Statement.Table == "users" {
			_ = tx.AddError(errors.New("disk full"))
		}
	}))

	code, _ := app.post(t, c, "/users/delete", nil)
	assert.Equal(t, http.StatusInternalServerError, code)

	var users int64
	require.NoError(t, app.db.Model(&model.User{}).Count(&users).Error)
	assert.Equal(t, int64(1), users)

	// 删除失败时仍保持登录
	_, body := app.get(t, c, "/")
	assert.Contains(t, body, "Log out")
}

func TestNoRoute(t *testing.T) {
	app := newTestApp(t)
	code, body := app.get(t, app.client(t, true), "/nowhere")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, body, "404")
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t, true)
	app.get(t, c, "/api/ping")

	code, body := app.get(t, c, "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "warbler_http_request_duration_seconds")
}
