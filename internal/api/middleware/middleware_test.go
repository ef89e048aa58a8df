package middleware

import (
	"Warbler/internal/pkg/consts"
	"Warbler/internal/pkg/logger"
	"Warbler/internal/pkg/security"
	"bytes"
	log "log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRedactBodyForm(t *testing.T) {
	body := []byte("username=alice&password=hunter22")
	out := redactBody(gin.MIMEPOSTForm, body)

	values, err := url.ParseQuery(out)
	require.NoError(t, err)
	assert.Equal(t, "alice", values.Get("username"))
	assert.Equal(t, redacted, values.Get("password"))
}

func TestRedactBodyJSON(t *testing.T) {
	out := redactBody(gin.MIMEJSON, []byte(`{"username":"alice","Password":"hunter22"}`))
	assert.NotContains(t, out, "hunter22")
	assert.Contains(t, out, "alice")
}

func TestRedactBodyNestedJSON(t *testing.T) {
	out := redactBody(gin.MIMEJSON+"; charset=utf-8",
		[]byte(`{"user":{"password":"hunter22"},"items":[{"token":"abc.def"}]}`))
	assert.NotContains(t, out, "hunter22")
	assert.NotContains(t, out, "abc.def")

	// 无法解析的 JSON 不原样输出
	out = redactBody(gin.MIMEJSON, []byte(`{"password":"hunter22"`))
	assert.NotContains(t, out, "hunter22")
}

func TestRedactBodyOther(t *testing.T) {
	assert.Equal(t, "", redactBody(gin.MIMEPlain, nil))
	assert.Equal(t, "[text/plain body, 8 bytes]", redactBody(gin.MIMEPlain, []byte("hunter22")))
	assert.Equal(t, "[ body, 8 bytes]", redactBody("", []byte("hunter22")))
}

func TestRedactQuery(t *testing.T) {
	assert.Equal(t, "", redactQuery(""))
	out := redactQuery("q=al%20ice&password=hunter22")
	assert.NotContains(t, out, "hunter22")
	assert.Contains(t, out, "q=al ice")
}

func multipartLogin(t *testing.T, password string) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("username", "alice"))
	require.NoError(t, mw.WriteField("password", password))
	fw, err := mw.CreateFormFile("avatar", "me.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("PNGDATA"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestRedactBodyMultipart(t *testing.T) {
	body, contentType := multipartLogin(t, "hunter22")
	out := redactBody(contentType, body.Bytes())

	values, err := url.ParseQuery(out)
	require.NoError(t, err)
	assert.Equal(t, "alice", values.Get("username"))
	assert.Equal(t, redacted, values.Get("password"))
	assert.Equal(t, "[file me.png]", values.Get("avatar"))
	assert.NotContains(t, out, "PNGDATA")

	// 缺少 boundary 时不输出原文
	out = redactBody(gin.MIMEMultipartPOSTForm, body.Bytes())
	assert.NotContains(t, out, "hunter22")
}

func captureLogs(t *testing.T) *bytes.Buffer {
	var buf bytes.Buffer
	prev := log.Default()
	log.SetDefault(log.New(log.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { log.SetDefault(prev) })
	return &buf
}

func TestAuditMiddlewareHidesSecrets(t *testing.T) {
	logs := captureLogs(t)

	r := gin.New()
	r.Use(AuditMiddleware())
	r.POST("/login", func(c *gin.Context) {
		// 下游仍能读到完整的表单
		assert.Equal(t, "hunter22", c.PostForm("password"))
		c.JSON(http.StatusOK, gin.H{"code": 200, "data": gin.H{"token": "secret.jwt.value"}})
	})

	body, contentType := multipartLogin(t, "hunter22")
	req := httptest.NewRequest(http.MethodPost, "/login?password=hunter22", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Contains(t, logs.String(), "Recv Request")
	assert.Contains(t, logs.String(), "alice")
	assert.NotContains(t, logs.String(), "hunter22")
	assert.NotContains(t, logs.String(), "secret.jwt.value")
	assert.NotContains(t, logs.String(), "PNGDATA")
}

func TestTraceMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(TraceMiddleware())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, logger.TraceID(c.Request.Context()))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Trace-ID", "abc")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Body.String())
	assert.Equal(t, "abc", w.Header().Get("X-Trace-ID"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get("X-Trace-ID"))
}

func TestTraceMiddlewareRejectsBadHeader(t *testing.T) {
	r := gin.New()
	r.Use(TraceMiddleware())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, logger.TraceID(c.Request.Context()))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Trace-ID", "bad id\n{}")
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "bad id\n{}", w.Body.String())
	assert.True(t, validTraceID(w.Body.String()))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Body.String())
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware("/api"))
	r.GET("/api/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/ping", nil)
	req.Header.Set("Origin", "http://example.com")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://example.com")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

type envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func TestAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/me", AuthMiddleware(), func(c *gin.Context) {
		id, ok := c.Get(consts.CtxUserIDKey)
		require.True(t, ok)
		assert.Equal(t, id, c.Value(consts.CtxUserIDKey))
		c.JSON(http.StatusOK, gin.H{"code": 200, "message": "ok", "id": id})
	})

	cases := []struct {
		name   string
		header string
		code   int
	}{
		{"missing", "", 401},
		{"malformed", "Token abc", 401},
		{"invalid", "Bearer not-a-jwt", 401},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)

			var env envelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
			assert.Equal(t, tc.code, env.Code)
			assert.Equal(t, "Access unauthorized.", env.Message)
		})
	}

	token, err := security.GenerateToken(7, "alice")
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	var body struct {
		Code int    `json:"code"`
		ID   uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 200, body.Code)
	assert.Equal(t, uint64(7), body.ID)
}

func TestMetricsMiddlewarePassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(MetricsMiddleware())
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
