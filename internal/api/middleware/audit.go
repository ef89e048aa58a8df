package middleware

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	log "log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

const (
	redacted      = "******"
	maxAuditField = 1024
)

// sensitiveFields 审计日志中需要隐藏的字段，请求与 JSON 响应都适用
var sensitiveFields = map[string]struct{}{
	"password": {},
	"token":    {},
}

var errNoBoundary = errors.New("multipart: missing boundary")

type responseBodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (r *responseBodyWriter) Write(b []byte) (int, error) {
	if r.body.Len() < 16384 {
		r.body.Write(b)
	}
	return r.ResponseWriter.Write(b)
}

func (r *responseBodyWriter) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func AuditMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var reqBody []byte
		if c.Request.Body != nil {
			reqBody, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(reqBody))
		}

		log.InfoContext(ctx, "Recv Request",
			log.String("method", c.Request.Method),
			log.String("path", c.Request.URL.Path),
			log.String("query", redactQuery(c.Request.URL.RawQuery)),
			log.String("req_body", redactBody(c.GetHeader("Content-Type"), reqBody)),
		)

		w := &responseBodyWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w
		startTime := time.Now()

		c.Next()

		// 页面内容不写入日志
		resBody := ""
		if strings.HasPrefix(w.Header().Get("Content-Type"), gin.MIMEJSON) {
			resBody = redactBody(gin.MIMEJSON, w.body.Bytes())
		}

		log.InfoContext(ctx, "Send Response",
			log.Int("status", c.Writer.Status()),
			log.Duration("latency", time.Since(startTime)),
			log.String("res_body", resBody),
		)
	}
}

// redactBody 按 Content-Type 解析请求体并隐藏敏感字段；无法识别或解析失败时只记录类型与长度
func redactBody(contentType string, body []byte) string {
	if len(body) == 0 {
		return ""
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return placeholder(contentType, body)
	}

	switch mediaType {
	case gin.MIMEPOSTForm:
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return placeholder(mediaType, body)
		}
		return maskValues(values).Encode()
	case gin.MIMEMultipartPOSTForm:
		values, err := readMultipart(body, params["boundary"])
		if err != nil {
			return placeholder(mediaType, body)
		}
		return maskValues(values).Encode()
	case gin.MIMEJSON:
		var payload any
		if err := json.Unmarshal(body, &payload); err != nil {
			return placeholder(mediaType, body)
		}
		out, err := json.Marshal(maskJSON(payload))
		if err != nil {
			return placeholder(mediaType, body)
		}
		return string(out)
	default:
		return placeholder(mediaType, body)
	}
}

// redactQuery 隐藏查询串中的敏感参数，返回解码后的形式便于阅读
func redactQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "[unparsable query]"
	}
	decoded, err := url.QueryUnescape(maskValues(values).Encode())
	if err != nil {
		return "[unparsable query]"
	}
	return decoded
}

func placeholder(contentType string, body []byte) string {
	return fmt.Sprintf("[%s body, %d bytes]", contentType, len(body))
}

func isSensitive(key string) bool {
	_, ok := sensitiveFields[strings.ToLower(key)]
	return ok
}

func maskValues(values url.Values) url.Values {
	for k, vs := range values {
		if isSensitive(k) {
			for i := range vs {
				vs[i] = redacted
			}
		}
	}
	return values
}

func maskJSON(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			if isSensitive(k) {
				t[k] = redacted
				continue
			}
			t[k] = maskJSON(child)
		}
	case []any:
		for i, child := range t {
			t[i] = maskJSON(child)
		}
	}
	return v
}

// readMultipart 只取表单字段，文件只记录文件名
func readMultipart(body []byte, boundary string) (url.Values, error) {
	if boundary == "" {
		return nil, errNoBoundary
	}
	values := url.Values{}
	reader := multipart.NewReader(bytes.NewReader(body), boundary)
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return values, nil
		}
		if err != nil {
			return nil, err
		}
		name := part.FormName()
		if name == "" {
			continue
		}
		if filename := part.FileName(); filename != "" {
			values.Add(name, "[file "+filename+"]")
			continue
		}
		value, err := io.ReadAll(io.LimitReader(part, maxAuditField))
		if err != nil {
			return nil, err
		}
		values.Add(name, string(value))
	}
}
