package logger

import (
	log "log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

type accessLine struct {
	Time        string  `json:"time"`
	Level       string  `json:"level"`
	Msg         string  `json:"msg"`
	TraceID     string  `json:"trace_id,omitempty"`
	TargetIndex string  `json:"target_index"`
	Method      string  `json:"method"`
	Path        string  `json:"path"`
	Status      int     `json:"status"`
	LatencyMS   float64 `json:"latency_ms"`
	ClientIP    string  `json:"client_ip"`
	Bytes       int     `json:"bytes"`
	Error       string  `json:"error,omitempty"`
}

// SetupGin 注册访问日志与 panic 恢复
func SetupGin(r *gin.Engine, index string) {
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Output:    LogWriter,
		SkipPaths: []string{"/metrics"},
		Formatter: accessFormatter(index),
	}))
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.ErrorContext(c.Request.Context(), "Panic recovered",
			"err", recovered, "method", c.Request.Method, "path", c.Request.URL.Path)
		c.AbortWithStatus(http.StatusInternalServerError)
	}))
}

// accessFormatter 把访问日志写成与 slog 相同结构的一行 JSON
func accessFormatter(index string) gin.LogFormatter {
	return func(p gin.LogFormatterParams) string {
		line := accessLine{
			Time:        p.TimeStamp.Format(time.RFC3339),
			Level:       accessLevel(p.StatusCode),
			Msg:         "GIN_ACCESS",
			TraceID:     accessTraceID(p),
			TargetIndex: index,
			Method:      p.Method,
			Path:        p.Path,
			Status:      p.StatusCode,
			LatencyMS:   float64(p.Latency.Microseconds()) / 1000,
			ClientIP:    p.ClientIP,
			Bytes:       p.BodySize,
			Error:       p.ErrorMessage,
		}
		b, err := json.Marshal(line)
		if err != nil {
			return ""
		}
		return string(b) + "\n"
	}
}

func accessLevel(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return log.LevelError.String()
	case status >= http.StatusBadRequest:
		return log.LevelWarn.String()
	default:
		return log.LevelInfo.String()
	}
}

func accessTraceID(p gin.LogFormatterParams) string {
	if id, ok := p.Keys[TraceIDKey].(string); ok && id != "" {
		return id
	}
	if p.Request != nil {
		return TraceID(p.Request.Context())
	}
	return ""
}
