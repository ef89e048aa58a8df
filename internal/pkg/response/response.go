package response

import (
	"Warbler/internal/api/dto"
	"Warbler/internal/service"
	stdjson "encoding/json"
	"errors"
	"fmt"
	"io"
	log "log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// 业务码，HTTP 状态始终为 200
const (
	Ok                  = 200
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500
)

const malformedJSON = "Malformed JSON."

func write(c *gin.Context, code int, message string, data any) {
	c.JSON(http.StatusOK, dto.Response{Code: code, Message: message, Data: data})
}

// Success 成功返回封装
func Success(c *gin.Context, data any) {
	write(c, Ok, "success", data)
}

// Fail 失败返回封装
func Fail(c *gin.Context, businessCode int, message string) {
	write(c, businessCode, message, nil)
}

// Abort 写入失败信封并终止后续 handler，供中间件使用
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// Error 将错误翻译为信封；未登记的错误只返回通用提示，细节写日志
func Error(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		Fail(c, BadRequest, fmt.Errorf("%w field [%s]", service.ErrParamInvalid, ve[0].Field()).Error())
		return
	}

	if isMalformedJSON(err) {
		Fail(c, BadRequest, malformedJSON)
		return
	}

	code, ok := service.CodeOf(err)
	if !ok {
		log.ErrorContext(c.Request.Context(), "Unhandled error",
			"err", err, "method", c.Request.Method, "path", c.Request.URL.Path)
		Fail(c, InternalServerError, service.UnExpectedError.Error())
		return
	}
	Fail(c, code, err.Error())
}

// gin 默认用标准库解码请求体，业务代码用 go-json，两者的错误类型都要识别
func isMalformedJSON(err error) bool {
	var (
		typeErr      *json.UnmarshalTypeError
		syntaxErr    *json.SyntaxError
		stdTypeErr   *stdjson.UnmarshalTypeError
		stdSyntaxErr *stdjson.SyntaxError
	)
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.As(err, &typeErr) || errors.As(err, &syntaxErr) ||
		errors.As(err, &stdTypeErr) || errors.As(err, &stdSyntaxErr)
}
