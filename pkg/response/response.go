package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一错误响应结构体
type Response struct {
	Code   int                 `json:"code"`             // HTTP 状态码
	Msg    string              `json:"msg"`              // 提示信息
	Errors map[string][]string `json:"errors,omitempty"` // 字段级校验错误
}

// JSON writes a bare resource body with the given status.
func JSON(ctx *gin.Context, httpStatus int, data interface{}) {
	ctx.JSON(httpStatus, data)
}

// NoContent answers 204 with an empty body.
func NoContent(ctx *gin.Context) {
	ctx.Status(http.StatusNoContent)
}

// Error 失败响应
func Error(ctx *gin.Context, httpStatus int, msg string) {
	ctx.JSON(httpStatus, Response{
		Code: httpStatus,
		Msg:  msg,
	})
}

// ValidationError answers 400 with per-field messages.
func ValidationError(ctx *gin.Context, msg string, fields map[string][]string) {
	ctx.JSON(http.StatusBadRequest, Response{
		Code:   http.StatusBadRequest,
		Msg:    msg,
		Errors: fields,
	})
}

// Abort writes the error and stops the handler chain; used by middleware.
func Abort(ctx *gin.Context, httpStatus int, msg string) {
	ctx.AbortWithStatusJSON(httpStatus, Response{
		Code: httpStatus,
		Msg:  msg,
	})
}
