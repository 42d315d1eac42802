package middleware

import (
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"terminal-terrace/sse-share/internal/dto"
	"terminal-terrace/sse-share/pkg/response"
)

// ErrorPage 500 页面模板名
const ErrorPage = "error.html"

// Recovery 捕获 panic 并返回 500，/api 下返回 JSON，其余渲染错误页
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			zerolog.Ctx(c.Request.Context()).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("path", c.Request.URL.Path).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.Abort()
				return
			}
			if strings.HasPrefix(c.Request.URL.Path, "/api/") {
				dto.ErrorResponse(c, response.NewBusinessError(
					response.WithErrorCode(response.Fail),
					response.WithErrorMessage("internal server error"),
				))
				c.Abort()
				return
			}
			c.HTML(http.StatusInternalServerError, ErrorPage, gin.H{
				"Status":  http.StatusInternalServerError,
				"Message": "Something went wrong.",
			})
			c.Abort()
		}()
		c.Next()
	}
}
