package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"terminal-terrace/sse-share/internal/dto"
	"terminal-terrace/sse-share/pkg/authsdk"
	"terminal-terrace/sse-share/pkg/response"
)

const (
	// ContextUserKey 上下文中的 *authsdk.UserContext
	ContextUserKey = "user"
	// ContextUserIDKey 上下文中的用户 ID (uint)
	ContextUserIDKey = "user_id"

	// LoginPath 未登录时跳转的登录页
	LoginPath = "/accounts/login"
)

// RevocationChecker 判断令牌是否已被注销
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Authenticate 可选认证：token 有效时写入用户信息，否则按匿名用户继续
// revoked 为 nil 时不检查注销状态
func Authenticate(secret string, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := authsdk.TokenFromRequest(c.Request)
		if err != nil {
			c.Next()
			return
		}

		user, err := authsdk.ParseToken(token, secret)
		if err != nil {
			c.Next()
			return
		}

		if revoked != nil && user.TokenID != "" {
			isRevoked, err := revoked.IsRevoked(c.Request.Context(), user.TokenID)
			if err != nil {
				// 注销状态未知时按未登录处理
				zerolog.Ctx(c.Request.Context()).Warn().Err(err).Msg("check token revocation")
				c.Next()
				return
			}
			if isRevoked {
				c.Next()
				return
			}
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextUserIDKey, user.UserID)
		c.Next()
	}
}

// RequireLogin 页面路由的必需认证，未登录跳转到登录页并带上 next
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			target := LoginPath + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAPIUser JSON 路由的必需认证
func RequireAPIUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			dto.ErrorResponse(c, response.NewBusinessError(
				response.WithErrorCode(response.Unauthorized),
				response.WithErrorMessage("authentication required"),
			))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser 当前登录用户，未登录返回 nil
func CurrentUser(c *gin.Context) *authsdk.UserContext {
	if v, ok := c.Get(ContextUserKey); ok {
		if user, ok := v.(*authsdk.UserContext); ok {
			return user
		}
	}
	return nil
}

// CurrentUserID 当前登录用户 ID，未登录返回 0
func CurrentUserID(c *gin.Context) uint {
	if user := CurrentUser(c); user != nil {
		return user.UserID
	}
	return 0
}
