package authsdk

import (
	"net/http"
	"strings"
)

// AccessTokenCookie 存放访问令牌的 cookie 名
const AccessTokenCookie = "access_token"

// TokenFromRequest 从 cookie 或 Authorization header 中提取 token
// 优先使用 cookie
func TokenFromRequest(r *http.Request) (string, error) {
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value, nil
	}

	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrNoToken
	}
	if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
		return token, nil
	}
	return "", ErrInvalidToken
}
