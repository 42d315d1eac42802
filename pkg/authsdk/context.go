package authsdk

import (
	"context"
	"strings"

	"google.golang.org/grpc/metadata"
)

// TokenFromIncomingContext 从 gRPC metadata 中提取 token
// 支持 authorization (Bearer) 与 x-access-token 两种 header
func TokenFromIncomingContext(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", ErrNoToken
	}

	if values := md.Get("authorization"); len(values) > 0 {
		if token, ok := strings.CutPrefix(values[0], "Bearer "); ok {
			return token, nil
		}
		return values[0], nil
	}
	if values := md.Get("x-access-token"); len(values) > 0 {
		return values[0], nil
	}
	return "", ErrNoToken
}

// UserFromIncomingContext 解析 gRPC 调用方身份
// 没有 token 或 token 无效时返回 nil
func UserFromIncomingContext(ctx context.Context, secret string) *UserContext {
	token, err := TokenFromIncomingContext(ctx)
	if err != nil {
		return nil
	}
	user, err := ParseToken(token, secret)
	if err != nil {
		return nil
	}
	return user
}
