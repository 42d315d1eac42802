package grpc

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"terminal-terrace/sse-share/pkg/authsdk"
)

// LoggingInterceptor 记录每次调用的方法、状态码、耗时与调用方
func LoggingInterceptor(logger zerolog.Logger, secret string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		e := logger.Debug()
		if err != nil {
			e = logger.Warn().Err(err)
		}
		if user := authsdk.UserFromIncomingContext(ctx, secret); user != nil {
			e = e.Uint("user_id", user.UserID)
		}
		e.
			Str("method", info.FullMethod).
			Str("code", status.Code(err).String()).
			Dur("latency", time.Since(start)).
			Msg("grpc call")
		return resp, err
	}
}
