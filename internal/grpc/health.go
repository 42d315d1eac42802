package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
)

// pingTimeout 单次数据库探活超时
const pingTimeout = 2 * time.Second

// HealthService 以数据库连通性作为服务健康状态
// 服务名为空或 ServiceName 时检查，其他服务名返回 NotFound
type HealthService struct {
	healthpb.UnimplementedHealthServer
	db *gorm.DB
}

// ServiceName 对外声明的服务名
const ServiceName = "sse-share"

// NewHealthService 创建健康检查服务
func NewHealthService(db *gorm.DB) *HealthService {
	return &HealthService{db: db}
}

// Check 数据库可用时返回 SERVING
func (h *HealthService) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if svc := req.GetService(); svc != "" && svc != ServiceName {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", svc)
	}

	if err := Ping(ctx, h.db); err != nil {
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}

// Ping 检查数据库连接
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
