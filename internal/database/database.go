package database

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"terminal-terrace/sse-share/config"
	"terminal-terrace/sse-share/internal/model"
	"terminal-terrace/sse-share/pkg/database"
)

var (
	DB    *gorm.DB
	Redis *database.RedisClient
)

// InitDatabase 初始化数据库与 Redis，失败则 panic
func InitDatabase(ctx context.Context) {
	initDB()
	initRedis(ctx)
}

func initDB() {
	conf := config.Conf.Database

	var err error
	DB, err = database.Open(&database.Config{
		ServiceName:     "sse-share",
		Driver:          conf.Driver,
		Username:        conf.Username,
		Password:        conf.Password,
		Host:            conf.Host,
		Port:            conf.Port,
		Database:        conf.Database,
		Path:            conf.Path,
		SSLMode:         conf.SSLMode,
		LogLevel:        conf.LogLevel,
		MaxIdleConns:    conf.MaxIdleConns,
		MaxOpenConns:    conf.MaxOpenConns,
		ConnMaxLifetime: time.Duration(conf.MaxLifetime) * time.Second,
	})
	if err != nil {
		panic(err)
	}

	if err := model.InitTable(DB); err != nil {
		panic(err)
	}
}

// initRedis 未启用时 Redis 保持 nil，令牌吊销随之关闭
func initRedis(ctx context.Context) {
	conf := config.Conf.Redis
	if !conf.Enabled {
		log.Info().Msg("redis disabled, token revocation off")
		return
	}

	var err error
	Redis, err = database.InitRedis(ctx, &database.RedisConfig{
		ServiceName: "sse-share",
		Host:        conf.Host,
		Port:        conf.Port,
		Password:    conf.Password,
		DB:          conf.DB,
		PoolSize:    conf.PoolSize,
	})
	if err != nil {
		panic(err)
	}
}

// Close 关闭连接
func Close() {
	if Redis != nil {
		if err := Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("close redis")
		}
	}
	if DB != nil {
		if sqlDB, err := DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
