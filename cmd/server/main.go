package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"terminal-terrace/sse-share/config"
	"terminal-terrace/sse-share/internal/database"
	"terminal-terrace/sse-share/internal/grpc"
	"terminal-terrace/sse-share/internal/logger"
	"terminal-terrace/sse-share/internal/route"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// 1. 加载配置
	config.MustLoad(*configPath)
	log := logger.New(config.Conf.Log)

	if err := run(log); err != nil {
		log.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
	log.Info().Msg("server exited")
}

// run 返回前关闭数据库，os.Exit 只能在其外部调用
func run(log zerolog.Logger) error {
	conf := config.Conf

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. 初始化数据库
	database.InitDatabase(ctx)
	defer database.Close()

	// 3. 设置路由
	r := route.SetupRouter(route.Deps{
		DB:     database.DB,
		Redis:  database.Redis,
		Conf:   conf,
		Logger: log,
	})

	srv := &http.Server{
		Addr:         conf.Server.Addr(),
		Handler:      r,
		ReadTimeout:  conf.Server.ReadTimeoutDuration(),
		WriteTimeout: conf.Server.WriteTimeoutDuration(),
	}

	var grpcServer *grpc.Server
	if conf.GRPC.Port != 0 {
		var err error
		grpcServer, err = grpc.NewServer(conf.GRPC.Port, grpc.NewHealthService(database.DB), conf.JWT.Secret, log)
		if err != nil {
			return fmt.Errorf("grpc server init: %w", err)
		}
	}

	// 4. 启动服务，任一服务退出即整体关闭
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("http server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if grpcServer != nil {
		g.Go(func() error {
			log.Info().Str("addr", grpcServer.GetAddr()).Msg("grpc server started")
			return grpcServer.Start()
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if grpcServer != nil {
			grpcServer.Stop()
		}
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
