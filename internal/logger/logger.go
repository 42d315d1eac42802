// Package logger 基于 zerolog 构建应用日志
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"terminal-terrace/sse-share/config"
)

// New 按配置构建 logger，并设置为全局 logger
func New(conf config.LogConfig) zerolog.Logger {
	return NewWithWriter(conf, os.Stderr)
}

// NewWithWriter 同 New，输出到指定 writer
func NewWithWriter(conf config.LogConfig, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(conf.Level)
	if err != nil || conf.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	out := w
	if conf.Format != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime}
	}

	logger := zerolog.New(out).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}
