// config/config.go - 配置管理文件
package config

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix 环境变量前缀, SHARE_SERVER_PORT -> server.port
const EnvPrefix = "SHARE_"

var (
	Conf *AppConfig
	once sync.Once
	k    *koanf.Koanf
)

// AppConfig 应用配置结构
type AppConfig struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`
	GRPC     GRPCConfig     `koanf:"grpc"`
	Log      LogConfig      `koanf:"log"`
	JWT      JWTConfig      `koanf:"jwt"`
	Content  ContentConfig  `koanf:"content"`
}

type ServerConfig struct {
	Host         string `koanf:"host"`
	Port         int    `koanf:"port" validate:"min=0,max=65535"`
	Mode         string `koanf:"mode" validate:"omitempty,oneof=debug release test"`
	ReadTimeout  int    `koanf:"read_timeout"`  // 秒
	WriteTimeout int    `koanf:"write_timeout"` // 秒
	FrontendURL  string `koanf:"frontend_url"`
}

type DatabaseConfig struct {
	Driver       string `koanf:"driver" validate:"oneof=postgres sqlite"`
	Host         string `koanf:"host"`
	Port         int    `koanf:"port"`
	Username     string `koanf:"username"`
	Password     string `koanf:"password"`
	Database     string `koanf:"database"`
	Path         string `koanf:"path"` // sqlite 文件路径
	SSLMode      bool   `koanf:"sslmode"`
	LogLevel     string `koanf:"log_level" validate:"omitempty,oneof=silent error warn info"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	MaxLifetime  int    `koanf:"max_lifetime"` // 秒
}

type RedisConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	PoolSize int    `koanf:"pool_size"`
}

type GRPCConfig struct {
	Port int `koanf:"port"` // 0 表示不启动
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
}

type JWTConfig struct {
	Secret       string `koanf:"secret" validate:"required"`
	ExpireTime   int    `koanf:"expire_time"` // 小时
	CookieSecure bool   `koanf:"cookie_secure"`
}

type ContentConfig struct {
	PageSize       int   `koanf:"page_size"`
	MaxPictureSize int64 `koanf:"max_picture_size"` // 字节
}

// Addr 返回 HTTP 监听地址
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (s ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

func (s ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// TokenTTL 访问令牌有效期
func (j JWTConfig) TokenTTL() time.Duration {
	return time.Duration(j.ExpireTime) * time.Hour
}

// Load 加载配置文件
func Load(configPath string) error {
	var err error
	once.Do(func() {
		// .env 不存在时忽略
		if envErr := godotenv.Load(); envErr != nil {
			log.Printf("skip .env: %v", envErr)
		}

		k = koanf.New(".")
		Conf, err = parse(k, configPath)
	})

	return err
}

// MustLoad 加载配置，失败则退出
func MustLoad(configPath string) {
	if err := Load(configPath); err != nil {
		log.Fatalf("load config: %v", err)
	}
}

// Reload 重新加载配置
func Reload(configPath string) error {
	if k == nil {
		return fmt.Errorf("config not loaded")
	}

	fresh := koanf.New(".")
	conf, err := parse(fresh, configPath)
	if err != nil {
		return err
	}
	k = fresh
	Conf = conf
	return nil
}

func parse(kf *koanf.Koanf, configPath string) (*AppConfig, error) {
	if configPath != "" {
		if err := kf.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	// 环境变量覆盖配置文件
	if err := kf.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	conf := &AppConfig{}
	if err := kf.Unmarshal("", conf); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	setDefaults(conf)

	if err := validator.New().Struct(conf); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return conf, nil
}

// envKey SHARE_DATABASE_MAX_OPEN_CONNS -> database.max_open_conns
func envKey(s string) string {
	return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
}

func setDefaults(c *AppConfig) {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "debug"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15
	}
	if c.Server.FrontendURL == "" {
		c.Server.FrontendURL = "http://localhost:5173"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		c.Database.Path = "data/share.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.JWT.ExpireTime == 0 {
		c.JWT.ExpireTime = 24
	}
	if c.Content.PageSize == 0 {
		c.Content.PageSize = 10
	}
	if c.Content.MaxPictureSize == 0 {
		c.Content.MaxPictureSize = 2 * 1024 * 1024
	}
}

// GetString 获取字符串配置
func GetString(key string) string {
	if k == nil {
		log.Fatal("config not loaded")
	}
	return k.String(key)
}

// GetInt 获取整数配置
func GetInt(key string) int {
	if k == nil {
		log.Fatal("config not loaded")
	}
	return k.Int(key)
}

// GetBool 获取布尔配置
func GetBool(key string) bool {
	if k == nil {
		log.Fatal("config not loaded")
	}
	return k.Bool(key)
}
