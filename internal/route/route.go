package route

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"terminal-terrace/sse-share/config"
	"terminal-terrace/sse-share/internal/account"
	"terminal-terrace/sse-share/internal/content"
	"terminal-terrace/sse-share/internal/grpc"
	"terminal-terrace/sse-share/internal/middleware"
	"terminal-terrace/sse-share/internal/model/item"
	"terminal-terrace/sse-share/internal/view"
	"terminal-terrace/sse-share/pkg/authsdk"
	"terminal-terrace/sse-share/pkg/database"
	"terminal-terrace/sse-share/pkg/response"
)

// HomePath 首页跳转目标
const HomePath = "/articles"

// APIPrefix JSON 接口前缀，跨域只对该前缀生效
const APIPrefix = "/api/v1"

// Deps 路由依赖
// Redis 为 nil 时不启用令牌吊销
type Deps struct {
	DB     *gorm.DB
	Redis  *database.RedisClient
	Conf   *config.AppConfig
	Logger zerolog.Logger
}

func initRoute(r *gin.Engine, deps Deps) {
	conf := deps.Conf
	opts := content.Options{
		PageSize:       conf.Content.PageSize,
		MaxPictureSize: conf.Content.MaxPictureSize,
	}

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, HomePath)
	})
	r.GET("/healthz", healthz(deps.DB))

	web := r.Group("")
	api := r.Group(APIPrefix)

	for _, kind := range item.Kinds() {
		content.SetupRoutes(web, api, deps.DB, kind, opts)
	}

	issuer := authsdk.Issuer{Secret: conf.JWT.Secret, TTL: conf.JWT.TokenTTL()}
	var revoker account.Revoker
	if deps.Redis != nil {
		revoker = account.NewTokenStore(deps.Redis)
	}
	account.SetupRoutes(web, deps.DB, issuer, revoker, conf.JWT.CookieSecure)
}

// SetupRouter 组装中间件与全部路由
func SetupRouter(deps Deps) *gin.Engine {
	gin.SetMode(deps.Conf.Server.Mode)

	r := gin.New()

	// 未启用 Redis 时必须传入字面量 nil，避免带类型的 nil 接口
	var checker middleware.RevocationChecker
	if deps.Redis != nil {
		checker = account.NewTokenStore(deps.Redis)
	}

	r.Use(
		middleware.RequestLogger(deps.Logger),
		middleware.Recovery(),
		apiCORS(deps.Conf.Server.FrontendURL),
		middleware.Authenticate(deps.Conf.JWT.Secret, checker),
	)
	r.SetHTMLTemplate(view.MustTemplates())

	initRoute(r, deps)

	return r
}

// apiCORS 挂在 engine 上，预检请求没有匹配的路由也能得到响应
// 页面路由不受影响
func apiCORS(origin string) gin.HandlerFunc {
	handler := cors.New(cors.Config{
		AllowOrigins:     []string{origin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	return func(c *gin.Context) {
		if !strings.HasPrefix(c.Request.URL.Path, APIPrefix+"/") && c.Request.URL.Path != APIPrefix {
			c.Next()
			return
		}
		handler(c)
	}
}

func healthz(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := grpc.Ping(c.Request.Context(), db); err != nil {
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("health check failed")
			c.JSON(http.StatusServiceUnavailable, response.ErrorResponse(response.Fail, "database unavailable"))
			return
		}
		c.JSON(http.StatusOK, response.SuccessResponse(gin.H{"database": "ok"}))
	}
}
