package account

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"terminal-terrace/sse-share/pkg/authsdk"
)

// SetupRoutes 注册账号路由
func SetupRoutes(router *gin.RouterGroup, db *gorm.DB, issuer authsdk.Issuer, revoker Revoker, cookieSecure bool) {
	service := NewService(NewRepository(db), issuer, revoker)
	RegisterRoutes(router, NewHandler(service, cookieSecure))
}

// RegisterRoutes 账号页面路由
func RegisterRoutes(router *gin.RouterGroup, handler *Handler) {
	accounts := router.Group("/accounts")
	{
		accounts.GET("/register", handler.RegisterForm)
		accounts.POST("/register", handler.Register)
		accounts.GET("/login", handler.LoginForm)
		accounts.POST("/login", handler.Login)
		accounts.POST("/logout", handler.Logout)
	}
}
