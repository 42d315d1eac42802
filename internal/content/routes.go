package content

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"terminal-terrace/sse-share/internal/middleware"
	"terminal-terrace/sse-share/internal/model/item"
)

// SetupRoutes 注册一种内容类型的页面路由与 JSON 路由
// web 为根路由组，api 为 /api/v1 路由组
func SetupRoutes(web, api *gin.RouterGroup, db *gorm.DB, kind item.Kind, opts Options) {
	service := NewService(NewRepository(db, kind), opts)

	RegisterWebRoutes(web, NewHandler(service))
	RegisterAPIRoutes(api, NewAPIHandler(service))
}

// RegisterWebRoutes 页面路由
func RegisterWebRoutes(router *gin.RouterGroup, handler *Handler) {
	kind := handler.kind
	login := middleware.RequireLogin()

	items := router.Group("/" + kind.Plural)
	{
		items.GET("", handler.List)
		items.GET("/:id", handler.Detail)
		items.GET("/:id/picture", handler.Picture)

		// 以下需要登录，修改类操作在 service 中校验作者
		items.GET("/create", login, handler.CreateForm)
		items.POST("/create", login, handler.Create)
		items.GET("/favorites", login, handler.Favorites)
		items.GET("/:id/update", login, handler.UpdateForm)
		items.POST("/:id/update", login, handler.Update)
		items.GET("/:id/delete", login, handler.DeleteConfirm)
		items.POST("/:id/delete", login, handler.Delete)
		items.POST("/:id/comment", login, handler.Comment)
		items.POST("/:id/favorite", login, handler.Favorite)
		items.POST("/:id/unfavorite", login, handler.Unfavorite)
	}

	comments := router.Group("/"+kind.Name+"comment", login)
	{
		comments.GET("/:id/delete", handler.CommentDeleteConfirm)
		comments.POST("/:id/delete", handler.CommentDelete)
	}
}

// RegisterAPIRoutes JSON 路由
func RegisterAPIRoutes(router *gin.RouterGroup, handler *APIHandler) {
	auth := middleware.RequireAPIUser()

	items := router.Group("/" + handler.service.Kind().Plural)
	{
		items.GET("", handler.List)
		items.GET("/favorites", auth, handler.Favorites)
		items.GET("/:id", handler.Get)
		items.POST("/:id/comments", auth, handler.CreateComment)
		items.POST("/:id/favorite", auth, handler.Favorite)
		items.DELETE("/:id/favorite", auth, handler.Unfavorite)
	}
}
