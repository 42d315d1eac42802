package content

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"terminal-terrace/sse-share/internal/dto"
	"terminal-terrace/sse-share/internal/middleware"
	"terminal-terrace/sse-share/pkg/response"
)

// APIHandler JSON 接口处理器
type APIHandler struct {
	service *Service
}

// NewAPIHandler 创建处理器实例
func NewAPIHandler(service *Service) *APIHandler {
	return &APIHandler{service: service}
}

// List 列表与搜索
// GET /api/v1/{kind}?search=&tag=
func (h *APIHandler) List(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		dto.ValidationErrorResponse(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), q, middleware.CurrentUserID(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	dto.SuccessResponse(c, result)
}

// Get 详情
// GET /api/v1/{kind}/:id
func (h *APIHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	detail, err := h.service.Get(c.Request.Context(), id, middleware.CurrentUserID(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	dto.SuccessResponse(c, detail)
}

// CreateComment 发表评论
// POST /api/v1/{kind}/:id/comments
func (h *APIHandler) CreateComment(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req CommentForm
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ValidationErrorResponse(c, err)
		return
	}

	comment, err := h.service.AddComment(c.Request.Context(), id, middleware.CurrentUserID(c), req.Text)
	if err != nil {
		h.handleError(c, err)
		return
	}
	dto.SuccessResponse(c, comment)
}

// Favorite 收藏
// POST /api/v1/{kind}/:id/favorite
func (h *APIHandler) Favorite(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.Favorite(c.Request.Context(), id, middleware.CurrentUserID(c)); err != nil {
		h.handleError(c, err)
		return
	}
	dto.SuccessResponse(c, gin.H{"id": id, "is_favorite": true})
}

// Unfavorite 取消收藏
// DELETE /api/v1/{kind}/:id/favorite
func (h *APIHandler) Unfavorite(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.Unfavorite(c.Request.Context(), id, middleware.CurrentUserID(c)); err != nil {
		h.handleError(c, err)
		return
	}
	dto.SuccessResponse(c, gin.H{"id": id, "is_favorite": false})
}

// Favorites 当前用户的收藏
// GET /api/v1/{kind}/favorites
func (h *APIHandler) Favorites(c *gin.Context) {
	items, err := h.service.Favorites(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	dto.SuccessResponse(c, items)
}

func (h *APIHandler) parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.ParseError),
			response.WithErrorMessage("invalid id"),
		))
		return 0, false
	}
	return uint(id), true
}

// handleError 统一错误处理
func (h *APIHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.NotFound),
			response.WithErrorMessage(h.service.Kind().Name+" not found"),
		))
	case errors.Is(err, ErrForbidden):
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.Forbidden),
			response.WithErrorMessage(err.Error()),
		))
	case errors.Is(err, ErrCommentTooShort), errors.Is(err, ErrCommentTooLong):
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.InvalidParameter),
			response.WithErrorMessage(err.Error()),
		))
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("kind", h.service.Kind().Name).Msg("api request failed")
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("internal server error"),
			response.WithError(err),
		))
	}
}
