package content

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"terminal-terrace/sse-share/internal/dto"
	"terminal-terrace/sse-share/internal/middleware"
	"terminal-terrace/sse-share/internal/model/item"
)

// Handler 页面处理器
type Handler struct {
	service *Service
	kind    item.Kind
}

// NewHandler 创建处理器实例
func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
		kind:    service.Kind(),
	}
}

// List 列表与搜索
// GET /{kind}?search=&tag=
func (h *Handler) List(c *gin.Context) {
	var q ListQuery
	_ = c.ShouldBindQuery(&q)

	result, err := h.service.List(c.Request.Context(), q, middleware.CurrentUserID(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.render(c, http.StatusOK, "list.html", gin.H{
		"Title":  h.kind.Label + "s",
		"Result": result,
	})
}

// Detail 详情
// GET /{kind}/:id
func (h *Handler) Detail(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	h.renderDetail(c, id, http.StatusOK, "", "")
}

func (h *Handler) renderDetail(c *gin.Context, id uint, status int, commentText, commentError string) {
	detail, err := h.service.Get(c.Request.Context(), id, middleware.CurrentUserID(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.render(c, status, "detail.html", gin.H{
		"Title":        detail.Item.Title,
		"Detail":       detail,
		"CommentText":  commentText,
		"CommentError": commentError,
	})
}

// CreateForm 创建页
// GET /{kind}/create
func (h *Handler) CreateForm(c *gin.Context) {
	h.renderForm(c, http.StatusOK, &ItemForm{}, nil, 0)
}

// Create 提交创建
// POST /{kind}/create
func (h *Handler) Create(c *gin.Context) {
	form, fields := h.bindForm(c)
	if fields != nil {
		h.renderForm(c, http.StatusBadRequest, form, fields, 0)
		return
	}

	id, err := h.service.Create(c.Request.Context(), middleware.CurrentUserID(c), form)
	if err != nil {
		h.handleFormError(c, form, 0, err)
		return
	}
	c.Redirect(http.StatusFound, h.itemURL(id))
}

// UpdateForm 编辑页
// GET /{kind}/:id/update
func (h *Handler) UpdateForm(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	form, err := h.service.EditForm(c.Request.Context(), id, actorOf(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.renderForm(c, http.StatusOK, form, nil, id)
}

// Update 提交编辑
// POST /{kind}/:id/update
func (h *Handler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	form, fields := h.bindForm(c)
	if fields != nil {
		h.renderForm(c, http.StatusBadRequest, form, fields, id)
		return
	}

	if err := h.service.Update(c.Request.Context(), id, actorOf(c), form); err != nil {
		h.handleFormError(c, form, id, err)
		return
	}
	c.Redirect(http.StatusFound, h.itemURL(id))
}

// DeleteConfirm 删除确认页
// GET /{kind}/:id/delete
func (h *Handler) DeleteConfirm(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	view, err := h.service.Confirm(c.Request.Context(), id, actorOf(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.render(c, http.StatusOK, "confirm_delete.html", gin.H{
		"Title": "Delete " + view.Title,
		"Item":  view,
	})
}

// Delete 删除
// POST /{kind}/:id/delete
func (h *Handler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, actorOf(c)); err != nil {
		h.handleError(c, err)
		return
	}
	c.Redirect(http.StatusFound, h.listURL())
}

// Picture 输出图片
// GET /{kind}/:id/picture
func (h *Handler) Picture(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	data, contentType, err := h.service.Picture(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, contentType, data)
}

// Comment 发表评论，校验失败时回显详情页
// POST /{kind}/:id/comment
func (h *Handler) Comment(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var form CommentForm
	_ = c.ShouldBind(&form)

	_, err := h.service.AddComment(c.Request.Context(), id, middleware.CurrentUserID(c), form.Text)
	switch {
	case err == nil:
		c.Redirect(http.StatusFound, h.itemURL(id))
	case errors.Is(err, ErrCommentTooShort), errors.Is(err, ErrCommentTooLong):
		h.renderDetail(c, id, http.StatusBadRequest, form.Text, err.Error())
	default:
		h.handleError(c, err)
	}
}

// CommentDeleteConfirm 评论删除确认页
// GET /{singular}comment/:id/delete
func (h *Handler) CommentDeleteConfirm(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	comment, err := h.service.GetComment(c.Request.Context(), id, actorOf(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.render(c, http.StatusOK, "comment_delete.html", gin.H{
		"Title":   "Delete comment",
		"Comment": comment,
	})
}

// CommentDelete 删除评论后回到详情页
// POST /{singular}comment/:id/delete
func (h *Handler) CommentDelete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	itemID, err := h.service.DeleteComment(c.Request.Context(), id, actorOf(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Redirect(http.StatusFound, h.itemURL(itemID))
}

// Favorite 收藏，成功返回空 200
// POST /{kind}/:id/favorite
func (h *Handler) Favorite(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.Favorite(c.Request.Context(), id, middleware.CurrentUserID(c)); err != nil {
		h.handleStatusError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Unfavorite 取消收藏，成功返回空 200
// POST /{kind}/:id/unfavorite
func (h *Handler) Unfavorite(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.Unfavorite(c.Request.Context(), id, middleware.CurrentUserID(c)); err != nil {
		h.handleStatusError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Favorites 当前用户的收藏
// GET /{kind}/favorites
func (h *Handler) Favorites(c *gin.Context) {
	items, err := h.service.Favorites(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.render(c, http.StatusOK, "favorites.html", gin.H{
		"Title": "Favorite " + h.kind.Plural,
		"Items": items,
	})
}

// bindForm 绑定表单与图片，返回字段错误
func (h *Handler) bindForm(c *gin.Context) (*ItemForm, map[string]string) {
	form := &ItemForm{}
	if err := c.ShouldBind(form); err != nil {
		return form, dto.FieldErrors(err)
	}

	if !h.kind.HasPicture {
		return form, nil
	}
	fh, err := c.FormFile("picture")
	if err != nil {
		// 未上传图片
		return form, nil
	}

	f, err := fh.Open()
	if err != nil {
		return form, map[string]string{"picture": "could not read the uploaded picture"}
	}
	defer f.Close()

	// 多读一个字节以便 service 判断超限
	data, err := io.ReadAll(io.LimitReader(f, h.service.opts.MaxPictureSize+1))
	if err != nil {
		return form, map[string]string{"picture": "could not read the uploaded picture"}
	}
	if len(data) > 0 {
		form.Picture = data
		form.ContentType = mimetype.Detect(data).String()
	}
	return form, nil
}

func (h *Handler) renderForm(c *gin.Context, status int, form *ItemForm, fields map[string]string, id uint) {
	if fields == nil {
		fields = map[string]string{}
	}

	action, cancel, title := h.listURL()+"/create", h.listURL(), "Add "+h.kind.Label
	if id != 0 {
		action, cancel, title = h.itemURL(id)+"/update", h.itemURL(id), "Edit "+h.kind.Label
	}

	h.render(c, status, "form.html", gin.H{
		"Title":          title,
		"Form":           form,
		"Errors":         fields,
		"Editing":        id != 0,
		"Action":         action,
		"Cancel":         cancel,
		"MaxPictureSize": h.service.opts.MaxPictureSize,
	})
}

func (h *Handler) handleFormError(c *gin.Context, form *ItemForm, id uint, err error) {
	var formErr *dto.FormError
	if errors.As(err, &formErr) {
		h.renderForm(c, http.StatusBadRequest, form, formErr.Fields, id)
		return
	}
	h.handleError(c, err)
}

// render 渲染页面，附带当前用户与内容类型
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	data["User"] = middleware.CurrentUser(c)
	data["Kind"] = h.kind
	c.HTML(status, name, data)
}

// handleError 统一错误页
func (h *Handler) handleError(c *gin.Context, err error) {
	status, message := errorStatus(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("kind", h.kind.Name).Msg("request failed")
	}
	h.render(c, status, "error.html", gin.H{
		"Title":   http.StatusText(status),
		"Status":  status,
		"Message": message,
	})
}

// handleStatusError 只返回状态码，用于异步请求
func (h *Handler) handleStatusError(c *gin.Context, err error) {
	status, _ := errorStatus(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("kind", h.kind.Name).Msg("request failed")
	}
	c.Status(status)
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "The page you requested does not exist."
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, ErrForbidden.Error()
	case errors.Is(err, ErrCommentTooShort), errors.Is(err, ErrCommentTooLong):
		return http.StatusBadRequest, err.Error()
	default:
		var formErr *dto.FormError
		if errors.As(err, &formErr) {
			return http.StatusBadRequest, formErr.Error()
		}
		return http.StatusInternalServerError, "Something went wrong."
	}
}

func (h *Handler) parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		h.handleError(c, ErrNotFound)
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) listURL() string {
	return "/" + h.kind.Plural
}

func (h *Handler) itemURL(id uint) string {
	return fmt.Sprintf("/%s/%d", h.kind.Plural, id)
}

func actorOf(c *gin.Context) Actor {
	user := middleware.CurrentUser(c)
	if user == nil {
		return Actor{}
	}
	return Actor{ID: user.UserID, Admin: user.IsAdmin()}
}
