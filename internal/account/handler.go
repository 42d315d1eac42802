package account

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"terminal-terrace/sse-share/internal/dto"
	"terminal-terrace/sse-share/internal/middleware"
	"terminal-terrace/sse-share/pkg/authsdk"
)

// DefaultRedirect 登录、注册、退出后的默认跳转
const DefaultRedirect = "/articles"

// Handler 账号页面处理器
type Handler struct {
	service      *Service
	cookieSecure bool
}

// NewHandler 创建处理器实例
func NewHandler(service *Service, cookieSecure bool) *Handler {
	return &Handler{
		service:      service,
		cookieSecure: cookieSecure,
	}
}

// RegisterForm 注册页
// GET /accounts/register
func (h *Handler) RegisterForm(c *gin.Context) {
	h.renderRegister(c, http.StatusOK, &RegisterForm{}, nil)
}

// Register 注册并自动登录
// POST /accounts/register
func (h *Handler) Register(c *gin.Context) {
	var form RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderRegister(c, http.StatusBadRequest, &form, dto.FieldErrors(err))
		return
	}

	u, err := h.service.Register(c.Request.Context(), &form)
	if err != nil {
		var formErr *dto.FormError
		switch {
		case errors.As(err, &formErr):
			h.renderRegister(c, http.StatusBadRequest, &form, formErr.Fields)
		case errors.Is(err, ErrUsernameTaken):
			h.renderRegister(c, http.StatusBadRequest, &form, map[string]string{"username": err.Error()})
		case errors.Is(err, ErrEmailTaken):
			h.renderRegister(c, http.StatusBadRequest, &form, map[string]string{"email": err.Error()})
		default:
			h.serverError(c, err)
		}
		return
	}

	token, _, err := h.service.IssueToken(u)
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.setTokenCookie(c, token)
	c.Redirect(http.StatusFound, DefaultRedirect)
}

// LoginForm 登录页
// GET /accounts/login?next=
func (h *Handler) LoginForm(c *gin.Context) {
	h.renderLogin(c, http.StatusOK, &LoginForm{Next: c.Query("next")}, "")
}

// Login 登录
// POST /accounts/login
func (h *Handler) Login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderLogin(c, http.StatusBadRequest, &form, "Please enter your username and password.")
		return
	}

	token, _, err := h.service.Login(c.Request.Context(), form.Login, form.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			h.renderLogin(c, http.StatusBadRequest, &form, err.Error())
			return
		}
		h.serverError(c, err)
		return
	}

	h.setTokenCookie(c, token)
	c.Redirect(http.StatusFound, safeNext(form.Next))
}

// Logout 退出登录
// POST /accounts/logout
func (h *Handler) Logout(c *gin.Context) {
	token, _ := authsdk.TokenFromRequest(c.Request)
	if err := h.service.Logout(c.Request.Context(), token); err != nil {
		// 注销记录写入失败不影响清除 cookie
		zerolog.Ctx(c.Request.Context()).Warn().Err(err).Msg("revoke token on logout")
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(authsdk.AccessTokenCookie, "", -1, "/", "", h.cookieSecure, true)
	c.Redirect(http.StatusFound, DefaultRedirect)
}

func (h *Handler) setTokenCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(authsdk.AccessTokenCookie, token, int(h.service.TokenTTL().Seconds()), "/", "", h.cookieSecure, true)
}

func (h *Handler) renderRegister(c *gin.Context, status int, form *RegisterForm, fields map[string]string) {
	if fields == nil {
		fields = map[string]string{}
	}
	c.HTML(status, "register.html", gin.H{
		"Title":  "Register",
		"User":   middleware.CurrentUser(c),
		"Form":   form,
		"Errors": fields,
	})
}

func (h *Handler) renderLogin(c *gin.Context, status int, form *LoginForm, message string) {
	c.HTML(status, "login.html", gin.H{
		"Title": "Login",
		"User":  middleware.CurrentUser(c),
		"Form":  form,
		"Error": message,
	})
}

func (h *Handler) serverError(c *gin.Context, err error) {
	zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("account request failed")
	c.HTML(http.StatusInternalServerError, "error.html", gin.H{
		"Title":   "Error",
		"User":    middleware.CurrentUser(c),
		"Status":  http.StatusInternalServerError,
		"Message": "Something went wrong.",
	})
}

// safeNext 只允许站内相对路径
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return DefaultRedirect
	}
	return next
}
