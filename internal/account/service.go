package account

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"terminal-terrace/sse-share/internal/dto"
	"terminal-terrace/sse-share/internal/model/user"
	"terminal-terrace/sse-share/pkg/authsdk"
)

var (
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	upperRegex    = regexp.MustCompile(`[A-Z]`)
	lowerRegex    = regexp.MustCompile(`[a-z]`)
	digitRegex    = regexp.MustCompile(`[0-9]`)
)

// Revoker 记录已注销的令牌
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, userID uint, ttl time.Duration) error
}

// Service 注册、登录与退出
type Service struct {
	repo     *Repository
	issuer   authsdk.Issuer
	revoker  Revoker
	validate *validator.Validate
	cost     int
}

// NewService 创建服务实例，revoker 为 nil 时退出登录只清除 cookie
func NewService(repo *Repository, issuer authsdk.Issuer, revoker Revoker) *Service {
	v := validator.New()
	v.SetTagName("binding")

	return &Service{
		repo:     repo,
		issuer:   issuer,
		revoker:  revoker,
		validate: v,
		cost:     bcrypt.DefaultCost,
	}
}

// Register 注册新用户
func (s *Service) Register(ctx context.Context, form *RegisterForm) (*user.User, error) {
	form.Username = strings.TrimSpace(form.Username)
	form.Email = strings.ToLower(strings.TrimSpace(form.Email))

	if err := s.validateRegister(form); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindConflict(ctx, form.Username, form.Email)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if existing != nil {
		if existing.Username == form.Username {
			return nil, ErrUsernameTaken
		}
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &user.User{
		Username:     form.Username,
		Email:        form.Email,
		PasswordHash: string(hash),
		Role:         user.RoleUser,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		// 并发注册时由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login 校验密码并签发访问令牌
func (s *Service) Login(ctx context.Context, login, password string) (string, *authsdk.UserContext, error) {
	u, err := s.repo.FindByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		return "", nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	return s.IssueToken(u)
}

// IssueToken 为用户签发访问令牌
func (s *Service) IssueToken(u *user.User) (string, *authsdk.UserContext, error) {
	token, claims, err := s.issuer.Issue(u.ID, u.Username, u.Role)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, claims, nil
}

// Logout 注销令牌，令牌无效时无需处理
func (s *Service) Logout(ctx context.Context, token string) error {
	if s.revoker == nil || token == "" {
		return nil
	}

	claims, err := authsdk.ParseToken(token, s.issuer.Secret)
	if err != nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.TokenID, claims.UserID, time.Until(claims.ExpiresAt)); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// TokenTTL 访问令牌有效期
func (s *Service) TokenTTL() time.Duration {
	return s.issuer.TTL
}

// validateRegister 参数校验
func (s *Service) validateRegister(form *RegisterForm) error {
	fields := dto.FieldErrors(s.validate.Struct(form))
	if fields == nil {
		fields = map[string]string{}
	}

	if _, ok := fields["username"]; !ok && !usernameRegex.MatchString(form.Username) {
		fields["username"] = "username may only contain letters, digits and underscores"
	}
	if _, ok := fields["password"]; !ok && !isStrongPassword(form.Password) {
		fields["password"] = "password must contain upper and lower case letters and a digit"
	}

	if len(fields) > 0 {
		return &dto.FormError{Fields: fields}
	}
	return nil
}

// isStrongPassword 密码需包含大小写字母与数字
func isStrongPassword(password string) bool {
	return upperRegex.MatchString(password) &&
		lowerRegex.MatchString(password) &&
		digitRegex.MatchString(password)
}
