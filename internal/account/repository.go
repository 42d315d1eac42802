package account

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"terminal-terrace/sse-share/internal/model/user"
)

// Repository 用户数据访问
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建仓储实例
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByLogin 按用户名或邮箱查找用户，邮箱以小写存储，比较时忽略大小写
func (r *Repository) FindByLogin(ctx context.Context, login string) (*user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).Where("username = ? OR email = ?", login, strings.ToLower(login)).Take(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// FindConflict 查找用户名或邮箱已被占用的用户
func (r *Repository) FindConflict(ctx context.Context, username, email string) (*user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).Where("username = ? OR email = ?", username, email).Take(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Create 创建用户
func (r *Repository) Create(ctx context.Context, u *user.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}
