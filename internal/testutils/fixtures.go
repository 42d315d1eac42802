package testutils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"terminal-terrace/sse-share/internal/model/item"
	"terminal-terrace/sse-share/internal/model/user"
)

// TestPassword 测试用户的明文密码
const TestPassword = "Passw0rd"

// CreateTestUser creates a test user with unique username/email
func CreateTestUser(db *gorm.DB, opts ...UserOption) *user.User {
	uniqueID := uuid.New().String()[:8]

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("Failed to hash test password: %v", err))
	}

	testUser := &user.User{
		Username:     "user_" + uniqueID,
		Email:        fmt.Sprintf("test_%s@example.com", uniqueID),
		PasswordHash: string(hash),
		Role:         user.RoleUser,
	}
	for _, opt := range opts {
		opt(testUser)
	}

	if err := db.Create(testUser).Error; err != nil {
		panic(fmt.Sprintf("Failed to create test user: %v", err))
	}
	return testUser
}

// UserOption configures test user
type UserOption func(*user.User)

// WithUsername sets the username
func WithUsername(username string) UserOption {
	return func(u *user.User) {
		u.Username = username
	}
}

// WithAdmin makes the user a global admin
func WithAdmin() UserOption {
	return func(u *user.User) {
		u.Role = user.RoleAdmin
	}
}

// CreateTestItem creates an item of the given kind owned by ownerID
func CreateTestItem(db *gorm.DB, kind item.Kind, ownerID uint, opts ...ItemOption) *item.Item {
	testItem := &item.Item{
		Title:   "Test " + kind.Label + " " + uuid.New().String()[:8],
		Text:    "Test body",
		OwnerID: ownerID,
	}
	for _, opt := range opts {
		opt(testItem)
	}

	if err := db.Table(kind.ItemTable()).Create(testItem).Error; err != nil {
		panic(fmt.Sprintf("Failed to create test %s: %v", kind.Name, err))
	}
	return testItem
}

// ItemOption configures test item
type ItemOption func(*item.Item)

// WithTitle sets the item title
func WithTitle(title string) ItemOption {
	return func(i *item.Item) {
		i.Title = title
	}
}

// WithText sets the item body
func WithText(text string) ItemOption {
	return func(i *item.Item) {
		i.Text = text
	}
}

// WithUpdatedAt pins created_at/updated_at for ordering tests
func WithUpdatedAt(ts time.Time) ItemOption {
	return func(i *item.Item) {
		i.CreatedAt = ts
		i.UpdatedAt = ts
	}
}

// WithPicture attaches a picture
func WithPicture(data []byte, contentType string) ItemOption {
	return func(i *item.Item) {
		i.Picture = data
		i.ContentType = contentType
	}
}

// CreateTestComment creates a comment on itemID
func CreateTestComment(db *gorm.DB, kind item.Kind, itemID, ownerID uint, text string) *item.Comment {
	comment := &item.Comment{
		ItemID:  itemID,
		OwnerID: ownerID,
		Text:    text,
	}
	if err := db.Table(kind.CommentTable()).Create(comment).Error; err != nil {
		panic(fmt.Sprintf("Failed to create test comment: %v", err))
	}
	return comment
}

// CreateTestFav marks itemID as favorited by userID
func CreateTestFav(db *gorm.DB, kind item.Kind, itemID, userID uint) {
	fav := &item.Fav{UserID: userID, ItemID: itemID}
	if err := db.Table(kind.FavTable()).Create(fav).Error; err != nil {
		panic(fmt.Sprintf("Failed to create test fav: %v", err))
	}
}

// CountRows 统计表中满足条件的行数
func CountRows(db *gorm.DB, table string, query string, args ...any) int64 {
	var n int64
	if err := db.Table(table).Where(query, args...).Count(&n).Error; err != nil {
		panic(fmt.Sprintf("Failed to count %s: %v", table, err))
	}
	return n
}
