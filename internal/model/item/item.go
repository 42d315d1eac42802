package item

import "time"

// Item 条目基础信息
// 表名由 Kind 决定，查询时必须通过 db.Table(kind.ItemTable()) 指定
type Item struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(200);not null" json:"title"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	GistLink    string    `gorm:"type:text" json:"gist_link,omitempty"`
	Picture     []byte    `json:"-"`
	ContentType string    `gorm:"type:varchar(256)" json:"content_type,omitempty"`
	OwnerID     uint      `gorm:"not null" json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasPicture 是否上传了图片
func (i *Item) HasPicture() bool {
	return i.ContentType != ""
}

// Comment 条目评论
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ItemID    uint      `gorm:"not null" json:"item_id"`
	OwnerID   uint      `gorm:"not null" json:"owner_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Fav 收藏记录，(user_id, item_id) 唯一
type Fav struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	ItemID    uint      `gorm:"primaryKey;autoIncrement:false" json:"item_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ItemTag 条目-标签关联
type ItemTag struct {
	ItemID uint `gorm:"primaryKey;autoIncrement:false" json:"item_id"`
	TagID  uint `gorm:"primaryKey;autoIncrement:false" json:"tag_id"`
}

// Tag 标签表，所有内容类型共用
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (Tag) TableName() string {
	return "tags"
}
