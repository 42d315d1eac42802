package content

import (
	"time"

	"terminal-terrace/sse-share/internal/model/item"
)

// ItemForm 创建/编辑表单
type ItemForm struct {
	Title    string `form:"title" json:"title" binding:"required,min=2,max=200"`
	Text     string `form:"text" json:"text" binding:"required"`
	GistLink string `form:"gist_link" json:"gist_link" binding:"omitempty,url,max=500"`
	Tags     string `form:"tags" json:"tags" binding:"max=500"`

	// 图片由 handler 从 multipart 中读取
	Picture     []byte `form:"-" json:"-"`
	ContentType string `form:"-" json:"-"`
}

// CommentForm 评论表单，长度由 service 校验
type CommentForm struct {
	Text string `form:"text" json:"text"`
}

// ListQuery 列表查询条件
type ListQuery struct {
	Search string `form:"search"`
	Tag    string `form:"tag"`
}

// Actor 执行修改操作的用户
type Actor struct {
	ID    uint
	Admin bool
}

// Owner 作者信息
type Owner struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// ItemView 条目展示数据
type ItemView struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	Text       string    `json:"text"`
	GistLink   string    `json:"gist_link,omitempty"`
	HasPicture bool      `json:"has_picture"`
	Owner      Owner     `json:"owner"`
	Tags       []string  `json:"tags"`
	IsFavorite bool      `json:"is_favorite"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CommentView 评论展示数据
type CommentView struct {
	ID        uint      `json:"id"`
	ItemID    uint      `json:"item_id"`
	Text      string    `json:"text"`
	Owner     Owner     `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListResult 列表结果
type ListResult struct {
	Items  []*ItemView `json:"items"`
	Search string      `json:"search,omitempty"`
	Tag    string      `json:"tag,omitempty"`
}

// DetailResult 详情结果
type DetailResult struct {
	Item       *ItemView      `json:"item"`
	Comments   []*CommentView `json:"comments"`
	FavCount   int64          `json:"fav_count"`
	IsFavorite bool           `json:"is_favorite"`
}

func toItemView(i *item.Item, owner Owner, tags []string, isFavorite bool) *ItemView {
	if tags == nil {
		tags = []string{}
	}
	return &ItemView{
		ID:         i.ID,
		Title:      i.Title,
		Text:       i.Text,
		GistLink:   i.GistLink,
		HasPicture: i.HasPicture(),
		Owner:      owner,
		Tags:       tags,
		IsFavorite: isFavorite,
		CreatedAt:  i.CreatedAt,
		UpdatedAt:  i.UpdatedAt,
	}
}

func toCommentView(c *item.Comment, owner Owner) *CommentView {
	return &CommentView{
		ID:        c.ID,
		ItemID:    c.ItemID,
		Text:      c.Text,
		Owner:     owner,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
