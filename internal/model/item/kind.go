// Package item 文章/学习笔记共用的内容模型
package item

// Kind 描述一种内容类型及其专属数据表
// 文章(article)与学习笔记(learning)结构相同，各自独立建表
type Kind struct {
	Name   string // 单数，用于路由与表名前缀: article
	Plural string // 复数，用于路由与条目表名: articles
	Label  string // 页面展示名称

	// 文章支持 gist 链接，学习笔记支持图片
	HasGist    bool
	HasPicture bool
}

var (
	Article = Kind{
		Name:    "article",
		Plural:  "articles",
		Label:   "Article",
		HasGist: true,
	}
	Learning = Kind{
		Name:       "learning",
		Plural:     "learnings",
		Label:      "Learning",
		HasPicture: true,
	}
)

// Kinds 所有内容类型
func Kinds() []Kind {
	return []Kind{Article, Learning}
}

// ItemTable 条目表名
func (k Kind) ItemTable() string { return k.Plural }

// CommentTable 评论表名
func (k Kind) CommentTable() string { return k.Name + "_comments" }

// FavTable 收藏表名
func (k Kind) FavTable() string { return k.Name + "_favs" }

// TagTable 条目-标签关联表名
func (k Kind) TagTable() string { return k.Name + "_tags" }
