package content

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"terminal-terrace/sse-share/internal/model/item"
	"terminal-terrace/sse-share/internal/model/user"
)

// listColumns 列表查询不加载图片
const listColumns = "id, title, text, gist_link, content_type, owner_id, created_at, updated_at"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Repository 单个内容类型的数据访问，所有查询限定在该类型的表上
type Repository struct {
	db   *gorm.DB
	kind item.Kind
}

// NewRepository 创建仓储实例
func NewRepository(db *gorm.DB, kind item.Kind) *Repository {
	return &Repository{db: db, kind: kind}
}

// Kind 仓储对应的内容类型
func (r *Repository) Kind() item.Kind {
	return r.kind
}

// Transaction 在事务中执行 fn，fn 收到绑定事务的仓储
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx, kind: r.kind})
	})
}

func (r *Repository) items(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table(r.kind.ItemTable())
}

// List 按 updated_at 倒序返回最多 limit 条
// search 在标题与正文中做大小写不敏感的子串匹配，tag 按标签名精确过滤
func (r *Repository) List(ctx context.Context, search, tag string, limit int) ([]item.Item, error) {
	query := r.items(ctx).Select(listColumns)

	if search = strings.TrimSpace(search); search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
		query = query.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(text) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
		query = query.Where("id IN (?)", r.itemIDsWithTag(ctx, tag))
	}

	var items []item.Item
	err := query.
		Order("updated_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *Repository) itemIDsWithTag(ctx context.Context, tag string) *gorm.DB {
	return r.db.WithContext(ctx).
		Table(r.kind.TagTable()+" AS it").
		Select("it.item_id").
		Joins("JOIN tags t ON t.id = it.tag_id").
		Where("t.name = ?", tag)
}

// FindByID 获取条目（不含图片）
func (r *Repository) FindByID(ctx context.Context, id uint) (*item.Item, error) {
	var i item.Item
	err := r.items(ctx).Select(listColumns).Where("id = ?", id).Take(&i).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &i, nil
}

// FindPicture 获取条目图片
func (r *Repository) FindPicture(ctx context.Context, id uint) ([]byte, string, error) {
	var i item.Item
	err := r.items(ctx).Select("id, picture, content_type").Where("id = ?", id).Take(&i).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	return i.Picture, i.ContentType, nil
}

// Create 创建条目
func (r *Repository) Create(ctx context.Context, i *item.Item) error {
	return r.items(ctx).Create(i).Error
}

// Update 更新条目字段，picture 为空时保留原图
func (r *Repository) Update(ctx context.Context, i *item.Item) error {
	fields := map[string]any{
		"title":      i.Title,
		"text":       i.Text,
		"gist_link":  i.GistLink,
		"updated_at": time.Now(),
	}
	if len(i.Picture) > 0 {
		fields["picture"] = i.Picture
		fields["content_type"] = i.ContentType
	}
	return r.items(ctx).Where("id = ?", i.ID).Updates(fields).Error
}

// Delete 删除条目及其评论、收藏和标签关联，需在事务中调用
func (r *Repository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Table(r.kind.TagTable()).Where("item_id = ?", id).Delete(&item.ItemTag{}).Error; err != nil {
		return err
	}
	if err := db.Table(r.kind.FavTable()).Where("item_id = ?", id).Delete(&item.Fav{}).Error; err != nil {
		return err
	}
	if err := db.Table(r.kind.CommentTable()).Where("item_id = ?", id).Delete(&item.Comment{}).Error; err != nil {
		return err
	}
	return r.items(ctx).Where("id = ?", id).Delete(&item.Item{}).Error
}

// SetTags 用 names 替换条目的标签集合，需在事务中调用
func (r *Repository) SetTags(ctx context.Context, itemID uint, names []string) error {
	db := r.db.WithContext(ctx)
	if err := db.Table(r.kind.TagTable()).Where("item_id = ?", itemID).Delete(&item.ItemTag{}).Error; err != nil {
		return err
	}
	if len(names) == 0 {
		return nil
	}

	tags := make([]item.Tag, 0, len(names))
	for _, name := range names {
		tags = append(tags, item.Tag{Name: name})
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&tags).Error; err != nil {
		return err
	}

	var stored []item.Tag
	if err := db.Where("name IN ?", names).Find(&stored).Error; err != nil {
		return err
	}

	links := make([]item.ItemTag, 0, len(stored))
	for _, t := range stored {
		links = append(links, item.ItemTag{ItemID: itemID, TagID: t.ID})
	}
	return db.Table(r.kind.TagTable()).Create(&links).Error
}

// TagsFor 批量获取条目的标签，按名称排序
func (r *Repository) TagsFor(ctx context.Context, itemIDs []uint) (map[uint][]string, error) {
	result := make(map[uint][]string, len(itemIDs))
	if len(itemIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		ItemID uint
		Name   string
	}
	err := r.db.WithContext(ctx).
		Table(r.kind.TagTable()+" AS it").
		Select("it.item_id, t.name").
		Joins("JOIN tags t ON t.id = it.tag_id").
		Where("it.item_id IN ?", itemIDs).
		Order("t.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.ItemID] = append(result[row.ItemID], row.Name)
	}
	return result, nil
}

// CreateComment 创建评论
func (r *Repository) CreateComment(ctx context.Context, c *item.Comment) error {
	return r.db.WithContext(ctx).Table(r.kind.CommentTable()).Create(c).Error
}

// FindCommentByID 获取评论
func (r *Repository) FindCommentByID(ctx context.Context, id uint) (*item.Comment, error) {
	var c item.Comment
	err := r.db.WithContext(ctx).Table(r.kind.CommentTable()).Where("id = ?", id).Take(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindCommentsByItemID 获取条目评论，最近更新的在前
func (r *Repository) FindCommentsByItemID(ctx context.Context, itemID uint) ([]item.Comment, error) {
	var comments []item.Comment
	err := r.db.WithContext(ctx).
		Table(r.kind.CommentTable()).
		Where("item_id = ?", itemID).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&comments).Error
	return comments, err
}

// DeleteComment 删除评论
func (r *Repository) DeleteComment(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Table(r.kind.CommentTable()).Where("id = ?", id).Delete(&item.Comment{}).Error
}

// AddFav 收藏，已收藏时不做任何事
func (r *Repository) AddFav(ctx context.Context, userID, itemID uint) error {
	err := r.db.WithContext(ctx).
		Table(r.kind.FavTable()).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&item.Fav{UserID: userID, ItemID: itemID}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

// RemoveFav 取消收藏，未收藏时不做任何事
func (r *Repository) RemoveFav(ctx context.Context, userID, itemID uint) error {
	return r.db.WithContext(ctx).
		Table(r.kind.FavTable()).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		Delete(&item.Fav{}).Error
}

// CountFavs 条目被收藏次数
func (r *Repository) CountFavs(ctx context.Context, itemID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Table(r.kind.FavTable()).Where("item_id = ?", itemID).Count(&n).Error
	return n, err
}

// FavoritedAmong 返回 itemIDs 中被 userID 收藏的条目
func (r *Repository) FavoritedAmong(ctx context.Context, userID uint, itemIDs []uint) ([]uint, error) {
	if userID == 0 || len(itemIDs) == 0 {
		return nil, nil
	}

	var ids []uint
	err := r.db.WithContext(ctx).
		Table(r.kind.FavTable()).
		Where("user_id = ? AND item_id IN ?", userID, itemIDs).
		Pluck("item_id", &ids).Error
	return ids, err
}

// FindFavorites 用户收藏的条目，按 updated_at 倒序
func (r *Repository) FindFavorites(ctx context.Context, userID uint) ([]item.Item, error) {
	favs := r.db.WithContext(ctx).Table(r.kind.FavTable()).Select("item_id").Where("user_id = ?", userID)

	var items []item.Item
	err := r.items(ctx).
		Select(listColumns).
		Where("id IN (?)", favs).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&items).Error
	return items, err
}

// FindOwners 批量获取作者信息
func (r *Repository) FindOwners(ctx context.Context, ids []uint) (map[uint]Owner, error) {
	result := make(map[uint]Owner, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var users []user.User
	err := r.db.WithContext(ctx).
		Model(&user.User{}).
		Select("id, username").
		Where("id IN ?", ids).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	for _, u := range users {
		result[u.ID] = Owner{ID: u.ID, Username: u.Username}
	}
	return result, nil
}
