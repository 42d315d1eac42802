package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"terminal-terrace/sse-share/internal/dto"
	"terminal-terrace/sse-share/internal/model/item"
)

const (
	// DefaultPageSize 列表与搜索的条数上限
	DefaultPageSize = 10
	// DefaultMaxPictureSize 图片大小上限
	DefaultMaxPictureSize int64 = 2 << 20

	MinCommentLength = 3
	MaxCommentLength = 500
)

var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("you are not allowed to modify this")
	ErrCommentTooShort = fmt.Errorf("comment must be at least %d characters", MinCommentLength)
	ErrCommentTooLong  = fmt.Errorf("comment must be at most %d characters", MaxCommentLength)
	ErrTagTooLong      = fmt.Errorf("tags must be at most %d characters each", MaxTagLength)
	ErrPictureTooLarge = errors.New("picture is too large")
	ErrPictureType     = errors.New("picture must be an image")
)

// Options 服务配置
type Options struct {
	PageSize       int
	MaxPictureSize int64
}

// Service 单个内容类型的业务逻辑
type Service struct {
	repo     *Repository
	kind     item.Kind
	opts     Options
	validate *validator.Validate
}

// NewService 创建服务实例，零值选项取默认值
func NewService(repo *Repository, opts Options) *Service {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.MaxPictureSize <= 0 {
		opts.MaxPictureSize = DefaultMaxPictureSize
	}

	v := validator.New()
	v.SetTagName("binding")

	return &Service{
		repo:     repo,
		kind:     repo.Kind(),
		opts:     opts,
		validate: v,
	}
}

// Kind 服务对应的内容类型
func (s *Service) Kind() item.Kind {
	return s.kind
}

// List 列表与搜索
func (s *Service) List(ctx context.Context, q ListQuery, viewerID uint) (*ListResult, error) {
	items, err := s.repo.List(ctx, q.Search, q.Tag, s.opts.PageSize)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.kind.Plural, err)
	}

	views, err := s.toViews(ctx, items, viewerID)
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Items:  views,
		Search: strings.TrimSpace(q.Search),
		Tag:    strings.ToLower(strings.TrimSpace(q.Tag)),
	}, nil
}

// Get 详情：条目、标签、评论、收藏状态
func (s *Service) Get(ctx context.Context, id, viewerID uint) (*DetailResult, error) {
	i, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	views, err := s.toViews(ctx, []item.Item{*i}, viewerID)
	if err != nil {
		return nil, err
	}

	comments, err := s.repo.FindCommentsByItemID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}
	owners, err := s.repo.FindOwners(ctx, lo.Uniq(lo.Map(comments, func(c item.Comment, _ int) uint {
		return c.OwnerID
	})))
	if err != nil {
		return nil, fmt.Errorf("load comment owners: %w", err)
	}

	favCount, err := s.repo.CountFavs(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count favs: %w", err)
	}

	commentViews := make([]*CommentView, 0, len(comments))
	for idx := range comments {
		commentViews = append(commentViews, toCommentView(&comments[idx], ownerOf(owners, comments[idx].OwnerID)))
	}

	return &DetailResult{
		Item:       views[0],
		Comments:   commentViews,
		FavCount:   favCount,
		IsFavorite: views[0].IsFavorite,
	}, nil
}

// Create 创建条目，返回新条目 ID
func (s *Service) Create(ctx context.Context, ownerID uint, form *ItemForm) (uint, error) {
	tags, err := s.validateForm(form)
	if err != nil {
		return 0, err
	}

	i := s.formToItem(form)
	i.OwnerID = ownerID

	err = s.repo.Transaction(ctx, func(tx *Repository) error {
		if err := tx.Create(ctx, i); err != nil {
			return err
		}
		return tx.SetTags(ctx, i.ID, tags)
	})
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", s.kind.Name, err)
	}
	return i.ID, nil
}

// EditForm 编辑页的表单初值，仅作者可用
func (s *Service) EditForm(ctx context.Context, id uint, actor Actor) (*ItemForm, error) {
	i, err := s.authorize(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	tags, err := s.repo.TagsFor(ctx, []uint{id})
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	return &ItemForm{
		Title:    i.Title,
		Text:     i.Text,
		GistLink: i.GistLink,
		Tags:     FormatTags(tags[id]),
	}, nil
}

// Update 更新条目与标签，仅作者可用
func (s *Service) Update(ctx context.Context, id uint, actor Actor, form *ItemForm) error {
	if _, err := s.authorize(ctx, id, actor); err != nil {
		return err
	}
	tags, err := s.validateForm(form)
	if err != nil {
		return err
	}

	i := s.formToItem(form)
	i.ID = id

	err = s.repo.Transaction(ctx, func(tx *Repository) error {
		if err := tx.Update(ctx, i); err != nil {
			return err
		}
		return tx.SetTags(ctx, id, tags)
	})
	if err != nil {
		return fmt.Errorf("update %s %d: %w", s.kind.Name, id, err)
	}
	return nil
}

// Confirm 删除确认页数据，仅作者可用
func (s *Service) Confirm(ctx context.Context, id uint, actor Actor) (*ItemView, error) {
	i, err := s.authorize(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	views, err := s.toViews(ctx, []item.Item{*i}, 0)
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// Delete 删除条目，评论、收藏与标签关联一并删除
func (s *Service) Delete(ctx context.Context, id uint, actor Actor) error {
	if _, err := s.authorize(ctx, id, actor); err != nil {
		return err
	}

	err := s.repo.Transaction(ctx, func(tx *Repository) error {
		return tx.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", s.kind.Name, id, err)
	}
	return nil
}

// AddComment 发表评论，内容去除首尾空白后长度需在 3-500 之间
func (s *Service) AddComment(ctx context.Context, itemID, ownerID uint, text string) (*CommentView, error) {
	text = strings.TrimSpace(text)
	switch n := utf8.RuneCountInString(text); {
	case n < MinCommentLength:
		return nil, ErrCommentTooShort
	case n > MaxCommentLength:
		return nil, ErrCommentTooLong
	}

	if _, err := s.repo.FindByID(ctx, itemID); err != nil {
		return nil, err
	}

	comment := &item.Comment{
		ItemID:  itemID,
		OwnerID: ownerID,
		Text:    text,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	owners, err := s.repo.FindOwners(ctx, []uint{ownerID})
	if err != nil {
		return nil, fmt.Errorf("load comment owner: %w", err)
	}
	return toCommentView(comment, ownerOf(owners, ownerID)), nil
}

// GetComment 评论删除确认页数据，仅作者可用
func (s *Service) GetComment(ctx context.Context, commentID uint, actor Actor) (*CommentView, error) {
	comment, err := s.authorizeComment(ctx, commentID, actor)
	if err != nil {
		return nil, err
	}
	owners, err := s.repo.FindOwners(ctx, []uint{comment.OwnerID})
	if err != nil {
		return nil, fmt.Errorf("load comment owner: %w", err)
	}
	return toCommentView(comment, ownerOf(owners, comment.OwnerID)), nil
}

// DeleteComment 删除评论，返回所属条目 ID
func (s *Service) DeleteComment(ctx context.Context, commentID uint, actor Actor) (uint, error) {
	comment, err := s.authorizeComment(ctx, commentID, actor)
	if err != nil {
		return 0, err
	}
	if err := s.repo.DeleteComment(ctx, commentID); err != nil {
		return 0, fmt.Errorf("delete comment %d: %w", commentID, err)
	}
	return comment.ItemID, nil
}

// Favorite 收藏，重复收藏无副作用
func (s *Service) Favorite(ctx context.Context, itemID, userID uint) error {
	if _, err := s.repo.FindByID(ctx, itemID); err != nil {
		return err
	}
	if err := s.repo.AddFav(ctx, userID, itemID); err != nil {
		return fmt.Errorf("favorite %s %d: %w", s.kind.Name, itemID, err)
	}
	return nil
}

// Unfavorite 取消收藏，未收藏时无副作用
func (s *Service) Unfavorite(ctx context.Context, itemID, userID uint) error {
	if _, err := s.repo.FindByID(ctx, itemID); err != nil {
		return err
	}
	if err := s.repo.RemoveFav(ctx, userID, itemID); err != nil {
		return fmt.Errorf("unfavorite %s %d: %w", s.kind.Name, itemID, err)
	}
	return nil
}

// Favorites 用户收藏的条目
func (s *Service) Favorites(ctx context.Context, userID uint) ([]*ItemView, error) {
	items, err := s.repo.FindFavorites(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorite %s: %w", s.kind.Plural, err)
	}
	return s.toViews(ctx, items, userID)
}

// Picture 条目图片及其 Content-Type
func (s *Service) Picture(ctx context.Context, id uint) ([]byte, string, error) {
	if !s.kind.HasPicture {
		return nil, "", ErrNotFound
	}
	data, contentType, err := s.repo.FindPicture(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 || contentType == "" {
		return nil, "", ErrNotFound
	}
	return data, contentType, nil
}

func (s *Service) authorize(ctx context.Context, id uint, actor Actor) (*item.Item, error) {
	i, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(actor, i.OwnerID) {
		return nil, ErrForbidden
	}
	return i, nil
}

func (s *Service) authorizeComment(ctx context.Context, id uint, actor Actor) (*item.Comment, error) {
	comment, err := s.repo.FindCommentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(actor, comment.OwnerID) {
		return nil, ErrForbidden
	}
	return comment, nil
}

func canModify(actor Actor, ownerID uint) bool {
	return actor.Admin || (actor.ID != 0 && actor.ID == ownerID)
}

// validateForm 校验表单并解析标签
func (s *Service) validateForm(form *ItemForm) ([]string, error) {
	form.Title = strings.TrimSpace(form.Title)
	form.GistLink = strings.TrimSpace(form.GistLink)
	if !s.kind.HasGist {
		form.GistLink = ""
	}

	fields := dto.FieldErrors(s.validate.Struct(form))
	if fields == nil {
		fields = map[string]string{}
	}

	tags, err := ParseTags(form.Tags)
	if err != nil {
		fields["tags"] = err.Error()
	}

	if len(form.Picture) > 0 {
		switch {
		case !s.kind.HasPicture:
			form.Picture, form.ContentType = nil, ""
		case int64(len(form.Picture)) > s.opts.MaxPictureSize:
			fields["picture"] = fmt.Sprintf("%s: maximum is %s", ErrPictureTooLarge, humanize.IBytes(uint64(s.opts.MaxPictureSize)))
		case !strings.HasPrefix(form.ContentType, "image/"):
			fields["picture"] = ErrPictureType.Error()
		}
	}

	if len(fields) > 0 {
		return nil, &dto.FormError{Fields: fields}
	}
	return tags, nil
}

func (s *Service) formToItem(form *ItemForm) *item.Item {
	i := &item.Item{
		Title: form.Title,
		Text:  form.Text,
	}
	if s.kind.HasGist {
		i.GistLink = form.GistLink
	}
	if s.kind.HasPicture && len(form.Picture) > 0 {
		i.Picture = form.Picture
		i.ContentType = form.ContentType
	}
	return i
}

// toViews 填充作者、标签与收藏状态
func (s *Service) toViews(ctx context.Context, items []item.Item, viewerID uint) ([]*ItemView, error) {
	ids := lo.Map(items, func(i item.Item, _ int) uint { return i.ID })

	owners, err := s.repo.FindOwners(ctx, lo.Uniq(lo.Map(items, func(i item.Item, _ int) uint {
		return i.OwnerID
	})))
	if err != nil {
		return nil, fmt.Errorf("load owners: %w", err)
	}

	tags, err := s.repo.TagsFor(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}

	favIDs, err := s.repo.FavoritedAmong(ctx, viewerID, ids)
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}
	favSet := lo.SliceToMap(favIDs, func(id uint) (uint, struct{}) { return id, struct{}{} })

	views := make([]*ItemView, 0, len(items))
	for idx := range items {
		i := &items[idx]
		_, fav := favSet[i.ID]
		views = append(views, toItemView(i, ownerOf(owners, i.OwnerID), tags[i.ID], fav))
	}
	return views, nil
}

func ownerOf(owners map[uint]Owner, id uint) Owner {
	if o, ok := owners[id]; ok {
		return o
	}
	return Owner{ID: id, Username: "unknown"}
}
