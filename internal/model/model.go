package model

import (
	"fmt"

	"gorm.io/gorm"

	"terminal-terrace/sse-share/internal/model/item"
	"terminal-terrace/sse-share/internal/model/user"
)

// GetModels 返回共享表模型
func GetModels() []interface{} {
	return []interface{}{
		&user.User{},
		&item.Tag{},
	}
}

func InitTable(db *gorm.DB) error {
	if err := db.AutoMigrate(GetModels()...); err != nil {
		return fmt.Errorf("migrate shared tables: %w", err)
	}

	for _, kind := range item.Kinds() {
		if err := migrateKind(db, kind); err != nil {
			return fmt.Errorf("migrate %s tables: %w", kind.Name, err)
		}
	}
	return nil
}

// migrateKind 为一种内容类型建表
// 同一结构体迁移到多张表，索引名需要按表区分，因此索引单独创建
func migrateKind(db *gorm.DB, kind item.Kind) error {
	tables := []struct {
		name  string
		model interface{}
	}{
		{kind.ItemTable(), &item.Item{}},
		{kind.CommentTable(), &item.Comment{}},
		{kind.FavTable(), &item.Fav{}},
		{kind.TagTable(), &item.ItemTag{}},
	}
	for _, t := range tables {
		if err := db.Table(t.name).AutoMigrate(t.model); err != nil {
			return err
		}
	}

	indexes := []struct {
		table   string
		columns string
	}{
		{kind.ItemTable(), "updated_at"},
		{kind.ItemTable(), "owner_id"},
		{kind.CommentTable(), "item_id"},
		{kind.FavTable(), "item_id"},
		{kind.TagTable(), "tag_id"},
	}
	for _, idx := range indexes {
		stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s (%s)",
			idx.table, idx.columns, idx.table, idx.columns)
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
