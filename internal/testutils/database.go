package testutils

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"terminal-terrace/sse-share/internal/model"
)

// SetupTestDB 创建测试数据库并完成迁移
// 默认使用独立的 sqlite 内存库；设置 TEST_DATABASE_DSN 时使用 postgres
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conf := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}

	var (
		db  *gorm.DB
		err error
	)
	if dsn := os.Getenv("TEST_DATABASE_DSN"); dsn != "" {
		db, err = gorm.Open(postgres.Open(dsn), conf)
	} else {
		// 每个测试一个命名内存库，单连接保证所有查询看到同一份数据
		dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
		db, err = gorm.Open(sqlite.Open(dsn), conf)
	}
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	if db.Dialector.Name() == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := model.InitTable(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}
