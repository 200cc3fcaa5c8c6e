package database_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/miqbaljintern/Intern-Iwasaki/internal/config"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/database"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteConfig(t *testing.T) config.DatabaseConfig {
	return config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "handover.db")}
}

// TestBuildDSN 测试各驱动的 DSN
func TestBuildDSN(t *testing.T) {
	dsn, err := database.BuildDSN(config.DatabaseConfig{Driver: "postgres", Host: "db", Port: 5432, User: "u", Password: "p", DBName: "handover", SSLMode: "disable"})
	require.NoError(t, err)
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=handover sslmode=disable", dsn)

	dsn, err = database.BuildDSN(config.DatabaseConfig{Driver: "mysql", Host: "db", Port: 3306, User: "u", Password: "p", DBName: "handover"})
	require.NoError(t, err)
	assert.Equal(t, "u:p@tcp(db:3306)/handover?charset=utf8mb4&parseTime=True&loc=Local", dsn)

	_, err = database.BuildDSN(config.DatabaseConfig{Driver: "sqlite"})
	assert.Error(t, err)

	_, err = database.BuildDSN(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

// TestGetPoolConfig 测试连接池默认值
func TestGetPoolConfig(t *testing.T) {
	pool := database.GetPoolConfig(config.DatabaseConfig{MaxOpenConns: 50})
	assert.Equal(t, 50, pool.MaxOpenConns)
	assert.Equal(t, 10, pool.MaxIdleConns)
	assert.Equal(t, 3600, pool.ConnMaxLifetime)
}

// TestConnectAndMigrate 测试连接 SQLite 并迁移
func TestConnectAndMigrate(t *testing.T) {
	db, err := database.Connect(sqliteConfig(t))
	require.NoError(t, err)
	defer database.Close(db)

	require.NoError(t, database.Migrate(db))
	// 重复迁移是幂等的
	require.NoError(t, database.Migrate(db))

	m := db.Migrator()
	assert.True(t, m.HasTable(&model.HandoverModel{}))
	assert.True(t, m.HasTable(&model.NotificationModel{}))
	assert.True(t, m.HasIndex(&model.HandoverModel{}, "idx_handover_predecessor_submitted"))

	assert.NoError(t, database.CheckHealth(context.Background(), db))
}

// TestConnectWithRetry_Fails 测试重试后仍失败
func TestConnectWithRetry_Fails(t *testing.T) {
	start := time.Now()
	_, err := database.ConnectWithRetry(context.Background(), config.DatabaseConfig{Driver: "oracle"}, 2, 10*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 attempts")
	assert.Less(t, time.Since(start), 2*time.Second)
}

// TestConnectWithRetry_Succeeds 测试首次即成功
func TestConnectWithRetry_Succeeds(t *testing.T) {
	db, err := database.ConnectWithRetry(context.Background(), sqliteConfig(t), 3, 10*time.Millisecond)
	require.NoError(t, err)
	assert.NoError(t, database.Close(db))
}

// TestCheckHealth_Nil 测试未初始化的连接
func TestCheckHealth_Nil(t *testing.T) {
	assert.Error(t, database.CheckHealth(context.Background(), nil))
}
