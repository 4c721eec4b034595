package storage

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDSNEnv names a disposable Postgres database for the GormStore contract,
// e.g. "host=localhost user=postgres password=postgres dbname=storefront_test sslmode=disable".
const testDSNEnv = "STOREFRONT_TEST_DATABASE_DSN"

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv(testDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set, skipping Postgres tests", testDSNEnv)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, NewGormStore(db).AutoMigrate())
	return db
}

func TestGormStore(t *testing.T) {
	db := openTestDB(t)
	suite.Run(t, &storeSuite{newStore: func() Store {
		require.NoError(t, db.Exec("DELETE FROM kv_entries").Error)
		return NewGormStore(db)
	}})
}

func TestGormStore_UpsertKeepsOneRow(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	require.NoError(t, db.Exec("DELETE FROM kv_entries").Error)
	store := NewGormStore(db)

	require.NoError(t, store.Set(ctx, KeyProductOverrides, []byte(`[]`)))
	var first Entry
	require.NoError(t, db.First(&first, "key = ?", KeyProductOverrides).Error)

	require.NoError(t, store.Set(ctx, KeyProductOverrides, []byte(`[{"id":"p1"}]`)))

	var rows []Entry
	require.NoError(t, db.Find(&rows, "key = ?", KeyProductOverrides).Error)
	require.Len(t, rows, 1)
	require.Equal(t, `[{"id":"p1"}]`, string(rows[0].Value))
	require.False(t, rows[0].UpdatedAt.Before(first.UpdatedAt))
}
