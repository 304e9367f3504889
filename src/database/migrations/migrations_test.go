package migrations

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "migrations.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func TestRunOnce_RecordsAndSkips(t *testing.T) {
	db := openTestDB(t)

	calls := 0
	fn := func(*gorm.DB) error {
		calls++
		return nil
	}

	require.NoError(t, RunOnce(db, "test_migration", fn))
	require.NoError(t, RunOnce(db, "test_migration", fn))
	require.Equal(t, 1, calls)

	var count int64
	require.NoError(t, db.Model(&DataMigration{}).Where("id = ?", "test_migration").Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestRunOnce_FailedMigrationIsNotRecorded(t *testing.T) {
	db := openTestDB(t)

	boom := errors.New("boom")
	err := RunOnce(db, "failing", func(*gorm.DB) error { return boom })
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&DataMigration{}).Where("id = ?", "failing").Count(&count).Error)
	require.Zero(t, count)
}

func TestRunOnce_Validation(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, RunOnce(nil, "x", func(*gorm.DB) error { return nil }))
	require.Error(t, RunOnce(db, "", func(*gorm.DB) error { return nil }))
	require.Error(t, RunOnce(db, "nil-fn", nil))
}

func TestRun_CreatesActivePointerRow(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.Exec(`CREATE TABLE active_position_set (id integer primary key, position_set_id integer, updated_at datetime)`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE position_sets (id integer primary key, name text, display_name text)`).Error)
	require.NoError(t, db.Exec(`INSERT INTO position_sets (id, name, display_name) VALUES (1, 'ib', ''), (2, 'sbi', 'SBI')`).Error)

	require.NoError(t, Run(db))
	require.NoError(t, Run(db))

	var rows int64
	require.NoError(t, db.Table("active_position_set").Count(&rows).Error)
	require.EqualValues(t, 1, rows)

	var names []string
	require.NoError(t, db.Table("position_sets").Order("id").Pluck("display_name", &names).Error)
	require.Equal(t, []string{"ib", "SBI"}, names)
}
