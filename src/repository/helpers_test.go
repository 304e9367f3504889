package repository

import (
	"path/filepath"
	"testing"

	"github.com/Gouliath1/portfolio-tracker-sub001/src/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB points DATABASE_PATH at a fresh file and runs the same
// init/close cycle the server uses.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	t.Setenv("DATABASE_DRIVER", database.DriverSQLite)
	t.Setenv("DATABASE_PATH", filepath.Join(t.TempDir(), "portfolio.db"))

	require.NoError(t, database.InitMainDB())
	t.Cleanup(func() {
		require.NoError(t, database.CloseMainDB())
	})

	return database.MainDB
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	})

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		sqlDB.Close()
		t.Fatalf("failed to open gorm DB with sqlmock: %v", err)
	}

	return gdb, mock
}
