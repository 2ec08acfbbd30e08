package repository

// testdb_test.go
// Shared in-memory SQLite setup for repository tests. SQLite stands in for
// postgres here: conditional UPDATEs, gorm.Expr arithmetic and preloads behave
// the same, which is what these tests exercise. Postgres-only surface
// (SERIALIZABLE retries, ILIKE filters, CHECK patches) is covered elsewhere.

import (
	"testing"

	"kashflow/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every session on the same :memory: database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Usuario{},
		&model.Producto{},
		&model.Cliente{},
		&model.CorteInteres{},
		&model.Venta{},
		&model.VentaItem{},
		&model.MovimientoStock{},
	))
	return db
}
