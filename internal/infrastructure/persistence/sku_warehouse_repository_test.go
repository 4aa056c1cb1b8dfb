package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/openshop/backend/internal/domain/inventory"
	"github.com/openshop/backend/internal/domain/shared"
)

// newMockSkuWarehouseRepository creates a GormSkuWarehouseRepository with a mocked SQL connection
func newMockSkuWarehouseRepository(t *testing.T) (*GormSkuWarehouseRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormSkuWarehouseRepository(gormDB), mock, mockDB
}

func newStockRecord(t *testing.T) *inventory.SkuWarehouse {
	t.Helper()
	record, err := inventory.NewSkuWarehouse("WAREHOUSE_1", "CC_TEST1", inventory.AvailabilityStandard)
	require.NoError(t, err)
	record.Quantity = decimal.NewFromInt(100)
	return record
}

func TestGormSkuWarehouseRepository_FindByWarehouseSku(t *testing.T) {
	t.Run("finds the stock record for a pair", func(t *testing.T) {
		repo, mock, mockDB := newMockSkuWarehouseRepository(t)
		defer mockDB.Close()

		record := newStockRecord(t)

		rows := sqlmock.NewRows([]string{"id", "warehouse_code", "sku_code", "quantity", "reserved", "availability", "version"}).
			AddRow(record.ID, record.WarehouseCode, record.SkuCode, record.Quantity, decimal.Zero, string(record.Availability), record.Version)

		mock.ExpectQuery(`SELECT \* FROM "sku_warehouses" WHERE warehouse_code = \$1 AND sku_code = \$2 ORDER BY .* LIMIT .*`).
			WithArgs("WAREHOUSE_1", "CC_TEST1", 1).
			WillReturnRows(rows)

		found, err := repo.FindByWarehouseSku(context.Background(), "WAREHOUSE_1", "CC_TEST1")

		assert.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "CC_TEST1", found.SkuCode)
		assert.True(t, found.Quantity.Equal(decimal.NewFromInt(100)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing pair", func(t *testing.T) {
		repo, mock, mockDB := newMockSkuWarehouseRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "sku_warehouses" WHERE warehouse_code = \$1 AND sku_code = \$2 ORDER BY .* LIMIT .*`).
			WithArgs("WAREHOUSE_1", "MISSING", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		found, err := repo.FindByWarehouseSku(context.Background(), "WAREHOUSE_1", "MISSING")

		assert.Nil(t, found)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSkuWarehouseRepository_FindBySku(t *testing.T) {
	t.Run("lists records across warehouses ordered by warehouse", func(t *testing.T) {
		repo, mock, mockDB := newMockSkuWarehouseRepository(t)
		defer mockDB.Close()

		first := newStockRecord(t)
		second, err := inventory.NewSkuWarehouse("WAREHOUSE_2", "CC_TEST1", inventory.AvailabilityStandard)
		require.NoError(t, err)

		rows := sqlmock.NewRows([]string{"id", "warehouse_code", "sku_code"}).
			AddRow(first.ID, first.WarehouseCode, first.SkuCode).
			AddRow(second.ID, second.WarehouseCode, second.SkuCode)

		mock.ExpectQuery(`SELECT \* FROM "sku_warehouses" WHERE sku_code = \$1 ORDER BY warehouse_code ASC`).
			WithArgs("CC_TEST1").
			WillReturnRows(rows)

		records, err := repo.FindBySku(context.Background(), "CC_TEST1")

		assert.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "WAREHOUSE_1", records[0].WarehouseCode)
		assert.Equal(t, "WAREHOUSE_2", records[1].WarehouseCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSkuWarehouseRepository_Save(t *testing.T) {
	t.Run("updates quantities with matching version", func(t *testing.T) {
		repo, mock, mockDB := newMockSkuWarehouseRepository(t)
		defer mockDB.Close()

		record := newStockRecord(t)
		storedVersion := record.Version

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT "version" FROM "sku_warehouses" WHERE id = \$1`).
			WithArgs(record.ID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(storedVersion))
		mock.ExpectExec(`UPDATE "sku_warehouses" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Save(context.Background(), record)

		assert.NoError(t, err)
		assert.Equal(t, storedVersion+1, record.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns conflict when stored version differs", func(t *testing.T) {
		repo, mock, mockDB := newMockSkuWarehouseRepository(t)
		defer mockDB.Close()

		record := newStockRecord(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT "version" FROM "sku_warehouses" WHERE id = \$1`).
			WithArgs(record.ID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(record.Version + 1))
		mock.ExpectRollback()

		err := repo.Save(context.Background(), record)

		assert.Equal(t, shared.ErrConcurrencyConflict, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns conflict when a concurrent writer wins the update", func(t *testing.T) {
		repo, mock, mockDB := newMockSkuWarehouseRepository(t)
		defer mockDB.Close()

		record := newStockRecord(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT "version" FROM "sku_warehouses" WHERE id = \$1`).
			WithArgs(record.ID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(record.Version))
		mock.ExpectExec(`UPDATE "sku_warehouses" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Save(context.Background(), record)

		assert.Equal(t, shared.ErrConcurrencyConflict, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
