package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/openshop/backend/internal/domain/order"
	"github.com/openshop/backend/internal/domain/shared"
)

// newMockOrderRepository creates a GormOrderRepository with a mocked SQL connection
func newMockOrderRepository(t *testing.T) (*GormOrderRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormOrderRepository(gormDB), mock, mockDB
}

func orderRows(ord *order.Order) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "order_number", "shop_code", "customer_email", "currency", "status", "version"}).
		AddRow(ord.ID, ord.OrderNumber, ord.ShopCode, ord.CustomerEmail, ord.Currency, string(ord.Status), ord.Version)
}

func newPersistedOrder(t *testing.T) *order.Order {
	t.Helper()
	ord, err := order.NewOrder("SHOP10-2026-00001", "SHOP10", "bob@test.example.com", "EUR")
	require.NoError(t, err)
	return ord
}

func TestGormOrderRepository_FindByID(t *testing.T) {
	t.Run("finds existing order", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		ord := newPersistedOrder(t)

		mock.ExpectQuery(`SELECT \* FROM "customer_orders" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(ord.ID, 1).
			WillReturnRows(orderRows(ord))
		mock.ExpectQuery(`SELECT \* FROM "order_deliveries"`).
			WithArgs(ord.ID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "delivery_number"}))

		found, err := repo.FindByID(context.Background(), ord.ID)

		assert.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, ord.ID, found.ID)
		assert.Equal(t, "SHOP10-2026-00001", found.OrderNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for non-existent order", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		orderID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "customer_orders" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(orderID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		found, err := repo.FindByID(context.Background(), orderID)

		assert.Nil(t, found)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_FindByOrderNumber(t *testing.T) {
	t.Run("finds order by number", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		ord := newPersistedOrder(t)

		mock.ExpectQuery(`SELECT \* FROM "customer_orders" WHERE order_number = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(ord.OrderNumber, 1).
			WillReturnRows(orderRows(ord))
		mock.ExpectQuery(`SELECT \* FROM "order_deliveries"`).
			WithArgs(ord.ID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "delivery_number"}))

		found, err := repo.FindByOrderNumber(context.Background(), ord.OrderNumber)

		assert.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, ord.OrderNumber, found.OrderNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for unknown number", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "customer_orders" WHERE order_number = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("SHOP10-2026-99999", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		found, err := repo.FindByOrderNumber(context.Background(), "SHOP10-2026-99999")

		assert.Nil(t, found)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_FindByCustomerEmail(t *testing.T) {
	t.Run("returns the customer's orders", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		first := newPersistedOrder(t)
		second, err := order.NewOrder("SHOP10-2026-00002", "SHOP10", "bob@test.example.com", "EUR")
		require.NoError(t, err)

		rows := orderRows(first).
			AddRow(second.ID, second.OrderNumber, second.ShopCode, second.CustomerEmail, second.Currency, string(second.Status), second.Version)

		mock.ExpectQuery(`SELECT \* FROM "customer_orders" WHERE customer_email = \$1 ORDER BY created_at DESC`).
			WithArgs("bob@test.example.com").
			WillReturnRows(rows)
		mock.ExpectQuery(`SELECT \* FROM "order_deliveries"`).
			WithArgs(first.ID, second.ID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "delivery_number"}))

		orders, err := repo.FindByCustomerEmail(context.Background(), "bob@test.example.com")

		assert.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, "SHOP10-2026-00001", orders[0].OrderNumber)
		assert.Equal(t, "SHOP10-2026-00002", orders[1].OrderNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns empty slice when customer has no orders", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "customer_orders" WHERE customer_email = \$1 ORDER BY created_at DESC`).
			WithArgs("nobody@test.example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_number"}))

		orders, err := repo.FindByCustomerEmail(context.Background(), "nobody@test.example.com")

		assert.NoError(t, err)
		assert.Empty(t, orders)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_Save(t *testing.T) {
	t.Run("creates order on first save", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		ord := newPersistedOrder(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT "version" FROM "customer_orders" WHERE id = \$1`).
			WithArgs(ord.ID, 1).
			WillReturnError(gorm.ErrRecordNotFound)
		// All columns are assigned on the model, so GORM issues a plain Exec
		// without a RETURNING clause
		mock.ExpectExec(`INSERT INTO "customer_orders"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Save(context.Background(), ord)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("updates existing order with matching version", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		ord := newPersistedOrder(t)
		storedVersion := ord.Version

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT "version" FROM "customer_orders" WHERE id = \$1`).
			WithArgs(ord.ID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(storedVersion))
		mock.ExpectExec(`UPDATE "customer_orders" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM "order_deliveries" WHERE order_id = \$1`).
			WithArgs(ord.ID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.Save(context.Background(), ord)

		assert.NoError(t, err)
		assert.Equal(t, storedVersion+1, ord.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns conflict when stored version differs", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		ord := newPersistedOrder(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT "version" FROM "customer_orders" WHERE id = \$1`).
			WithArgs(ord.ID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(ord.Version + 1))
		mock.ExpectRollback()

		err := repo.Save(context.Background(), ord)

		assert.Equal(t, shared.ErrConcurrencyConflict, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns conflict when a concurrent writer wins the update", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		ord := newPersistedOrder(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT "version" FROM "customer_orders" WHERE id = \$1`).
			WithArgs(ord.ID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(ord.Version))
		mock.ExpectExec(`UPDATE "customer_orders" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Save(context.Background(), ord)

		assert.Equal(t, shared.ErrConcurrencyConflict, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_GenerateOrderNumber(t *testing.T) {
	year := time.Now().Year()

	t.Run("starts at one for a shop's first order", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "customer_orders" WHERE shop_code = \$1 AND order_number LIKE \$2`).
			WithArgs("SHOP10", fmt.Sprintf("SHOP10-%d-%%", year), 1).
			WillReturnError(gorm.ErrRecordNotFound)

		number, err := repo.GenerateOrderNumber(context.Background(), "SHOP10")

		assert.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("SHOP10-%d-00001", year), number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("increments the highest existing number", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		lastNumber := fmt.Sprintf("SHOP10-%d-00041", year)
		rows := sqlmock.NewRows([]string{"id", "order_number"}).
			AddRow(uuid.New(), lastNumber)

		mock.ExpectQuery(`SELECT \* FROM "customer_orders" WHERE shop_code = \$1 AND order_number LIKE \$2`).
			WithArgs("SHOP10", fmt.Sprintf("SHOP10-%d-%%", year), 1).
			WillReturnRows(rows)

		number, err := repo.GenerateOrderNumber(context.Background(), "SHOP10")

		assert.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("SHOP10-%d-00042", year), number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
