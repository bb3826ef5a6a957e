package delivery

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgdb "github.com/procureflow/procureflow-backend/pkg/db"
	"github.com/procureflow/procureflow-backend/pkg/db/models"
	"github.com/procureflow/procureflow-backend/pkg/enums"
)

func setupDeliveryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS purchase_orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  material_request_id TEXT NOT NULL,
  vendor_id TEXT NOT NULL,
  requester_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'sent',
  currency TEXT NOT NULL DEFAULT 'USD',
  chat_closed INTEGER NOT NULL DEFAULT 0,
  accepted_quotation_id TEXT,
  agreed_total NUMERIC,
  delivery_status TEXT NOT NULL DEFAULT 'pending',
  expected_delivery_date DATETIME,
  carrier TEXT,
  tracking_number TEXT,
  delivery_note TEXT,
  delivered_at DATETIME,
  cancelled_at DATETIME,
  cancel_reason TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (material_request_id, vendor_id)
);`,
		`CREATE TABLE IF NOT EXISTS invoices (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL UNIQUE,
  invoice_number TEXT NOT NULL UNIQUE,
  amount NUMERIC NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  issued_at DATETIME NOT NULL,
  due_date DATETIME,
  notes TEXT,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS order_messages (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  sender_id TEXT NOT NULL,
  sender_role TEXT NOT NULL,
  type TEXT NOT NULL,
  body TEXT,
  payload TEXT,
  quotation_status TEXT,
  reply_to_id TEXT,
  read_by_owner_at DATETIME,
  read_by_vendor_at DATETIME,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS order_line_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  request_item_id TEXT,
  material_name TEXT NOT NULL,
  specification TEXT,
  quantity INTEGER NOT NULL,
  unit TEXT NOT NULL,
  unit_price NUMERIC,
  line_total NUMERIC,
  delivered_quantity INTEGER NOT NULL DEFAULT 0,
  delivery_status TEXT NOT NULL DEFAULT 'pending',
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedAcceptedOrder(t *testing.T, db *gorm.DB, vendor uuid.UUID) *models.PurchaseOrder {
	t.Helper()

	total := decimal.RequireFromString("500.00")
	order := &models.PurchaseOrder{
		ID:                uuid.New(),
		OrderNumber:       "PO-" + uuid.NewString()[:8],
		MaterialRequestID: uuid.New(),
		VendorID:          vendor,
		RequesterID:       uuid.New(),
		Status:            enums.OrderStatusAccepted,
		Currency:          enums.CurrencyUSD,
		ChatClosed:        true,
		AgreedTotal:       &total,
		DeliveryStatus:    enums.DeliveryStatusPending,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestRepositorySubmitTransition(t *testing.T) {
	db := setupDeliveryTestDB(t)
	repo := NewRepository(db)

	vendor := uuid.New()
	order := seedAcceptedOrder(t, db, vendor)

	expected := time.Now().UTC().Add(48 * time.Hour)
	affected, err := repo.UpdateOrderGuarded(context.Background(), order.ID,
		[]enums.OrderStatus{enums.OrderStatusAccepted},
		map[string]any{
			"status":                 enums.OrderStatusInProgress,
			"expected_delivery_date": expected,
			"carrier":                "DHL",
		})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	// Guard refuses the same transition twice.
	affected, err = repo.UpdateOrderGuarded(context.Background(), order.ID,
		[]enums.OrderStatus{enums.OrderStatusAccepted},
		map[string]any{"status": enums.OrderStatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	reloaded, err := repo.FindOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusInProgress, reloaded.Status)
	require.NotNil(t, reloaded.Carrier)
	assert.Equal(t, "DHL", *reloaded.Carrier)
}

func TestRepositoryDeliveredFillsLineItems(t *testing.T) {
	db := setupDeliveryTestDB(t)
	repo := NewRepository(db)

	order := seedAcceptedOrder(t, db, uuid.New())
	items := []models.OrderLineItem{
		{ID: uuid.New(), OrderID: order.ID, MaterialName: "Rebar 12mm", Quantity: 50, Unit: "pcs"},
		{ID: uuid.New(), OrderID: order.ID, MaterialName: "Cement", Quantity: 100, Unit: "bags"},
	}
	require.NoError(t, db.Create(&items).Error)

	require.NoError(t, repo.UpdateLineItemsDelivery(context.Background(), order.ID, enums.DeliveryStatusInTransit))

	var reloaded []models.OrderLineItem
	require.NoError(t, db.Where("order_id = ?", order.ID).Find(&reloaded).Error)
	for _, item := range reloaded {
		assert.Equal(t, enums.DeliveryStatusInTransit, item.DeliveryStatus)
		assert.Equal(t, 0, item.DeliveredQuantity)
	}

	require.NoError(t, repo.UpdateLineItemsDelivery(context.Background(), order.ID, enums.DeliveryStatusDelivered))

	require.NoError(t, db.Where("order_id = ?", order.ID).Order("material_name").Find(&reloaded).Error)
	require.Len(t, reloaded, 2)
	assert.Equal(t, enums.DeliveryStatusDelivered, reloaded[0].DeliveryStatus)
	assert.Equal(t, 100, reloaded[0].DeliveredQuantity)
	assert.Equal(t, 50, reloaded[1].DeliveredQuantity)
}

func TestRepositoryOneInvoicePerOrder(t *testing.T) {
	db := setupDeliveryTestDB(t)
	repo := NewRepository(db)

	order := seedAcceptedOrder(t, db, uuid.New())

	first := &models.Invoice{
		ID:            uuid.New(),
		OrderID:       order.ID,
		InvoiceNumber: "INV-1",
		Amount:        decimal.RequireFromString("500.00"),
		Currency:      enums.CurrencyUSD,
		IssuedAt:      time.Now().UTC(),
	}
	require.NoError(t, repo.CreateInvoice(context.Background(), first))

	second := &models.Invoice{
		ID:            uuid.New(),
		OrderID:       order.ID,
		InvoiceNumber: "INV-2",
		Amount:        decimal.RequireFromString("500.00"),
		Currency:      enums.CurrencyUSD,
		IssuedAt:      time.Now().UTC(),
	}
	err := repo.CreateInvoice(context.Background(), second)
	require.Error(t, err)
	assert.True(t, pkgdb.IsUniqueViolation(err, "order_id"))

	found, err := repo.FindInvoiceByOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "INV-1", found.InvoiceNumber)
}

func TestRepositoryFindOrderPreloadsInvoice(t *testing.T) {
	db := setupDeliveryTestDB(t)
	repo := NewRepository(db)

	order := seedAcceptedOrder(t, db, uuid.New())
	invoice := &models.Invoice{
		ID:            uuid.New(),
		OrderID:       order.ID,
		InvoiceNumber: "INV-9",
		Amount:        decimal.RequireFromString("500.00"),
		Currency:      enums.CurrencyUSD,
		IssuedAt:      time.Now().UTC(),
	}
	require.NoError(t, repo.CreateInvoice(context.Background(), invoice))

	reloaded, err := repo.FindOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.Invoice)
	assert.Equal(t, "INV-9", reloaded.Invoice.InvoiceNumber)
}
