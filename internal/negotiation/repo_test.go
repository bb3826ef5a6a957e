package negotiation

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

	"github.com/procureflow/procureflow-backend/pkg/db/models"
	"github.com/procureflow/procureflow-backend/pkg/enums"
)

func setupThreadTestDB(t *testing.T) *gorm.DB {
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

func seedThreadOrder(t *testing.T, db *gorm.DB, requester, vendor uuid.UUID) *models.PurchaseOrder {
	t.Helper()

	order := &models.PurchaseOrder{
		ID:                uuid.New(),
		OrderNumber:       "PO-" + uuid.NewString()[:8],
		MaterialRequestID: uuid.New(),
		VendorID:          vendor,
		RequesterID:       requester,
		Status:            enums.OrderStatusInNegotiation,
		Currency:          enums.CurrencyUSD,
		DeliveryStatus:    enums.DeliveryStatusPending,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func seedMessage(t *testing.T, db *gorm.DB, order *models.PurchaseOrder, sender uuid.UUID, role enums.ActorRole, body string, created time.Time) *models.OrderMessage {
	t.Helper()

	message := &models.OrderMessage{
		ID:         uuid.New(),
		OrderID:    order.ID,
		SenderID:   sender,
		SenderRole: role,
		Type:       enums.MessageTypeText,
		Body:       &body,
		CreatedAt:  created,
	}
	require.NoError(t, db.Create(message).Error)
	return message
}

func TestRepositoryListMessages_threadOrder(t *testing.T) {
	db := setupThreadTestDB(t)
	repo := NewRepository(db)

	requester := uuid.New()
	vendor := uuid.New()
	order := seedThreadOrder(t, db, requester, vendor)
	other := seedThreadOrder(t, db, uuid.New(), uuid.New())

	now := time.Now().UTC()
	seedMessage(t, db, order, vendor, enums.ActorRoleVendor, "second", now)
	seedMessage(t, db, order, requester, enums.ActorRoleOwner, "first", now.Add(-time.Minute))
	seedMessage(t, db, other, uuid.New(), enums.ActorRoleVendor, "elsewhere", now)

	messages, err := repo.ListMessages(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "first", *messages[0].Body)
	assert.Equal(t, "second", *messages[1].Body)
}

func TestRepositoryMarkRead_stampsCounterpartMessages(t *testing.T) {
	db := setupThreadTestDB(t)
	repo := NewRepository(db)

	requester := uuid.New()
	vendor := uuid.New()
	order := seedThreadOrder(t, db, requester, vendor)

	now := time.Now().UTC()
	fromVendor := seedMessage(t, db, order, vendor, enums.ActorRoleVendor, "offer", now.Add(-2*time.Minute))
	fromOwner := seedMessage(t, db, order, requester, enums.ActorRoleOwner, "question", now.Add(-time.Minute))

	affected, err := repo.MarkRead(context.Background(), order.ID, enums.ActorRoleOwner, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	var reloaded models.OrderMessage
	require.NoError(t, db.First(&reloaded, "id = ?", fromVendor.ID).Error)
	assert.NotNil(t, reloaded.ReadByOwnerAt)

	var reloadedOwner models.OrderMessage
	require.NoError(t, db.First(&reloadedOwner, "id = ?", fromOwner.ID).Error)
	assert.Nil(t, reloadedOwner.ReadByOwnerAt)

	// Second pass finds nothing unread.
	affected, err = repo.MarkRead(context.Background(), order.ID, enums.ActorRoleOwner, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestRepositoryUpdateQuotationStatusGuarded(t *testing.T) {
	db := setupThreadTestDB(t)
	repo := NewRepository(db)

	requester := uuid.New()
	vendor := uuid.New()
	order := seedThreadOrder(t, db, requester, vendor)

	pending := enums.QuotationStatusPending
	quotation := &models.OrderMessage{
		ID:              uuid.New(),
		OrderID:         order.ID,
		SenderID:        vendor,
		SenderRole:      enums.ActorRoleVendor,
		Type:            enums.MessageTypeQuotation,
		Payload:         []byte(`{"amount":"1250.00","currency":"USD"}`),
		QuotationStatus: &pending,
	}
	require.NoError(t, db.Create(quotation).Error)

	affected, err := repo.UpdateQuotationStatusGuarded(context.Background(), quotation.ID,
		enums.QuotationStatusPending, enums.QuotationStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	// Guard refuses a second transition off pending.
	affected, err = repo.UpdateQuotationStatusGuarded(context.Background(), quotation.ID,
		enums.QuotationStatusPending, enums.QuotationStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	var reloaded models.OrderMessage
	require.NoError(t, db.First(&reloaded, "id = ?", quotation.ID).Error)
	require.NotNil(t, reloaded.QuotationStatus)
	assert.Equal(t, enums.QuotationStatusAccepted, *reloaded.QuotationStatus)
}

func TestRepositoryUpdateOrderGuarded_statusWindow(t *testing.T) {
	db := setupThreadTestDB(t)
	repo := NewRepository(db)

	order := seedThreadOrder(t, db, uuid.New(), uuid.New())

	affected, err := repo.UpdateOrderGuarded(context.Background(), order.ID,
		[]enums.OrderStatus{enums.OrderStatusInNegotiation},
		map[string]any{"status": enums.OrderStatusAccepted, "chat_closed": true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = repo.UpdateOrderGuarded(context.Background(), order.ID,
		[]enums.OrderStatus{enums.OrderStatusInNegotiation},
		map[string]any{"status": enums.OrderStatusAccepted})
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestRepositoryPriceLineItems(t *testing.T) {
	db := setupThreadTestDB(t)
	repo := NewRepository(db)

	order := seedThreadOrder(t, db, uuid.New(), uuid.New())
	items := []models.OrderLineItem{
		{ID: uuid.New(), OrderID: order.ID, MaterialName: "Rebar 12mm", Quantity: 50, Unit: "pcs"},
		{ID: uuid.New(), OrderID: order.ID, MaterialName: "Cement", Quantity: 100, Unit: "bags"},
	}
	require.NoError(t, db.Create(&items).Error)

	err := repo.PriceLineItems(context.Background(), order.ID, []LineItemPrice{
		{
			MaterialName: "Rebar 12mm",
			UnitPrice:    decimal.RequireFromString("1000.00"),
			LineTotal:    decimal.RequireFromString("50000.00"),
		},
	})
	require.NoError(t, err)

	var priced models.OrderLineItem
	require.NoError(t, db.Where("order_id = ? AND material_name = ?", order.ID, "Rebar 12mm").First(&priced).Error)
	require.NotNil(t, priced.UnitPrice)
	assert.True(t, priced.UnitPrice.Equal(decimal.RequireFromString("1000.00")))
	require.NotNil(t, priced.LineTotal)
	assert.True(t, priced.LineTotal.Equal(decimal.RequireFromString("50000.00")))

	var untouched models.OrderLineItem
	require.NoError(t, db.Where("order_id = ? AND material_name = ?", order.ID, "Cement").First(&untouched).Error)
	assert.Nil(t, untouched.UnitPrice)
	assert.Nil(t, untouched.LineTotal)
}
