package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/openshop/backend/internal/domain/payment"
)

// PaymentRecord is the persisted trace of one gateway attempt. Payment
// value objects are ephemeral; this table is the audit trail.
type PaymentRecord struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderNumber    string          `gorm:"size:100;not null;index:idx_payment_records_order"`
	DeliveryNumber string          `gorm:"size:100;not null"`
	ShopCode       string          `gorm:"size:50;not null"`
	GatewayLabel   string          `gorm:"size:100;not null"`
	Operation      string          `gorm:"size:30;not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Currency       string          `gorm:"size:3;not null"`
	TransactionRef string          `gorm:"size:100"`
	Result         string          `gorm:"size:30;not null"`
	Message        string          `gorm:"size:500"`
	ProcessedAt    time.Time       `gorm:"not null"`
	CreatedAt      time.Time
}

// TableName returns the table name for PaymentRecord
func (PaymentRecord) TableName() string {
	return "payment_records"
}

// GormPaymentRecorder implements payment.PaymentRecorder with GORM
type GormPaymentRecorder struct {
	db *gorm.DB
}

// NewGormPaymentRecorder creates a new GORM payment recorder
func NewGormPaymentRecorder(db *gorm.DB) *GormPaymentRecorder {
	return &GormPaymentRecorder{db: db}
}

// Record appends one gateway attempt to the audit table
func (r *GormPaymentRecorder) Record(ctx context.Context, pay payment.Payment) error {
	record := PaymentRecord{
		ID:             uuid.New(),
		OrderNumber:    pay.OrderNumber,
		DeliveryNumber: pay.DeliveryNumber,
		ShopCode:       pay.ShopCode,
		GatewayLabel:   pay.GatewayLabel,
		Operation:      string(pay.Operation),
		Amount:         pay.Amount,
		Currency:       pay.Currency,
		TransactionRef: pay.TransactionRef,
		Result:         string(pay.Result),
		Message:        pay.Message,
		ProcessedAt:    pay.ProcessedAt,
	}
	return r.db.WithContext(ctx).Create(&record).Error
}
