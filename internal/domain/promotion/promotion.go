package promotion

import (
	"context"
	"time"

	"github.com/openshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ActionType names the discount calculation bound to a promotion
type ActionType string

const (
	ActionTypePercentOff ActionType = "PERCENT_OFF"
	ActionTypeAmountOff  ActionType = "AMOUNT_OFF"
)

// Promotion is a configured discount campaign. ActionContext carries the
// raw action parameter (a percentage or amount encoded as string) that the
// bound Action interprets. Promotions sharing a bucket are mutually
// exclusive; at most one per bucket applies.
type Promotion struct {
	shared.BaseEntity
	Code            string `gorm:"not null;uniqueIndex"`
	ShopCode        string `gorm:"not null;index"`
	CouponTriggered bool   `gorm:"not null;default:false"`
	ActionType      ActionType
	ActionContext   string
	Bucket          int  `gorm:"not null;default:0"`
	Enabled         bool `gorm:"not null;default:true"`
	EnabledFrom     *time.Time
	EnabledTo       *time.Time
}

// TableName returns the table name for GORM
func (Promotion) TableName() string {
	return "promotions"
}

// NewPromotion creates a new promotion
func NewPromotion(code, shopCode, actionContext string, couponTriggered bool) (*Promotion, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Promotion code cannot be empty")
	}
	if shopCode == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop code cannot be empty")
	}
	return &Promotion{
		BaseEntity:      shared.NewBaseEntity(),
		Code:            code,
		ShopCode:        shopCode,
		CouponTriggered: couponTriggered,
		ActionContext:   actionContext,
		Enabled:         true,
	}, nil
}

// IsActive returns true if the promotion can apply at the given time
func (p *Promotion) IsActive(at time.Time) bool {
	if !p.Enabled {
		return false
	}
	if p.EnabledFrom != nil && at.Before(*p.EnabledFrom) {
		return false
	}
	if p.EnabledTo != nil && at.After(*p.EnabledTo) {
		return false
	}
	return true
}

// Context is the pricing context promotions are evaluated against.
// Discount values are dimensionless fractions relative to SaleTotal.
type Context struct {
	CustomerEmail string
	CouponCodes   []string
	SaleTotal     decimal.Decimal

	// Per-triplet evaluation state, set by the application strategy
	Promotion     *Promotion
	ActionContext string
	AppliedCode   string

	// Accumulated results written by Action.Perform
	Discount     decimal.Decimal
	AppliedCodes []string
}

// NewContext creates a pricing context for a cart total
func NewContext(customerEmail string, couponCodes []string, saleTotal decimal.Decimal) *Context {
	return &Context{
		CustomerEmail: customerEmail,
		CouponCodes:   couponCodes,
		SaleTotal:     saleTotal,
		Discount:      decimal.Zero,
	}
}

// Condition is the eligibility predicate of a promotion
type Condition interface {
	// IsEligible evaluates the predicate against the pricing context
	IsEligible(ctx context.Context, pctx *Context) (bool, error)
}

// Action computes and applies a promotion's discount
type Action interface {
	// TestDiscountValue returns the discount this action would yield as a
	// fraction relative to sale price, without side effects
	TestDiscountValue(pctx *Context) (decimal.Decimal, error)
	// Perform applies the discount to the pricing context
	Perform(pctx *Context) error
}

// PromoTriplet bundles a promotion with its condition and action
type PromoTriplet struct {
	Promotion *Promotion
	Condition Condition
	Action    Action
}

// ConditionFunc adapts a function to the Condition interface
type ConditionFunc func(ctx context.Context, pctx *Context) (bool, error)

// IsEligible implements Condition
func (f ConditionFunc) IsEligible(ctx context.Context, pctx *Context) (bool, error) {
	return f(ctx, pctx)
}

// Always is a condition that is always eligible
func Always() Condition {
	return ConditionFunc(func(context.Context, *Context) (bool, error) {
		return true, nil
	})
}
