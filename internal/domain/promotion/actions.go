package promotion

import (
	"github.com/openshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// discountScale is the precision of discount fractions
const discountScale = 4

var oneHundred = decimal.NewFromInt(100)

// PercentOffAction discounts a percentage of the sale price. The
// percentage comes from the promotion's raw action context, so the
// resulting fraction is pct/100 regardless of the sale total.
type PercentOffAction struct{}

// NewPercentOffAction creates a percent-off action
func NewPercentOffAction() *PercentOffAction {
	return &PercentOffAction{}
}

// TestDiscountValue implements Action
func (a *PercentOffAction) TestDiscountValue(pctx *Context) (decimal.Decimal, error) {
	pct, err := decimal.NewFromString(pctx.ActionContext)
	if err != nil {
		return decimal.Zero, shared.NewDomainError("INVALID_ACTION_CONTEXT", "Percent-off context is not a number")
	}
	return pct.Div(oneHundred).Round(discountScale), nil
}

// Perform implements Action
func (a *PercentOffAction) Perform(pctx *Context) error {
	value, err := a.TestDiscountValue(pctx)
	if err != nil {
		return err
	}
	apply(pctx, value)
	return nil
}

// AmountOffAction discounts an absolute amount. The discount fraction is
// the amount divided by the sale price, rounded half-up, so it can be
// compared with percentage discounts when buckets compete.
type AmountOffAction struct{}

// NewAmountOffAction creates an amount-off action
func NewAmountOffAction() *AmountOffAction {
	return &AmountOffAction{}
}

// TestDiscountValue implements Action
func (a *AmountOffAction) TestDiscountValue(pctx *Context) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(pctx.ActionContext)
	if err != nil {
		return decimal.Zero, shared.NewDomainError("INVALID_ACTION_CONTEXT", "Amount-off context is not a number")
	}
	if pctx.SaleTotal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, nil
	}
	// DivRound is half-up for positive operands
	return amount.DivRound(pctx.SaleTotal, discountScale), nil
}

// Perform implements Action
func (a *AmountOffAction) Perform(pctx *Context) error {
	value, err := a.TestDiscountValue(pctx)
	if err != nil {
		return err
	}
	apply(pctx, value)
	return nil
}

// ActionFor resolves the action bound to a promotion's action type
func ActionFor(actionType ActionType) (Action, error) {
	switch actionType {
	case ActionTypePercentOff:
		return NewPercentOffAction(), nil
	case ActionTypeAmountOff:
		return NewAmountOffAction(), nil
	default:
		return nil, shared.NewDomainError("INVALID_ACTION_TYPE", "Unknown promotion action type")
	}
}

func apply(pctx *Context, value decimal.Decimal) {
	pctx.Discount = pctx.Discount.Add(value)
	if pctx.AppliedCode != "" {
		pctx.AppliedCodes = append(pctx.AppliedCodes, pctx.AppliedCode)
	}
}
