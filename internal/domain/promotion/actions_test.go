package promotion

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentOffAction(t *testing.T) {
	action := NewPercentOffAction()

	t.Run("fraction independent of sale total", func(t *testing.T) {
		pctx := NewContext("bob@test.example.com", nil, decimal.NewFromInt(728))
		pctx.ActionContext = "15"

		value, err := action.TestDiscountValue(pctx)
		require.NoError(t, err)
		assert.True(t, value.Equal(decimal.NewFromFloat(0.15)), "value was %s", value)
	})

	t.Run("rounds to four places", func(t *testing.T) {
		pctx := NewContext("bob@test.example.com", nil, decimal.NewFromInt(100))
		pctx.ActionContext = "33.333"

		value, err := action.TestDiscountValue(pctx)
		require.NoError(t, err)
		assert.True(t, value.Equal(decimal.NewFromFloat(0.3333)), "value was %s", value)
	})

	t.Run("perform accumulates discount and code", func(t *testing.T) {
		pctx := NewContext("bob@test.example.com", nil, decimal.NewFromInt(100))
		pctx.ActionContext = "10"
		pctx.AppliedCode = "SALE10"

		require.NoError(t, action.Perform(pctx))

		assert.True(t, pctx.Discount.Equal(decimal.NewFromFloat(0.10)))
		assert.Equal(t, []string{"SALE10"}, pctx.AppliedCodes)
	})

	t.Run("non-numeric context rejected", func(t *testing.T) {
		pctx := NewContext("bob@test.example.com", nil, decimal.NewFromInt(100))
		pctx.ActionContext = "fifteen"

		_, err := action.TestDiscountValue(pctx)
		assert.Error(t, err)
	})
}

func TestAmountOffAction(t *testing.T) {
	action := NewAmountOffAction()

	t.Run("fraction relative to sale total", func(t *testing.T) {
		pctx := NewContext("bob@test.example.com", nil, decimal.NewFromInt(200))
		pctx.ActionContext = "50"

		value, err := action.TestDiscountValue(pctx)
		require.NoError(t, err)
		assert.True(t, value.Equal(decimal.NewFromFloat(0.25)), "value was %s", value)
	})

	t.Run("rounds half up", func(t *testing.T) {
		pctx := NewContext("bob@test.example.com", nil, decimal.NewFromInt(3))
		pctx.ActionContext = "1"

		value, err := action.TestDiscountValue(pctx)
		require.NoError(t, err)
		assert.True(t, value.Equal(decimal.NewFromFloat(0.3333)), "value was %s", value)
	})

	t.Run("zero sale total yields zero", func(t *testing.T) {
		pctx := NewContext("bob@test.example.com", nil, decimal.Zero)
		pctx.ActionContext = "50"

		value, err := action.TestDiscountValue(pctx)
		require.NoError(t, err)
		assert.True(t, value.IsZero())
	})
}

func TestActionFor(t *testing.T) {
	tests := []struct {
		actionType ActionType
		wantErr    bool
	}{
		{ActionTypePercentOff, false},
		{ActionTypeAmountOff, false},
		{ActionType("BOGOF"), true},
		{ActionType(""), true},
	}

	for _, tt := range tests {
		t.Run(string(tt.actionType), func(t *testing.T) {
			action, err := ActionFor(tt.actionType)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, action)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, action)
			}
		})
	}
}
