package inventory

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/shopspring/decimal"
)

// resolverStripes is the number of mutex stripes guarding stock rows.
// Two concurrent reservations of the same warehouse-SKU pair always land
// on the same stripe; unrelated rows proceed in parallel.
const resolverStripes = 64

// Resolver is the domain service that looks up and mutates stock records.
// Reservation mutations for one warehouse-SKU row are serialized through a
// striped mutex so concurrent orders cannot oversell a row, without
// serializing the whole order pipeline.
type Resolver struct {
	repo    SkuWarehouseRepository
	stripes [resolverStripes]sync.Mutex
}

// NewResolver creates a new inventory resolver
func NewResolver(repo SkuWarehouseRepository) *Resolver {
	return &Resolver{repo: repo}
}

// FindByWarehouseSku finds the stock record for a warehouse-SKU pair
func (r *Resolver) FindByWarehouseSku(ctx context.Context, warehouseCode, skuCode string) (*SkuWarehouse, error) {
	return r.repo.FindByWarehouseSku(ctx, warehouseCode, skuCode)
}

// Reservation holds quantity for a pending order and returns the remainder
// that could not be reserved. A positive remainder means out of stock;
// with backorderAllowed the remainder is always zero.
func (r *Resolver) Reservation(ctx context.Context, warehouseCode, skuCode string, quantity decimal.Decimal, backorderAllowed bool) (decimal.Decimal, error) {
	return r.mutate(ctx, warehouseCode, skuCode, func(record *SkuWarehouse) (decimal.Decimal, error) {
		return record.Reserve(quantity, backorderAllowed)
	})
}

// ReleaseReservation returns held quantity back to available-to-sell
func (r *Resolver) ReleaseReservation(ctx context.Context, warehouseCode, skuCode string, quantity decimal.Decimal) (decimal.Decimal, error) {
	return r.mutate(ctx, warehouseCode, skuCode, func(record *SkuWarehouse) (decimal.Decimal, error) {
		return record.ReleaseReservation(quantity)
	})
}

// DebitReservation consumes held quantity on shipment
func (r *Resolver) DebitReservation(ctx context.Context, warehouseCode, skuCode string, quantity decimal.Decimal) (decimal.Decimal, error) {
	return r.mutate(ctx, warehouseCode, skuCode, func(record *SkuWarehouse) (decimal.Decimal, error) {
		return record.DebitReservation(quantity)
	})
}

// mutate loads the row under its stripe lock, applies fn and saves
func (r *Resolver) mutate(ctx context.Context, warehouseCode, skuCode string, fn func(*SkuWarehouse) (decimal.Decimal, error)) (decimal.Decimal, error) {
	stripe := &r.stripes[stripeIndex(warehouseCode, skuCode)]
	stripe.Lock()
	defer stripe.Unlock()

	record, err := r.repo.FindByWarehouseSku(ctx, warehouseCode, skuCode)
	if err != nil {
		return decimal.Zero, err
	}

	remainder, err := fn(record)
	if err != nil {
		return decimal.Zero, err
	}

	if err := r.repo.Save(ctx, record); err != nil {
		return decimal.Zero, err
	}

	return remainder, nil
}

func stripeIndex(warehouseCode, skuCode string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(warehouseCode))
	h.Write([]byte{':'})
	h.Write([]byte(skuCode))
	return h.Sum32() % resolverStripes
}
