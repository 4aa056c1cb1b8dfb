package promotion

import (
	"context"
	"time"

	"github.com/openshop/backend/internal/domain/promotion"
	"go.uber.org/zap"
)

// RepositoryBucketProvider builds promotion buckets from stored promotion
// rows: promotions sharing a bucket number compete with each other, and
// the strategy picks at most one winner per bucket.
type RepositoryBucketProvider struct {
	promotions promotion.PromotionRepository
	logger     *zap.Logger
}

// NewRepositoryBucketProvider creates a bucket provider over the promotion repository
func NewRepositoryBucketProvider(promotions promotion.PromotionRepository, logger *zap.Logger) *RepositoryBucketProvider {
	return &RepositoryBucketProvider{
		promotions: promotions,
		logger:     logger,
	}
}

// Buckets returns the active promotion triplets of a shop grouped by
// bucket, preserving the repository's bucket ordering
func (p *RepositoryBucketProvider) Buckets(ctx context.Context, shopCode string) ([][]promotion.PromoTriplet, error) {
	promos, err := p.promotions.FindActiveByShop(ctx, shopCode, time.Now())
	if err != nil {
		return nil, err
	}

	var buckets [][]promotion.PromoTriplet
	var current []promotion.PromoTriplet
	currentBucket := -1

	for idx := range promos {
		promo := &promos[idx]

		action, err := promotion.ActionFor(promo.ActionType)
		if err != nil {
			// A misconfigured promotion must not block checkout
			p.logger.Warn("promotion has unknown action type, skipping",
				zap.String("promo_code", promo.Code),
				zap.String("action_type", string(promo.ActionType)),
			)
			continue
		}

		if promo.Bucket != currentBucket {
			if len(current) > 0 {
				buckets = append(buckets, current)
			}
			current = nil
			currentBucket = promo.Bucket
		}

		current = append(current, promotion.PromoTriplet{
			Promotion: promo,
			Condition: promotion.Always(),
			Action:    action,
		})
	}
	if len(current) > 0 {
		buckets = append(buckets, current)
	}

	return buckets, nil
}
