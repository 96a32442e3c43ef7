package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateProposalCache busts the cached proposal and every top-rated
// parameterization. Any proposal mutation can change the top-rated listing.
func InvalidateProposalCache(ctx context.Context, cm *CacheManager, proposalID uint) {
	SafeDelete(ctx, cm.Proposal, fmt.Sprintf("id:%d", proposalID))
	SafeInvalidatePattern(ctx, cm.TopRated, "*")
}

// InvalidateReviewCache busts aggregates affected by a review change.
func InvalidateReviewCache(ctx context.Context, cm *CacheManager, proposalID uint) {
	SafeDelete(ctx, cm.Proposal, fmt.Sprintf("id:%d", proposalID))
	SafeInvalidatePattern(ctx, cm.TopRated, "*")
}

// InvalidateTagCache busts the cached tag listings.
func InvalidateTagCache(ctx context.Context, cm *CacheManager) {
	SafeInvalidatePattern(ctx, cm.Tag, "list:*")
}

// InvalidateUserCache busts a cached user profile.
func InvalidateUserCache(ctx context.Context, cm *CacheManager, userID uint) {
	SafeDelete(ctx, cm.User, fmt.Sprintf("id:%d", userID))
}
