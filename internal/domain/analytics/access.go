// internal/domain/analytics/access.go
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/furnishop/furniture-backend/internal/pkg/docstore"
	"github.com/sirupsen/logrus"
)

// AccessTracker counts app opens per user
type AccessTracker struct {
	store  docstore.Store
	logger *logrus.Logger
	now    func() time.Time
}

// NewAccessTracker creates a new access tracker
func NewAccessTracker(store docstore.Store, logger *logrus.Logger) *AccessTracker {
	return &AccessTracker{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// RecordAccess bumps the user's access counter, creating it on first access
func (t *AccessTracker) RecordAccess(ctx context.Context, userID string) error {
	err := t.store.Increment(ctx, AccessCollection, userID, "accessCount", 1, docstore.Fields{
		"lastAccessed": t.now(),
		"userId":       userID,
	})
	if err != nil {
		t.logger.WithError(err).WithField("user_id", userID).Error("Failed to record access")
		return fmt.Errorf("failed to record access: %w", err)
	}
	return nil
}
