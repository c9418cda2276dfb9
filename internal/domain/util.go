package domain

import (
	"context"

	"github.com/koinonia-lab/backend/internal/domain/streak"
	"github.com/koinonia-lab/backend/internal/entity"
	"github.com/koinonia-lab/backend/pkg/xcontext"
	"github.com/microcosm-cc/bluemonday"
)

type EventLogger interface {
	LogEvent(ctx context.Context, userID string, eventType entity.StreakEventType) (*streak.LogEventResult, error)
}

var textPolicy = bluemonday.StrictPolicy()

// sanitize strips every html tag of a user provided text.
func sanitize(s string) string {
	return textPolicy.Sanitize(s)
}

// accrue logs the event after the primary write succeeded. The primary write
// is never rolled back because of a failed accrual.
func accrue(ctx context.Context, eventLogger EventLogger, userID string, eventType entity.StreakEventType) {
	if _, err := eventLogger.LogEvent(ctx, userID, eventType); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot log %s event of user %s: %v", eventType, userID, err)
	}
}
