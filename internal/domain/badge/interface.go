package badge

import (
	"context"

	"github.com/koinonia-lab/backend/internal/entity"
)

type MetricCounter interface {
	// Criteria returns the criteria type measured by this counter.
	Criteria() entity.BadgeCriteria

	// Count returns the current value of the metric for the user.
	Count(ctx context.Context, userID string) (int64, error)
}
