package testutil

import (
	"context"

	"github.com/koinonia-lab/backend/internal/entity"
	"github.com/koinonia-lab/backend/pkg/errorx"
)

type MockMetricCounter struct {
	CriteriaValue entity.BadgeCriteria
	CountFunc     func(ctx context.Context, userID string) (int64, error)
}

func (m *MockMetricCounter) Criteria() entity.BadgeCriteria {
	return m.CriteriaValue
}

func (m *MockMetricCounter) Count(ctx context.Context, userID string) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx, userID)
	}

	return 0, errorx.New(errorx.NotImplemented, "Not implemented")
}
