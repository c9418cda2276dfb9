package common

import (
	"context"

	"github.com/koinonia-lab/backend/pkg/errorx"
	"github.com/koinonia-lab/backend/pkg/xcontext"
)

// Batch splits a into two slices. DO NOT write on the returned value.
func Batch[T any](a *[]T, n int) []T {
	if len(*a) > n {
		batch := (*a)[:n]
		*a = (*a)[n:]
		return batch
	}

	b := (*a)
	*a = (*a)[:0]
	return b
}

// NormalizeLimit applies the default limit of the api server and rejects
// negative or too large values.
func NormalizeLimit(ctx context.Context, offset, limit int) (int, error) {
	apiCfg := xcontext.Configs(ctx).ApiServer
	if limit == 0 {
		limit = apiCfg.DefaultLimit
	}

	if limit < 0 || offset < 0 {
		return 0, errorx.New(errorx.BadRequest, "Offset and limit must be positive")
	}

	if limit > apiCfg.MaxLimit {
		return 0, errorx.New(errorx.BadRequest, "Exceed the maximum of limit (%d)", apiCfg.MaxLimit)
	}

	return limit, nil
}
