package migration

import (
	"context"
	"errors"
	"testing"

	"github.com/koinonia-lab/backend/internal/entity"
	"github.com/stretchr/testify/require"
)

type mockBadgeCreator struct {
	created []entity.Badge
	err     error
}

func (m *mockBadgeCreator) Create(ctx context.Context, badge *entity.Badge) error {
	if m.err != nil {
		return m.err
	}

	m.created = append(m.created, *badge)
	return nil
}

func TestLoadBadgeCatalog_Default(t *testing.T) {
	badges, err := LoadBadgeCatalog("")
	require.NoError(t, err)
	require.NotEmpty(t, badges)

	for _, b := range badges {
		require.NotEmpty(t, b.ID)
		require.Positive(t, b.CriteriaValue)
	}
}

func TestParseBadgeCatalog(t *testing.T) {
	badges, err := ParseBadgeCatalog([]byte(`
[[badge]]
name = "a"
criteria_type = "friends"
criteria_value = 2
`))
	require.NoError(t, err)
	require.Len(t, badges, 1)
	require.Equal(t, entity.CriteriaFriends, badges[0].CriteriaType)
	require.Equal(t, 2, badges[0].CriteriaValue)

	_, err = ParseBadgeCatalog([]byte(`
[[badge]]
name = "a"
criteria_type = "unknown"
criteria_value = 2
`))
	require.Error(t, err)

	_, err = ParseBadgeCatalog([]byte(`
[[badge]]
name = "a"
criteria_type = "friends"
criteria_value = 1

[[badge]]
name = "a"
criteria_type = "friends"
criteria_value = 2
`))
	require.Error(t, err)

	_, err = ParseBadgeCatalog([]byte(`
[[badge]]
name = "a"
criteria_type = "friends"
criteria_value = 0
`))
	require.Error(t, err)
}

func TestSeedBadges(t *testing.T) {
	creator := &mockBadgeCreator{}
	badges, err := LoadBadgeCatalog("")
	require.NoError(t, err)

	require.NoError(t, SeedBadges(context.Background(), creator, badges))
	require.Len(t, creator.created, len(badges))

	creator = &mockBadgeCreator{err: errors.New("db down")}
	require.Error(t, SeedBadges(context.Background(), creator, badges))
}
