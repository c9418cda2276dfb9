package badge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/koinonia-lab/backend/internal/common"
	"github.com/koinonia-lab/backend/internal/domain/notification"
	"github.com/koinonia-lab/backend/internal/entity"
	"github.com/koinonia-lab/backend/internal/repository"
	"github.com/koinonia-lab/backend/pkg/errorx"
	"github.com/koinonia-lab/backend/pkg/xcontext"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Manager struct {
	// This field is only written at initialization. After that, it is readonly.
	// So no need to use sync map here.
	counters map[entity.BadgeCriteria]MetricCounter

	badgeRepo     repository.BadgeRepository
	userBadgeRepo repository.UserBadgeRepository
	notifier      notification.Notifier
	now           func() time.Time
}

func NewManager(
	badgeRepo repository.BadgeRepository,
	userBadgeRepo repository.UserBadgeRepository,
	notifier notification.Notifier,
	counters ...MetricCounter,
) *Manager {
	manager := &Manager{
		badgeRepo:     badgeRepo,
		userBadgeRepo: userBadgeRepo,
		notifier:      notifier,
		counters:      make(map[entity.BadgeCriteria]MetricCounter),
		now:           time.Now,
	}

	for _, c := range counters {
		manager.counters[c.Criteria()] = c
	}

	return manager
}

// Criteria returns the criteria types this manager is able to evaluate.
func (m *Manager) Criteria() []entity.BadgeCriteria {
	result := maps.Keys(m.counters)
	slices.Sort(result)
	return result
}

// Evaluate awards every unearned badge whose threshold the user reached and
// returns the badges awarded by this call. A badge already awarded, even by a
// concurrent call, is never returned twice. Each newly awarded badge produces
// exactly one notification.
func (m *Manager) Evaluate(ctx context.Context, userID string) ([]entity.Badge, error) {
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "User is required")
	}

	allBadges, err := m.badgeRepo.GetAll(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get badge catalog: %v", err)
		return nil, errorx.Unknown
	}

	awardedIDs, err := m.userBadgeRepo.GetBadgeIDs(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get awarded badges of user %s: %v", userID, err)
		return nil, errorx.Unknown
	}

	unearned := map[entity.BadgeCriteria][]entity.Badge{}
	for _, b := range allBadges {
		if slices.Contains(awardedIDs, b.ID) {
			continue
		}

		unearned[b.CriteriaType] = append(unearned[b.CriteriaType], b)
	}

	if len(unearned) == 0 {
		return nil, nil
	}

	// Every metric is computed once, whatever the number of badges using it.
	qualified := []entity.Badge{}
	for criteria, badges := range unearned {
		counter, ok := m.counters[criteria]
		if !ok {
			xcontext.Logger(ctx).Warnf("No metric counter for criteria %s", criteria)
			continue
		}

		count, err := counter.Count(ctx, userID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot count %s of user %s: %v", criteria, userID, err)
			return nil, errorx.Unknown
		}

		for _, b := range badges {
			if count >= int64(b.CriteriaValue) {
				qualified = append(qualified, b)
			}
		}
	}

	if len(qualified) == 0 {
		return nil, nil
	}

	now := m.now()
	userBadges := make([]entity.UserBadge, 0, len(qualified))
	for _, b := range qualified {
		userBadges = append(userBadges, entity.UserBadge{
			UserID:      userID,
			BadgeID:     b.ID,
			AwardedAt:   now,
			WasNotified: false,
		})
	}

	inserted, err := m.userBadgeRepo.CreateIfNotExists(ctx, userBadges)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot award badges to user %s: %v", userID, err)
		return nil, errorx.Unknown
	}

	awarded := []entity.Badge{}
	for _, ub := range inserted {
		idx := slices.IndexFunc(qualified, func(b entity.Badge) bool { return b.ID == ub.BadgeID })
		if idx == -1 {
			continue
		}

		b := qualified[idx]
		awarded = append(awarded, b)
		common.PromCounters[common.BadgeAwardTotal].WithLabelValues(string(b.CriteriaType)).Inc()

		if m.notifier != nil {
			m.notifier.Notify(ctx, notification.Message{
				UserID:   userID,
				Title:    "New badge unlocked",
				Body:     strings.TrimSpace(fmt.Sprintf("You earned the %s badge. %s", b.Name, b.Description)),
				LinkPath: "/badges",
			})
		}
	}

	return awarded, nil
}
