package migration

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"github.com/koinonia-lab/backend/internal/entity"
	"golang.org/x/exp/slices"
)

//go:embed badges.toml
var defaultBadgeCatalog []byte

var validCriteria = []entity.BadgeCriteria{
	entity.CriteriaVersesSaved,
	entity.CriteriaContentPosted,
	entity.CriteriaCellsJoined,
	entity.CriteriaCoursesCompleted,
	entity.CriteriaStreakDays,
	entity.CriteriaTotalPoints,
	entity.CriteriaFriends,
	entity.CriteriaFirstEvent,
}

type badgeCatalog struct {
	Badges []badgeDefinition `toml:"badge"`
}

type badgeDefinition struct {
	Name          string `toml:"name"`
	Description   string `toml:"description"`
	CriteriaType  string `toml:"criteria_type"`
	CriteriaValue int    `toml:"criteria_value"`
	IconURL       string `toml:"icon_url"`
}

type BadgeCreator interface {
	Create(ctx context.Context, badge *entity.Badge) error
}

// LoadBadgeCatalog parses the badge catalog at path. An empty path loads the
// catalog shipped with the binary.
func LoadBadgeCatalog(path string) ([]entity.Badge, error) {
	data := defaultBadgeCatalog
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}

	return ParseBadgeCatalog(data)
}

func ParseBadgeCatalog(data []byte) ([]entity.Badge, error) {
	var catalog badgeCatalog
	if err := toml.Unmarshal(data, &catalog); err != nil {
		return nil, err
	}

	names := map[string]bool{}
	badges := []entity.Badge{}
	for _, def := range catalog.Badges {
		if def.Name == "" {
			return nil, fmt.Errorf("badge without name")
		}

		if names[def.Name] {
			return nil, fmt.Errorf("duplicated badge %s", def.Name)
		}
		names[def.Name] = true

		criteria := entity.BadgeCriteria(def.CriteriaType)
		if !slices.Contains(validCriteria, criteria) {
			return nil, fmt.Errorf("badge %s has invalid criteria type %s", def.Name, def.CriteriaType)
		}

		if def.CriteriaValue <= 0 {
			return nil, fmt.Errorf("badge %s must have a positive criteria value", def.Name)
		}

		badges = append(badges, entity.Badge{
			Base:          entity.Base{ID: uuid.NewString()},
			Name:          def.Name,
			Description:   def.Description,
			CriteriaType:  criteria,
			CriteriaValue: def.CriteriaValue,
			IconURL:       def.IconURL,
		})
	}

	return badges, nil
}

// SeedBadges upserts the catalog by badge name.
func SeedBadges(ctx context.Context, creator BadgeCreator, badges []entity.Badge) error {
	for i := range badges {
		if err := creator.Create(ctx, &badges[i]); err != nil {
			return fmt.Errorf("cannot seed badge %s: %w", badges[i].Name, err)
		}
	}

	return nil
}
