package testutil

import (
	"context"
	"time"

	"github.com/koinonia-lab/backend/internal/entity"
	"github.com/koinonia-lab/backend/pkg/xcontext"
)

var (
	User1 = &entity.User{Base: entity.Base{ID: "user1"}, Name: "user1"}
	User2 = &entity.User{Base: entity.Base{ID: "user2"}, Name: "user2"}
	User3 = &entity.User{Base: entity.Base{ID: "user3"}, Name: "user3"}
	Users = []*entity.User{User1, User2, User3}

	Cell1 = &entity.Cell{
		Base:      entity.Base{ID: "cell1"},
		Name:      "Morning Prayer",
		CreatedBy: User1.ID,
	}
	Cells = []*entity.Cell{Cell1}

	// User1 and User2 belong to Cell1. User3 does not.
	CellMembers = []*entity.CellMember{
		{CellID: Cell1.ID, UserID: User1.ID},
		{CellID: Cell1.ID, UserID: User2.ID},
	}

	Channel1 = &entity.Channel{Base: entity.Base{ID: "channel1"}, CellID: Cell1.ID, Name: "general"}
	Channel2 = &entity.Channel{Base: entity.Base{ID: "channel2"}, CellID: Cell1.ID, Name: "prayer"}
	Channels = []*entity.Channel{Channel1, Channel2}

	BadgeFirstStep = &entity.Badge{
		Base:          entity.Base{ID: "badge-first-step"},
		Name:          "First Step",
		CriteriaType:  entity.CriteriaFirstEvent,
		CriteriaValue: 1,
	}
	BadgeWordKeeper = &entity.Badge{
		Base:          entity.Base{ID: "badge-word-keeper"},
		Name:          "Word Keeper",
		CriteriaType:  entity.CriteriaVersesSaved,
		CriteriaValue: 2,
	}
	BadgeFaithfulWeek = &entity.Badge{
		Base:          entity.Base{ID: "badge-faithful-week"},
		Name:          "Faithful Week",
		CriteriaType:  entity.CriteriaStreakDays,
		CriteriaValue: 7,
	}
	BadgeCenturion = &entity.Badge{
		Base:          entity.Base{ID: "badge-centurion"},
		Name:          "Centurion",
		CriteriaType:  entity.CriteriaTotalPoints,
		CriteriaValue: 100,
	}
	BadgeGoodFriend = &entity.Badge{
		Base:          entity.Base{ID: "badge-good-friend"},
		Name:          "Good Friend",
		CriteriaType:  entity.CriteriaFriends,
		CriteriaValue: 1,
	}
	Badges = []*entity.Badge{BadgeFirstStep, BadgeWordKeeper, BadgeFaithfulWeek, BadgeCenturion, BadgeGoodFriend}
)

func CreateFixtureDb(ctx context.Context) {
	InsertUsers(ctx)
	InsertCells(ctx)
	InsertBadges(ctx)
}

func InsertUsers(ctx context.Context) {
	for _, u := range Users {
		if err := xcontext.DB(ctx).Create(u).Error; err != nil {
			panic(err)
		}
	}
}

func InsertCells(ctx context.Context) {
	for _, c := range Cells {
		if err := xcontext.DB(ctx).Create(c).Error; err != nil {
			panic(err)
		}
	}

	for _, m := range CellMembers {
		if err := xcontext.DB(ctx).Create(m).Error; err != nil {
			panic(err)
		}
	}

	// Channels are created in order so listing by creation time is stable.
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, ch := range Channels {
		ch.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := xcontext.DB(ctx).Create(ch).Error; err != nil {
			panic(err)
		}
	}
}

func InsertBadges(ctx context.Context) {
	for _, b := range Badges {
		if err := xcontext.DB(ctx).Create(b).Error; err != nil {
			panic(err)
		}
	}
}
