package main

import (
	"github.com/koinonia-lab/backend/internal/repository"
	"github.com/koinonia-lab/backend/migration"
	"github.com/koinonia-lab/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(ctx *cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())

	if err := migration.AutoMigrate(s.ctx); err != nil {
		return err
	}

	path := ctx.String("badges")
	if path == "" {
		path = xcontext.Configs(s.ctx).Gamification.BadgeCatalogPath
	}

	badges, err := migration.LoadBadgeCatalog(path)
	if err != nil {
		return err
	}

	if err := migration.SeedBadges(s.ctx, repository.NewBadgeRepository(), badges); err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Migrated database and seeded %d badges", len(badges))
	return nil
}
