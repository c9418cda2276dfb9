package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	s.app = cli.NewApp()
	s.app.Action = cli.ShowAppHelp
	s.app.Name = "Koinonia"
	s.app.Usage = "Gamification backend of the Koinonia community app"
	s.app.Before = func(*cli.Context) error {
		return s.loadContext()
	}
	s.app.After = func(*cli.Context) error {
		s.syncLogger()
		return nil
	}
	s.app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Category:    "Api",
			Description: `Used to start the api server, including the engagement websocket.`,
		},
		{
			Action:      s.startCron,
			Name:        "cron",
			Usage:       "Start cron jobs",
			Category:    "Worker",
			Description: `Used to run the badge sweep and the streak reminder.`,
		},
		{
			Action:      s.startNotifier,
			Name:        "notifier",
			Usage:       "Start notification consumer",
			Category:    "Worker",
			Description: `Used to consume the notification topic and write in-app notifications.`,
		},
		{
			Action:   s.startMigrate,
			Name:     "migrate",
			Usage:    "Migrate database and seed badges",
			Category: "Database",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "badges",
					Usage: "Path of a badge catalog overriding the embedded one",
				},
			},
			Description: `Used to create every table and upsert the badge catalog.`,
		},
	}
}
