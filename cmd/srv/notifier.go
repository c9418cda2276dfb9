package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/koinonia-lab/backend/internal/domain/notification"
	"github.com/koinonia-lab/backend/internal/repository"
	"github.com/koinonia-lab/backend/pkg/kafka"
	"github.com/koinonia-lab/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startNotifier(*cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	cfg := xcontext.Configs(s.ctx).Kafka

	deliverer := notification.NewDeliverer(repository.NewNotificationRepository())
	subscriber, err := kafka.NewSubscriber(
		cfg.GroupID,
		[]string{cfg.Addr},
		[]string{cfg.NotificationTopic},
		notification.SubscribeHandler(deliverer),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	xcontext.Logger(s.ctx).Infof("Starting notifier on topic %s", cfg.NotificationTopic)
	go subscriber.Subscribe(ctx)

	<-ctx.Done()
	if err := subscriber.Stop(s.ctx); err != nil {
		xcontext.Logger(s.ctx).Errorf("Cannot stop subscriber: %v", err)
	}

	xcontext.Logger(s.ctx).Infof("Notifier stopped")
	return nil
}
