package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/koinonia-lab/backend/internal/middleware"
	"github.com/koinonia-lab/backend/internal/model"
	"github.com/koinonia-lab/backend/pkg/authenticator"
	"github.com/koinonia-lab/backend/pkg/prometheus"
	"github.com/koinonia-lab/backend/pkg/router"
	"github.com/koinonia-lab/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(*cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.loadRedisClient()
	s.loadRepos()
	s.loadNotifier()
	s.loadBadgeManager()
	s.loadEngine()
	s.loadDomains()
	defer s.stop()

	cfg := xcontext.Configs(s.ctx)
	httpSrv := &http.Server{
		Addr:              cfg.ApiServer.Address(),
		Handler:           s.loadRouter().Handler(cfg.ApiServer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stoppers run only after in-flight handlers returned.
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			xcontext.Logger(s.ctx).Errorf("Cannot shutdown api server: %v", err)
		}
	}()

	xcontext.Logger(s.ctx).Infof("Starting api server on %s", httpSrv.Addr)
	var err error
	if cfg.ApiServer.Cert != "" && cfg.ApiServer.Key != "" {
		err = httpSrv.ListenAndServeTLS(cfg.ApiServer.Cert, cfg.ApiServer.Key)
	} else {
		err = httpSrv.ListenAndServe()
	}

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-shutdownDone

	xcontext.Logger(s.ctx).Infof("Api server stopped")
	return nil
}

func (s *srv) loadRouter() *router.Router {
	cfg := xcontext.Configs(s.ctx)
	authVerifier := middleware.NewAuthVerifier(
		authenticator.NewTokenEngine[model.AccessToken](cfg.Auth.AccessToken))
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.PerMinute)

	defaultRouter := router.New(s.ctx)
	defaultRouter.AddCloser(middleware.Logger())
	defaultRouter.AddCloser(middleware.Prometheus())
	defaultRouter.Handle("/metrics", prometheus.NewHandler())

	// Public API.
	{
		publicRouter := defaultRouter.Branch()
		publicRouter.Before(authVerifier.Middleware())
		publicRouter.Before(rateLimiter.Middleware())
		router.GET(publicRouter, "/getAllBadges", s.badgeDomain.GetAllBadges)
		router.GET(publicRouter, "/getUserBadges", s.badgeDomain.GetUserBadges)
		router.GET(publicRouter, "/getPointsLeaderboard", s.gamificationDomain.GetPointsLeaderboard)
	}

	// These APIs need an authenticated user.
	{
		authRouter := defaultRouter.Branch()
		authRouter.Before(authVerifier.Required().Middleware())
		authRouter.Before(rateLimiter.Middleware())

		router.GET(authRouter, "/getMyStreak", s.gamificationDomain.GetMyStreak)

		router.GET(authRouter, "/getMyBadges", s.badgeDomain.GetMyBadges)
		router.POST(authRouter, "/evaluateMyBadges", s.badgeDomain.EvaluateMyBadges)

		router.POST(authRouter, "/saveVerse", s.contentDomain.SaveVerse)
		router.POST(authRouter, "/createPost", s.contentDomain.CreatePost)
		router.POST(authRouter, "/completeCourse", s.contentDomain.CompleteCourse)

		router.POST(authRouter, "/sendMessage", s.chatDomain.SendMessage)
		router.GET(authRouter, "/getChannelScores", s.engagementDomain.GetChannelScores)
		authRouter.Websocket("/cells/engagement", s.engagementDomain.ServeSession)

		router.GET(authRouter, "/getNotifications", s.notificationDomain.GetNotifications)
		router.POST(authRouter, "/readNotifications", s.notificationDomain.ReadNotifications)
	}

	return defaultRouter
}
