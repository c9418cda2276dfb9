package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal           = "http_requests_total"
	HTTPRequestDurationSeconds = "http_request_duration_seconds"
	StreakEventTotal           = "streak_events_total"
	BadgeAwardTotal            = "badge_awards_total"
	NotificationTotal          = "notifications_total"
)

var (
	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"path", "code"}),
		StreakEventTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: StreakEventTotal,
			Help: "Count of logged streak events",
		}, []string{"event_type"}),
		BadgeAwardTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: BadgeAwardTotal,
			Help: "Count of awarded badges",
		}, []string{"criteria_type"}),
		NotificationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: NotificationTotal,
			Help: "Count of notifications by delivery status",
		}, []string{"status"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of all HTTP requests",
		}, []string{"path", "code"}),
	}
)
