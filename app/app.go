// Package app wires the whole client together from one Config: cache,
// backend client, realtime registry, escalation sinks and the per-entity
// services the screens consume.
package app

import (
	"context"
	"log/slog"

	"harborview.com/shiftman/assistant"
	v1 "harborview.com/shiftman/backend/v1"
	"harborview.com/shiftman/cache"
	"harborview.com/shiftman/config"
	"harborview.com/shiftman/core"
	"harborview.com/shiftman/notify"
	"harborview.com/shiftman/realtime"
	"harborview.com/shiftman/storage"
)

type App struct {
	Config   *config.Config
	Store    *cache.Store
	API      *v1.Client
	Registry *realtime.Registry

	Auth          *core.AuthService
	Employees     *core.EmployeeService
	Shifts        *core.ShiftService
	TimeTracking  *core.TimeTrackingService
	Leave         *core.LeaveService
	Tasks         *core.TaskService
	Notifications *core.NotificationService
	Analytics     *core.AnalyticsService
	Assistant     *assistant.Assistant

	log *slog.Logger
}

// New assembles the app. Escalation sinks are optional: Slack joins when a
// bot token is configured, email when both addresses are set.
func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	store, err := cache.Open(cfg.CachePath, log)
	if err != nil {
		return nil, err
	}

	api := v1.NewClient(cfg.BackendURL, "")
	registry := realtime.NewRegistry(realtime.NewPollFeed(api.Realtime, log), log)
	objects := storage.NewBackendStore(api.Storage)

	sinks := make([]notify.Sink, 0, 2)
	if cfg.Slack.Token != "" {
		sinks = append(sinks, notify.NewSlack(cfg.Slack.Token, notify.SlackOption{
			InfoChannelID:  cfg.Slack.InfoChannelID,
			ErrorChannelID: cfg.Slack.ErrorChannelID,
		}))
	}
	if cfg.Email.From != "" && cfg.Email.To != "" {
		email, err := notify.NewEmail(context.Background(), cfg.Email.From, cfg.Email.To)
		if err != nil {
			log.Warn("email sink unavailable", "error", err)
		} else {
			sinks = append(sinks, email)
		}
	}
	var sink notify.Sink
	if len(sinks) > 0 {
		sink = notify.NewFanout(log, sinks...)
	}

	return &App{
		Config:   cfg,
		Store:    store,
		API:      api,
		Registry: registry,

		Auth:          core.NewAuthService(store, api, cfg.DemoUsers, cfg.SigningSecret, log),
		Employees:     core.NewEmployeeService(store, api, log),
		Shifts:        core.NewShiftService(store, api, log),
		TimeTracking:  core.NewTimeTrackingService(store, api, log),
		Leave:         core.NewLeaveService(store, api, objects, log),
		Tasks:         core.NewTaskService(store, api, log),
		Notifications: core.NewNotificationService(store, api, sink, log),
		Analytics:     core.NewAnalyticsService(store, api, log),
		Assistant:     assistant.New(api, store, cfg.GeminiAPIKey, log),

		log: log,
	}, nil
}

// Reconcile re-pushes unsynced local writes. Call it when connectivity
// returns.
func (a *App) Reconcile(ctx context.Context) (int, error) {
	return core.Reconcile(ctx, a.Store, a.API, a.log)
}

func (a *App) Close() error {
	return a.Store.Close()
}
