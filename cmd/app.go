package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"dlremindme/internal/clock"
	"dlremindme/internal/config"
	"dlremindme/internal/engine"
	"dlremindme/internal/logger"
	"dlremindme/internal/notifier"
	"dlremindme/internal/session"
	"dlremindme/internal/storage"
	"dlremindme/internal/tracker"
)

// app holds every long-lived service, constructed once per command.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	zone     *time.Location
	clock    clock.System
	backend  storage.Storage
	store    *storage.TaskStore
	tracker  *tracker.Tracker
	notifier *notifier.Notifier
	session  *session.Session
	engine   *engine.Engine
	closers  []func() error
}

func newApp(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	log := logger.Setup(cfg.Log)

	zone, err := clock.LoadZone(cfg.Reminder.Timezone)
	if err != nil {
		log.Warn("unknown timezone, using default", "timezone", cfg.Reminder.Timezone, "error", err)
		zone = clock.DefaultZone
	}

	a := &app{
		cfg:    cfg,
		logger: log,
		zone:   zone,
		clock:  clock.New(zone),
	}
	if err := a.openBackend(); err != nil {
		return nil, err
	}

	var journal tracker.Journal
	if cfg.Reminder.PersistSent {
		journal = a.backend
	}
	a.tracker, err = tracker.New(journal, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	owner, _ := cmd.Flags().GetString("owner")
	if owner == "" {
		owner = cfg.Session.Owner
	}
	a.session = session.New(owner)
	a.store = storage.NewTaskStore(a.backend, zone, log)
	a.notifier = notifier.New(notifier.NewSMTPSender(cfg.SMTP, log), a.clock, log)
	a.engine = engine.New(a.store, a.session, a.clock, a.tracker, a.notifier, log)
	if !cfg.SMTP.Configured() {
		log.Warn("smtp credentials not configured, reminders will not be delivered")
	}
	return a, nil
}

func (a *app) openBackend() error {
	sc := a.cfg.Storage
	switch sc.Type {
	case "memory":
		a.logger.Info("using memory storage")
		a.backend = storage.NewMemoryStorage()
	case "file":
		a.logger.Info("using file storage", "tasks", sc.File.TasksPath, "sent", sc.File.SentPath)
		a.backend = storage.NewFileStorage(sc.File.TasksPath, sc.File.SentPath)
	case "sqlite":
		a.logger.Info("using sqlite storage", "path", sc.SQLite.Path)
		s, err := storage.NewSQLiteStorage(sc.SQLite.Path)
		if err != nil {
			return err
		}
		a.backend = s
		a.closers = append(a.closers, s.Close)
	case "mongo":
		a.logger.Info("using mongodb storage", "database", sc.Mongo.Database)
		s, err := storage.NewMongoStorage(sc.Mongo.URI, sc.Mongo.Database)
		if err != nil {
			return err
		}
		a.backend = s
		a.closers = append(a.closers, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return s.Close(ctx)
		})
	default:
		return fmt.Errorf("invalid storage type %q", sc.Type)
	}
	return nil
}

// requireOwner returns the selected owner or an error naming the flag.
func (a *app) requireOwner() (string, error) {
	owner := a.session.Owner()
	if owner == "" {
		return "", errors.New("no owner selected: pass --owner or set session.owner")
	}
	return owner, nil
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}
