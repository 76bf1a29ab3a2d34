package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/zenscholar/internal/application"
	"github.com/example/zenscholar/internal/config"
	"github.com/example/zenscholar/internal/content"
	httptransport "github.com/example/zenscholar/internal/http"
	"github.com/example/zenscholar/internal/logging"
	"github.com/example/zenscholar/internal/notify"
	"github.com/example/zenscholar/internal/persistence"
	"github.com/example/zenscholar/internal/persistence/sqlite"
)

func main() {
	logger := logging.NewJSON(os.Stdout, slog.LevelInfo)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	notifier := newStartupNotifier(ctx, logger)

	var generator application.ContentGenerator
	if cfg.ContentBaseURL != "" {
		generator = content.NewClient(cfg.ContentBaseURL, cfg.ContentAPIKey, cfg.ContentTimeout)
	}

	sessions := newSessionStoreAdapter(storage)
	profiles := newProfileAdapter(storage)

	timer := application.NewTimerService(application.TimerServiceConfig{
		Sessions:      sessions,
		Minutes:       storage,
		Notifier:      notifier,
		Content:       generator,
		IDGenerator:   uuid.NewString,
		Now:           time.Now,
		WorkDuration:  cfg.WorkDuration,
		BreakDuration: cfg.BreakDuration,
		Logger:        logger,
	})

	trigger := application.NewDailyTrigger(application.DailyTriggerConfig{
		Store:         newTriggerStoreAdapter(storage),
		Profiles:      profiles,
		Content:       generator,
		Notifier:      notifier,
		Now:           time.Now,
		ThresholdHour: cfg.TriggerHour,
		Poll:          cfg.TriggerPoll,
		Logger:        logger,
	})

	breathing := application.NewBreathingExercise(application.BreathingConfig{})

	go func() {
		if err := timer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("timer loop stopped", "error", err)
		}
	}()
	go func() {
		if err := trigger.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("trigger loop stopped", "error", err)
		}
	}()

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Sessions:   httptransport.NewSessionHandler(timer, logger),
		Breathing:  httptransport.NewBreathingHandler(breathing, logger),
		Trigger:    httptransport.NewTriggerHandler(trigger, logger),
		Profile:    httptransport.NewProfileHandler(profiles, logger),
		Middleware: []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		breathing.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("study timer API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// newStartupNotifier gates log-backed notifications behind an explicit
// permission request, mirroring hosts where dispatch silently fails until the
// user opts in. Until the grant lands every dispatch returns
// ErrPermissionDenied, which the timer and the daily trigger treat as a
// skipped dispatch.
func newStartupNotifier(ctx context.Context, logger *slog.Logger) notify.Notifier {
	notifier := notify.NewGatedNotifier(notify.NewLogNotifier(logger))
	if granted, err := notifier.RequestPermission(ctx); err != nil || !granted {
		logger.Warn("notification permission not granted, dispatches will be skipped", "error", err)
	}
	return notifier
}

type sessionStoreAdapter struct {
	repo persistence.FocusSessionRepository
}

func newSessionStoreAdapter(repo persistence.FocusSessionRepository) *sessionStoreAdapter {
	return &sessionStoreAdapter{repo: repo}
}

func (a *sessionStoreAdapter) SaveActiveSession(ctx context.Context, session application.Session) error {
	return a.repo.SaveActiveSession(ctx, toPersistenceSession(session))
}

func (a *sessionStoreAdapter) GetActiveSession(ctx context.Context) (application.Session, error) {
	stored, err := a.repo.GetActiveSession(ctx)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return application.Session{}, application.ErrNotFound
		}
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionStoreAdapter) DeleteActiveSession(ctx context.Context) error {
	return a.repo.DeleteActiveSession(ctx)
}

type triggerStoreAdapter struct {
	repo persistence.TriggerStateRepository
}

func newTriggerStoreAdapter(repo persistence.TriggerStateRepository) *triggerStoreAdapter {
	return &triggerStoreAdapter{repo: repo}
}

func (a *triggerStoreAdapter) GetTriggerState(ctx context.Context) (application.TriggerRecord, error) {
	stored, err := a.repo.GetTriggerState(ctx)
	if err != nil {
		return application.TriggerRecord{}, err
	}
	return application.TriggerRecord{
		Enabled:       stored.Enabled,
		LastFiredDate: stored.LastFiredDate,
	}, nil
}

func (a *triggerStoreAdapter) SaveTriggerState(ctx context.Context, record application.TriggerRecord) error {
	return a.repo.SaveTriggerState(ctx, persistence.TriggerState{
		Enabled:       record.Enabled,
		LastFiredDate: record.LastFiredDate,
		UpdatedAt:     time.Now().UTC(),
	})
}

type profileAdapter struct {
	repo persistence.ProfileRepository
}

func newProfileAdapter(repo persistence.ProfileRepository) *profileAdapter {
	return &profileAdapter{repo: repo}
}

func (a *profileAdapter) GetProfile(ctx context.Context) (application.StudentProfile, error) {
	stored, err := a.repo.GetProfile(ctx)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return application.StudentProfile{}, application.ErrNotFound
		}
		return application.StudentProfile{}, err
	}
	return application.StudentProfile{
		Name:         stored.Name,
		Bio:          stored.Bio,
		Avatar:       stored.Avatar,
		FocusMinutes: stored.FocusMinutes,
		Streak:       stored.Streak,
		Chapters:     stored.Chapters,
	}, nil
}

func toPersistenceSession(session application.Session) persistence.FocusSession {
	return persistence.FocusSession{
		ID:            session.ID,
		ActivityID:    session.Activity.ID,
		ActivityTitle: session.Activity.Title,
		CategoryID:    session.Activity.CategoryID,
		Phase:         persistence.Phase(session.Phase),
		Start:         session.Start,
		End:           session.End,
		Active:        session.Active,
		WorkMinutes:   session.WorkMinutes,
		CreatedAt:     session.CreatedAt,
		UpdatedAt:     session.UpdatedAt,
	}
}

func toApplicationSession(model persistence.FocusSession) application.Session {
	return application.Session{
		ID: model.ID,
		Activity: application.ActivityRef{
			ID:         model.ActivityID,
			Title:      model.ActivityTitle,
			CategoryID: model.CategoryID,
		},
		Phase:       application.Phase(model.Phase),
		Start:       model.Start,
		End:         model.End,
		Active:      model.Active,
		WorkMinutes: model.WorkMinutes,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}
