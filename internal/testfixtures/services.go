package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/zenscholar/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// TimerServiceDeps captures dependencies for constructing a timer service.
type TimerServiceDeps struct {
	Sessions      application.SessionStore
	Minutes       application.FocusMinutesSink
	Notifier      application.Notifier
	Content       application.ContentGenerator
	IDGenerator   func() string
	Now           func() time.Time
	WorkDuration  time.Duration
	BreakDuration time.Duration
	TickInterval  time.Duration
	Logger        *slog.Logger
}

// NewTimerService builds a timer service using the supplied dependencies
// combined with the factory defaults.
func (f *ServiceFactory) NewTimerService(deps TimerServiceDeps) *application.TimerService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewTimerService(application.TimerServiceConfig{
		Sessions:      deps.Sessions,
		Minutes:       deps.Minutes,
		Notifier:      deps.Notifier,
		Content:       deps.Content,
		IDGenerator:   idGen,
		Now:           now,
		WorkDuration:  deps.WorkDuration,
		BreakDuration: deps.BreakDuration,
		TickInterval:  deps.TickInterval,
		Logger:        deps.Logger,
	})
}

// DailyTriggerDeps captures dependencies for constructing a daily trigger.
type DailyTriggerDeps struct {
	Store         application.TriggerStore
	Profiles      application.ProfileReader
	Content       application.ContentGenerator
	Notifier      application.Notifier
	Now           func() time.Time
	ThresholdHour int
	Poll          time.Duration
	Logger        *slog.Logger
}

// NewDailyTrigger builds a daily trigger using the supplied dependencies.
func (f *ServiceFactory) NewDailyTrigger(deps DailyTriggerDeps) *application.DailyTrigger {
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewDailyTrigger(application.DailyTriggerConfig{
		Store:         deps.Store,
		Profiles:      deps.Profiles,
		Content:       deps.Content,
		Notifier:      deps.Notifier,
		Now:           now,
		ThresholdHour: deps.ThresholdHour,
		Poll:          deps.Poll,
		Logger:        deps.Logger,
	})
}
