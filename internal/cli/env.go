package cli

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"deadline_notifier/internal/app"
	"deadline_notifier/internal/domain/user"
	"deadline_notifier/internal/infra/alert"
	"deadline_notifier/internal/infra/localstore"
	"deadline_notifier/internal/infra/logger"
)

const commandName = "deadlinectl"

// env wires the engine to the local stores for one command invocation.
type env struct {
	cfg           *Config
	user          *user.User
	notifications *app.NotificationServiceImpl
	prefs         *app.PreferenceService
	events        *app.EventService
	dispatcher    *app.Dispatcher
	logger        *logrus.Entry
	out           io.Writer
}

func newEnv(cfg *Config, out, errOut io.Writer) *env {
	log := logrus.New()
	logger.Configure(log, errOut, cfg.LogLevel, "development")
	entry := log.WithField("app", commandName)

	store := localstore.Open(cfg.Path)
	users := localstore.NewSingleUser(cfg.User, cfg.TimeZone)
	eventsFile := localstore.NewEventsFile(cfg.Events)

	var channel app.AlertChannel = alert.NopChannel{}
	if cfg.Notify {
		channel = alert.NewTerminalChannel(out, true)
	}
	dispatcher := app.NewDispatcher(alert.NewConsolePresenter(out, commandName, false), channel, entry)

	return &env{
		cfg:  cfg,
		user: users.User(),
		notifications: app.NewNotificationServiceImpl(
			users, eventsFile, store.Preferences(), store.Dismissals(), dispatcher, entry,
			app.WithDefaultLocation(time.Local),
		),
		prefs:      app.NewPreferenceService(store.Preferences()),
		events:     app.NewEventService(eventsFile, time.Now),
		dispatcher: dispatcher,
		logger:     entry,
		out:        out,
	}
}

// ensurePreferences creates the local user's default-on preferences on first use.
func (e *env) ensurePreferences(ctx context.Context) error {
	_, err := e.prefs.Get(ctx, e.user.ID)
	return err
}
