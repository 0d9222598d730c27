package errtrack

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

const flushTimeout = 2 * time.Second

// Hub is the part of *sentry.Hub the tracker uses.
type Hub interface {
	CaptureException(err error) *sentry.EventID
	CaptureMessage(msg string) *sentry.EventID
	Recover(err interface{}) *sentry.EventID
	Flush(timeout time.Duration) bool
}

// Tracker is optional: a zero Tracker does nothing.
type Tracker struct {
	hub Hub
}

// NewTracker wraps an already configured hub.
func NewTracker(hub Hub) *Tracker {
	return &Tracker{hub: hub}
}

// Setup connects to Sentry when dsn is set and forwards error records of
// log to it. Tracking is peripheral, so every failure here is a warning.
func Setup(log *logrus.Logger, dsn string) *Tracker {
	if dsn == "" {
		log.Warn("environment variable SENTRY_DSN cannot be found - Sentry not setup to monitor service")
		return &Tracker{}
	}

	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:              dsn,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		log.Warnf("invalid SENTRY_DSN - Sentry not setup to monitor service - %v", err)
		return &Tracker{}
	}

	t := &Tracker{hub: sentry.NewHub(client, sentry.NewScope())}
	log.AddHook(&Hook{hub: t.hub})
	log.Info("Sentry monitoring enabled")
	return t
}

func (t *Tracker) Enabled() bool {
	return t != nil && t.hub != nil
}

// Flush blocks until buffered events are sent or the timeout passes.
func (t *Tracker) Flush() {
	if !t.Enabled() {
		return
	}
	t.hub.Flush(flushTimeout)
}

// Recover reports a panic to Sentry and panics again with the same value.
// It must be deferred directly: defer tracker.Recover().
func (t *Tracker) Recover() {
	r := recover()
	if r == nil {
		return
	}
	if t.Enabled() {
		t.hub.Recover(r)
		t.hub.Flush(flushTimeout)
	}
	panic(r)
}

// Hook sends ERROR and worse to Sentry. An error attached with
// WithError is reported as an exception, otherwise the message is sent.
type Hook struct {
	hub Hub
}

func (h *Hook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}
}

func (h *Hook) Fire(e *logrus.Entry) error {
	if err, ok := e.Data[logrus.ErrorKey].(error); ok {
		h.hub.CaptureException(err)
		return nil
	}
	h.hub.CaptureMessage(e.Message)
	return nil
}
