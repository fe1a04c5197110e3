package alarm

import (
	"log/slog"
	"sync"
	"time"

	"github.com/pratik-71/planme-backend/pkg/logger"
)

// Ringer models the foreground ringing session: a looping tone plus a
// persistent "stop" notification. One session at a time; starting a new one
// replaces the previous.
type Ringer struct {
	log      *logger.Logger
	notifier Notifier
	timeout  time.Duration

	mu      sync.Mutex
	current string
	stopCh  chan struct{}
}

func NewRinger(log *logger.Logger, notifier Notifier, timeout time.Duration) *Ringer {
	return &Ringer{
		log:      log,
		notifier: notifier,
		timeout:  timeout,
	}
}

// Start begins ringing for the reminder. The ongoing notification stays up
// until Stop; the tone itself gives up after the configured timeout so an
// unattended service does not ring forever.
func (r *Ringer) Start(id, title string) {
	r.mu.Lock()
	prev := r.current
	if r.stopCh != nil {
		close(r.stopCh)
	}
	r.current = id
	stopCh := make(chan struct{})
	r.stopCh = stopCh
	r.mu.Unlock()

	// The replaced session's ongoing notification comes down with it.
	if prev != "" && prev != id {
		_ = r.notifier.Dismiss("ring_" + prev)
	}

	_ = r.notifier.Post(Notification{
		ID:      "ring_" + id,
		Title:   "ALARM",
		Body:    title,
		Ongoing: true,
	})

	go func() {
		timer := time.NewTimer(r.timeout)
		defer timer.Stop()

		r.log.Info("ringing started", slog.String("id", id))
		select {
		case <-stopCh:
		case <-timer.C:
			r.log.Warn("ringing timed out", slog.String("id", id))
		}
		r.log.Info("ringing stopped", slog.String("id", id))
	}()
}

// Stop ends the current ringing session and removes its ongoing
// notification. Safe to call with no session active.
func (r *Ringer) Stop() {
	r.mu.Lock()
	id := r.current
	if r.stopCh != nil {
		close(r.stopCh)
		r.stopCh = nil
	}
	r.current = ""
	r.mu.Unlock()

	if id != "" {
		_ = r.notifier.Dismiss("ring_" + id)
	}
}

// Ringing returns the id of the active session, if any.
func (r *Ringer) Ringing() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current, r.current != ""
}
