package alarm

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/pratik-71/planme-backend/pkg/logger"
)

// ErrPermissionDenied signals that the delivery surface refused to post.
// Arming continues on the remaining paths; delivery reliability degrades.
var ErrPermissionDenied = errors.New("alarm: notification permission denied")

// Notification is one posted delivery surface entry.
type Notification struct {
	ID      string
	Title   string
	Body    string
	Ongoing bool
}

// Notifier is the visual delivery surface. The default implementation logs;
// deployments plug in push gateways here.
type Notifier interface {
	Post(n Notification) error
	Dismiss(id string) error
}

// LogNotifier posts notifications to the service log and remembers the
// active ones so Dismiss and inspection work.
type LogNotifier struct {
	log *logger.Logger

	mu     sync.Mutex
	active map[string]Notification
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{
		log:    log,
		active: make(map[string]Notification),
	}
}

func (n *LogNotifier) Post(notif Notification) error {
	n.mu.Lock()
	n.active[notif.ID] = notif
	n.mu.Unlock()

	n.log.Info("notification posted",
		slog.String("id", notif.ID),
		slog.String("title", notif.Title),
		slog.Bool("ongoing", notif.Ongoing),
	)
	return nil
}

func (n *LogNotifier) Dismiss(id string) error {
	n.mu.Lock()
	delete(n.active, id)
	n.mu.Unlock()

	n.log.Info("notification dismissed", slog.String("id", id))
	return nil
}

// Active returns the currently posted notification ids.
func (n *LogNotifier) Active() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	ids := make([]string, 0, len(n.active))
	for id := range n.active {
		ids = append(ids, id)
	}
	return ids
}
