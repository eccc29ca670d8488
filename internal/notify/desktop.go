package notify

import "fmt"

// Urgency represents notification priority levels per freedesktop spec.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// Notification contains data for a desktop notification.
type Notification struct {
	Title      string  // Summary text (required)
	Body       string  // Body text (optional, supports basic markup)
	Timeout    int32   // ms, -1 = server default, 0 = never expire
	ReplacesID uint32  // 0 = new notification, >0 = replace existing
	Urgency    Urgency // Low, Normal, Critical
}

// notifier sends desktop notifications.
type notifier interface {
	Notify(n Notification) (uint32, error)
}

const desktopTimeout = 5000

// Desktop is a Sink that shows the now-playing track as a desktop
// notification. Only SONG frames are shown; each replaces the previous one.
type Desktop struct {
	n      notifier
	lastID uint32
}

// NewDesktop returns a Desktop sink. When no notification service is
// reachable the sink silently drops frames.
func NewDesktop() (*Desktop, error) {
	n, err := newNotifier()
	if err != nil {
		return nil, err
	}
	return &Desktop{n: n}, nil
}

func (d *Desktop) Send(f Frame) error {
	notif, ok := songNotification(f)
	if !ok {
		return nil
	}
	notif.ReplacesID = d.lastID
	id, err := d.n.Notify(notif)
	if err != nil {
		return fmt.Errorf("desktop notification: %w", err)
	}
	d.lastID = id
	return nil
}

// songNotification renders a SONG frame.
func songNotification(f Frame) (Notification, bool) {
	if f.Command() != CmdSong {
		return Notification{}, false
	}
	str := func(key string) string {
		v, _ := f.Get(key)
		s, _ := v.(string)
		return s
	}

	title := str("title")
	if title == "" {
		title = str("filename")
	}
	body := str("artist")
	if album := str("album"); album != "" {
		if body != "" {
			body += " - "
		}
		body += album
	}
	return Notification{
		Title:   title,
		Body:    body,
		Timeout: desktopTimeout,
		Urgency: UrgencyLow,
	}, true
}

var _ Sink = (*Desktop)(nil)
