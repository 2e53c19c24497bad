package editor

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level is the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Action is a labeled follow-up offered by a notification.
type Action struct {
	ID    string
	Label string
	run   func()
}

// NewAction wraps a no-argument trigger.
func NewAction(label string, run func()) Action {
	return Action{ID: uuid.NewString(), Label: label, run: run}
}

// Notification is a user-facing message with optional actions.
type Notification struct {
	ID      string
	Level   Level
	Message string
	Actions []Action
	Opened  time.Time
}

// Notifier holds at most one active notification. Opening a new one
// replaces the current one.
type Notifier struct {
	mu       sync.Mutex
	current  *Notification
	onChange func(n Notification, open bool)
	now      func() time.Time
}

// NewNotifier creates a channel; onChange, if set, observes opens and closes.
func NewNotifier(onChange func(n Notification, open bool)) *Notifier {
	return &Notifier{onChange: onChange, now: time.Now}
}

// Open replaces the active notification.
func (n *Notifier) Open(level Level, msg string, actions ...Action) Notification {
	note := Notification{
		ID:      uuid.NewString(),
		Level:   level,
		Message: msg,
		Actions: append([]Action(nil), actions...),
		Opened:  n.now(),
	}
	n.mu.Lock()
	n.current = &note
	n.mu.Unlock()

	if n.onChange != nil {
		n.onChange(note, true)
	}
	return note
}

// Close clears the message and its actions.
func (n *Notifier) Close() {
	n.mu.Lock()
	prev := n.current
	n.current = nil
	n.mu.Unlock()

	if prev != nil && n.onChange != nil {
		n.onChange(*prev, false)
	}
}

// Current returns the active notification.
func (n *Notifier) Current() (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Notification{}, false
	}
	return *n.current, true
}

// Trigger closes the notification and runs the chosen action.
func (n *Notifier) Trigger(actionID string) error {
	n.mu.Lock()
	var run func()
	if n.current != nil {
		for _, a := range n.current.Actions {
			if a.ID == actionID {
				run = a.run
				break
			}
		}
	}
	n.mu.Unlock()

	if run == nil {
		return ErrNoSuchAction
	}
	n.Close()
	run()
	return nil
}
