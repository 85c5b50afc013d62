package controller

import (
	"sync"
	"time"

	"github.com/samber/lo"
)

// DefaultNoticeDuration is how long a notice stays before it is dismissed.
const DefaultNoticeDuration = 3 * time.Second

type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

type Notice struct {
	ID      int
	Level   Level
	Message string
}

// Notices is a stack of transient messages. Each notice is dismissed on its
// own timer; onChange receives a snapshot after every change.
type Notices struct {
	mu       sync.Mutex
	duration time.Duration
	nextID   int
	items    []Notice
	timers   map[int]*time.Timer
	onChange func([]Notice)
}

func NewNotices(duration time.Duration, onChange func([]Notice)) *Notices {
	if duration <= 0 {
		duration = DefaultNoticeDuration
	}
	return &Notices{
		duration: duration,
		timers:   make(map[int]*time.Timer),
		onChange: onChange,
	}
}

// Show pushes a notice and returns its id.
func (n *Notices) Show(level Level, msg string) int {
	n.mu.Lock()
	n.nextID++
	id := n.nextID
	n.items = append(n.items, Notice{ID: id, Level: level, Message: msg})
	n.timers[id] = time.AfterFunc(n.duration, func() { n.Dismiss(id) })
	snapshot := n.snapshotLocked()
	n.mu.Unlock()

	n.notify(snapshot)
	return id
}

// Dismiss removes a notice early. Unknown ids are ignored.
func (n *Notices) Dismiss(id int) {
	n.mu.Lock()
	_, found := lo.Find(n.items, func(item Notice) bool { return item.ID == id })
	if !found {
		n.mu.Unlock()
		return
	}
	n.items = lo.Reject(n.items, func(item Notice, _ int) bool { return item.ID == id })
	if t, ok := n.timers[id]; ok {
		t.Stop()
		delete(n.timers, id)
	}
	snapshot := n.snapshotLocked()
	n.mu.Unlock()

	n.notify(snapshot)
}

// Active returns the notices currently shown, oldest first.
func (n *Notices) Active() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.snapshotLocked()
}

// Close stops pending timers without notifying.
func (n *Notices) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for id, t := range n.timers {
		t.Stop()
		delete(n.timers, id)
	}
}

func (n *Notices) snapshotLocked() []Notice {
	out := make([]Notice, len(n.items))
	copy(out, n.items)
	return out
}

func (n *Notices) notify(snapshot []Notice) {
	if n.onChange != nil {
		n.onChange(snapshot)
	}
}
