package watcher

import (
	"os"
	"sort"
)

type EventType = string

const (
	CREATED  EventType = "Created"
	MODIFIED EventType = "Modified"
	DELETED  EventType = "Deleted"
)

type Event struct {
	EventType EventType
	Path      string
	Info      os.FileInfo
}

// Events is a batch of file system events, keeping the latest event per file.
type Events struct {
	latestEvents map[string]Event
}

func newEventBatch() *Events {
	return &Events{
		latestEvents: make(map[string]Event),
	}
}

func (e *Events) addEvent(path string, event EventType, info os.FileInfo) {
	e.latestEvents[path] = Event{
		EventType: event,
		Path:      path,
		Info:      info,
	}
}

// Events reports the events in the batch, ordered by path.
func (e *Events) Events() []Event {
	events := make([]Event, 0, len(e.latestEvents))
	for _, event := range e.latestEvents {
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Path < events[j].Path
	})
	return events
}

// Paths reports the paths in the batch, ordered.
func (e *Events) Paths() []string {
	events := e.Events()
	paths := make([]string, len(events))
	for i, ev := range events {
		paths[i] = ev.Path
	}
	return paths
}
