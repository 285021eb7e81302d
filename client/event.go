package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/repairtrack/repairdb/config"
	"github.com/repairtrack/repairdb/dialect/sql"
)

// EventType is a log level that can be delivered to On callbacks.
type EventType string

// Event types.
const (
	EventQuery EventType = config.LevelQuery
	EventInfo  EventType = config.LevelInfo
	EventWarn  EventType = config.LevelWarn
	EventError EventType = config.LevelError
)

// Emit targets of a log definition.
const (
	EmitStdout = config.EmitStdout
	EmitEvent  = config.EmitEvent
)

// LogDefinition routes one level to stdout, through the client logger,
// or to the callbacks registered with On.
type LogDefinition struct {
	Level EventType
	Emit  string
}

// Event is delivered to On callbacks. Query events carry the statement,
// its parameters and duration; other levels carry a message.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Query     string
	Params    []any
	Duration  time.Duration
	// Target is "client" or "transaction" for query events, and the
	// invocation for error events.
	Target  string
	TxID    string
	Message string
}

type emitter struct {
	mu       sync.RWMutex
	defs     []LogDefinition
	handlers map[EventType][]func(Event)
	log      *slog.Logger
}

func newEmitter(l *slog.Logger, defs []LogDefinition) *emitter {
	return &emitter{
		defs:     defs,
		handlers: make(map[EventType][]func(Event)),
		log:      l,
	}
}

func (e *emitter) on(t EventType, fn func(Event)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[t] = append(e.handlers[t], fn)
}

func (e *emitter) setLog(defs []LogDefinition) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.defs = append([]LogDefinition(nil), defs...)
}

// targets reports where events of level t go.
func (e *emitter) targets(t EventType) (stdout bool, handlers []func(Event)) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, d := range e.defs {
		if d.Level != t {
			continue
		}
		switch d.Emit {
		case EmitStdout:
			stdout = true
		case EmitEvent:
			handlers = e.handlers[t]
		}
	}
	return stdout, handlers
}

func (e *emitter) emit(ctx context.Context, ev Event) {
	stdout, handlers := e.targets(ev.Type)
	if !stdout && len(handlers) == 0 {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	if stdout {
		e.write(ctx, ev)
	}
	for _, h := range handlers {
		h(ev)
	}
}

func (e *emitter) write(ctx context.Context, ev Event) {
	switch ev.Type {
	case EventQuery:
		e.log.DebugContext(ctx, "query", "query", ev.Query, "params", ev.Params, "duration", ev.Duration, "target", ev.Target)
	case EventInfo:
		e.log.InfoContext(ctx, ev.Message)
	case EventWarn:
		e.log.WarnContext(ctx, ev.Message)
	case EventError:
		e.log.ErrorContext(ctx, ev.Message, "target", ev.Target)
	}
}

// queryHook converts driver statements into query events.
func (e *emitter) queryHook(ctx context.Context, q sql.QueryEvent) {
	e.emit(ctx, Event{
		Type:      EventQuery,
		Timestamp: q.Start,
		Query:     q.Query,
		Params:    q.Args,
		Duration:  q.Duration,
		Target:    q.Target(),
		TxID:      q.TxID,
	})
}

// slowHook reports slow statements as warnings.
func (e *emitter) slowHook(ctx context.Context, query string, _ []any, d time.Duration) {
	e.emit(ctx, Event{Type: EventWarn, Message: fmt.Sprintf("slow query (%s): %s", d, query)})
}

func (e *emitter) infof(ctx context.Context, format string, a ...any) {
	e.emit(ctx, Event{Type: EventInfo, Message: fmt.Sprintf(format, a...)})
}
