package infrastructure

import (
	"context"
	"sync"

	"dicehall/domain/events"

	log "github.com/sirupsen/logrus"
)

// LocalHandler reacts to an event inside the publishing process
type LocalHandler func(ctx context.Context, event events.Event) error

// localHandlers dispatches events to in-process handlers before they leave the process
type localHandlers struct {
	mu       sync.RWMutex
	handlers map[events.EventType][]LocalHandler
}

// RegisterLocalHandler registers a handler that will be invoked locally for events
func (l *localHandlers) RegisterLocalHandler(eventType events.EventType, handler LocalHandler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.handlers == nil {
		l.handlers = make(map[events.EventType][]LocalHandler)
	}
	l.handlers[eventType] = append(l.handlers[eventType], handler)
	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(l.handlers[eventType]),
	}).Info("Registered local event handler")
}

func (l *localHandlers) dispatch(ctx context.Context, event events.Event) {
	l.mu.RLock()
	handlers := l.handlers[event.Type()]
	l.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			// local handler errors never block publishing
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"error":     err,
			}).Error("Local event handler failed")
		}
	}
}
