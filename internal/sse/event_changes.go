package sse

import (
	"context"
	"sync"

	"barangay-events/internal/models"
)

// allEvents is the subscription key for the bulletin-wide feed. Event ids
// start at 1.
const allEvents int64 = 0

const clientBuffer = 10

// EventChangeEmitter fans event changes out to connected SSE clients, either
// for the whole bulletin or for a single event.
type EventChangeEmitter struct {
	clients     map[int64][]chan models.EventChange
	clientMutex sync.RWMutex
}

func NewEventChangeEmitter() *EventChangeEmitter {
	return &EventChangeEmitter{
		clients: make(map[int64][]chan models.EventChange),
	}
}

// Subscribe registers a client for every change. The channel is closed once
// ctx is done.
func (e *EventChangeEmitter) Subscribe(ctx context.Context) <-chan models.EventChange {
	return e.subscribe(ctx, allEvents)
}

// SubscribeToEvent registers a client for changes to one event.
func (e *EventChangeEmitter) SubscribeToEvent(ctx context.Context, eventID int64) <-chan models.EventChange {
	return e.subscribe(ctx, eventID)
}

func (e *EventChangeEmitter) subscribe(ctx context.Context, key int64) <-chan models.EventChange {
	clientChan := make(chan models.EventChange, clientBuffer)

	e.clientMutex.Lock()
	e.clients[key] = append(e.clients[key], clientChan)
	e.clientMutex.Unlock()

	go func() {
		<-ctx.Done()
		e.removeClient(key, clientChan)
	}()

	return clientChan
}

// Notify broadcasts change without blocking. A client whose buffer is full
// misses the change.
func (e *EventChangeEmitter) Notify(_ context.Context, change models.EventChange) error {
	// Sends happen under the read lock so removeClient cannot close a
	// channel mid-send.
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()

	for _, key := range []int64{allEvents, change.EventID} {
		for _, clientChan := range e.clients[key] {
			select {
			case clientChan <- change:
			default:
			}
		}
	}
	return nil
}

func (e *EventChangeEmitter) removeClient(key int64, clientChan chan models.EventChange) {
	e.clientMutex.Lock()
	defer e.clientMutex.Unlock()

	clients := e.clients[key]
	for i, ch := range clients {
		if ch == clientChan {
			e.clients[key] = append(clients[:i], clients[i+1:]...)
			close(clientChan)
			break
		}
	}

	if len(e.clients[key]) == 0 {
		delete(e.clients, key)
	}
}

// ClientCount returns the number of bulletin-wide subscribers.
func (e *EventChangeEmitter) ClientCount() int {
	return e.EventClientCount(allEvents)
}

func (e *EventChangeEmitter) EventClientCount(eventID int64) int {
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()
	return len(e.clients[eventID])
}
