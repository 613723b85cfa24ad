package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"barangay-events/internal/models"
)

// DefaultAsyncTimeout bounds each delivery to an async notifier.
const DefaultAsyncTimeout = 5 * time.Second

type Notifier interface {
	Notify(ctx context.Context, change models.EventChange) error
}

// Fanout delivers every change to all of its notifiers. One failing
// notifier does not stop the others.
//
// Inline notifiers run on the caller's goroutine and their errors are
// returned from Notify. Async notifiers run on their own goroutine with a
// context detached from the caller; their errors go to the OnError hook.
type Fanout struct {
	notifiers []named

	asyncTimeout time.Duration
	onError      func(name string, err error)
	wg           sync.WaitGroup
}

type named struct {
	name     string
	notifier Notifier
	async    bool
}

func NewFanout() *Fanout {
	return &Fanout{asyncTimeout: DefaultAsyncTimeout}
}

// Add registers an inline notifier under name, which is used in error messages.
func (f *Fanout) Add(name string, n Notifier) *Fanout {
	f.notifiers = append(f.notifiers, named{name: name, notifier: n})
	return f
}

// AddAsync registers a notifier that must never hold up the caller, such as
// a network broker.
func (f *Fanout) AddAsync(name string, n Notifier) *Fanout {
	f.notifiers = append(f.notifiers, named{name: name, notifier: n, async: true})
	return f
}

// OnError sets the hook that receives async delivery failures.
func (f *Fanout) OnError(fn func(name string, err error)) *Fanout {
	f.onError = fn
	return f
}

// WithAsyncTimeout overrides DefaultAsyncTimeout.
func (f *Fanout) WithAsyncTimeout(d time.Duration) *Fanout {
	f.asyncTimeout = d
	return f
}

func (f *Fanout) Len() int {
	return len(f.notifiers)
}

func (f *Fanout) Notify(ctx context.Context, change models.EventChange) error {
	var errs []error
	for _, n := range f.notifiers {
		if n.async {
			f.dispatch(ctx, n, change)
			continue
		}
		if err := n.notifier.Notify(ctx, change); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.name, err))
		}
	}
	return errors.Join(errs...)
}

func (f *Fanout) dispatch(ctx context.Context, n named, change models.EventChange) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.asyncTimeout)
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		defer cancel()
		if err := n.notifier.Notify(ctx, change); err != nil && f.onError != nil {
			f.onError(n.name, err)
		}
	}()
}

// Wait blocks until in-flight async deliveries have finished.
func (f *Fanout) Wait() {
	f.wg.Wait()
}
