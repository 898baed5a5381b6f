// Package worker runs statistical kernels off the caller's goroutine. A Unit
// talks to its owner by message passing only: requests go in through
// PostMessage, replies come back through the OnMessage handler and transport
// failures through the OnError handler.
package worker

import (
	"context"
	"fmt"
	"sync"

	"gostatcore/internal"
	apperrors "gostatcore/internal/errors"
	"gostatcore/internal/metrics"
)

// Handler computes the reply to one request message. A returned error is a
// transport-level failure of the unit, not a per-variable error.
type Handler func(msg any) (any, error)

// Unit is a single computation goroutine with an inbox
type Unit struct {
	kind    Kind
	handler Handler
	inbox   chan any
	ctx     context.Context
	cancel  context.CancelFunc
	logger  *internal.Logger

	mu        sync.Mutex
	onMessage func(any)
	onError   func(error)
	stopOnce  sync.Once
}

// Factory creates units; orchestrators receive one so tests can stub units
type Factory func(kind Kind) (*Unit, error)

// NewUnit starts a unit for a registered kind
func NewUnit(kind Kind) (*Unit, error) {
	h, ok := Lookup(kind)
	if !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown computation unit kind %q", kind))
	}
	return NewUnitWithHandler(kind, h), nil
}

// NewUnitWithHandler starts a unit running h
func NewUnitWithHandler(kind Kind, h Handler) *Unit {
	ctx, cancel := context.WithCancel(context.Background())
	u := &Unit{
		kind:    kind,
		handler: h,
		inbox:   make(chan any, 16),
		ctx:     ctx,
		cancel:  cancel,
		logger:  internal.DefaultLogger.With("Unit:" + string(kind)),
	}
	metrics.UnitStarted()
	go u.loop()
	return u
}

// Kind returns the registered kind the unit runs
func (u *Unit) Kind() Kind { return u.kind }

// SetOnMessage installs the reply handler
func (u *Unit) SetOnMessage(fn func(any)) {
	u.mu.Lock()
	u.onMessage = fn
	u.mu.Unlock()
}

// SetOnError installs the transport failure handler
func (u *Unit) SetOnError(fn func(error)) {
	u.mu.Lock()
	u.onError = fn
	u.mu.Unlock()
}

// PostMessage queues msg for the unit. It fails once the unit is terminated.
func (u *Unit) PostMessage(msg any) error {
	select {
	case <-u.ctx.Done():
		return apperrors.WorkerFailure(string(u.kind), fmt.Errorf("unit terminated"))
	default:
	}
	select {
	case u.inbox <- msg:
		return nil
	case <-u.ctx.Done():
		return apperrors.WorkerFailure(string(u.kind), fmt.Errorf("unit terminated"))
	}
}

// Terminate stops the unit. Handlers are cleared first so a reply computed
// concurrently is dropped. Safe to call more than once.
func (u *Unit) Terminate() {
	u.stopOnce.Do(func() {
		u.mu.Lock()
		u.onMessage = nil
		u.onError = nil
		u.mu.Unlock()
		u.cancel()
		metrics.UnitStopped()
	})
}

// Done is closed once the unit is terminated
func (u *Unit) Done() <-chan struct{} {
	return u.ctx.Done()
}

func (u *Unit) loop() {
	for {
		select {
		case <-u.ctx.Done():
			return
		case msg := <-u.inbox:
			reply, err := u.handle(msg)
			if err != nil {
				u.logger.Error("computation failed: %v", err)
				u.emitError(err)
				continue
			}
			u.emitMessage(reply)
		}
	}
}

func (u *Unit) handle(msg any) (reply any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.WorkerFailure(string(u.kind), fmt.Errorf("panic: %v", r))
		}
	}()
	return u.handler(msg)
}

func (u *Unit) emitMessage(reply any) {
	u.mu.Lock()
	fn := u.onMessage
	u.mu.Unlock()
	if fn == nil || u.ctx.Err() != nil {
		u.logger.Debug("dropping reply from terminated unit")
		return
	}
	fn(reply)
}

func (u *Unit) emitError(err error) {
	u.mu.Lock()
	fn := u.onError
	u.mu.Unlock()
	if fn == nil || u.ctx.Err() != nil {
		return
	}
	fn(err)
}
