package notification

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// queuedNotice is a send waiting in the dispatcher buffer.
type queuedNotice struct {
	noticeType NoticeType
	system     NotificationSystem
	data       NotificationData
}

// Dispatcher delivers notifications asynchronously through a bounded
// buffer and a single worker. Dispatch never blocks and never surfaces
// errors to the caller; failed sends are logged and full-buffer drops are
// counted so backpressure stays observable.
type Dispatcher struct {
	manager   *NotificationManager
	ch        chan queuedNotice
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closeOnce sync.Once
}

// NewDispatcher creates a dispatcher over the manager with the given
// buffer size and starts its worker.
func NewDispatcher(manager *NotificationManager, bufferSize int) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	d := &Dispatcher{
		manager: manager,
		ch:      make(chan queuedNotice, bufferSize),
		done:    make(chan struct{}),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case n := <-d.ch:
			d.deliver(n)
		case <-d.done:
			// Drain whatever is still buffered before exiting.
			for {
				select {
				case n := <-d.ch:
					d.deliver(n)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(n queuedNotice) {
	if err := d.manager.Send(n.noticeType, n.system, n.data); err != nil {
		slog.Error("failed to send notification", "noticeType", n.noticeType, "err", err)
	}
}

// Dispatch queues a notification for delivery. When the buffer is full
// the notification is dropped and counted rather than blocking the caller.
func (d *Dispatcher) Dispatch(noticeType NoticeType, system NotificationSystem, data NotificationData) {
	if d == nil {
		return
	}
	select {
	case d.ch <- queuedNotice{noticeType: noticeType, system: system, data: data}:
	case <-d.done:
	default:
		d.dropped.Add(1)
		slog.Warn("notification buffer full, dropping", "noticeType", noticeType, "dropped", d.dropped.Load())
	}
}

// Dropped returns the number of notifications dropped due to a full buffer.
func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}

// Close stops the worker after draining buffered notifications.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.done)
	})
	d.wg.Wait()
}
