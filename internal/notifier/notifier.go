// Package notifier fans a committed order out to the buyer (SMS, email) and
// to downstream consumers (kafka). Every channel is best effort.
package notifier

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Keoroanthony/farmmarket/internal/models"
)

// Notifier delivers one kind of order confirmation.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, user models.User, order models.Order) error
}

// Dispatcher runs every notifier in its own goroutine once an order has
// committed. Failures are logged and never reach the buyer.
type Dispatcher struct {
	notifiers []Notifier
	log       *zap.Logger
	timeout   time.Duration
	wg        sync.WaitGroup
}

func NewDispatcher(log *zap.Logger, notifiers ...Notifier) *Dispatcher {
	return &Dispatcher{notifiers: notifiers, log: log, timeout: 15 * time.Second}
}

// OrderPlaced returns immediately. The request context is detached so a
// finished HTTP request does not cancel delivery.
func (d *Dispatcher) OrderPlaced(ctx context.Context, user models.User, order models.Order) {
	ctx = context.WithoutCancel(ctx)
	for _, n := range d.notifiers {
		d.wg.Add(1)
		go func(n Notifier) {
			defer d.wg.Done()
			ctx, cancel := context.WithTimeout(ctx, d.timeout)
			defer cancel()

			if err := n.Notify(ctx, user, order); err != nil {
				d.log.Warn("order notification failed",
					zap.String("channel", n.Name()),
					zap.Uint("order_id", order.ID),
					zap.Error(err))
				return
			}
			d.log.Debug("order notification sent",
				zap.String("channel", n.Name()),
				zap.Uint("order_id", order.ID))
		}(n)
	}
}

// Wait blocks until in-flight notifications finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
