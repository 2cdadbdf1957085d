// Package listeners reacts to basket events: it logs them and forwards
// notices to the websocket and SSE feeds.
package listeners

import (
	"errors"

	"github.com/diybuddy/projectbuddy/app/events"
	"github.com/diybuddy/projectbuddy/app/models"
	"github.com/diybuddy/projectbuddy/app/services"
	"github.com/diybuddy/projectbuddy/pkg/event"
	"github.com/diybuddy/projectbuddy/pkg/logger"
)

// Publisher receives notice messages; *ws.Hub and *sse.Broker satisfy it.
type Publisher interface {
	Publish(v any) error
}

// Message is what subscribers of the notice feed receive.
type Message struct {
	Kind     services.ChangeKind `json:"kind"`
	Notice   *models.Notice      `json:"notice"`
	OrderRef string              `json:"orderRef,omitempty"`
}

// Register subscribes the listeners. Notices go to every non-nil
// publisher; with none, events are only logged.
func Register(pubs ...Publisher) {
	pub := fanOut(pubs)

	event.Listen(events.BasketChanged, func(payload any) {
		e, ok := payload.(events.Changed)
		if !ok {
			return
		}
		logger.Info("basket changed",
			"kind", e.Change.Kind,
			"product", e.Change.Product.ID,
			"source", e.Source,
		)
		if e.Notice != nil {
			publish(pub, Message{Kind: e.Change.Kind, Notice: e.Notice})
		}
	})

	event.Listen(events.BasketCheckedOut, func(payload any) {
		e, ok := payload.(events.CheckedOut)
		if !ok {
			return
		}
		logger.Info("basket checked out",
			"order_ref", e.Receipt.OrderRef,
			"items", e.Receipt.Items,
			"total", e.Receipt.Totals.Total,
			"source", e.Source,
		)
		publish(pub, Message{Kind: services.ChangeCleared, Notice: e.Notice, OrderRef: e.Receipt.OrderRef})
	})
}

type publishers []Publisher

func (ps publishers) Publish(v any) error {
	var errs []error
	for _, p := range ps {
		if err := p.Publish(v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func fanOut(pubs []Publisher) Publisher {
	var out publishers
	for _, p := range pubs {
		if p != nil {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func publish(pub Publisher, msg Message) {
	if pub == nil {
		return
	}
	if err := pub.Publish(msg); err != nil {
		logger.Warn("notice feed publish failed", "error", err)
	}
}
