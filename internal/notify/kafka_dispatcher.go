package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/essentials-shop/storefront/internal/kafka"
	"github.com/essentials-shop/storefront/internal/orders"
)

// KafkaDispatcher hands the message to the notifier service via the
// order.confirmed topic. Publish is buffered and async, so dispatch never
// blocks the checkout response.
type KafkaDispatcher struct {
	Producer *kafkax.Producer
	Service  string
}

func (d *KafkaDispatcher) Dispatch(ctx context.Context, orderID string, msg Message) error {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderConfirmed,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      d.Service,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(msg),
	}
	d.Producer.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderConfirmed)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
	return nil
}
