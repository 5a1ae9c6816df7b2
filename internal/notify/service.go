package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/essentials-shop/storefront/internal/kafka"
	"github.com/essentials-shop/storefront/internal/orders"
	"github.com/essentials-shop/storefront/internal/redisx"
)

// Service is the consumer side of the dispatcher: it delivers confirmation
// messages read off the order.confirmed topic.
type Service struct {
	Redis       *redis.Client
	Sender      EmailSender
	ServiceName string
	Log         *zap.Logger
}

// HandleOrderConfirmed is wired as the consumer handler. A returned error
// keeps the offset uncommitted so the message is retried; the dedup key is
// only written after a successful send.
func (s *Service) HandleOrderConfirmed(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderConfirmed {
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}

	msg, err := kafkax.UnwrapPayload[Message](env.Payload)
	if err != nil {
		return err
	}

	if err := s.Sender.Send(ctx, msg); err != nil {
		s.Log.Error("confirmation delivery failed",
			zap.String("event_id", env.EventID),
			zap.String("recipient", msg.Recipient),
			zap.Error(err))
		return err
	}

	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	s.Log.Info("order confirmation sent",
		zap.String("event_id", env.EventID),
		zap.String("recipient", msg.Recipient))
	return nil
}
