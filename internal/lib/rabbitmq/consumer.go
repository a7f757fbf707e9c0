package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/psycontrol/internal/lib/sl"
)

// ErrPermanent marks a message that will never be handled successfully.
// Such messages are rejected without requeue.
var ErrPermanent = errors.New("permanent failure")

const consumerConcurrency = 10

// ConsumeMessages starts a consumer on queueName and runs handler for every
// delivery with bounded concurrency. It returns once the consumer is
// registered; deliveries are processed until ctx is done or the channel closes.
func ConsumeMessages(ctx context.Context, log *slog.Logger, ch *amqp.Channel, queueName string, handler func(context.Context, []byte) error) error {
	const op = "rabbitmq.ConsumeMessages"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("op", op), slog.String("queue", queueName))
	sem := make(chan struct{}, consumerConcurrency)
	go func() {
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					return
				}
				sem <- struct{}{}
				go func(d amqp.Delivery) {
					defer func() { <-sem }()
					settle(log, d, handler(ctx, d.Body))
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// acknowledger is the part of amqp.Delivery settle needs.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func settle(log *slog.Logger, d acknowledger, handleErr error) {
	if handleErr == nil {
		if err := d.Ack(false); err != nil {
			log.Error("failed to ack message", sl.Err(err))
		}
		return
	}
	requeue := !errors.Is(handleErr, ErrPermanent)
	log.Warn("message handling failed", sl.Err(handleErr), slog.Bool("requeue", requeue))
	if err := d.Nack(false, requeue); err != nil {
		log.Error("failed to nack message", sl.Err(err))
	}
}
