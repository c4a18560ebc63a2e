package cmd

import (
	"context"
	"event-ticket/common/constant"
	"github.com/nats-io/nats.go/jetstream"
	"log"
	"log/slog"
	"time"
)

type messageHandler func(ctx context.Context, msg []byte) error

// consumeQueue runs a durable work-queue consumer until ctx is done. A handler error naks the
// message for redelivery; unknown subjects are acked and dropped.
func consumeQueue(
	ctx context.Context,
	st jetstream.Stream,
	consumerCfg jetstream.ConsumerConfig,
	handlers map[string]messageHandler,
) {
	cons, err := st.CreateOrUpdateConsumer(ctx, consumerCfg)
	if err != nil {
		log.Fatalln("failed to create consumer", err)
	}

	iter, err := cons.Messages()
	if err != nil {
		log.Fatalln("failed to open message iterator", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
				msg, err := iter.Next()
				if err != nil && err != jetstream.ErrMsgIteratorClosed {
					slog.ErrorContext(ctx, "Error fetching message", slog.Any(constant.LogFieldErr, err))
					continue
				}

				if msg == nil {
					continue
				}

				handler, ok := handlers[msg.Subject()]
				if !ok {
					slog.WarnContext(ctx, "no handler for subject", slog.String("subject", msg.Subject()))
					_ = msg.Ack()
					continue
				}

				if err := handler(ctx, msg.Data()); err != nil {
					_ = msg.NakWithDelay(1 * time.Second)
					continue
				}

				if err := msg.Ack(); err != nil {
					slog.ErrorContext(ctx, "Error acknowledging message",
						slog.Any(constant.LogFieldErr, err),
						slog.Any(constant.LogFieldPayload, string(msg.Data())),
						slog.String("subject", msg.Subject()),
					)
					continue
				}
			}
		}
	}()

	slog.InfoContext(ctx, "queue consumer started", slog.String("consumer", consumerCfg.Durable))

	<-ctx.Done()

	iter.Stop()

	slog.InfoContext(ctx, "queue consumer stopped", slog.String("consumer", consumerCfg.Durable))
}
