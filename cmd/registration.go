package cmd

import (
	"context"
	"event-ticket/common"
	"event-ticket/common/constant"
	"event-ticket/inbound/event"
	"github.com/nats-io/nats.go/jetstream"
	"log"
	"log/slog"
	"time"
)

func runQueueRegistrationCmd(ctx context.Context) {
	cfg := newCfg("env")

	shutdownTracer := newTracer(ctx, cfg)
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			slog.Error("failed to shutdown tracer", slog.Any("error", err))
		}
	}()

	natsConn := newNats(cfg)
	defer natsConn.Close()

	js := newJs(natsConn)
	st := createStreamWorkQueue(ctx, js)

	location, err := time.LoadLocation(cfg.GetString("server.timezone"))
	if err != nil {
		log.Fatalln("invalid server.timezone", err)
	}

	registrationEvent := event.RegistrationEvent{
		Publisher:     js,
		AmountPrinter: common.NewAmountPrinter(),
		Location:      location,
		Timeout:       cfg.GetDuration("queue.registration.timeout"),
	}

	consumeQueue(ctx, st, jetstream.ConsumerConfig{
		Durable:       "consumer:registration",
		FilterSubject: constant.RegistrationWildcard,
		MaxDeliver:    cfg.GetInt("queue.registration.max_deliver"),
		AckWait:       cfg.GetDuration("queue.registration.ack_wait"),
	}, map[string]messageHandler{
		constant.SubjectRegistrationConfirmed: registrationEvent.ConfirmedHandler,
		constant.SubjectRegistrationCheckedIn: registrationEvent.CheckedInHandler,
	})
}
