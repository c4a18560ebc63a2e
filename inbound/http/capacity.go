package http

import (
	"context"
	"event-ticket/common/constant"
	"event-ticket/model"
	"event-ticket/outbound/sqlgen"
	"fmt"
	"github.com/redis/go-redis/v9"
	"log/slog"
)

// reserveSeat takes one seat from the event's capacity counter. Events without a limit always have room.
// A missing counter is seeded from storage first; DECR on an absent key would read as sold out.
func reserveSeat(ctx context.Context, cache *redis.Client, querier *sqlgen.Queries, event model.EventResponse, traceIdAttr slog.Attr) (bool, error) {
	if event.RegistrationLimit == nil {
		return true, nil
	}

	key := fmt.Sprintf(constant.EachEventCapacityKey, event.Id)

	exists, err := cache.Exists(ctx, key).Result()
	if err != nil {
		slog.ErrorContext(ctx, "failed to check event capacity", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		return false, err
	}

	if exists == 0 {
		if err := seedCapacity(ctx, cache, querier, event.Id, key, traceIdAttr); err != nil {
			return false, err
		}
	}

	remaining, err := cache.Decr(ctx, key).Result()
	if err != nil {
		slog.ErrorContext(ctx, "failed to decrement event capacity", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		return false, err
	}

	if remaining < 0 {
		slog.DebugContext(ctx, "event registration limit reached", traceIdAttr, slog.Int64("event_id", event.Id))
		if err := cache.Incr(ctx, key).Err(); err != nil {
			slog.ErrorContext(ctx, "failed to restore event capacity", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		}
		return false, nil
	}

	return true, nil
}

// seedCapacity sets the counter to limit minus seats held in storage. SETNX keeps a concurrent seed intact.
func seedCapacity(ctx context.Context, cache *redis.Client, querier *sqlgen.Queries, eventId int64, key string, traceIdAttr slog.Attr) error {
	seats, err := querier.CountUsedSeatsByEvent(ctx, eventId)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count used seats", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		return err
	}

	remaining := max(int64(seats.RegistrationLimit)-seats.Used, 0)
	if err := cache.SetNX(ctx, key, remaining, 0).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to seed event capacity", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		return err
	}

	slog.InfoContext(ctx, "event capacity seeded", traceIdAttr, slog.Int64("event_id", eventId), slog.Int64("remaining", remaining))
	return nil
}

// releaseSeat gives a seat back. A missing counter is left missing: the next seed counts from storage,
// which already reflects the release, while INCR would create a counter holding a single seat.
func releaseSeat(ctx context.Context, cache *redis.Client, event model.EventResponse, traceIdAttr slog.Attr) {
	if event.RegistrationLimit == nil {
		return
	}

	key := fmt.Sprintf(constant.EachEventCapacityKey, event.Id)

	exists, err := cache.Exists(ctx, key).Result()
	if err != nil {
		slog.ErrorContext(ctx, "failed to check event capacity", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		return
	}

	if exists == 0 {
		slog.DebugContext(ctx, "event capacity not cached, skipping release", traceIdAttr, slog.Int64("event_id", event.Id))
		return
	}

	if err := cache.Incr(ctx, key).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to increment event capacity", traceIdAttr, slog.Any(constant.LogFieldErr, err))
	}
}
