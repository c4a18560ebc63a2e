package cron

import (
	"context"
	"event-ticket/common"
	"event-ticket/common/constant"
	"event-ticket/common/convert"
	"event-ticket/common/vars"
	"event-ticket/model"
	"event-ticket/outbound/sqlgen"
	"fmt"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"log/slog"
	"strconv"
	"time"
)

type EventCron struct {
	Cfg     *viper.Viper
	Cache   *redis.Client
	Querier *sqlgen.Queries
}

func (in EventCron) Start(ctx context.Context) {
	refreshTicker := time.NewTicker(in.Cfg.GetDuration("cron.event.refresh.interval"))
	defer refreshTicker.Stop()

	in.refresh(ctx)

	slog.Info("event cron started")

	for {
		select {
		case <-refreshTicker.C:
			in.refresh(ctx)
		case <-ctx.Done():
			slog.Info("event cron stopped")
			return
		}
	}
}

// refresh rebuilds the catalog snapshot. On any failure the previous snapshot is kept.
func (in EventCron) refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, in.Cfg.GetDuration("cron.event.refresh.timeout"))
	defer cancel()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)

	slog.DebugContext(ctx, "refreshing events", traceIdAttr)

	rows, err := in.Querier.FindAllEvents(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to find events", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		return
	}

	events := make([]model.EventResponse, 0, len(rows))
	for _, row := range rows {
		event, err := convert.Event(row)
		if err != nil {
			slog.WarnContext(ctx, "skipping invalid event", traceIdAttr, slog.Any(constant.LogFieldErr, err))
			continue
		}
		events = append(events, event)
	}

	limited := make([]int, 0, len(events))
	capacityCacheKeys := make([]string, 0, len(events))
	for i, event := range events {
		if event.RegistrationLimit == nil {
			continue
		}
		limited = append(limited, i)
		capacityCacheKeys = append(capacityCacheKeys, fmt.Sprintf(constant.EachEventCapacityKey, event.Id))
	}

	if len(capacityCacheKeys) > 0 {
		capacities, err := in.Cache.MGet(ctx, capacityCacheKeys...).Result()
		if err != nil {
			slog.ErrorContext(ctx, "failed to get capacities from cache", traceIdAttr, slog.Any(constant.LogFieldErr, err))
			return
		}

		missing := false
		for i, capacity := range capacities {
			raw, ok := capacity.(string)
			if !ok || raw == "" {
				missing = true
				continue
			}

			remaining, err := strconv.ParseInt(raw, 10, 32)
			if err != nil {
				slog.ErrorContext(ctx, "failed to convert capacity to int", traceIdAttr, slog.Any(constant.LogFieldErr, err))
				return
			}

			value := int32(max(remaining, 0))
			events[limited[i]].Remaining = &value
		}

		if missing {
			slog.WarnContext(ctx, "capacity counters missing, seeding", traceIdAttr)
			if err := in.InitCapacityCache(ctx); err != nil {
				slog.ErrorContext(ctx, "failed to seed capacity counters", traceIdAttr, slog.Any(constant.LogFieldErr, err))
			}
		}
	}

	vars.SetEvents(events)

	slog.DebugContext(ctx, "events refreshed successfully", traceIdAttr, slog.Int("count", len(events)))
}

// InitCapacityCache seeds a counter for every limited event that has none. Existing
// counters are left alone so seats taken since startup are never handed out twice.
func (in EventCron) InitCapacityCache(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	seats, err := in.Querier.CountUsedSeats(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count used seats", slog.Any(constant.LogFieldErr, err))
		return fmt.Errorf("count used seats: %w", err)
	}

	if len(seats) == 0 {
		slog.InfoContext(ctx, "no limited events found to initialize")
		return nil
	}

	pipe := in.Cache.TxPipeline()
	for _, seat := range seats {
		remaining := max(int64(seat.RegistrationLimit)-seat.Used, 0)
		pipe.SetNX(ctx, fmt.Sprintf(constant.EachEventCapacityKey, seat.ID), remaining, 0)
	}

	if _, err = pipe.Exec(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to initialize event capacities in cache", slog.Any(constant.LogFieldErr, err))
		return fmt.Errorf("execute pipeline: %w", err)
	}

	slog.InfoContext(ctx, "event capacities initialized successfully")
	return nil
}
