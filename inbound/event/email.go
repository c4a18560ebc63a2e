package event

import (
	"context"
	"encoding/json"
	"event-ticket/common/constant"
	"event-ticket/common/metrics"
	"event-ticket/model"
	"github.com/oklog/ulid/v2"
	"log/slog"
	"time"
)

type EmailSender interface {
	Send(to []string, subject string, body string) error
}

type EmailEvent struct {
	EmailOutbound EmailSender
	Timeout       time.Duration
}

func (in EmailEvent) SendEmailHandler(ctx context.Context, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, in.Timeout)
	defer cancel()

	var req model.SendEmailEventMessage
	err := json.Unmarshal(msg, &req)
	if err != nil {
		slog.WarnContext(ctx, "send email event unmarshal error", slog.Any(constant.LogFieldErr, err))
		return nil
	}

	traceIdAttr := slog.String(constant.LogFieldTraceId, ulid.Make().String())
	reqAttr := slog.Any(constant.LogFieldPayload, string(msg))

	if req.To == "" {
		slog.WarnContext(ctx, "send email event without recipient", reqAttr, traceIdAttr)
		metrics.RecordEmail("skipped")
		return nil
	}

	err = in.EmailOutbound.Send([]string{req.To}, req.Subject, req.Body)
	if err != nil {
		slog.ErrorContext(ctx, "send email event error", slog.Any(constant.LogFieldErr, err), reqAttr, traceIdAttr)
		metrics.RecordEmail("error")
		return err
	}

	metrics.RecordEmail("sent")
	slog.DebugContext(ctx, "send email event success", traceIdAttr)

	return nil
}
