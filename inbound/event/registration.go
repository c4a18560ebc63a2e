package event

import (
	"context"
	"encoding/json"
	"event-ticket/common"
	"event-ticket/common/constant"
	"event-ticket/common/contract"
	"event-ticket/common/metrics"
	"event-ticket/common/otel"
	"event-ticket/model"
	"fmt"
	"golang.org/x/text/message"
	"log/slog"
	"strings"
	"time"
)

const emailDateLayout = "Mon, 02 Jan 2006 15:04 MST"

type RegistrationEvent struct {
	Publisher     contract.Publisher
	AmountPrinter *message.Printer
	// Location renders event times in emails. Defaults to UTC.
	Location *time.Location

	Timeout time.Duration
}

func (in RegistrationEvent) ConfirmedHandler(ctx context.Context, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, in.Timeout)
	defer cancel()

	var req model.RegistrationConfirmedEventMessage
	err := json.Unmarshal(msg, &req)
	if err != nil {
		slog.WarnContext(ctx, "registration confirmed event unmarshal error", slog.Any(constant.LogFieldErr, err))
		return nil
	}

	ctx, span := otel.Tracer.Start(ctx, "RegistrationEvent.confirmed")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)
	slog.InfoContext(ctx, "registration confirmed event receive request", slog.Any(constant.LogFieldPayload, req.RegistrationId), traceIdAttr)

	if req.Email == "" {
		slog.WarnContext(ctx, "registration confirmed without email, skipping notification", traceIdAttr)
		return nil
	}

	err = common.PublishMessage(ctx, in.Publisher, constant.SubjectSendEmail, model.SendEmailEventMessage{
		To:      req.Email,
		Subject: fmt.Sprintf("Registration Confirmed: %s", req.EventTitle),
		Body:    in.buildConfirmationEmailBody(req),
	})
	if err != nil {
		slog.ErrorContext(ctx, "registration confirmed event publish error", slog.Any(constant.LogFieldErr, err), traceIdAttr)
		return err
	}

	slog.DebugContext(ctx, "registration confirmed event publish success", traceIdAttr)

	return nil
}

func (in RegistrationEvent) buildConfirmationEmailBody(req model.RegistrationConfirmedEventMessage) string {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}

	team := "Solo"
	if len(req.TeamMembers) > 0 {
		team = fmt.Sprintf("%s (lead), %s", req.Name, strings.Join(req.TeamMembers, ", "))
	}

	return fmt.Sprintf(constant.EmailRegistrationConfirmedTemplate,
		req.Name,
		constant.TicketIdPrefix+req.RegistrationId,
		req.EventTitle,
		req.EventStartsAt.In(loc).Format(emailDateLayout),
		req.EventVenue,
		common.FormatAmount(in.AmountPrinter, req.Amount, req.Currency),
		team,
	)
}

func (in RegistrationEvent) CheckedInHandler(ctx context.Context, msg []byte) error {
	var req model.RegistrationCheckedInEventMessage
	err := json.Unmarshal(msg, &req)
	if err != nil {
		slog.WarnContext(ctx, "registration checked in event unmarshal error", slog.Any(constant.LogFieldErr, err))
		return nil
	}

	metrics.RecordAttendance(req.EventId)
	slog.InfoContext(ctx, "registration checked in",
		slog.String("registration_id", req.RegistrationId),
		slog.Int64("event_id", req.EventId),
		slog.String("scanned_by", req.ScannedBy),
		slog.Time("attended_at", req.AttendedAt),
	)

	return nil
}
