package http

import (
	"encoding/json"
	"errors"
	"event-ticket/common"
	"event-ticket/common/constant"
	"event-ticket/common/contract"
	"event-ticket/common/convert"
	"event-ticket/common/metrics"
	"event-ticket/common/otel"
	"event-ticket/model"
	"event-ticket/outbound/sqlgen"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

type CheckInHttp struct {
	Querier   *sqlgen.Queries
	Publisher contract.Publisher
	Validate  *validator.Validate

	TimeNow func() time.Time
}

func RegisterCheckInHttp(
	mux *http.ServeMux,
	authn Authenticator,
	querier *sqlgen.Queries,
	publisher contract.Publisher,
	validate *validator.Validate,
) *CheckInHttp {
	in := &CheckInHttp{
		Querier:   querier,
		Publisher: publisher,
		Validate:  validate,
		TimeNow:   time.Now,
	}

	mux.Handle("POST /api/checkin", authn.Require(constant.RoleScanner, constant.RoleAdmin)(in.checkIn))

	return in
}

// checkIn flips ISSUED to ATTENDED in one conditional update, so of any number of
// concurrent scans of the same token exactly one succeeds.
func (in CheckInHttp) checkIn(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOf(w, r)
	if !ok {
		return
	}

	var req model.CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, errInvalidRequest)
		return
	}

	req.Token = strings.TrimSpace(req.Token)
	if err := in.Validate.Struct(req); err != nil {
		writeErrorResponse(w, err)
		return
	}

	ctx, span := otel.Tracer.Start(r.Context(), "CheckInHttp.checkIn")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)
	slog.InfoContext(ctx, "check-in receive request", traceIdAttr, slog.String("scanned_by", identity.RegistrantId))

	row, err := in.Querier.CheckInByToken(ctx, sqlgen.CheckInByTokenParams{
		TicketToken: req.Token,
		AttendedAt:  convert.Timestamptz(in.TimeNow()),
	})
	if errors.Is(err, pgx.ErrNoRows) {
		in.rejected(w, r, req.Token, traceIdAttr)
		return
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to check in ticket", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		writeErrorResponse(w, err)
		return
	}

	reg, err := convert.Registration(row)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}

	metrics.RecordCheckIn("ok")

	err = common.PublishMessage(ctx, in.Publisher, constant.SubjectRegistrationCheckedIn, model.RegistrationCheckedInEventMessage{
		RegistrationId: reg.Id,
		EventId:        reg.EventId,
		ScannedBy:      identity.RegistrantId,
		AttendedAt:     row.AttendedAt.Time,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to publish checked in message", traceIdAttr, slog.Any(constant.LogFieldErr, err))
	}

	slog.InfoContext(ctx, "check-in success", traceIdAttr, slog.Any(constant.LogFieldResponse, reg.Id))

	writeJSONResponse(w, http.StatusOK, model.CheckInResponse{Ok: true, Registration: &reg})
}

func (in CheckInHttp) rejected(w http.ResponseWriter, r *http.Request, token string, traceIdAttr slog.Attr) {
	ctx := r.Context()

	_, err := in.Querier.FindAttendanceStateByToken(ctx, token)
	if errors.Is(err, pgx.ErrNoRows) {
		metrics.RecordCheckIn(constant.CheckInErrNotFound)
		writeJSONResponse(w, http.StatusNotFound, model.CheckInResponse{Error: constant.CheckInErrNotFound})
		return
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to find attendance state", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		writeErrorResponse(w, err)
		return
	}

	slog.DebugContext(ctx, "ticket already used", traceIdAttr)
	metrics.RecordCheckIn(constant.CheckInErrAlreadyUsed)
	writeJSONResponse(w, http.StatusConflict, model.CheckInResponse{Error: constant.CheckInErrAlreadyUsed})
}
