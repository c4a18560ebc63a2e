package http

import (
	"context"
	"encoding/json"
	"errors"
	"event-ticket/common"
	"event-ticket/common/constant"
	"event-ticket/common/contract"
	"event-ticket/common/convert"
	"event-ticket/common/errs"
	"event-ticket/common/metrics"
	"event-ticket/common/otel"
	"event-ticket/common/roster"
	"event-ticket/common/ticket"
	"event-ticket/model"
	"event-ticket/outbound/sqlgen"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/skip2/go-qrcode"
	"github.com/spf13/viper"
	"log/slog"
	"net/http"
	"sort"
	"time"
)

type RegistrationHttp struct {
	Querier   *sqlgen.Queries
	Cache     *redis.Client
	Publisher contract.Publisher
	Validate  *validator.Validate
	QREncoder ticket.QRCodeEncoder

	TimeNow func() time.Time

	lockTTL time.Duration
	qrSize  int
}

func RegisterRegistrationHttp(
	mux *http.ServeMux,
	cfg *viper.Viper,
	authn Authenticator,
	querier *sqlgen.Queries,
	cache *redis.Client,
	publisher contract.Publisher,
	validate *validator.Validate,
) *RegistrationHttp {
	in := &RegistrationHttp{
		Querier:   querier,
		Cache:     cache,
		Publisher: publisher,
		Validate:  validate,
		QREncoder: qrcode.Encode,
		TimeNow:   time.Now,

		lockTTL: cfg.GetDuration("registration.lock_ttl"),
		qrSize:  cfg.GetInt("registration.qr_size"),
	}

	mux.Handle("POST /api/register", authn.Require()(in.register))
	mux.Handle("GET /api/my-registrations", authn.Require()(in.list))
	mux.Handle("GET /api/registrations/{id}/ticket.png", authn.Require()(in.ticket))

	return in
}

func (in RegistrationHttp) register(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOf(w, r)
	if !ok {
		return
	}

	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, errInvalidRequest)
		return
	}

	if err := in.Validate.Struct(req); err != nil {
		writeErrorResponse(w, err)
		return
	}

	ctx, span := otel.Tracer.Start(r.Context(), "RegistrationHttp.register")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)
	slog.InfoContext(ctx, "register receive request", slog.Any(constant.LogFieldPayload, req), traceIdAttr)

	event, err := loadEvent(ctx, in.Querier, req.EventId, traceIdAttr)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}

	if event.RequiresPayment {
		writeErrorResponse(w, &errs.HttpError{Code: http.StatusBadRequest, Message: "event requires payment"})
		return
	}

	if !event.RegistrationOpen(in.TimeNow()) {
		writeErrorResponse(w, errWindowClosed)
		return
	}

	submission, err := roster.ForEvent(event, identity.RegistrantId, req.Roster)
	if err != nil {
		slog.DebugContext(ctx, "roster rejected", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		writeErrorResponse(w, err)
		return
	}

	registrant, err := resolveRegistrant(ctx, in.Querier, identity, req.AcademicFields, traceIdAttr)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}

	lockKey := fmt.Sprintf(constant.RegistrationLock, event.Id, identity.RegistrantId)
	locked, err := in.Cache.SetNX(ctx, lockKey, true, in.lockDuration()).Result()
	if err != nil {
		slog.ErrorContext(ctx, "failed to set registration lock", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		writeErrorResponse(w, err)
		return
	}

	if !locked {
		slog.DebugContext(ctx, "registration already in progress", traceIdAttr)
		writeErrorResponse(w, &errs.HttpError{Code: http.StatusConflict, Message: "Registration already in progress"})
		return
	}

	defer func() {
		if err := in.Cache.Del(ctx, lockKey).Err(); err != nil {
			slog.ErrorContext(ctx, "failed to release registration lock", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		}
	}()

	exists, err := in.Querier.ExistsRegistrationByEventAndRegistrant(ctx, sqlgen.ExistsRegistrationByEventAndRegistrantParams{
		EventID:      event.Id,
		RegistrantID: identity.RegistrantId,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to check existing registration", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		writeErrorResponse(w, err)
		return
	}

	if exists {
		slog.DebugContext(ctx, "already registered", traceIdAttr)
		writeErrorResponse(w, errAlreadyExists)
		return
	}

	seat, err := reserveSeat(ctx, in.Cache, in.Querier, event, traceIdAttr)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}

	if !seat {
		writeErrorResponse(w, errLimitReached)
		return
	}

	reg, err := insertRegistration(ctx, in.Querier, event, submission, registrant, constant.PaymentStateNotRequired, "", traceIdAttr)
	if err != nil {
		releaseSeat(ctx, in.Cache, event, traceIdAttr)
		writeErrorResponse(w, err)
		return
	}

	metrics.RecordRegistration(event.Id, reg.PaymentState)
	publishConfirmed(ctx, in.Publisher, reg, event, registrant.DisplayName, registrant.Email, roster.MembersOf(submission), traceIdAttr)

	presentRegistration(ctx, &reg, event.Summary(), in.QREncoder, in.qrSize, traceIdAttr)

	slog.InfoContext(ctx, "register success", traceIdAttr, slog.Any(constant.LogFieldResponse, reg.Id))

	writeJSONResponse(w, http.StatusCreated, reg)
}

func (in RegistrationHttp) list(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOf(w, r)
	if !ok {
		return
	}

	ctx, span := otel.Tracer.Start(r.Context(), "RegistrationHttp.list")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)

	rows, err := in.Querier.ListRegistrationsByRegistrant(ctx, identity.RegistrantId)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list registrations", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		writeErrorResponse(w, err)
		return
	}

	pendingRows, err := in.Querier.ListPendingPaymentOrdersByRegistrant(ctx, sqlgen.ListPendingPaymentOrdersByRegistrantParams{
		RegistrantID: identity.RegistrantId,
		ExpiredAt:    convert.Timestamptz(in.TimeNow()),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to list pending payment orders", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		writeErrorResponse(w, err)
		return
	}

	registrations := make([]model.Registration, 0, len(rows)+len(pendingRows))
	for _, row := range rows {
		reg, err := convert.ListedRegistration(row)
		if err != nil {
			slog.ErrorContext(ctx, "failed to convert registration", traceIdAttr, slog.Any(constant.LogFieldErr, err))
			writeErrorResponse(w, err)
			return
		}

		presentRegistration(ctx, &reg, *reg.EventDetails, in.QREncoder, in.qrSize, traceIdAttr)
		registrations = append(registrations, reg)
	}

	for _, row := range pendingRows {
		reg, err := convert.PendingOrder(row, identity.RegistrantId)
		if err != nil {
			slog.ErrorContext(ctx, "failed to convert pending order", traceIdAttr, slog.Any(constant.LogFieldErr, err))
			writeErrorResponse(w, err)
			return
		}
		registrations = append(registrations, reg)
	}

	sort.SliceStable(registrations, func(i, j int) bool {
		return registrations[i].CreatedAt.After(registrations[j].CreatedAt)
	})

	writeJSONResponse(w, http.StatusOK, registrations)
}

func (in RegistrationHttp) ticket(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOf(w, r)
	if !ok {
		return
	}

	ctx, span := otel.Tracer.Start(r.Context(), "RegistrationHttp.ticket")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)
	notFound := &errs.HttpError{Code: http.StatusNotFound, Message: "Registration not found"}

	row, err := in.Querier.FindRegistrationById(ctx, r.PathValue("id"))
	if errors.Is(err, pgx.ErrNoRows) {
		writeErrorResponse(w, notFound)
		return
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to find registration", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		writeErrorResponse(w, err)
		return
	}

	if row.RegistrantID != identity.RegistrantId {
		writeErrorResponse(w, notFound)
		return
	}

	reg, err := convert.Registration(row)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}

	event, err := loadEvent(ctx, in.Querier, reg.EventId, traceIdAttr)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}

	summary := event.Summary()
	reg.EventDetails = &summary

	png, err := ticket.Render(ticket.ViewOf(reg, identity.Name), in.qrSizeOrDefault())
	if errors.Is(err, ticket.ErrTicketUnavailable) {
		writeErrorResponse(w, &errs.HttpError{Code: http.StatusConflict, Message: "Ticket not available"})
		return
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to render ticket", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		writeErrorResponse(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="ticket-%s.png"`, reg.Id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (in RegistrationHttp) lockDuration() time.Duration {
	if in.lockTTL <= 0 {
		return constant.RegistrationLockDefaultTTL
	}
	return in.lockTTL
}

func (in RegistrationHttp) qrSizeOrDefault() int {
	if in.qrSize <= 0 {
		return ticket.DefaultQRSize
	}
	return in.qrSize
}

// insertRegistration persists a registration with a fresh ticket token. A conflicting
// (event, registrant) pair yields errAlreadyExists.
func insertRegistration(
	ctx context.Context,
	querier *sqlgen.Queries,
	event model.EventResponse,
	submission roster.Submission,
	registrant sqlgen.Registrant,
	paymentState string,
	orderId string,
	traceIdAttr slog.Attr,
) (model.Registration, error) {
	teamRoster := roster.RosterOf(submission)
	rosterRaw, err := convert.MarshalRoster(teamRoster)
	if err != nil {
		return model.Registration{}, err
	}

	reg := model.Registration{
		Id:           ulid.Make().String(),
		EventId:      event.Id,
		RegistrantId: registrant.ID,
		Roster:       teamRoster,
		AcademicFields: model.AcademicFields{
			Institution: registrant.Institution,
			Department:  registrant.Department,
			Year:        registrant.Year,
		},
		PaymentState:    paymentState,
		AttendanceState: constant.AttendanceStateIssued,
		Ticket:          &model.Ticket{Token: uuid.NewString()},
		OrderId:         orderId,
	}

	createdAt, err := querier.InsertRegistration(ctx, sqlgen.InsertRegistrationParams{
		ID:           reg.Id,
		EventID:      reg.EventId,
		RegistrantID: reg.RegistrantId,
		Roster:       rosterRaw,
		Institution:  reg.AcademicFields.Institution,
		Department:   reg.AcademicFields.Department,
		Year:         reg.AcademicFields.Year,
		PaymentState: reg.PaymentState,
		TicketToken:  reg.Ticket.Token,
		OrderID:      convert.Text(orderId),
	})
	if errors.Is(err, pgx.ErrNoRows) {
		slog.DebugContext(ctx, "registration conflict", traceIdAttr)
		return model.Registration{}, errAlreadyExists
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to insert registration", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		return model.Registration{}, err
	}

	reg.CreatedAt = createdAt.Time
	return reg, nil
}

// presentRegistration attaches the event summary and, when a ticket exists, its QR image.
func presentRegistration(
	ctx context.Context,
	reg *model.Registration,
	summary model.EventSummary,
	encoder ticket.QRCodeEncoder,
	qrSize int,
	traceIdAttr slog.Attr,
) {
	reg.EventDetails = &summary

	if reg.Ticket == nil || encoder == nil {
		return
	}

	if qrSize <= 0 {
		qrSize = ticket.DefaultQRSize
	}

	dataURL, err := ticket.QRDataURL(reg.Ticket.Token, qrSize, encoder)
	if err != nil {
		slog.WarnContext(ctx, "failed to encode ticket qr", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		return
	}
	reg.QrCode = dataURL
}

// publishConfirmed is best effort: the registration is already committed when it runs.
func publishConfirmed(
	ctx context.Context,
	publisher contract.Publisher,
	reg model.Registration,
	event model.EventResponse,
	name, email string,
	members []string,
	traceIdAttr slog.Attr,
) {
	err := common.PublishMessage(ctx, publisher, constant.SubjectRegistrationConfirmed, model.RegistrationConfirmedEventMessage{
		RegistrationId: reg.Id,
		EventId:        event.Id,
		EventTitle:     event.Title,
		EventVenue:     event.Venue,
		EventStartsAt:  event.StartsAt,
		Name:           name,
		Email:          email,
		Amount:         event.PaymentAmount,
		Currency:       event.Currency,
		TeamMembers:    members,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to publish registration confirmed message", traceIdAttr, slog.Any(constant.LogFieldErr, err))
	}
}
