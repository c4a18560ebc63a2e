package http

import (
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
	"event-ticket/outbound/gateway"
	"event-ticket/outbound/sqlgen"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/skip2/go-qrcode"
	"github.com/spf13/viper"
	"golang.org/x/text/message"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"time"
)

const (
	verifyResultVerified   = "verified"
	verifyResultReplayed   = "replayed"
	verifyResultBadSig     = "invalid_signature"
	verifyResultExpired    = "expired"
	verifyResultConflict   = "conflict"
	verifyResultNotPending = "not_pending"
)

type PaymentHttp struct {
	Db            contract.DbConn
	Querier       *sqlgen.Queries
	Cache         *redis.Client
	Publisher     contract.Publisher
	Gateway       gateway.Gateway
	Validate      *validator.Validate
	AmountPrinter *message.Printer
	QREncoder     ticket.QRCodeEncoder

	TimeNow func() time.Time

	gatewaySecret  string
	orderTTL       time.Duration
	bulkExpireSize int32
	qrSize         int
}

func RegisterPaymentHttp(
	mux *http.ServeMux,
	cfg *viper.Viper,
	authn Authenticator,
	db contract.DbConn,
	querier *sqlgen.Queries,
	cache *redis.Client,
	publisher contract.Publisher,
	gw gateway.Gateway,
	validate *validator.Validate,
	amountPrinter *message.Printer,
) *PaymentHttp {
	in := &PaymentHttp{
		Db:            db,
		Querier:       querier,
		Cache:         cache,
		Publisher:     publisher,
		Gateway:       gw,
		Validate:      validate,
		AmountPrinter: amountPrinter,
		QREncoder:     qrcode.Encode,
		TimeNow:       time.Now,

		gatewaySecret:  cfg.GetString("gateway.key_secret"),
		orderTTL:       cfg.GetDuration("payment.order_ttl"),
		bulkExpireSize: cfg.GetInt32("payment.bulk_expire_size"),
		qrSize:         cfg.GetInt("registration.qr_size"),
	}

	mux.Handle("POST /api/payment/create-order", authn.Require()(in.createOrder))
	mux.Handle("POST /api/payment/verify", authn.Require()(in.verify))
	mux.Handle("POST /api/payment/cancel", authn.Require()(in.cancel))
	mux.Handle("POST /api/payment/expire", authn.Require(constant.RoleAdmin)(in.expire))

	return in
}

func (in PaymentHttp) createOrder(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOf(w, r)
	if !ok {
		return
	}

	var req model.CreatePaymentOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, errInvalidRequest)
		return
	}

	if err := in.Validate.Struct(req); err != nil {
		writeErrorResponse(w, err)
		return
	}

	ctx, span := otel.Tracer.Start(r.Context(), "PaymentHttp.createOrder")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)
	slog.InfoContext(ctx, "create payment order receive request", slog.Any(constant.LogFieldPayload, req), traceIdAttr)

	event, err := loadEvent(ctx, in.Querier, req.EventId, traceIdAttr)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}

	if !event.RequiresPayment {
		writeErrorResponse(w, &errs.HttpError{Code: http.StatusBadRequest, Message: "event does not require payment"})
		return
	}

	if !event.RegistrationOpen(in.TimeNow()) {
		writeErrorResponse(w, errWindowClosed)
		return
	}

	if req.Amount != nil && *req.Amount != event.PaymentAmount {
		slog.DebugContext(ctx, "ignoring client supplied amount", traceIdAttr,
			slog.Int64("client_amount", *req.Amount), slog.Int64("event_amount", event.PaymentAmount))
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

	order, err := in.Gateway.CreateOrder(ctx, gateway.CreateOrderRequest{
		Amount:   event.PaymentAmount,
		Currency: event.Currency,
		Receipt:  fmt.Sprintf("%d-%s", event.Id, identity.RegistrantId),
		Notes: map[string]string{
			"event_id":      fmt.Sprint(event.Id),
			"registrant_id": identity.RegistrantId,
		},
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create gateway order", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		releaseSeat(ctx, in.Cache, event, traceIdAttr)
		metrics.RecordPaymentOrder(event.Id, "gateway_error")
		writeErrorResponse(w, &errs.HttpError{Code: http.StatusBadGateway, Message: "Payment order creation failed"})
		return
	}

	rosterRaw, err := convert.MarshalRoster(roster.RosterOf(submission))
	if err != nil {
		releaseSeat(ctx, in.Cache, event, traceIdAttr)
		writeErrorResponse(w, err)
		return
	}

	err = in.Querier.InsertPaymentOrder(ctx, sqlgen.InsertPaymentOrderParams{
		ID:           order.Id,
		EventID:      event.Id,
		RegistrantID: identity.RegistrantId,
		Roster:       rosterRaw,
		Institution:  registrant.Institution,
		Department:   registrant.Department,
		Year:         registrant.Year,
		Amount:       event.PaymentAmount,
		Currency:     event.Currency,
		ExpiredAt:    convert.Timestamptz(in.TimeNow().Add(in.orderTTL)),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to insert payment order", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		releaseSeat(ctx, in.Cache, event, traceIdAttr)
		metrics.RecordPaymentOrder(event.Id, "storage_error")
		writeErrorResponse(w, err)
		return
	}

	metrics.RecordPaymentOrder(event.Id, constant.PaymentStatePending)
	slog.InfoContext(ctx, "create payment order success", traceIdAttr, slog.Any(constant.LogFieldResponse, order.Id))

	writeJSONResponse(w, http.StatusOK, model.CreatePaymentOrderResponse{
		OrderId:    order.Id,
		Amount:     event.PaymentAmount,
		Currency:   event.Currency,
		GatewayKey: in.Gateway.KeyId(),
	})
}

func (in PaymentHttp) verify(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOf(w, r)
	if !ok {
		return
	}

	var req model.VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, errInvalidRequest)
		return
	}

	if err := in.Validate.Struct(req); err != nil {
		writeErrorResponse(w, err)
		return
	}

	ctx, span := otel.Tracer.Start(r.Context(), "PaymentHttp.verify")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)
	slog.InfoContext(ctx, "verify payment receive request", slog.Any(constant.LogFieldPayload, req), traceIdAttr)

	tx, err := in.Db.Begin(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to begin transaction", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		writeErrorResponse(w, err)
		return
	}

	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rollback transaction", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		}
	}()

	withTx := in.Querier.WithTx(tx)

	order, err := withTx.FindPaymentOrderByIdForUpdate(ctx, req.OrderId)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && order.RegistrantID != identity.RegistrantId) {
		writeErrorResponse(w, &errs.HttpError{Code: http.StatusNotFound, Message: "Payment order not found"})
		return
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to find payment order", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		writeErrorResponse(w, err)
		return
	}

	event, err := loadEvent(ctx, withTx, order.EventID, traceIdAttr)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}

	switch order.Status {
	case constant.PaymentStateVerified:
		if order.PaymentID.String != req.PaymentId || order.Signature.String != req.Signature {
			metrics.RecordVerification(verifyResultConflict)
			writeJSONResponse(w, http.StatusConflict, model.VerifyPaymentResponse{Error: "Payment order already verified with a different payment"})
			return
		}

		row, err := withTx.FindRegistrationById(ctx, order.RegistrationID.String)
		if err != nil {
			slog.ErrorContext(ctx, "failed to find verified registration", traceIdAttr, slog.Any(constant.LogFieldErr, err))
			writeErrorResponse(w, err)
			return
		}

		reg, err := convert.Registration(row)
		if err != nil {
			writeErrorResponse(w, err)
			return
		}

		metrics.RecordVerification(verifyResultReplayed)
		presentRegistration(ctx, &reg, event.Summary(), in.QREncoder, in.qrSize, traceIdAttr)
		writeJSONResponse(w, http.StatusOK, model.VerifyPaymentResponse{Success: true, Registration: &reg})
		return
	case constant.PaymentStatePending:
	default:
		metrics.RecordVerification(verifyResultNotPending)
		writeJSONResponse(w, http.StatusBadRequest, model.VerifyPaymentResponse{Error: "Payment order is no longer valid, please start a new payment"})
		return
	}

	failOrder := func(result, message string) {
		cmd, err := withTx.MarkPaymentOrderFailed(ctx, sqlgen.MarkPaymentOrderFailedParams{
			ID:        order.ID,
			PaymentID: convert.Text(req.PaymentId),
			Signature: convert.Text(req.Signature),
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to mark payment order failed", traceIdAttr, slog.Any(constant.LogFieldErr, err))
			writeErrorResponse(w, err)
			return
		}

		if err := tx.Commit(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to commit transaction", traceIdAttr, slog.Any(constant.LogFieldErr, err))
			writeErrorResponse(w, err)
			return
		}

		if cmd.RowsAffected() > 0 {
			releaseSeat(ctx, in.Cache, event, traceIdAttr)
		}

		metrics.RecordVerification(result)
		writeJSONResponse(w, http.StatusBadRequest, model.VerifyPaymentResponse{Error: message})
	}

	if order.ExpiredAt.Valid && !in.TimeNow().Before(order.ExpiredAt.Time) {
		slog.DebugContext(ctx, "payment order expired", traceIdAttr)
		failOrder(verifyResultExpired, "Payment order expired, please start a new payment")
		return
	}

	if err := gateway.VerifySignature(in.gatewaySecret, order.ID, req.PaymentId, req.Signature); err != nil {
		slog.WarnContext(ctx, "payment signature mismatch", traceIdAttr, slog.String("order_id", order.ID))
		failOrder(verifyResultBadSig, "Payment signature verification failed")
		return
	}

	submissionRoster, err := convert.UnmarshalRoster(order.Roster)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}

	var submission roster.Submission = roster.Solo{Event: order.EventID, LeadId: order.RegistrantID}
	if submissionRoster != nil {
		submission = roster.Team{Event: order.EventID, Roster: *submissionRoster}
	}

	registrant := sqlgen.Registrant{
		ID:          order.RegistrantID,
		Institution: order.Institution,
		Department:  order.Department,
		Year:        order.Year,
	}

	reg, err := insertRegistration(ctx, withTx, event, submission, registrant, constant.PaymentStateVerified, order.ID, traceIdAttr)
	if errors.Is(err, errAlreadyExists) {
		metrics.RecordVerification(verifyResultConflict)
		writeJSONResponse(w, http.StatusConflict, model.VerifyPaymentResponse{Error: errAlreadyExists.Message})
		return
	}
	if err != nil {
		writeErrorResponse(w, err)
		return
	}

	cmd, err := withTx.MarkPaymentOrderVerified(ctx, sqlgen.MarkPaymentOrderVerifiedParams{
		ID:             order.ID,
		PaymentID:      convert.Text(req.PaymentId),
		Signature:      convert.Text(req.Signature),
		RegistrationID: convert.Text(reg.Id),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to mark payment order verified", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		writeErrorResponse(w, err)
		return
	}

	if cmd.RowsAffected() == 0 {
		slog.ErrorContext(ctx, "payment order left pending state during verification", traceIdAttr)
		writeErrorResponse(w, fmt.Errorf("payment order %s not updated", order.ID))
		return
	}

	if err := tx.Commit(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to commit transaction", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		writeErrorResponse(w, err)
		return
	}

	metrics.RecordVerification(verifyResultVerified)
	metrics.RecordRegistration(event.Id, reg.PaymentState)
	publishConfirmed(ctx, in.Publisher, reg, event, identity.Name, identity.Email, roster.MembersOf(submission), traceIdAttr)

	presentRegistration(ctx, &reg, event.Summary(), in.QREncoder, in.qrSize, traceIdAttr)

	slog.InfoContext(ctx, "verify payment success", traceIdAttr, slog.Any(constant.LogFieldResponse, reg.Id))

	writeJSONResponse(w, http.StatusOK, model.VerifyPaymentResponse{Success: true, Registration: &reg})
}

func (in PaymentHttp) cancel(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOf(w, r)
	if !ok {
		return
	}

	var req model.CancelPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, errInvalidRequest)
		return
	}

	if err := in.Validate.Struct(req); err != nil {
		writeErrorResponse(w, err)
		return
	}

	ctx, span := otel.Tracer.Start(r.Context(), "PaymentHttp.cancel")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)
	slog.InfoContext(ctx, "cancel payment receive request", slog.Any(constant.LogFieldPayload, req), traceIdAttr)

	eventId, err := in.Querier.CancelPaymentOrder(ctx, sqlgen.CancelPaymentOrderParams{
		ID:           req.OrderId,
		RegistrantID: identity.RegistrantId,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		order, err := in.Querier.FindPaymentOrderById(ctx, req.OrderId)
		if errors.Is(err, pgx.ErrNoRows) || (err == nil && order.RegistrantID != identity.RegistrantId) {
			writeErrorResponse(w, &errs.HttpError{Code: http.StatusNotFound, Message: "Payment order not found"})
			return
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to find payment order", traceIdAttr, slog.Any(constant.LogFieldErr, err))
			writeErrorResponse(w, err)
			return
		}

		slog.DebugContext(ctx, "payment order no longer pending", traceIdAttr, slog.String("status", order.Status))
		writeJSONResponse(w, http.StatusOK, model.CancelPaymentResponse{OrderId: order.ID, PaymentState: order.Status})
		return
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to cancel payment order", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		writeErrorResponse(w, err)
		return
	}

	event, err := loadEvent(ctx, in.Querier, eventId, traceIdAttr)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}

	releaseSeat(ctx, in.Cache, event, traceIdAttr)
	metrics.RecordPaymentOrder(eventId, constant.PaymentStateFailed)

	slog.InfoContext(ctx, "cancel payment success", traceIdAttr, slog.Any(constant.LogFieldResponse, req.OrderId))

	writeJSONResponse(w, http.StatusOK, model.CancelPaymentResponse{OrderId: req.OrderId, PaymentState: constant.PaymentStateFailed})
}

func (in PaymentHttp) expire(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer.Start(r.Context(), "PaymentHttp.expire")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)
	slog.InfoContext(ctx, "expire payment orders receive request", traceIdAttr)

	expiredOrders, err := in.Querier.BulkExpirePaymentOrders(ctx, sqlgen.BulkExpirePaymentOrdersParams{
		Limit:     in.bulkExpireSize,
		ExpiredAt: convert.Timestamptz(in.TimeNow()),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to expire payment orders", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		writeErrorResponse(w, err)
		return
	}

	if len(expiredOrders) == 0 {
		slog.DebugContext(ctx, "no expired payment orders", traceIdAttr)
		writeJSONResponse(w, http.StatusOK, model.ExpirePaymentResponse{Expired: 0})
		return
	}

	eventSeats := make(map[int64]int64)
	for _, order := range expiredOrders {
		if order.RegistrationLimit.Valid {
			eventSeats[order.EventID]++
		}
	}

	if len(eventSeats) > 0 {
		eventIds := slices.Sorted(maps.Keys(eventSeats))
		keys := make([]string, len(eventIds))
		for i, eventId := range eventIds {
			keys[i] = fmt.Sprintf(constant.EachEventCapacityKey, eventId)
		}

		// counters missing from the cache are seeded from storage on next use
		cached, err := in.Cache.MGet(ctx, keys...).Result()
		if err != nil {
			slog.ErrorContext(ctx, "failed to read event capacity", traceIdAttr, slog.Any(constant.LogFieldErr, err))
			writeErrorResponse(w, err)
			return
		}

		pipeline := in.Cache.Pipeline()
		for i, eventId := range eventIds {
			if cached[i] == nil {
				continue
			}
			pipeline.IncrBy(ctx, keys[i], eventSeats[eventId])
		}

		if _, err = pipeline.Exec(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to restore event capacity", traceIdAttr, slog.Any(constant.LogFieldErr, err))
			writeErrorResponse(w, err)
			return
		}
	}

	for _, order := range expiredOrders {
		metrics.RecordPaymentOrder(order.EventID, verifyResultExpired)

		err = common.PublishMessage(ctx, in.Publisher, constant.SubjectSendEmail, model.SendEmailEventMessage{
			To:      order.Email,
			Subject: "Payment Expired",
			Body:    in.buildPaymentExpiredEmailBody(order),
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to publish payment expired email", traceIdAttr, slog.Any(constant.LogFieldErr, err))
			writeErrorResponse(w, err)
			return
		}
	}

	slog.InfoContext(ctx, "expire payment orders success", slog.Any(constant.LogFieldResponse, len(expiredOrders)), traceIdAttr)

	writeJSONResponse(w, http.StatusOK, model.ExpirePaymentResponse{Expired: len(expiredOrders)})
}

func (in PaymentHttp) buildPaymentExpiredEmailBody(row sqlgen.BulkExpirePaymentOrdersRow) string {
	amount := common.FormatAmount(in.AmountPrinter, row.Amount, row.Currency)
	return fmt.Sprintf(constant.EmailPaymentExpiredTemplate, row.DisplayName, row.ID, row.EventTitle, amount)
}
