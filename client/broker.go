package client

import (
	"context"
	"errors"
	"event-ticket/common/roster"
	"event-ticket/model"
	"net/http"
)

type PaymentOrder struct {
	EventId    int64
	OrderId    string
	Amount     int64
	Currency   string
	GatewayKey string
}

type Broker struct {
	Client *Client
}

// CreateOrder asks the server for a gateway order. Every call mints a new order; a failed attempt
// is never resumed.
func (b Broker) CreateOrder(ctx context.Context, eventId int64, sub roster.Submission, opts ...Option) (PaymentOrder, error) {
	if sub == nil || sub.EventId() != eventId {
		return PaymentOrder{}, &ValidationError{Message: "submission does not match the event"}
	}

	o := applyOptions(opts)

	var resp model.CreatePaymentOrderResponse
	err := b.Client.do(ctx, http.MethodPost, "/api/payment/create-order", model.CreatePaymentOrderRequest{
		EventId:        eventId,
		Roster:         roster.MembersOf(sub),
		AcademicFields: o.academic,
	}, &resp)
	if err != nil {
		return PaymentOrder{}, orderError(eventId, err)
	}

	return PaymentOrder{
		EventId:    eventId,
		OrderId:    resp.OrderId,
		Amount:     resp.Amount,
		Currency:   resp.Currency,
		GatewayKey: resp.GatewayKey,
	}, nil
}

func orderError(eventId int64, err error) error {
	if errors.Is(err, ErrUnauthorized) {
		return err
	}

	apiErr, ok := asAPIError(err)
	if !ok {
		return &OrderCreationError{EventId: eventId, Err: err}
	}

	switch apiErr.Status {
	case http.StatusBadRequest:
		if fields := apiErr.fields(); len(fields) > 0 {
			return apiErr.validation()
		}
	case http.StatusConflict:
		return &ConflictError{EventId: eventId, Message: apiErr.Message}
	}

	return &OrderCreationError{EventId: eventId, Status: apiErr.Status, Message: apiErr.Message, Err: apiErr}
}
