package client

import (
	"context"
	"errors"
	"event-ticket/common/constant"
	"event-ticket/model"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Proof is what the gateway widget hands back after a successful payment.
type Proof struct {
	OrderId   string
	PaymentId string
	Signature string
}

type Verifier struct {
	Client *Client
	// Tracker, when set, learns about verified registrations immediately.
	Tracker *Tracker
	Retries int
	Backoff time.Duration
}

// Verify confirms a payment. Transport failures are retried with the same proof, which the server
// answers idempotently.
func (v Verifier) Verify(ctx context.Context, proof Proof) (model.Registration, error) {
	req := model.VerifyPaymentRequest{
		OrderId:   proof.OrderId,
		PaymentId: proof.PaymentId,
		Signature: proof.Signature,
	}

	var (
		resp model.VerifyPaymentResponse
		err  error
	)
	for attempt := 0; attempt <= v.Retries; attempt++ {
		if attempt > 0 {
			slog.DebugContext(ctx, "retrying payment verification", slog.String("order_id", proof.OrderId), slog.Int("attempt", attempt))
			select {
			case <-ctx.Done():
				return model.Registration{}, &VerificationError{OrderId: proof.OrderId, Err: ctx.Err()}
			case <-time.After(v.Backoff):
			}
		}

		resp = model.VerifyPaymentResponse{}
		err = v.Client.do(ctx, http.MethodPost, "/api/payment/verify", req, &resp)
		if err == nil {
			break
		}
		if _, ok := asAPIError(err); ok || errors.Is(err, ErrUnauthorized) {
			break
		}
	}

	if err != nil {
		return model.Registration{}, verifyError(proof.OrderId, err)
	}

	if !resp.Success || resp.Registration == nil {
		return model.Registration{}, &VerificationError{OrderId: proof.OrderId, Message: resp.Error}
	}

	if v.Tracker != nil {
		v.Tracker.Record(*resp.Registration)
	}

	return *resp.Registration, nil
}

// Abandon reports a dismissed gateway widget. The order ends FAILED and no registration exists.
func (v Verifier) Abandon(ctx context.Context, orderId string) (string, error) {
	var resp model.CancelPaymentResponse
	err := v.Client.do(ctx, http.MethodPost, "/api/payment/cancel", model.CancelPaymentRequest{OrderId: orderId}, &resp)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return "", err
		}
		return "", fmt.Errorf("abandon %s: %w", orderId, err)
	}

	if resp.PaymentState == "" {
		resp.PaymentState = constant.PaymentStateFailed
	}

	if v.Tracker != nil {
		v.Tracker.ForgetOrder(orderId)
	}

	return resp.PaymentState, nil
}

func verifyError(orderId string, err error) error {
	if errors.Is(err, ErrUnauthorized) {
		return err
	}

	apiErr, ok := asAPIError(err)
	if !ok {
		return &VerificationError{OrderId: orderId, Err: err}
	}

	if apiErr.Status == http.StatusConflict {
		return &ConflictError{Message: apiErr.Message}
	}

	return &VerificationError{OrderId: orderId, Message: apiErr.Message, Err: apiErr}
}
