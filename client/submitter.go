package client

import (
	"context"
	"errors"
	"event-ticket/common/roster"
	"event-ticket/model"
	"golang.org/x/sync/singleflight"
	"net/http"
	"strconv"
)

// Submitter registers for events that need no payment.
type Submitter struct {
	Client  *Client
	Tracker *Tracker

	group singleflight.Group
}

// Submit refuses locally when the tracker already holds an active registration for the event.
// Concurrent calls for the same event share one request; a caller giving up does not cancel it
// for the others.
func (s *Submitter) Submit(ctx context.Context, eventId int64, sub roster.Submission, opts ...Option) (model.Registration, error) {
	if sub == nil || sub.EventId() != eventId {
		return model.Registration{}, &ValidationError{Message: "submission does not match the event"}
	}

	if s.Tracker != nil && s.Tracker.HasActive(eventId) {
		return model.Registration{}, &ConflictError{EventId: eventId, Local: true}
	}

	o := applyOptions(opts)
	shared := context.WithoutCancel(ctx)

	ch := s.group.DoChan(strconv.FormatInt(eventId, 10), func() (any, error) {
		var reg model.Registration
		err := s.Client.do(shared, http.MethodPost, "/api/register", model.RegisterRequest{
			EventId:        eventId,
			Roster:         roster.MembersOf(sub),
			AcademicFields: o.academic,
		}, &reg)
		if err == nil && s.Tracker != nil {
			s.Tracker.Record(reg)
		}
		return reg, err
	})

	select {
	case <-ctx.Done():
		return model.Registration{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return model.Registration{}, submitError(eventId, res.Err)
		}
		return res.Val.(model.Registration), nil
	}
}

func submitError(eventId int64, err error) error {
	if errors.Is(err, ErrUnauthorized) {
		return err
	}

	apiErr, ok := asAPIError(err)
	if !ok {
		return err
	}

	switch apiErr.Status {
	case http.StatusConflict:
		return &ConflictError{EventId: eventId, Message: apiErr.Message}
	case http.StatusBadRequest:
		return apiErr.validation()
	}

	return apiErr
}
