package http

import (
	"context"
	"errors"
	"event-ticket/common/constant"
	"event-ticket/common/convert"
	"event-ticket/common/vars"
	"event-ticket/model"
	"event-ticket/outbound/sqlgen"
	"github.com/jackc/pgx/v5"
	"log/slog"
	"net/http"
	"strconv"
)

type EventHttp struct{}

func RegisterEventHttp(mux *http.ServeMux) *EventHttp {
	in := &EventHttp{}

	mux.HandleFunc("GET /api/events", in.list)
	mux.HandleFunc("GET /api/events/{id}", in.get)

	return in
}

func (in *EventHttp) list(w http.ResponseWriter, r *http.Request) {
	events := vars.GetEvents()
	if events == nil {
		events = []model.EventResponse{}
	}

	writeJSONResponse(w, http.StatusOK, events)
}

func (in *EventHttp) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeErrorResponse(w, errInvalidRequest)
		return
	}

	event, ok := vars.FindEvent(id)
	if !ok {
		writeErrorResponse(w, errEventNotFound)
		return
	}

	writeJSONResponse(w, http.StatusOK, event)
}

// loadEvent reads the authoritative event record. The catalog snapshot may lag behind it.
func loadEvent(ctx context.Context, querier *sqlgen.Queries, id int64, traceIdAttr slog.Attr) (model.EventResponse, error) {
	row, err := querier.FindEventById(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		slog.DebugContext(ctx, "event not found", traceIdAttr, slog.Int64("event_id", id))
		return model.EventResponse{}, errEventNotFound
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to find event", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		return model.EventResponse{}, err
	}

	event, err := convert.Event(row)
	if err != nil {
		slog.ErrorContext(ctx, "invalid event record", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		return model.EventResponse{}, err
	}

	return event, nil
}
