package vars

import (
	"event-ticket/model"
	"sync/atomic"
)

// eventsPtr holds the current catalog snapshot. Readers never block the cron writer.
var eventsPtr atomic.Pointer[[]model.EventResponse]

// GetEvents returns the current catalog snapshot, or nil before the first refresh.
func GetEvents() []model.EventResponse {
	ptr := eventsPtr.Load()
	if ptr == nil {
		return nil
	}
	return *ptr
}

// SetEvents replaces the snapshot with a copy of events. Nil or empty clears it.
func SetEvents(events []model.EventResponse) {
	if len(events) == 0 {
		eventsPtr.Store(nil)
		return
	}

	eventsCopy := make([]model.EventResponse, len(events))
	copy(eventsCopy, events)
	eventsPtr.Store(&eventsCopy)
}

func FindEvent(id int64) (model.EventResponse, bool) {
	for _, event := range GetEvents() {
		if event.Id == id {
			return event, true
		}
	}
	return model.EventResponse{}, false
}
