package model

import "time"

type EventResponse struct {
	Id                   int64      `json:"id"`
	Title                string     `json:"title"`
	Category             string     `json:"category"`
	Venue                string     `json:"venue"`
	StartsAt             time.Time  `json:"startsAt"`
	IsTeamEvent          bool       `json:"isTeamEvent"`
	TeamSizeMin          int32      `json:"teamSizeMin,omitempty"`
	TeamSizeMax          int32      `json:"teamSizeMax,omitempty"`
	RequiresPayment      bool       `json:"requiresPayment"`
	PaymentAmount        int64      `json:"paymentAmount,omitempty"`
	Currency             string     `json:"currency,omitempty"`
	RegistrationOpensAt  *time.Time `json:"registrationOpensAt,omitempty"`
	RegistrationClosesAt *time.Time `json:"registrationClosesAt,omitempty"`
	RegistrationLimit    *int32     `json:"registrationLimit,omitempty"`
	Remaining            *int32     `json:"remaining,omitempty"`
}

// RegistrationOpen reports whether now falls inside the optional registration window.
func (e EventResponse) RegistrationOpen(now time.Time) bool {
	if e.RegistrationOpensAt != nil && now.Before(*e.RegistrationOpensAt) {
		return false
	}
	if e.RegistrationClosesAt != nil && !now.Before(*e.RegistrationClosesAt) {
		return false
	}
	return true
}

// EventSummary is the denormalized event data embedded in each registration.
type EventSummary struct {
	Id       int64     `json:"id"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Venue    string    `json:"venue"`
	StartsAt time.Time `json:"startsAt"`
}

func (e EventResponse) Summary() EventSummary {
	return EventSummary{
		Id:       e.Id,
		Title:    e.Title,
		Category: e.Category,
		Venue:    e.Venue,
		StartsAt: e.StartsAt,
	}
}
