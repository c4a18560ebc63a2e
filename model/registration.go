package model

import (
	"event-ticket/common/constant"
	"time"
)

type RegisterRequest struct {
	EventId        int64           `json:"eventId" validate:"required"`
	Roster         []string        `json:"roster,omitempty" validate:"omitempty,max=50,dive,max=100"`
	AcademicFields *AcademicFields `json:"academicFields,omitempty"`
}

type Roster struct {
	LeadId  string   `json:"leadId"`
	Members []string `json:"members"`
}

type Ticket struct {
	Token string `json:"token"`
}

type Registration struct {
	Id              string         `json:"id"`
	EventId         int64          `json:"eventId"`
	RegistrantId    string         `json:"registrantId"`
	Roster          *Roster        `json:"roster,omitempty"`
	AcademicFields  AcademicFields `json:"academicFields"`
	PaymentState    string         `json:"paymentState"`
	AttendanceState string         `json:"attendanceState"`
	Ticket          *Ticket        `json:"ticket,omitempty"`
	QrCode          string         `json:"qrCode,omitempty"`
	OrderId         string         `json:"orderId,omitempty"`
	EventDetails    *EventSummary  `json:"eventDetails,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	AttendedAt      *time.Time     `json:"attendedAt,omitempty"`
}

// TicketValid reports whether the payment state allows a ticket to exist.
func TicketValid(paymentState string) bool {
	return paymentState == constant.PaymentStateNotRequired || paymentState == constant.PaymentStateVerified
}

// Active reports whether the registration holds, or is about to hold, a seat for its event.
func (r Registration) Active() bool {
	return r.PaymentState != constant.PaymentStateFailed
}

type RegistrationConfirmedEventMessage struct {
	RegistrationId string    `json:"registration_id"`
	EventId        int64     `json:"event_id"`
	EventTitle     string    `json:"event_title"`
	EventVenue     string    `json:"event_venue"`
	EventStartsAt  time.Time `json:"event_starts_at"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Amount         int64     `json:"amount"`
	Currency       string    `json:"currency"`
	TeamMembers    []string  `json:"team_members,omitempty"`
}

type RegistrationCheckedInEventMessage struct {
	RegistrationId string    `json:"registration_id"`
	EventId        int64     `json:"event_id"`
	ScannedBy      string    `json:"scanned_by"`
	AttendedAt     time.Time `json:"attended_at"`
}
