// Package convert maps storage rows onto API models.
package convert

import (
	"encoding/json"
	"event-ticket/common/constant"
	"event-ticket/model"
	"event-ticket/outbound/sqlgen"
	"fmt"
	"github.com/jackc/pgx/v5/pgtype"
	"time"
)

var ErrInvalidTeamBounds = fmt.Errorf("team event requires 1 <= teamSizeMin <= teamSizeMax")

// Event maps an events row, rejecting team events with inconsistent bounds.
func Event(row sqlgen.Event) (model.EventResponse, error) {
	if row.IsTeamEvent && (row.TeamSizeMin < 1 || row.TeamSizeMin > row.TeamSizeMax) {
		return model.EventResponse{}, fmt.Errorf("event %d: %w", row.ID, ErrInvalidTeamBounds)
	}

	event := model.EventResponse{
		Id:                   row.ID,
		Title:                row.Title,
		Category:             row.Category,
		Venue:                row.Venue,
		StartsAt:             row.StartsAt.Time,
		IsTeamEvent:          row.IsTeamEvent,
		RequiresPayment:      row.RequiresPayment,
		RegistrationOpensAt:  timePtr(row.RegistrationOpensAt),
		RegistrationClosesAt: timePtr(row.RegistrationClosesAt),
	}

	if row.IsTeamEvent {
		event.TeamSizeMin = row.TeamSizeMin
		event.TeamSizeMax = row.TeamSizeMax
	}

	if row.RequiresPayment {
		event.PaymentAmount = row.PaymentAmount
		event.Currency = row.Currency
	}

	if row.RegistrationLimit.Valid {
		limit := row.RegistrationLimit.Int32
		event.RegistrationLimit = &limit
	}

	return event, nil
}

func Registration(row sqlgen.Registration) (model.Registration, error) {
	reg := model.Registration{
		Id:           row.ID,
		EventId:      row.EventID,
		RegistrantId: row.RegistrantID,
		AcademicFields: model.AcademicFields{
			Institution: row.Institution,
			Department:  row.Department,
			Year:        row.Year,
		},
		PaymentState:    row.PaymentState,
		AttendanceState: row.AttendanceState,
		OrderId:         row.OrderID.String,
		CreatedAt:       row.CreatedAt.Time,
		AttendedAt:      timePtr(row.AttendedAt),
	}

	roster, err := UnmarshalRoster(row.Roster)
	if err != nil {
		return model.Registration{}, err
	}
	reg.Roster = roster

	if model.TicketValid(row.PaymentState) && row.TicketToken != "" {
		reg.Ticket = &model.Ticket{Token: row.TicketToken}
	}

	return reg, nil
}

func ListedRegistration(row sqlgen.ListRegistrationsByRegistrantRow) (model.Registration, error) {
	reg, err := Registration(sqlgen.Registration{
		ID:              row.ID,
		EventID:         row.EventID,
		RegistrantID:    row.RegistrantID,
		Roster:          row.Roster,
		Institution:     row.Institution,
		Department:      row.Department,
		Year:            row.Year,
		PaymentState:    row.PaymentState,
		AttendanceState: row.AttendanceState,
		TicketToken:     row.TicketToken,
		OrderID:         row.OrderID,
		CreatedAt:       row.CreatedAt,
		AttendedAt:      row.AttendedAt,
	})
	if err != nil {
		return model.Registration{}, err
	}

	reg.EventDetails = &model.EventSummary{
		Id:       row.EventID,
		Title:    row.EventTitle,
		Category: row.EventCategory,
		Venue:    row.EventVenue,
		StartsAt: row.EventStartsAt.Time,
	}

	return reg, nil
}

// PendingOrder surfaces an unpaid order as a registration in PENDING without a ticket.
func PendingOrder(row sqlgen.ListPendingPaymentOrdersByRegistrantRow, registrantId string) (model.Registration, error) {
	roster, err := UnmarshalRoster(row.Roster)
	if err != nil {
		return model.Registration{}, err
	}

	return model.Registration{
		Id:           row.ID,
		EventId:      row.EventID,
		RegistrantId: registrantId,
		Roster:       roster,
		AcademicFields: model.AcademicFields{
			Institution: row.Institution,
			Department:  row.Department,
			Year:        row.Year,
		},
		PaymentState:    constant.PaymentStatePending,
		AttendanceState: constant.AttendanceStateIssued,
		OrderId:         row.ID,
		EventDetails: &model.EventSummary{
			Id:       row.EventID,
			Title:    row.EventTitle,
			Category: row.EventCategory,
			Venue:    row.EventVenue,
			StartsAt: row.EventStartsAt.Time,
		},
		CreatedAt: row.CreatedAt.Time,
	}, nil
}

func Profile(row sqlgen.Registrant) model.ProfileResponse {
	return model.ProfileResponse{
		Id:          row.ID,
		DisplayName: row.DisplayName,
		Email:       row.Email,
		Phone:       row.Phone,
		AcademicFields: model.AcademicFields{
			Institution: row.Institution,
			Department:  row.Department,
			Year:        row.Year,
		},
	}
}

// MarshalRoster returns nil for solo registrations so the column stays NULL.
func MarshalRoster(roster *model.Roster) ([]byte, error) {
	if roster == nil {
		return nil, nil
	}
	return json.Marshal(roster)
}

func UnmarshalRoster(raw []byte) (*model.Roster, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var roster model.Roster
	if err := json.Unmarshal(raw, &roster); err != nil {
		return nil, fmt.Errorf("unmarshal roster: %w", err)
	}
	return &roster, nil
}

func Timestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func Text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func timePtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}
