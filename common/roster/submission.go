package roster

import (
	"event-ticket/model"
)

// Submission is either Solo or Team, chosen by the event's team flag.
type Submission interface {
	EventId() int64
	isSubmission()
}

type Solo struct {
	Event  int64
	LeadId string
}

func (s Solo) EventId() int64 { return s.Event }
func (Solo) isSubmission()    {}

type Team struct {
	Event  int64
	Roster model.Roster
}

func (t Team) EventId() int64 { return t.Event }
func (Team) isSubmission()    {}

// ForEvent validates members against the event and returns the matching variant.
func ForEvent(event model.EventResponse, leadId string, members []string) (Submission, error) {
	if !event.IsTeamEvent {
		if len(members) > 0 {
			return nil, &ValidationError{
				Message: "this event does not accept team members",
				Fields:  map[string]string{"roster": "not allowed"},
			}
		}
		return Solo{Event: event.Id, LeadId: leadId}, nil
	}

	bounds, err := NewBounds(int(event.TeamSizeMin), int(event.TeamSizeMax))
	if err != nil {
		return nil, err
	}

	if verr := bounds.Check(members); verr != nil {
		return nil, verr
	}

	return Team{
		Event:  event.Id,
		Roster: model.Roster{LeadId: leadId, Members: Normalize(members)},
	}, nil
}

// MembersOf returns the additional member names, nil for solo submissions.
func MembersOf(s Submission) []string {
	if t, ok := s.(Team); ok {
		return t.Roster.Members
	}
	return nil
}

// RosterOf returns the roster pointer used by the wire and storage layers.
func RosterOf(s Submission) *model.Roster {
	if t, ok := s.(Team); ok {
		r := t.Roster
		return &r
	}
	return nil
}
