package roster

import (
	"event-ticket/model"
)

// Composer collects additional team members for a lead. Required slots are
// pre-allocated and can be edited but never removed.
type Composer struct {
	bounds  Bounds
	members []string
}

func NewComposer(bounds Bounds) *Composer {
	return &Composer{
		bounds:  bounds,
		members: make([]string, bounds.MinMembers()),
	}
}

func (c *Composer) CanAdd() bool { return len(c.members) < c.bounds.MaxMembers() }

func (c *Composer) CanRemove() bool { return len(c.members) > c.bounds.MinMembers() }

// Add appends an empty member slot and returns its index.
func (c *Composer) Add() (int, error) {
	if !c.CanAdd() {
		return 0, ErrRosterFull
	}

	c.members = append(c.members, "")
	return len(c.members) - 1, nil
}

func (c *Composer) Remove(i int) error {
	if i < 0 || i >= len(c.members) {
		return ErrSlotOutOfRange
	}
	if !c.CanRemove() {
		return ErrRosterAtMinimum
	}

	c.members = append(c.members[:i], c.members[i+1:]...)
	return nil
}

func (c *Composer) Set(i int, name string) error {
	if i < 0 || i >= len(c.members) {
		return ErrSlotOutOfRange
	}

	c.members[i] = name
	return nil
}

// Members returns a copy of the current slots, blanks included.
func (c *Composer) Members() []string {
	out := make([]string, len(c.members))
	copy(out, c.members)
	return out
}

func (c *Composer) Validate() error {
	if verr := c.bounds.Check(c.members); verr != nil {
		return verr
	}
	return nil
}

// Build returns the normalized roster once every slot is filled.
func (c *Composer) Build(leadId string) (model.Roster, error) {
	if err := c.Validate(); err != nil {
		return model.Roster{}, err
	}

	return model.Roster{LeadId: leadId, Members: Normalize(c.members)}, nil
}
