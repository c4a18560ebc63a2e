// Package roster validates team rosters and builds the solo/team registration variants.
//
// Team sizes count the lead as one slot: an event allowing teams of 2 to 4 accepts
// between 1 and 3 additional member names.
package roster

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrRosterFull      = errors.New("roster is full")
	ErrRosterAtMinimum = errors.New("required member slots cannot be removed")
	ErrSlotOutOfRange  = errors.New("member slot out of range")
	ErrInvalidBounds   = errors.New("team size bounds must satisfy 1 <= min <= max")
)

// ValidationError blocks progression to payment or submission. Fields maps a field path to its problem.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}

	return e.Message + " (" + strings.Join(parts, ", ") + ")"
}

// Bounds is the inclusive team size range, lead included.
type Bounds struct {
	Min int
	Max int
}

func NewBounds(min, max int) (Bounds, error) {
	if min < 1 || min > max {
		return Bounds{}, fmt.Errorf("%w: got min=%d max=%d", ErrInvalidBounds, min, max)
	}

	return Bounds{Min: min, Max: max}, nil
}

// MinMembers is the number of names required besides the lead.
func (b Bounds) MinMembers() int { return b.Min - 1 }

// MaxMembers is the number of names allowed besides the lead.
func (b Bounds) MaxMembers() int { return b.Max - 1 }

// Check validates member names against the bounds. Names are compared after trimming.
func (b Bounds) Check(members []string) *ValidationError {
	fields := make(map[string]string)
	for i, name := range members {
		if strings.TrimSpace(name) == "" {
			fields[fmt.Sprintf("members[%d]", i)] = "required"
		}
	}

	size := len(members) + 1
	switch {
	case size < b.Min:
		return &ValidationError{Message: fmt.Sprintf("minimum %d members required", b.Min), Fields: fields}
	case size > b.Max:
		return &ValidationError{Message: fmt.Sprintf("maximum %d members allowed", b.Max), Fields: fields}
	case len(fields) > 0:
		return &ValidationError{Message: "every team member needs a name", Fields: fields}
	}

	return nil
}

// Normalize trims every member name and returns a new slice.
func Normalize(members []string) []string {
	out := make([]string, len(members))
	for i, name := range members {
		out[i] = strings.Join(strings.Fields(name), " ")
	}
	return out
}
