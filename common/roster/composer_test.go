package roster

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposer_PreallocatesRequiredSlots(t *testing.T) {
	c := NewComposer(Bounds{Min: 3, Max: 4})

	assert.Equal(t, []string{"", ""}, c.Members())
	assert.False(t, c.CanRemove())
	assert.True(t, c.CanAdd())
}

func TestComposer_AddStopsAtMaximum(t *testing.T) {
	c := NewComposer(Bounds{Min: 2, Max: 3})

	idx, err := c.Add()
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	_, err = c.Add()
	assert.ErrorIs(t, err, ErrRosterFull)
	assert.Len(t, c.Members(), 2)
}

func TestComposer_RemoveKeepsRequiredSlots(t *testing.T) {
	c := NewComposer(Bounds{Min: 2, Max: 4})

	assert.ErrorIs(t, c.Remove(0), ErrRosterAtMinimum)

	_, err := c.Add()
	require.NoError(t, err)
	require.NoError(t, c.Set(1, "Ben"))
	require.NoError(t, c.Remove(1))
	assert.Len(t, c.Members(), 1)

	assert.ErrorIs(t, c.Remove(5), ErrSlotOutOfRange)
	assert.ErrorIs(t, c.Set(-1, "x"), ErrSlotOutOfRange)
}

func TestComposer_BuildRequiresEveryName(t *testing.T) {
	c := NewComposer(Bounds{Min: 3, Max: 3})
	require.NoError(t, c.Set(0, "Asha"))

	_, err := c.Build("lead-1")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, map[string]string{"members[1]": "required"}, verr.Fields)
	assert.Equal(t, []string{"Asha", ""}, c.Members(), "invalid input is kept, never dropped")

	require.NoError(t, c.Set(1, " Ben "))
	r, err := c.Build("lead-1")
	require.NoError(t, err)
	assert.Equal(t, "lead-1", r.LeadId)
	assert.Equal(t, []string{"Asha", "Ben"}, r.Members)
}

func TestComposer_SizeNeverLeavesBounds(t *testing.T) {
	for min := 1; min <= 4; min++ {
		for max := min; max <= 5; max++ {
			c := NewComposer(Bounds{Min: min, Max: max})
			for i := 0; i < 10; i++ {
				_, _ = c.Add()
			}
			assert.Equal(t, max-1, len(c.Members()))
			for i := 0; i < 10; i++ {
				_ = c.Remove(0)
			}
			assert.Equal(t, min-1, len(c.Members()))
		}
	}
}
