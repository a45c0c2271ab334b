package inventory

import (
	"errors"
	"testing"

	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReservation(t *testing.T) {
	t.Run("populates only the requested counter", func(t *testing.T) {
		r, err := NewReservation(uuid.New(), uuid.New(), UnitTypeBox, 2, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(2), r.BoxCount)
		assert.Equal(t, int64(0), r.UnitCount)
		assert.True(t, r.Lifecycle.IsActive())
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		_, err := NewReservation(uuid.New(), uuid.New(), UnitTypeUnit, 0, "alice")
		assert.True(t, errors.Is(err, shared.ErrValidationFailed))
	})
}

func TestReservation_Add(t *testing.T) {
	t.Run("repeated adds accumulate", func(t *testing.T) {
		r, err := NewReservation(uuid.New(), uuid.New(), UnitTypeUnit, 1, "alice")
		require.NoError(t, err)
		for _, q := range []int64{2, 3, 4} {
			require.NoError(t, r.Add(UnitTypeUnit, q, "alice"))
		}
		assert.Equal(t, int64(10), r.UnitCount)
		assert.Equal(t, int64(0), r.BoxCount)
	})

	t.Run("counters are independent", func(t *testing.T) {
		r, err := NewReservation(uuid.New(), uuid.New(), UnitTypeUnit, 5, "alice")
		require.NoError(t, err)
		require.NoError(t, r.Add(UnitTypeBox, 1, "alice"))
		assert.Equal(t, int64(5), r.Count(UnitTypeUnit))
		assert.Equal(t, int64(1), r.Count(UnitTypeBox))
	})

	t.Run("released reservation cannot grow", func(t *testing.T) {
		r, err := NewReservation(uuid.New(), uuid.New(), UnitTypeUnit, 5, "alice")
		require.NoError(t, err)
		assert.True(t, r.Release("bob"))
		assert.False(t, r.Release("bob"))
		assert.True(t, errors.Is(r.Add(UnitTypeUnit, 1, "bob"), shared.ErrInvalidState))
	})
}

func TestAvailable(t *testing.T) {
	assert.Equal(t, int64(7), Available(10, 3))
	assert.Equal(t, int64(0), Available(3, 10))
}
