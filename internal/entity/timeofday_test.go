package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nub.ac.bd/transport/pkg/apperror"
)

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("07:45")
	require.NoError(t, err)
	assert.Equal(t, NewTimeOfDay(7, 45), got)
	assert.Equal(t, "07:45", got.String())

	for _, bad := range []string{"24:00", "12:60", "7", "ab:cd", "", "12:30:99", "123:00"} {
		_, err := ParseTimeOfDay(bad)
		assert.ErrorIs(t, err, apperror.ErrBadRequest, bad)
	}
}

func TestTimeOfDayJSON(t *testing.T) {
	var body struct {
		Departure TimeOfDay `json:"departure_time"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"departure_time":"18:05"}`), &body))
	assert.Equal(t, NewTimeOfDay(18, 5), body.Departure)

	out, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"departure_time":"18:05"}`, string(out))

	err = json.Unmarshal([]byte(`{"departure_time":"25:00"}`), &body)
	assert.Error(t, err)
}

func TestTimeOfDayScanValue(t *testing.T) {
	var tod TimeOfDay
	require.NoError(t, tod.Scan("08:30:00"))
	assert.Equal(t, NewTimeOfDay(8, 30), tod)

	require.NoError(t, tod.Scan([]byte("21:15:00.000000")))
	assert.Equal(t, NewTimeOfDay(21, 15), tod)

	require.NoError(t, tod.Scan(time.Date(0, 1, 1, 6, 5, 0, 0, time.UTC)))
	assert.Equal(t, NewTimeOfDay(6, 5), tod)

	assert.Error(t, tod.Scan(42))

	v, err := NewTimeOfDay(9, 0).Value()
	require.NoError(t, err)
	assert.Equal(t, "09:00:00", v)
}

func TestBusIsOffDay(t *testing.T) {
	bus := Bus{OffDays: []int64{0, 5}}
	assert.True(t, bus.IsOffDay(5))
	assert.False(t, bus.IsOffDay(1))
}
