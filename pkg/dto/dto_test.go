package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nub.ac.bd/transport/pkg/apperror"
)

func TestResolveDateRange(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	t.Run("no bounds", func(t *testing.T) {
		_, _, ok, err := ResolveDateRange("", " ", now)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("only lower bound", func(t *testing.T) {
		start, end, ok, err := ResolveDateRange("2026-03-01", "", now)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, now.Add(24*time.Hour), end)
	})

	t.Run("only upper bound", func(t *testing.T) {
		start, end, ok, err := ResolveDateRange("", "2026-03-05T10:00:00Z", now)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, time.Unix(0, 0).UTC(), start)
		assert.Equal(t, time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC), end)
	})

	t.Run("garbage", func(t *testing.T) {
		_, _, _, err := ResolveDateRange("yesterday", "", now)
		assert.ErrorIs(t, err, apperror.ErrBadRequest)
	})
}

func TestPaginationNormalize(t *testing.T) {
	p := Pagination{}.Normalize()
	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)

	p = Pagination{Page: 3, Limit: 500}.Normalize()
	assert.Equal(t, MaxLimit, p.Limit)
	assert.Equal(t, 200, p.Offset())
}

func TestOptionalUint(t *testing.T) {
	var body struct {
		BusStopID OptionalUint `json:"bus_stop_id"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{}`), &body))
	assert.False(t, body.BusStopID.Set)

	require.NoError(t, json.Unmarshal([]byte(`{"bus_stop_id":null}`), &body))
	assert.True(t, body.BusStopID.Set)
	assert.Nil(t, body.BusStopID.Value)

	require.NoError(t, json.Unmarshal([]byte(`{"bus_stop_id":7}`), &body))
	require.NotNil(t, body.BusStopID.Value)
	assert.Equal(t, uint(7), *body.BusStopID.Value)
}

func TestNormalizeWeekdays(t *testing.T) {
	days, err := NormalizeWeekdays([]int64{5, 1, 5, 1, 3}, "Operating days")
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 1, 3}, []int64(days))

	days, err = NormalizeWeekdays([]int(nil), "Off days")
	require.NoError(t, err)
	assert.NotNil(t, days)
	assert.Empty(t, days)

	_, err = NormalizeWeekdays([]int64{2, 9}, "Operating days")
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
	assert.EqualError(t, err, "Operating days must be between 0 and 6 (Sunday to Saturday)")
}
