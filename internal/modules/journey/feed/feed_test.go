package feed

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nub.ac.bd/transport/internal/modules/journey/dto"
)

func TestPublishLocation(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	sub := client.Subscribe(ctx, LocationChannel)
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	location := dto.BusLocation{
		JourneyID:          3,
		BusID:              1,
		RegistrationNumber: "DHAKA-METRO-11",
		Latitude:           23.78,
		Longitude:          90.40,
		LastCheckinTime:    time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC),
		JourneyStatus:      "in_progress",
	}
	NewPublisher(client).PublishLocation(ctx, location)

	select {
	case msg := <-sub.Channel():
		var got dto.BusLocation
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, location, got)
	case <-time.After(2 * time.Second):
		t.Fatal("no location received")
	}
}

func TestNilClientPublisherIsNoop(t *testing.T) {
	p := NewPublisher(nil)
	assert.NotPanics(t, func() {
		p.PublishLocation(context.Background(), dto.BusLocation{JourneyID: 1})
	})
}
