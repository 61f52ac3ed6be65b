package feed

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"nub.ac.bd/transport/internal/modules/journey/dto"
)

// LocationChannel carries every published bus location as JSON.
const LocationChannel = "bus_locations"

type Publisher interface {
	PublishLocation(ctx context.Context, location dto.BusLocation)
}

type redisPublisher struct {
	client *redis.Client
}

// NewPublisher returns a no-op publisher when client is nil.
func NewPublisher(client *redis.Client) Publisher {
	if client == nil {
		return noopPublisher{}
	}
	return &redisPublisher{client: client}
}

// PublishLocation is best effort; failures are logged and never surface to
// the request that produced the location.
func (p *redisPublisher) PublishLocation(ctx context.Context, location dto.BusLocation) {
	payload, err := json.Marshal(location)
	if err != nil {
		logrus.WithError(err).Warn("failed to encode bus location")
		return
	}
	if err := p.client.Publish(ctx, LocationChannel, payload).Err(); err != nil {
		logrus.WithError(err).WithField("journey_id", location.JourneyID).Warn("failed to publish bus location")
	}
}

type noopPublisher struct{}

func (noopPublisher) PublishLocation(context.Context, dto.BusLocation) {}
