package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nub.ac.bd/transport/internal/entity"
)

func TestDecodeHitIDs(t *testing.T) {
	raw := []byte(`{"hits":[{"id":"4"},{"id":"12"},{"id":"x"}],"query":"gate","limit":20}`)

	ids, err := decodeHitIDs(raw)
	require.NoError(t, err)
	assert.Equal(t, []uint{4, 12}, ids)

	_, err = decodeHitIDs([]byte("not json"))
	assert.Error(t, err)
}

func TestToDoc(t *testing.T) {
	stop := &entity.BusStop{
		Base:      entity.Base{ID: 7},
		Name:      "Mirpur 10",
		Latitude:  23.8069,
		Longitude: 90.3687,
		Sequence:  3,
		RouteID:   2,
	}

	doc := toDoc(stop, "Mirpur Line")
	assert.Equal(t, "7", doc.ID)
	assert.Equal(t, "Mirpur Line", doc.RouteName)
	assert.Equal(t, uint(2), doc.RouteID)
	assert.Equal(t, 3, doc.Sequence)
}
