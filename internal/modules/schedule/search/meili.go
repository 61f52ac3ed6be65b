package search

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/meilisearch/meilisearch-go"
	"github.com/sirupsen/logrus"
	"nub.ac.bd/transport/internal/entity"
)

const stopIndex = "bus_stops"

// StopIndex keeps a full-text copy of bus stops.
type StopIndex interface {
	IndexStop(stop *entity.BusStop, routeName string) error
	IndexStops(stops []*entity.BusStop) error
	DeleteStop(id uint) error
	SearchStopIDs(q string, limit int) ([]uint, error)
}

type meiliStopIndex struct {
	client meilisearch.ServiceManager
}

func NewMeiliStopIndex(client meilisearch.ServiceManager) StopIndex {
	s := &meiliStopIndex{client: client}
	s.initIndex()
	return s
}

func (s *meiliStopIndex) initIndex() {
	filterable := []any{"route_id"}
	if _, err := s.client.Index(stopIndex).UpdateFilterableAttributes(&filterable); err != nil {
		logrus.WithError(err).Warn("failed to update bus_stops filterable attributes")
	}

	sortable := []string{"sequence"}
	if _, err := s.client.Index(stopIndex).UpdateSortableAttributes(&sortable); err != nil {
		logrus.WithError(err).Warn("failed to update bus_stops sortable attributes")
	}
}

type stopDoc struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	RouteID   uint    `json:"route_id"`
	RouteName string  `json:"route_name"`
	Sequence  int     `json:"sequence"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func toDoc(stop *entity.BusStop, routeName string) stopDoc {
	return stopDoc{
		ID:        strconv.FormatUint(uint64(stop.ID), 10),
		Name:      stop.Name,
		RouteID:   stop.RouteID,
		RouteName: routeName,
		Sequence:  stop.Sequence,
		Latitude:  stop.Latitude,
		Longitude: stop.Longitude,
	}
}

func (s *meiliStopIndex) IndexStop(stop *entity.BusStop, routeName string) error {
	task, err := s.client.Index(stopIndex).AddDocuments([]stopDoc{toDoc(stop, routeName)}, strPtr("id"))
	if err != nil {
		return err
	}
	logrus.WithField("task_uid", task.TaskUID).Debugf("indexed bus stop %d", stop.ID)
	return nil
}

// IndexStops expects each stop's Route to be loaded when a route name should
// be searchable.
func (s *meiliStopIndex) IndexStops(stops []*entity.BusStop) error {
	if len(stops) == 0 {
		return nil
	}
	docs := make([]stopDoc, 0, len(stops))
	for _, stop := range stops {
		routeName := ""
		if stop.Route != nil {
			routeName = stop.Route.Name
		}
		docs = append(docs, toDoc(stop, routeName))
	}
	_, err := s.client.Index(stopIndex).AddDocuments(docs, strPtr("id"))
	return err
}

func (s *meiliStopIndex) DeleteStop(id uint) error {
	_, err := s.client.Index(stopIndex).DeleteDocument(strconv.FormatUint(uint64(id), 10))
	return err
}

func (s *meiliStopIndex) SearchStopIDs(q string, limit int) ([]uint, error) {
	raw, err := s.client.Index(stopIndex).SearchRaw(q, &meilisearch.SearchRequest{
		Limit:                int64(limit),
		AttributesToRetrieve: []string{"id"},
	})
	if err != nil {
		return nil, err
	}
	return decodeHitIDs(*raw)
}

func decodeHitIDs(raw []byte) ([]uint, error) {
	var body struct {
		Hits []struct {
			ID string `json:"id"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]uint, 0, len(body.Hits))
	for _, hit := range body.Hits {
		id, err := strconv.ParseUint(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

func strPtr(s string) *string {
	return &s
}
