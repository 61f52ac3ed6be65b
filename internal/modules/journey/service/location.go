package journey

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"nub.ac.bd/transport/internal/entity"
	"nub.ac.bd/transport/internal/modules/journey/dto"
	"nub.ac.bd/transport/pkg/apperror"
)

// locationOf derives the last known position: the latest check-in when there
// is one, otherwise the journey start.
func locationOf(journey *entity.BusJourney, latest *entity.BusJourneyCheckIn) dto.BusLocation {
	location := dto.BusLocation{
		JourneyID:       journey.ID,
		BusID:           journey.BusID,
		Latitude:        journey.StartLatitude,
		Longitude:       journey.StartLongitude,
		LastCheckinTime: journey.StartTime,
		JourneyStatus:   journey.Status,
	}
	if journey.Bus != nil {
		location.RegistrationNumber = journey.Bus.RegistrationNumber
	}
	if latest != nil {
		location.Latitude = latest.Latitude
		location.Longitude = latest.Longitude
		location.LastCheckinTime = latest.CheckInTime
		location.LocationName = latest.LocationName
	}
	return location
}

// latestCheckIn returns nil without error when the journey has no check-ins.
func (s *journeyService) latestCheckIn(ctx context.Context, journeyID uint) (*entity.BusJourneyCheckIn, error) {
	checkIn, err := s.checkInRepo.FindLatest(ctx, journeyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperror.Internal(err)
	}
	return checkIn, nil
}

func (s *journeyService) GetBusLocation(ctx context.Context, journeyID uint) (*dto.BusLocation, error) {
	journey, err := s.findJourney(ctx, journeyID)
	if err != nil {
		return nil, err
	}

	latest, err := s.latestCheckIn(ctx, journey.ID)
	if err != nil {
		return nil, err
	}

	location := locationOf(journey, latest)
	return &location, nil
}

func (s *journeyService) GetAllActiveBusLocations(ctx context.Context) ([]dto.BusLocation, error) {
	journeys, err := s.repo.FindActive(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	locations := make([]dto.BusLocation, 0, len(journeys))
	for _, journey := range journeys {
		latest, err := s.latestCheckIn(ctx, journey.ID)
		if err != nil {
			return nil, err
		}
		locations = append(locations, locationOf(journey, latest))
	}
	return locations, nil
}
