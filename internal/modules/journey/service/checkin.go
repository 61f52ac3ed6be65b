package journey

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"nub.ac.bd/transport/internal/entity"
	"nub.ac.bd/transport/internal/modules/journey/dto"
	"nub.ac.bd/transport/internal/modules/journey/repository"
	"nub.ac.bd/transport/pkg/apperror"
	pkgdto "nub.ac.bd/transport/pkg/dto"
	"nub.ac.bd/transport/pkg/sanitize"
)

// authorize lets the manager who started the journey through, then any
// active manager of the same bus.
func (s *journeyService) authorize(ctx context.Context, journey *entity.BusJourney, userID uint, denied string) error {
	if journey.Manager != nil && journey.Manager.UserID == userID {
		return nil
	}

	ok, err := s.managers.IsBusManager(ctx, userID, journey.BusID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.Forbidden("%s", denied)
	}
	return nil
}

func (s *journeyService) findStop(ctx context.Context, id uint) (*entity.BusStop, error) {
	stop, err := s.stopRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.BadRequest("Bus stop with ID %d not found", id)
		}
		return nil, apperror.Internal(err)
	}
	return stop, nil
}

func (s *journeyService) CreateCheckIn(ctx context.Context, journeyID uint, req dto.CreateCheckInRequest, userID uint) (*entity.BusJourneyCheckIn, error) {
	journey, err := s.findJourney(ctx, journeyID)
	if err != nil {
		return nil, err
	}

	if !journey.IsInProgress() {
		return nil, apperror.BadRequest("Cannot check in: Journey is %s", journey.Status)
	}

	if err := s.authorize(ctx, journey, userID, "Only assigned bus managers can add check-ins to this journey"); err != nil {
		return nil, err
	}

	checkIn := &entity.BusJourneyCheckIn{
		JourneyID:    journey.ID,
		CheckInTime:  s.now(),
		Latitude:     *req.Latitude,
		Longitude:    *req.Longitude,
		LocationName: sanitize.Ptr(req.LocationName),
		Notes:        sanitize.Ptr(req.Notes),
	}

	if req.BusStopID != nil {
		stop, err := s.findStop(ctx, *req.BusStopID)
		if err != nil {
			return nil, err
		}
		checkIn.BusStopID = &stop.ID
		checkIn.BusStop = stop
	}

	if err := s.checkInRepo.Create(ctx, checkIn); err != nil {
		return nil, apperror.Internal(err)
	}

	s.publisher.PublishLocation(ctx, locationOf(journey, checkIn))
	return checkIn, nil
}

func (s *journeyService) UpdateCheckIn(ctx context.Context, checkInID uint, req dto.UpdateCheckInRequest, userID uint) (*entity.BusJourneyCheckIn, error) {
	checkIn, err := s.checkInRepo.FindByID(ctx, checkInID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Check-in with ID %d not found", checkInID)
		}
		return nil, apperror.Internal(err)
	}

	journey := checkIn.Journey
	if journey == nil {
		if journey, err = s.findJourney(ctx, checkIn.JourneyID); err != nil {
			return nil, err
		}
	}
	if err := s.authorize(ctx, journey, userID, "Only assigned bus managers can update check-ins for this journey"); err != nil {
		return nil, err
	}

	if req.Latitude != nil {
		checkIn.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		checkIn.Longitude = *req.Longitude
	}
	if req.LocationName != nil {
		checkIn.LocationName = sanitize.Ptr(req.LocationName)
	}
	if req.Notes != nil {
		checkIn.Notes = sanitize.Ptr(req.Notes)
	}
	if req.BusStopID.Set {
		if req.BusStopID.Value == nil {
			checkIn.BusStopID = nil
			checkIn.BusStop = nil
		} else {
			stop, err := s.findStop(ctx, *req.BusStopID.Value)
			if err != nil {
				return nil, err
			}
			checkIn.BusStopID = &stop.ID
			checkIn.BusStop = stop
		}
	}

	if err := s.checkInRepo.Update(ctx, checkIn); err != nil {
		return nil, apperror.Internal(err)
	}
	return checkIn, nil
}

func (s *journeyService) GetJourneyCheckIns(ctx context.Context, journeyID uint, filter dto.CheckInFilter) ([]*entity.BusJourneyCheckIn, error) {
	if _, err := s.findJourney(ctx, journeyID); err != nil {
		return nil, err
	}

	q := repository.CheckInQuery{
		JourneyID:    journeyID,
		BusStopID:    filter.BusStopID,
		LocationName: filter.LocationName,
	}

	from, to, ok, err := pkgdto.ResolveDateRange(filter.DateFrom, filter.DateTo, s.now())
	if err != nil {
		return nil, err
	}
	if ok {
		q.From = &from
		q.To = &to
	}

	checkIns, err := s.checkInRepo.FindByJourney(ctx, q)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return checkIns, nil
}
