package journey

import (
	"context"
	"sort"
	"strings"
	"sync"

	"gorm.io/gorm"
	"nub.ac.bd/transport/internal/entity"
	busDto "nub.ac.bd/transport/internal/modules/bus/dto"
	"nub.ac.bd/transport/internal/modules/journey/dto"
	"nub.ac.bd/transport/internal/modules/journey/repository"
	"nub.ac.bd/transport/pkg/apperror"
)

type fakeJourneyRepo struct {
	mu       sync.Mutex
	journeys map[uint]*entity.BusJourney
	managers map[uint]*entity.BusManager
	buses    map[uint]*entity.Bus
	nextID   uint
}

func (r *fakeJourneyRepo) hydrate(j *entity.BusJourney) *entity.BusJourney {
	cp := *j
	cp.Bus = r.buses[j.BusID]
	cp.Manager = r.managers[j.ManagerID]
	return &cp
}

func (r *fakeJourneyRepo) CreateExclusive(_ context.Context, journey *entity.BusJourney) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, j := range r.journeys {
		if j.BusID == journey.BusID && j.IsInProgress() {
			return &repository.ActiveJourneyError{JourneyID: j.ID}
		}
	}
	r.nextID++
	journey.ID = r.nextID
	cp := *journey
	r.journeys[journey.ID] = &cp
	return nil
}

func (r *fakeJourneyRepo) FindByID(_ context.Context, id uint) (*entity.BusJourney, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.journeys[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.hydrate(j), nil
}

func (r *fakeJourneyRepo) FindActiveByBus(_ context.Context, busID uint) (*entity.BusJourney, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, j := range r.journeys {
		if j.BusID == busID && j.IsInProgress() {
			return r.hydrate(j), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeJourneyRepo) FindAll(_ context.Context, q repository.JourneyQuery) ([]*entity.BusJourney, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.BusJourney
	for _, j := range r.journeys {
		if q.BusID != nil && j.BusID != *q.BusID {
			continue
		}
		if q.Status != "" && j.Status != q.Status {
			continue
		}
		if q.StartFrom != nil && (j.StartTime.Before(*q.StartFrom) || j.StartTime.After(*q.StartTo)) {
			continue
		}
		out = append(out, r.hydrate(j))
	}
	sort.Slice(out, func(i, k int) bool { return out[i].StartTime.After(out[k].StartTime) })
	return out, int64(len(out)), nil
}

func (r *fakeJourneyRepo) FindActive(ctx context.Context) ([]*entity.BusJourney, error) {
	journeys, _, err := r.FindAll(ctx, repository.JourneyQuery{Status: entity.JourneyStatusInProgress})
	return journeys, err
}

func (r *fakeJourneyRepo) Finish(_ context.Context, journey *entity.BusJourney) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.journeys[journey.ID]
	if !ok || !stored.IsInProgress() {
		return false, nil
	}
	stored.EndTime = journey.EndTime
	stored.EndLatitude = journey.EndLatitude
	stored.EndLongitude = journey.EndLongitude
	stored.Status = journey.Status
	stored.Notes = journey.Notes
	return true, nil
}

type fakeCheckInRepo struct {
	mu       sync.Mutex
	checkIns map[uint]*entity.BusJourneyCheckIn
	journeys *fakeJourneyRepo
	nextID   uint
}

func (r *fakeCheckInRepo) Create(_ context.Context, checkIn *entity.BusJourneyCheckIn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	checkIn.ID = r.nextID
	cp := *checkIn
	r.checkIns[checkIn.ID] = &cp
	return nil
}

func (r *fakeCheckInRepo) FindByID(ctx context.Context, id uint) (*entity.BusJourneyCheckIn, error) {
	r.mu.Lock()
	c, ok := r.checkIns[id]
	r.mu.Unlock()
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	journey, err := r.journeys.FindByID(ctx, c.JourneyID)
	if err != nil {
		return nil, err
	}
	cp.Journey = journey
	return &cp, nil
}

func (r *fakeCheckInRepo) FindByJourney(_ context.Context, q repository.CheckInQuery) ([]*entity.BusJourneyCheckIn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.BusJourneyCheckIn
	for _, c := range r.checkIns {
		if c.JourneyID != q.JourneyID {
			continue
		}
		if q.BusStopID != nil && (c.BusStopID == nil || *c.BusStopID != *q.BusStopID) {
			continue
		}
		if q.LocationName != "" && (c.LocationName == nil || !strings.Contains(*c.LocationName, q.LocationName)) {
			continue
		}
		if q.From != nil && (c.CheckInTime.Before(*q.From) || c.CheckInTime.After(*q.To)) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, k int) bool {
		if !out[i].CheckInTime.Equal(out[k].CheckInTime) {
			return out[i].CheckInTime.Before(out[k].CheckInTime)
		}
		return out[i].ID < out[k].ID
	})
	return out, nil
}

func (r *fakeCheckInRepo) FindLatest(ctx context.Context, journeyID uint) (*entity.BusJourneyCheckIn, error) {
	all, _ := r.FindByJourney(ctx, repository.CheckInQuery{JourneyID: journeyID})
	if len(all) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return all[len(all)-1], nil
}

func (r *fakeCheckInRepo) Update(_ context.Context, checkIn *entity.BusJourneyCheckIn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *checkIn
	cp.Journey = nil
	r.checkIns[checkIn.ID] = &cp
	return nil
}

type fakeBusRepo struct {
	buses map[uint]*entity.Bus
}

func (r fakeBusRepo) Create(context.Context, *entity.Bus) error { return nil }
func (r fakeBusRepo) FindByID(_ context.Context, id uint) (*entity.Bus, error) {
	b, ok := r.buses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return b, nil
}
func (r fakeBusRepo) FindByIDWithManagers(ctx context.Context, id uint) (*entity.Bus, error) {
	return r.FindByID(ctx, id)
}
func (r fakeBusRepo) FindAll(context.Context, busDto.BusFilter) ([]*entity.Bus, int64, error) {
	return nil, 0, nil
}
func (r fakeBusRepo) Update(context.Context, *entity.Bus) error { return nil }
func (r fakeBusRepo) Delete(context.Context, uint) error { return nil }

type fakeRouteRepo struct {
	routes map[uint]*entity.BusRoute
}

func (r fakeRouteRepo) Create(context.Context, *entity.BusRoute) error { return nil }
func (r fakeRouteRepo) CreateWithStops(context.Context, *entity.BusRoute, []*entity.BusStop) error {
	return nil
}
func (r fakeRouteRepo) FindByID(_ context.Context, id uint) (*entity.BusRoute, error) {
	route, ok := r.routes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return route, nil
}
func (r fakeRouteRepo) FindByIDWithDetails(ctx context.Context, id uint) (*entity.BusRoute, error) {
	return r.FindByID(ctx, id)
}
func (r fakeRouteRepo) FindAll(context.Context) ([]*entity.BusRoute, error) { return nil, nil }
func (r fakeRouteRepo) Update(context.Context, *entity.BusRoute) error { return nil }
func (r fakeRouteRepo) Delete(context.Context, uint) error { return nil }

type fakeStopRepo struct {
	stops map[uint]*entity.BusStop
}

func (r fakeStopRepo) Create(context.Context, *entity.BusStop) error { return nil }
func (r fakeStopRepo) FindByID(_ context.Context, id uint) (*entity.BusStop, error) {
	stop, ok := r.stops[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return stop, nil
}
func (r fakeStopRepo) FindByIDs(context.Context, []uint) ([]*entity.BusStop, error) { return nil, nil }
func (r fakeStopRepo) FindAll(context.Context) ([]*entity.BusStop, error) { return nil, nil }
func (r fakeStopRepo) FindByRoute(context.Context, uint) ([]*entity.BusStop, error) {
	return nil, nil
}
func (r fakeStopRepo) Search(context.Context, string, int) ([]*entity.BusStop, error) {
	return nil, nil
}
func (r fakeStopRepo) Update(context.Context, *entity.BusStop) error { return nil }
func (r fakeStopRepo) Delete(context.Context, uint) error { return nil }

type fakeManagers struct {
	managers map[uint]*entity.BusManager
}

func (f fakeManagers) find(userID, busID uint) *entity.BusManager {
	for _, m := range f.managers {
		if m.UserID == userID && m.BusID == busID && m.IsActive {
			return m
		}
	}
	return nil
}

func (f fakeManagers) IsBusManager(_ context.Context, userID, busID uint) (bool, error) {
	return f.find(userID, busID) != nil, nil
}

func (f fakeManagers) GetBusManagerByUserAndBus(_ context.Context, userID, busID uint) (*entity.BusManager, error) {
	if m := f.find(userID, busID); m != nil {
		return m, nil
	}
	return nil, apperror.Unauthorized("User is not an active manager for bus with ID %d", busID)
}

type recordingPublisher struct {
	mu        sync.Mutex
	locations []dto.BusLocation
}

func (p *recordingPublisher) PublishLocation(_ context.Context, location dto.BusLocation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.locations = append(p.locations, location)
}

func (p *recordingPublisher) last() dto.BusLocation {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.locations[len(p.locations)-1]
}
