package journey

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nub.ac.bd/transport/internal/entity"
	"nub.ac.bd/transport/internal/modules/journey/dto"
	"nub.ac.bd/transport/pkg/apperror"
	pkgdto "nub.ac.bd/transport/pkg/dto"
)

const (
	driverUser    = uint(100)
	conductorUser = uint(101)
	outsiderUser  = uint(102)
)

// Monday 2025-03-03 08:00 local time.
var monday = time.Date(2025, 3, 3, 8, 0, 0, 0, time.Local)

type fixture struct {
	svc       *journeyService
	journeys  *fakeJourneyRepo
	checkIns  *fakeCheckInRepo
	bus       *entity.Bus
	driver    *entity.BusManager
	publisher *recordingPublisher
	clock     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	bus := &entity.Bus{
		Base:               entity.Base{ID: 1},
		RegistrationNumber: "DHAKA-METRO-11",
		Status:             entity.BusStatusActive,
		OffDays:            pq.Int64Array{5},
	}
	driver := &entity.BusManager{Base: entity.Base{ID: 10}, UserID: driverUser, BusID: bus.ID, Role: entity.ManagerRoleDriver, IsActive: true}
	conductor := &entity.BusManager{Base: entity.Base{ID: 11}, UserID: conductorUser, BusID: bus.ID, Role: entity.ManagerRoleConductor, IsActive: true}
	managers := map[uint]*entity.BusManager{driver.ID: driver, conductor.ID: conductor}
	buses := map[uint]*entity.Bus{bus.ID: bus}

	journeys := &fakeJourneyRepo{
		journeys: map[uint]*entity.BusJourney{},
		managers: managers,
		buses:    buses,
	}
	checkIns := &fakeCheckInRepo{checkIns: map[uint]*entity.BusJourneyCheckIn{}, journeys: journeys}
	publisher := &recordingPublisher{}

	f := &fixture{
		journeys:  journeys,
		checkIns:  checkIns,
		bus:       bus,
		driver:    driver,
		publisher: publisher,
		clock:     monday,
	}

	f.svc = NewJourneyService(
		journeys,
		checkIns,
		fakeBusRepo{buses: buses},
		fakeRouteRepo{routes: map[uint]*entity.BusRoute{1: {Base: entity.Base{ID: 1}, Name: "Campus Loop"}}},
		fakeStopRepo{stops: map[uint]*entity.BusStop{7: {Base: entity.Base{ID: 7}, Name: "Main Gate", RouteID: 1}}},
		fakeManagers{managers: managers},
		publisher,
	).(*journeyService)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func coord(v float64) *float64 { return &v }
func text(v string) *string    { return &v }

func (f *fixture) start(t *testing.T) *entity.BusJourney {
	t.Helper()
	j, err := f.svc.StartJourney(context.Background(), f.startRequest(), driverUser)
	require.NoError(t, err)
	return j
}

func (f *fixture) startRequest() dto.StartJourneyRequest {
	return dto.StartJourneyRequest{
		BusID:     f.bus.ID,
		RouteID:   1,
		ManagerID: f.driver.ID,
		Latitude:  coord(23.7808),
		Longitude: coord(90.4067),
		Notes:     text("morning run"),
	}
}

func TestStartJourney(t *testing.T) {
	f := newFixture(t)

	j := f.start(t)
	assert.Equal(t, entity.JourneyStatusInProgress, j.Status)
	assert.Equal(t, monday, j.StartTime)
	assert.Equal(t, 23.7808, j.StartLatitude)
	assert.Equal(t, f.driver.ID, j.ManagerID)

	published := f.publisher.last()
	assert.Equal(t, j.ID, published.JourneyID)
	assert.Equal(t, "DHAKA-METRO-11", published.RegistrationNumber)
}

func TestStartJourneyValidationOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := f.startRequest()
	req.BusID = 404
	_, err := f.svc.StartJourney(ctx, req, driverUser)
	assert.EqualError(t, err, "Bus with ID 404 not found")

	req = f.startRequest()
	req.RouteID = 404
	_, err = f.svc.StartJourney(ctx, req, driverUser)
	assert.EqualError(t, err, "Route with ID 404 not found")

	_, err = f.svc.StartJourney(ctx, f.startRequest(), outsiderUser)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	req = f.startRequest()
	req.ManagerID = 11
	_, err = f.svc.StartJourney(ctx, req, driverUser)
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
	assert.Contains(t, err.Error(), "Manager ID mismatch")
}

func TestSecondStartFails(t *testing.T) {
	f := newFixture(t)
	first := f.start(t)

	_, err := f.svc.StartJourney(context.Background(), f.startRequest(), driverUser)
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
	assert.EqualError(t, err, "Bus already has an active journey (ID: 1)")
	assert.Equal(t, uint(1), first.ID)
	assert.Len(t, f.journeys.journeys, 1)
}

func TestConcurrentStartsLeaveOneActiveJourney(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const attempts = 16
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.StartJourney(ctx, f.startRequest(), driverUser)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, apperror.ErrBadRequest)
	}
	assert.Equal(t, 1, succeeded)

	active, err := f.svc.GetActiveJourneys(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestStartJourneyOnOffDay(t *testing.T) {
	for weekday := 0; weekday < 7; weekday++ {
		f := newFixture(t)
		f.bus.OffDays = pq.Int64Array{int64(weekday)}
		// 2025-03-02 is a Sunday
		f.clock = time.Date(2025, 3, 2+weekday, 9, 0, 0, 0, time.Local)

		_, err := f.svc.StartJourney(context.Background(), f.startRequest(), driverUser)
		assert.ErrorIs(t, err, apperror.ErrBadRequest, "weekday %d", weekday)
		assert.EqualError(t, err, "Cannot start journey: Bus is on its off day")
		assert.Empty(t, f.journeys.journeys)
	}
}

func TestEndJourneyByStartingManager(t *testing.T) {
	f := newFixture(t)
	j := f.start(t)
	f.clock = monday.Add(45 * time.Minute)

	ended, err := f.svc.EndJourney(context.Background(), j.ID, dto.EndJourneyRequest{
		Latitude:  coord(23.8103),
		Longitude: coord(90.4125),
		Status:    entity.JourneyStatusCompleted,
		Notes:     text("arrived on time"),
	}, driverUser)
	require.NoError(t, err)

	assert.Equal(t, entity.JourneyStatusCompleted, ended.Status)
	require.NotNil(t, ended.EndTime)
	assert.Equal(t, f.clock, *ended.EndTime)
	assert.Equal(t, 23.8103, *ended.EndLatitude)
	assert.Equal(t, 90.4125, *ended.EndLongitude)
	assert.Equal(t, "morning run\nEnd notes: arrived on time", *ended.Notes)

	stored := f.journeys.journeys[j.ID]
	assert.Equal(t, entity.JourneyStatusCompleted, stored.Status)
}

func TestEndJourneyByOtherManagerForbidden(t *testing.T) {
	f := newFixture(t)
	j := f.start(t)

	_, err := f.svc.EndJourney(context.Background(), j.ID, dto.EndJourneyRequest{
		Latitude:  coord(1),
		Longitude: coord(1),
		Status:    entity.JourneyStatusCancelled,
	}, conductorUser)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	assert.Equal(t, entity.JourneyStatusInProgress, f.journeys.journeys[j.ID].Status)
}

func TestEndJourneyTwiceLeavesRowUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j := f.start(t)

	_, err := f.svc.EndJourney(ctx, j.ID, dto.EndJourneyRequest{Latitude: coord(2), Longitude: coord(3), Status: entity.JourneyStatusCancelled}, driverUser)
	require.NoError(t, err)
	before := *f.journeys.journeys[j.ID]

	f.clock = monday.Add(time.Hour)
	_, err = f.svc.EndJourney(ctx, j.ID, dto.EndJourneyRequest{Latitude: coord(9), Longitude: coord(9), Status: entity.JourneyStatusCompleted, Notes: text("again")}, driverUser)
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
	assert.EqualError(t, err, "Journey is already cancelled")
	assert.Equal(t, before, *f.journeys.journeys[j.ID])

	_, err = f.svc.EndJourney(ctx, 404, dto.EndJourneyRequest{Latitude: coord(1), Longitude: coord(1), Status: entity.JourneyStatusCompleted}, driverUser)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCheckInAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j := f.start(t)

	checkIn, err := f.svc.CreateCheckIn(ctx, j.ID, dto.CreateCheckInRequest{
		Latitude:     coord(23.79),
		Longitude:    coord(90.41),
		LocationName: text("Banani"),
	}, conductorUser)
	require.NoError(t, err)
	assert.Equal(t, j.ID, checkIn.JourneyID)

	_, err = f.svc.CreateCheckIn(ctx, j.ID, dto.CreateCheckInRequest{Latitude: coord(1), Longitude: coord(1)}, outsiderUser)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	assert.EqualError(t, err, "Only assigned bus managers can add check-ins to this journey")

	_, err = f.svc.UpdateCheckIn(ctx, checkIn.ID, dto.UpdateCheckInRequest{Notes: text("x")}, outsiderUser)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestCheckInRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j := f.start(t)

	missingStop := uint(99)
	_, err := f.svc.CreateCheckIn(ctx, j.ID, dto.CreateCheckInRequest{BusStopID: &missingStop, Latitude: coord(1), Longitude: coord(1)}, driverUser)
	assert.EqualError(t, err, "Bus stop with ID 99 not found")

	_, err = f.svc.CreateCheckIn(ctx, 404, dto.CreateCheckInRequest{Latitude: coord(1), Longitude: coord(1)}, driverUser)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.svc.EndJourney(ctx, j.ID, dto.EndJourneyRequest{Latitude: coord(1), Longitude: coord(1), Status: entity.JourneyStatusCompleted}, driverUser)
	require.NoError(t, err)

	_, err = f.svc.CreateCheckIn(ctx, j.ID, dto.CreateCheckInRequest{Latitude: coord(1), Longitude: coord(1)}, driverUser)
	assert.EqualError(t, err, "Cannot check in: Journey is completed")
}

func TestUpdateCheckIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j := f.start(t)

	stopID := uint(7)
	checkIn, err := f.svc.CreateCheckIn(ctx, j.ID, dto.CreateCheckInRequest{BusStopID: &stopID, Latitude: coord(1), Longitude: coord(2), Notes: text("first")}, driverUser)
	require.NoError(t, err)

	updated, err := f.svc.UpdateCheckIn(ctx, checkIn.ID, dto.UpdateCheckInRequest{Latitude: coord(5)}, conductorUser)
	require.NoError(t, err)
	assert.Equal(t, 5.0, updated.Latitude)
	assert.Equal(t, 2.0, updated.Longitude)
	assert.Equal(t, "first", *updated.Notes)
	require.NotNil(t, updated.BusStopID)

	cleared, err := f.svc.UpdateCheckIn(ctx, checkIn.ID, dto.UpdateCheckInRequest{BusStopID: pkgdto.OptionalUint{Set: true}}, driverUser)
	require.NoError(t, err)
	assert.Nil(t, cleared.BusStopID)
	assert.Nil(t, f.checkIns.checkIns[checkIn.ID].BusStopID)

	_, err = f.svc.UpdateCheckIn(ctx, 404, dto.UpdateCheckInRequest{}, driverUser)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGetBusLocation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j := f.start(t)

	location, err := f.svc.GetBusLocation(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, j.StartLatitude, location.Latitude)
	assert.Equal(t, j.StartLongitude, location.Longitude)
	assert.Equal(t, j.StartTime, location.LastCheckinTime)
	assert.Nil(t, location.LocationName)
	assert.Equal(t, "DHAKA-METRO-11", location.RegistrationNumber)

	f.clock = monday.Add(10 * time.Minute)
	_, err = f.svc.CreateCheckIn(ctx, j.ID, dto.CreateCheckInRequest{Latitude: coord(23.79), Longitude: coord(90.41), LocationName: text("Banani")}, driverUser)
	require.NoError(t, err)

	location, err = f.svc.GetBusLocation(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, 23.79, location.Latitude)
	assert.Equal(t, 90.41, location.Longitude)
	assert.Equal(t, f.clock, location.LastCheckinTime)
	require.NotNil(t, location.LocationName)
	assert.Equal(t, "Banani", *location.LocationName)
	assert.Equal(t, location.LastCheckinTime, f.publisher.last().LastCheckinTime)

	_, err = f.svc.GetBusLocation(ctx, 404)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestLatestCheckInTieBreaksOnID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j := f.start(t)

	_, err := f.svc.CreateCheckIn(ctx, j.ID, dto.CreateCheckInRequest{Latitude: coord(1), Longitude: coord(1), LocationName: text("A")}, driverUser)
	require.NoError(t, err)
	_, err = f.svc.CreateCheckIn(ctx, j.ID, dto.CreateCheckInRequest{Latitude: coord(2), Longitude: coord(2), LocationName: text("B")}, driverUser)
	require.NoError(t, err)

	locations, err := f.svc.GetAllActiveBusLocations(ctx)
	require.NoError(t, err)
	require.Len(t, locations, 1)
	assert.Equal(t, "B", *locations[0].LocationName)
}

func TestJourneyCheckInFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j := f.start(t)

	for i, name := range []string{"Mohakhali", "Banani", "Gulshan"} {
		f.clock = monday.Add(time.Duration(i+1) * time.Hour)
		_, err := f.svc.CreateCheckIn(ctx, j.ID, dto.CreateCheckInRequest{Latitude: coord(1), Longitude: coord(1), LocationName: text(name)}, driverUser)
		require.NoError(t, err)
	}

	all, err := f.svc.GetJourneyCheckIns(ctx, j.ID, dto.CheckInFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Mohakhali", *all[0].LocationName)
	assert.Equal(t, "Gulshan", *all[2].LocationName)

	named, err := f.svc.GetJourneyCheckIns(ctx, j.ID, dto.CheckInFilter{LocationName: "Ban"})
	require.NoError(t, err)
	require.Len(t, named, 1)

	since, err := f.svc.GetJourneyCheckIns(ctx, j.ID, dto.CheckInFilter{
		DateRange: pkgdto.DateRange{DateFrom: monday.Add(90 * time.Minute).Format(time.RFC3339)},
	})
	require.NoError(t, err)
	assert.Len(t, since, 2)

	_, err = f.svc.GetJourneyCheckIns(ctx, j.ID, dto.CheckInFilter{DateRange: pkgdto.DateRange{DateTo: "yesterday"}})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)

	_, err = f.svc.GetJourneyCheckIns(ctx, 404, dto.CheckInFilter{})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestJourneyListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.start(t)
	_, err := f.svc.EndJourney(ctx, first.ID, dto.EndJourneyRequest{Latitude: coord(1), Longitude: coord(1), Status: entity.JourneyStatusCompleted}, driverUser)
	require.NoError(t, err)

	f.clock = monday.Add(2 * time.Hour)
	second := f.start(t)

	journeys, total, err := f.svc.GetBusJourneys(ctx, f.bus.ID, dto.JourneyFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, second.ID, journeys[0].ID)
	assert.Equal(t, first.ID, journeys[1].ID)

	completed, _, err := f.svc.GetAllJourneys(ctx, dto.JourneyFilter{Status: entity.JourneyStatusCompleted})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, first.ID, completed[0].ID)

	_, _, err = f.svc.GetBusJourneys(ctx, 404, dto.JourneyFilter{})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
