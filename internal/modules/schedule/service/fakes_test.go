package schedule

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strings"

	"gorm.io/gorm"
	"nub.ac.bd/transport/internal/entity"
	busDto "nub.ac.bd/transport/internal/modules/bus/dto"
	"nub.ac.bd/transport/internal/modules/schedule/dto"
)

type store struct {
	routes    map[uint]*entity.BusRoute
	stops     map[uint]*entity.BusStop
	schedules map[uint]*entity.BusSchedule
	buses     map[uint]*entity.Bus
	nextID    uint
}

func newStore() *store {
	return &store{
		routes:    map[uint]*entity.BusRoute{},
		stops:     map[uint]*entity.BusStop{},
		schedules: map[uint]*entity.BusSchedule{},
		buses:     map[uint]*entity.Bus{},
	}
}

func (s *store) id() uint {
	s.nextID++
	return s.nextID
}

type fakeRouteRepo struct{ s *store }

func (r fakeRouteRepo) Create(_ context.Context, route *entity.BusRoute) error {
	route.ID = r.s.id()
	cp := *route
	r.s.routes[route.ID] = &cp
	return nil
}

func (r fakeRouteRepo) CreateWithStops(ctx context.Context, route *entity.BusRoute, stops []*entity.BusStop) error {
	if err := r.Create(ctx, route); err != nil {
		return err
	}
	for _, stop := range stops {
		stop.RouteID = route.ID
		stop.ID = r.s.id()
		cp := *stop
		r.s.stops[stop.ID] = &cp
	}
	return nil
}

func (r fakeRouteRepo) FindByID(_ context.Context, id uint) (*entity.BusRoute, error) {
	route, ok := r.s.routes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *route
	return &cp, nil
}

func (r fakeRouteRepo) FindByIDWithDetails(ctx context.Context, id uint) (*entity.BusRoute, error) {
	route, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	stops, _ := fakeStopRepo(r).FindByRoute(ctx, id)
	for _, stop := range stops {
		route.Stops = append(route.Stops, *stop)
	}
	return route, nil
}

func (r fakeRouteRepo) FindAll(context.Context) ([]*entity.BusRoute, error) {
	var out []*entity.BusRoute
	for _, route := range r.s.routes {
		out = append(out, route)
	}
	return out, nil
}

func (r fakeRouteRepo) Update(_ context.Context, route *entity.BusRoute) error {
	cp := *route
	r.s.routes[route.ID] = &cp
	return nil
}

func (r fakeRouteRepo) Delete(_ context.Context, id uint) error {
	delete(r.s.routes, id)
	for sid, stop := range r.s.stops {
		if stop.RouteID == id {
			delete(r.s.stops, sid)
		}
	}
	return nil
}

type fakeStopRepo struct{ s *store }

func (r fakeStopRepo) Create(_ context.Context, stop *entity.BusStop) error {
	stop.ID = r.s.id()
	cp := *stop
	r.s.stops[stop.ID] = &cp
	return nil
}

func (r fakeStopRepo) FindByID(_ context.Context, id uint) (*entity.BusStop, error) {
	stop, ok := r.s.stops[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *stop
	return &cp, nil
}

func (r fakeStopRepo) FindByIDs(_ context.Context, ids []uint) ([]*entity.BusStop, error) {
	var out []*entity.BusStop
	for _, id := range ids {
		if stop, ok := r.s.stops[id]; ok {
			out = append(out, stop)
		}
	}
	// the database returns rows in its own order
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeStopRepo) FindAll(context.Context) ([]*entity.BusStop, error) {
	var out []*entity.BusStop
	for _, stop := range r.s.stops {
		out = append(out, stop)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeStopRepo) FindByRoute(_ context.Context, routeID uint) ([]*entity.BusStop, error) {
	var out []*entity.BusStop
	for _, stop := range r.s.stops {
		if stop.RouteID == routeID {
			cp := *stop
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sequence != out[j].Sequence {
			return out[i].Sequence < out[j].Sequence
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r fakeStopRepo) Search(_ context.Context, q string, limit int) ([]*entity.BusStop, error) {
	var out []*entity.BusStop
	for _, stop := range r.s.stops {
		if strings.Contains(stop.Name, q) {
			out = append(out, stop)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r fakeStopRepo) Update(_ context.Context, stop *entity.BusStop) error {
	cp := *stop
	r.s.stops[stop.ID] = &cp
	return nil
}

func (r fakeStopRepo) Delete(_ context.Context, id uint) error {
	delete(r.s.stops, id)
	return nil
}

type fakeScheduleRepo struct{ s *store }

func (r fakeScheduleRepo) Create(_ context.Context, schedule *entity.BusSchedule) error {
	schedule.ID = r.s.id()
	cp := *schedule
	r.s.schedules[schedule.ID] = &cp
	return nil
}

func (r fakeScheduleRepo) FindByID(_ context.Context, id uint) (*entity.BusSchedule, error) {
	schedule, ok := r.s.schedules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *schedule
	return &cp, nil
}

func (r fakeScheduleRepo) FindAll(_ context.Context, filter dto.ScheduleFilter) ([]*entity.BusSchedule, error) {
	var out []*entity.BusSchedule
	for _, schedule := range r.s.schedules {
		if filter.RouteID != nil && schedule.RouteID != *filter.RouteID {
			continue
		}
		if filter.BusID != nil && (schedule.BusID == nil || *schedule.BusID != *filter.BusID) {
			continue
		}
		if filter.IsActive != nil && schedule.IsActive != *filter.IsActive {
			continue
		}
		if filter.DayOfWeek != nil && !slices.Contains(schedule.OperatingDays, int64(*filter.DayOfWeek)) {
			continue
		}
		out = append(out, schedule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DepartureTime < out[j].DepartureTime })
	return out, nil
}

func (r fakeScheduleRepo) FindForDay(ctx context.Context, weekday int, filter dto.TodayFilter) ([]*entity.BusSchedule, error) {
	active := true
	return r.FindAll(ctx, dto.ScheduleFilter{
		RouteID:   filter.RouteID,
		BusID:     filter.BusID,
		IsActive:  &active,
		DayOfWeek: &weekday,
	})
}

func (r fakeScheduleRepo) CountByRoute(_ context.Context, routeID uint) (int64, error) {
	var n int64
	for _, schedule := range r.s.schedules {
		if schedule.RouteID == routeID {
			n++
		}
	}
	return n, nil
}

func (r fakeScheduleRepo) Update(_ context.Context, schedule *entity.BusSchedule) error {
	cp := *schedule
	r.s.schedules[schedule.ID] = &cp
	return nil
}

func (r fakeScheduleRepo) Delete(_ context.Context, id uint) error {
	delete(r.s.schedules, id)
	return nil
}

type fakeBusRepo struct{ s *store }

func (r fakeBusRepo) Create(_ context.Context, bus *entity.Bus) error {
	bus.ID = r.s.id()
	r.s.buses[bus.ID] = bus
	return nil
}

func (r fakeBusRepo) FindByID(_ context.Context, id uint) (*entity.Bus, error) {
	bus, ok := r.s.buses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return bus, nil
}

func (r fakeBusRepo) FindByIDWithManagers(ctx context.Context, id uint) (*entity.Bus, error) {
	return r.FindByID(ctx, id)
}

func (r fakeBusRepo) FindAll(context.Context, busDto.BusFilter) ([]*entity.Bus, int64, error) {
	return nil, 0, nil
}

func (r fakeBusRepo) Update(_ context.Context, bus *entity.Bus) error {
	r.s.buses[bus.ID] = bus
	return nil
}

func (r fakeBusRepo) Delete(_ context.Context, id uint) error {
	delete(r.s.buses, id)
	return nil
}

type fakeIndex struct {
	docs    map[uint]string
	hits    []uint
	failing bool
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: map[uint]string{}}
}

func (f *fakeIndex) IndexStop(stop *entity.BusStop, routeName string) error {
	f.docs[stop.ID] = stop.Name + "|" + routeName
	return nil
}

func (f *fakeIndex) IndexStops(stops []*entity.BusStop) error {
	for _, stop := range stops {
		name := ""
		if stop.Route != nil {
			name = stop.Route.Name
		}
		f.docs[stop.ID] = stop.Name + "|" + name
	}
	return nil
}

func (f *fakeIndex) DeleteStop(id uint) error {
	delete(f.docs, id)
	return nil
}

func (f *fakeIndex) SearchStopIDs(string, int) ([]uint, error) {
	if f.failing {
		return nil, errors.New("connection refused")
	}
	return f.hits, nil
}
