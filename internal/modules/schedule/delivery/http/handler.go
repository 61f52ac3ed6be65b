package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"nub.ac.bd/transport/internal/modules/schedule/dto"
	schedule "nub.ac.bd/transport/internal/modules/schedule/service"
	"nub.ac.bd/transport/pkg/response"
	"nub.ac.bd/transport/pkg/validator"
)

type ScheduleHandler struct {
	routes    schedule.RouteService
	stops     schedule.StopService
	schedules schedule.ScheduleService
}

func NewScheduleHandler(routes schedule.RouteService, stops schedule.StopService, schedules schedule.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{
		routes:    routes,
		stops:     stops,
		schedules: schedules,
	}
}

// Routes

func (h *ScheduleHandler) GetAllRoutes(c *gin.Context) {
	routes, err := h.routes.GetAllRoutes(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.All(c, routes)
}

func (h *ScheduleHandler) GetRouteByID(c *gin.Context) {
	id, err := response.ParamID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	route, err := h.routes.GetRouteByID(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Data(c, http.StatusOK, route)
}

func (h *ScheduleHandler) CreateRoute(c *gin.Context) {
	var req dto.CreateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	route, err := h.routes.CreateRoute(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Data(c, http.StatusCreated, route)
}

func (h *ScheduleHandler) CreateRouteWithStops(c *gin.Context) {
	var req dto.RouteWithStopsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	route, err := h.routes.CreateRouteWithStops(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Data(c, http.StatusCreated, route)
}

func (h *ScheduleHandler) UpdateRoute(c *gin.Context) {
	id, err := response.ParamID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	route, err := h.routes.UpdateRoute(c.Request.Context(), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Data(c, http.StatusOK, route)
}

func (h *ScheduleHandler) DeleteRoute(c *gin.Context) {
	id, err := response.ParamID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.routes.DeleteRoute(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Data(c, http.StatusOK, gin.H{"message": "route deleted successfully"})
}

func (h *ScheduleHandler) GetRouteStops(c *gin.Context) {
	id, err := response.ParamID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	stops, err := h.stops.GetStopsByRoute(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.All(c, stops)
}

// Stops

func (h *ScheduleHandler) GetAllStops(c *gin.Context) {
	stops, err := h.stops.GetAllStops(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.All(c, stops)
}

func (h *ScheduleHandler) SearchStops(c *gin.Context) {
	var query dto.StopSearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	stops, err := h.stops.SearchStops(c.Request.Context(), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.All(c, stops)
}

func (h *ScheduleHandler) GetStopByID(c *gin.Context) {
	id, err := response.ParamID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	stop, err := h.stops.GetStopByID(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Data(c, http.StatusOK, stop)
}

func (h *ScheduleHandler) CreateStop(c *gin.Context) {
	var req dto.CreateStopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	stop, err := h.stops.CreateStop(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Data(c, http.StatusCreated, stop)
}

func (h *ScheduleHandler) UpdateStop(c *gin.Context) {
	id, err := response.ParamID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateStopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	stop, err := h.stops.UpdateStop(c.Request.Context(), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Data(c, http.StatusOK, stop)
}

func (h *ScheduleHandler) DeleteStop(c *gin.Context) {
	id, err := response.ParamID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.stops.DeleteStop(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Data(c, http.StatusOK, gin.H{"message": "bus stop deleted successfully"})
}

// Schedules

func (h *ScheduleHandler) GetAllSchedules(c *gin.Context) {
	var filter dto.ScheduleFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	schedules, err := h.schedules.GetAllSchedules(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.All(c, schedules)
}

func (h *ScheduleHandler) GetTodaySchedules(c *gin.Context) {
	var filter dto.TodayFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	schedules, err := h.schedules.GetTodaySchedules(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.All(c, schedules)
}

func (h *ScheduleHandler) GetSchedulesByBus(c *gin.Context) {
	id, err := response.ParamID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	schedules, err := h.schedules.GetAllSchedules(c.Request.Context(), dto.ScheduleFilter{BusID: &id})
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.All(c, schedules)
}

func (h *ScheduleHandler) GetSchedulesByRoute(c *gin.Context) {
	id, err := response.ParamID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	schedules, err := h.schedules.GetAllSchedules(c.Request.Context(), dto.ScheduleFilter{RouteID: &id})
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.All(c, schedules)
}

func (h *ScheduleHandler) GetScheduleByID(c *gin.Context) {
	id, err := response.ParamID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	s, err := h.schedules.GetScheduleByID(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Data(c, http.StatusOK, s)
}

func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	var req dto.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	s, err := h.schedules.CreateSchedule(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Data(c, http.StatusCreated, s)
}

func (h *ScheduleHandler) UpdateSchedule(c *gin.Context) {
	id, err := response.ParamID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	s, err := h.schedules.UpdateSchedule(c.Request.Context(), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Data(c, http.StatusOK, s)
}

func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	id, err := response.ParamID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.schedules.DeleteSchedule(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Data(c, http.StatusOK, gin.H{"message": "schedule deleted successfully"})
}
