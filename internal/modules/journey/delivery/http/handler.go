package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"nub.ac.bd/transport/internal/modules/journey/dto"
	journey "nub.ac.bd/transport/internal/modules/journey/service"
	"nub.ac.bd/transport/pkg/response"
	"nub.ac.bd/transport/pkg/validator"
)

type JourneyHandler struct {
	service journey.JourneyService
}

func NewJourneyHandler(service journey.JourneyService) *JourneyHandler {
	return &JourneyHandler{service: service}
}

func (h *JourneyHandler) StartJourney(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.StartJourneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	j, err := h.service.StartJourney(c.Request.Context(), req, userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Data(c, http.StatusCreated, j)
}

func (h *JourneyHandler) EndJourney(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := response.ParamID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.EndJourneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	j, err := h.service.EndJourney(c.Request.Context(), id, req, userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Data(c, http.StatusOK, j)
}

func (h *JourneyHandler) GetAllJourneys(c *gin.Context) {
	var filter dto.JourneyFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	journeys, total, err := h.service.GetAllJourneys(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	page := filter.Pagination.Normalize()
	response.List(c, response.NewDataList(journeys, total, page.Page, page.Limit))
}

func (h *JourneyHandler) GetBusJourneys(c *gin.Context) {
	busID, err := response.ParamID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var filter dto.JourneyFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	journeys, total, err := h.service.GetBusJourneys(c.Request.Context(), busID, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	page := filter.Pagination.Normalize()
	response.List(c, response.NewDataList(journeys, total, page.Page, page.Limit))
}

func (h *JourneyHandler) GetActiveJourneys(c *gin.Context) {
	journeys, err := h.service.GetActiveJourneys(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.All(c, journeys)
}

func (h *JourneyHandler) CreateCheckIn(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := response.ParamID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	checkIn, err := h.service.CreateCheckIn(c.Request.Context(), id, req, userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Data(c, http.StatusCreated, checkIn)
}

func (h *JourneyHandler) UpdateCheckIn(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := response.ParamID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	checkIn, err := h.service.UpdateCheckIn(c.Request.Context(), id, req, userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Data(c, http.StatusOK, checkIn)
}

func (h *JourneyHandler) GetJourneyCheckIns(c *gin.Context) {
	id, err := response.ParamID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var filter dto.CheckInFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	checkIns, err := h.service.GetJourneyCheckIns(c.Request.Context(), id, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.All(c, checkIns)
}

func (h *JourneyHandler) GetBusLocation(c *gin.Context) {
	id, err := response.ParamID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	location, err := h.service.GetBusLocation(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Data(c, http.StatusOK, location)
}

func (h *JourneyHandler) GetActiveLocations(c *gin.Context) {
	locations, err := h.service.GetAllActiveBusLocations(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.All(c, locations)
}
